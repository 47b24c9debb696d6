package export

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"wayfare/collab"
	"wayfare/db"
	"wayfare/itinerary"
	"wayfare/models"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

func shareBaseURL() string {
	if base := os.Getenv("SHARE_BASE_URL"); base != "" {
		return base
	}
	return "http://localhost:4000"
}

// ExportItineraryPDF renders an itinerary as a PDF, one section per day,
// with a QR code linking to the shared view.
func ExportItineraryPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	itineraryID := ps.ByName("id")
	userID := itinerary.GetRequestingUserID(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var it models.Itinerary
	err := db.ItineraryCollection.FindOne(ctx, bson.M{
		"itineraryid": itineraryID,
		"deleted":     bson.M{"$ne": true},
	}).Decode(&it)
	if err != nil {
		http.Error(w, "Itinerary not found", http.StatusNotFound)
		return
	}
	if !it.Published && !it.CanEdit(userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	shareURL := fmt.Sprintf("%s/itineraries/%s", shareBaseURL(), it.ItineraryID)
	qrPNG, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, sanitize(it.Location))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("%s - %s", it.StartDate, it.EndDate))
	pdf.Ln(8)
	if it.Description != "" {
		pdf.MultiCell(0, 6, sanitize(it.Description), "", "L", false)
		pdf.Ln(4)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 10, 35, 35, false, imageOpts, 0, "")

	for _, day := range it.Days {
		collab.SortByOrder(day.Activities)

		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 10, fmt.Sprintf("Day %d", day.Day))
		pdf.Ln(10)

		for i, act := range day.Activities {
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 7, fmt.Sprintf("%d. %s", i+1, sanitize(act.Name)))
			pdf.Ln(6)

			pdf.SetFont("Arial", "", 10)
			if act.Location != "" {
				pdf.Cell(0, 6, sanitize(act.Location))
				pdf.Ln(5)
			}
			if act.RecommendDuration > 0 {
				pdf.Cell(0, 6, fmt.Sprintf("Suggested time: %d min", act.RecommendDuration))
				pdf.Ln(5)
			}
			if act.Description != "" {
				pdf.MultiCell(0, 5, sanitize(act.Description), "", "L", false)
			}
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=itinerary-"+it.ItineraryID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// sanitize strips characters the core PDF fonts cannot encode.
func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r < 128 {
			out = append(out, r)
		} else {
			out = append(out, '?')
		}
	}
	return string(out)
}
