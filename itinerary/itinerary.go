// itinerary.go
package itinerary

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wayfare/db"
	"wayfare/middleware"
	"wayfare/models"
	"wayfare/mq"
	"wayfare/planner"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Pluggable collaborators; swapped for real AI/Maps backends via config.
var (
	Gen      planner.Generator     = planner.SampleGenerator{}
	Resolver planner.PlaceResolver = planner.SampleResolver{}
)

// Utility function to extract user ID from JWT
func GetRequestingUserID(w http.ResponseWriter, r *http.Request) string {
	tokenString := r.Header.Get("Authorization")
	claims, err := middleware.ValidateJWT(tokenString)
	if err != nil {
		log.Printf("JWT validation error: %v", err)
		return ""
	}
	return claims.UserID
}

type createRequest struct {
	Location         string   `json:"location"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	TravelCategories []string `json:"travel_categories"`
	Language         string   `json:"language"`
}

// TotalDays returns the inclusive day count of the request's date range.
func (req createRequest) TotalDays() (int, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return 0, err
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return 0, err
	}
	days := int(end.Sub(start).Hours()/24) + 1
	return days, nil
}

// POST /api/itineraries
func CreateItinerary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := GetRequestingUserID(w, r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Location == "" {
		http.Error(w, "Location is required", http.StatusBadRequest)
		return
	}
	totalDays, err := req.TotalDays()
	if err != nil || totalDays < 1 {
		http.Error(w, "Invalid date range", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	generated, err := Gen.GenerateItinerary(ctx, planner.GenerateRequest{
		Location:         req.Location,
		TotalDays:        totalDays,
		TravelCategories: req.TravelCategories,
		Language:         req.Language,
	})
	if err != nil {
		log.Printf("itinerary generation failed: %v", err)
		http.Error(w, "Error generating itinerary", http.StatusBadGateway)
		return
	}

	days := enrichDays(ctx, generated.Days)

	itinerary := models.Itinerary{
		ItineraryID:      utils.GenerateRandomString(13),
		UserID:           userID,
		AllowedEditors:   []string{userID},
		Published:        false,
		Location:         req.Location,
		Description:      generated.Description,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		TravelCategories: req.TravelCategories,
		Language:         req.Language,
		Status:           "Draft",
		Days:             days,
	}

	if _, err := db.ItineraryCollection.InsertOne(ctx, itinerary); err != nil {
		http.Error(w, "Error inserting itinerary", http.StatusInternalServerError)
		return
	}

	mq.Emit(ctx, "itinerary-created", models.Index{
		EntityType: "itinerary", Method: "POST", EntityId: itinerary.ItineraryID,
	})

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"msg": "success",
		"id":  itinerary.ItineraryID,
	})
}

// enrichDays resolves coordinates and photos for every generated activity and
// assigns stable activity ids.
func enrichDays(ctx context.Context, days []models.Day) []models.Day {
	for di := range days {
		for ai := range days[di].Activities {
			a := &days[di].Activities[ai]
			a.ActivityID = utils.GetUUID()
			details, err := Resolver.ResolvePlace(ctx, a.Name)
			if err != nil {
				log.Printf("place resolve %q: %v", a.Name, err)
				continue
			}
			a.Latitude = details.Latitude
			a.Longitude = details.Longitude
			a.PhotoURLs = details.PhotoURLs
		}
	}
	return days
}

// PUT /api/itineraries/:id
func UpdateItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := GetRequestingUserID(w, r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itineraryID := ps.ByName("id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var existing models.Itinerary
	err := db.ItineraryCollection.FindOne(ctx, bson.M{"itineraryid": itineraryID}).Decode(&existing)
	if err != nil {
		http.Error(w, "Itinerary not found", http.StatusNotFound)
		return
	}

	if existing.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var updated models.Itinerary
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// metadata only; days are mutated through the collab gateway
	update := bson.M{"$set": bson.M{
		"location":    updated.Location,
		"description": updated.Description,
		"start_date":  updated.StartDate,
		"end_date":    updated.EndDate,
		"status":      updated.Status,
		"published":   updated.Published,
	}}

	_, err = db.ItineraryCollection.UpdateOne(ctx, bson.M{"itineraryid": itineraryID}, update)
	if err != nil {
		http.Error(w, "Error updating itinerary", http.StatusInternalServerError)
		return
	}

	mq.Emit(ctx, "itinerary-updated", models.Index{
		EntityType: "itinerary", Method: "PUT", EntityId: itineraryID,
	})

	utils.RespondWithJSON(w, http.StatusOK, bson.M{"message": "Itinerary updated successfully"})
}

// POST /api/itineraries/:id/editors
func AddEditor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := GetRequestingUserID(w, r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itineraryID := ps.ByName("id")
	var body struct {
		EditorID string `json:"editor_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.EditorID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ItineraryCollection.UpdateOne(ctx,
		bson.M{"itineraryid": itineraryID, "user_id": userID},
		bson.M{"$addToSet": bson.M{"allowed_editors": body.EditorID}},
	)
	if err != nil {
		http.Error(w, "Error adding editor", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Itinerary not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bson.M{"message": "Editor added"})
}

// DELETE /api/itineraries/:id
func DeleteItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := GetRequestingUserID(w, r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itineraryID := ps.ByName("id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var itinerary models.Itinerary
	err := db.ItineraryCollection.FindOne(ctx, bson.M{"itineraryid": itineraryID}).Decode(&itinerary)
	if err != nil {
		http.Error(w, "Itinerary not found", http.StatusNotFound)
		return
	}

	if itinerary.UserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	update := bson.M{"$set": bson.M{"deleted": true}}
	_, err = db.ItineraryCollection.UpdateOne(ctx, bson.M{"itineraryid": itineraryID}, update)
	if err != nil {
		http.Error(w, "Error deleting itinerary", http.StatusInternalServerError)
		return
	}

	mq.Emit(ctx, "itinerary-deleted", models.Index{
		EntityType: "itinerary", Method: "DELETE", EntityId: itineraryID,
	})

	utils.RespondWithJSON(w, http.StatusOK, bson.M{"message": "Itinerary deleted successfully"})
}

// POST /api/itineraries/:id/fork
func ForkItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := GetRequestingUserID(w, r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	originalID := ps.ByName("id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var original models.Itinerary
	err := db.ItineraryCollection.FindOne(ctx, bson.M{"itineraryid": originalID, "deleted": bson.M{"$ne": true}}).Decode(&original)
	if err != nil {
		http.Error(w, "Original itinerary not found", http.StatusNotFound)
		return
	}
	if !original.Published && !original.CanEdit(userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// fresh activity ids and versions for the copy
	days := make([]models.Day, len(original.Days))
	for i, d := range original.Days {
		day := models.Day{Day: d.Day, Activities: make([]models.Activity, len(d.Activities))}
		copy(day.Activities, d.Activities)
		for j := range day.Activities {
			day.Activities[j].ActivityID = utils.GetUUID()
		}
		days[i] = day
	}

	newItinerary := models.Itinerary{
		ItineraryID:      utils.GenerateRandomString(13),
		UserID:           userID,
		AllowedEditors:   []string{userID},
		Published:        false,
		Location:         original.Location,
		Description:      "Forked - " + original.Description,
		StartDate:        original.StartDate,
		EndDate:          original.EndDate,
		TravelCategories: original.TravelCategories,
		Language:         original.Language,
		Status:           "Draft",
		ForkedFrom:       &originalID,
		Days:             days,
	}

	if _, err := db.ItineraryCollection.InsertOne(ctx, newItinerary); err != nil {
		http.Error(w, "Error forking itinerary", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"msg": "success",
		"id":  newItinerary.ItineraryID,
	})
}

// PATCH /api/itineraries/:id/publish
func PublishItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := GetRequestingUserID(w, r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := ps.ByName("id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"itineraryid": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"published": true}}

	res, err := db.ItineraryCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		http.Error(w, "Error publishing itinerary", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Itinerary not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bson.M{"message": "Itinerary published"})
}
