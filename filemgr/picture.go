package filemgr

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"wayfare/db"
	"wayfare/itinerary"
	"wayfare/models"
	"wayfare/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const activityPicDir = "static/activitypic"

// UploadActivityPhoto handles POST /api/itineraries/:id/days/:day/activities/:activityid/photo.
// Saves the image plus a 300px thumbnail and appends the photo URL to the
// activity's photo list.
func UploadActivityPhoto(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := itinerary.GetRequestingUserID(w, r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	itineraryID := ps.ByName("id")
	activityID := ps.ByName("activityid")

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
	if !it.CanEdit(userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	img, err := imaging.Decode(file)
	if err != nil {
		http.Error(w, "Failed to decode image", http.StatusBadRequest)
		return
	}

	uniqueID := utils.GetUUID()
	fileName := uniqueID + ".jpg"
	thumbDir := filepath.Join(activityPicDir, "thumb")

	if err := utils.EnsureDir(activityPicDir); err != nil {
		http.Error(w, "Failed to create upload directory", http.StatusInternalServerError)
		return
	}
	if err := utils.EnsureDir(thumbDir); err != nil {
		http.Error(w, "Failed to create thumbnail directory", http.StatusInternalServerError)
		return
	}

	if err := imaging.Save(img, filepath.Join(activityPicDir, fileName)); err != nil {
		http.Error(w, "Failed to save image", http.StatusInternalServerError)
		return
	}
	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, fileName)); err != nil {
		http.Error(w, "Failed to save thumbnail", http.StatusInternalServerError)
		return
	}

	photoURL := "/static/activitypic/" + fileName
	res, err := db.ItineraryCollection.UpdateOne(ctx,
		bson.M{"itineraryid": itineraryID},
		bson.M{"$push": bson.M{"days.$[].activities.$[a].photo_urls": photoURL}},
		arrayFilterForActivity(activityID),
	)
	if err != nil {
		http.Error(w, "Failed to attach photo", http.StatusInternalServerError)
		return
	}
	if res.ModifiedCount == 0 {
		http.Error(w, "Activity not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"url":   photoURL,
		"thumb": fmt.Sprintf("/static/activitypic/thumb/%s", fileName),
	})
}

func arrayFilterForActivity(activityID string) *options.UpdateOptions {
	return options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"a.activityid": activityID}},
	})
}
