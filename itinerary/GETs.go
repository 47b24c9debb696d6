package itinerary

import (
	"context"
	"net/http"
	"time"

	"wayfare/collab"
	"wayfare/db"
	"wayfare/models"
	"wayfare/search"
	"wayfare/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// sortDays enforces the read-time contract: days ascending, activities within
// each day sorted by order ascending, so clients never sort defensively.
func sortDays(it *models.Itinerary) {
	for i := range it.Days {
		collab.SortByOrder(it.Days[i].Activities)
	}
}

// GET /api/itineraries
func GetItineraries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := GetRequestingUserID(w, r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"user_id": userID, "deleted": bson.M{"$ne": true}}
	itineraries, err := utils.FindAndDecode[models.Itinerary](ctx, db.ItineraryCollection, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching itineraries")
		return
	}
	for i := range itineraries {
		sortDays(&itineraries[i])
	}

	utils.RespondWithJSON(w, http.StatusOK, itineraries)
}

// GET /api/itineraries/recommended
func GetRecommended(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"published": true, "deleted": bson.M{"$ne": true}}
	itineraries, err := utils.FindAndDecode[models.PublicItinerary](ctx, db.ItineraryCollection, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching itineraries")
		return
	}
	for i := range itineraries {
		for d := range itineraries[i].Days {
			collab.SortByOrder(itineraries[i].Days[d].Activities)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, itineraries)
}

// GET /api/itineraries/all/:id
func GetItinerary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	itineraryID := ps.ByName("id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	filter := bson.M{"itineraryid": itineraryID, "deleted": bson.M{"$ne": true}}

	var itinerary models.Itinerary
	err := db.ItineraryCollection.FindOne(ctx, filter).Decode(&itinerary)
	if err != nil {
		http.Error(w, "Itinerary not found", http.StatusNotFound)
		return
	}

	if !itinerary.Published {
		userID := GetRequestingUserID(w, r)
		if !itinerary.CanEdit(userID) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	sortDays(&itinerary)
	utils.RespondWithJSON(w, http.StatusOK, itinerary)
}

// GET /api/itineraries/search
func SearchItineraries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"published": true, "deleted": bson.M{"$ne": true}}
	if start := query.Get("start_date"); start != "" {
		filter["start_date"] = start
	}
	if status := query.Get("status"); status != "" {
		filter["status"] = status
	}
	if location := query.Get("location"); location != "" {
		// the redis token index narrows the candidate set when it has data
		if ids, err := search.LookupLocation(location); err == nil && len(ids) > 0 {
			filter["itineraryid"] = bson.M{"$in": ids}
		} else {
			filter["location"] = bson.M{"$regex": location, "$options": "i"}
		}
	}

	itineraries, err := utils.FindAndDecode[models.Itinerary](ctx, db.ItineraryCollection, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching itineraries")
		return
	}
	for i := range itineraries {
		sortDays(&itineraries[i])
	}

	utils.RespondWithJSON(w, http.StatusOK, itineraries)
}
