package models

// Activity is one stop inside a Day. ActivityID is assigned at insert time and
// never recycled; all reorder/delete matching keys on it.
type Activity struct {
	ActivityID        string   `json:"activityid" bson:"activityid"`
	Name              string   `json:"name" bson:"name"`
	Description       string   `json:"description" bson:"description"`
	Location          string   `json:"location" bson:"location"`
	Latitude          float64  `json:"latitude" bson:"latitude"`
	Longitude         float64  `json:"longitude" bson:"longitude"`
	PhotoURLs         []string `json:"photoUrls" bson:"photo_urls"`
	RecommendDuration int      `json:"recommendDuration" bson:"recommend_duration"` // minutes
	Order             int      `json:"order" bson:"order"`
}

// Day holds one calendar day's ordered activities. Order values are unique
// within a day; gaps are fine, only relative order matters. Version increments
// on every accepted mutation of the day.
type Day struct {
	Day        int        `json:"day" bson:"day"` // 1-based, contiguous
	Version    int64      `json:"version" bson:"version"`
	Activities []Activity `json:"activities" bson:"activities"`
}

// Itinerary represents the travel itinerary
type Itinerary struct {
	ItineraryID      string   `json:"itineraryid" bson:"itineraryid,omitempty"`
	UserID           string   `json:"user_id" bson:"user_id"`
	AllowedEditors   []string `json:"allowed_editors" bson:"allowed_editors"`
	Published        bool     `json:"published" bson:"published"`
	Location         string   `json:"location" bson:"location"`
	Description      string   `json:"description" bson:"description"`
	StartDate        string   `json:"start_date" bson:"start_date"`
	EndDate          string   `json:"end_date" bson:"end_date"`
	TravelCategories []string `json:"travel_categories,omitempty" bson:"travel_categories,omitempty"`
	Language         string   `json:"language,omitempty" bson:"language,omitempty"`
	Status           string   `json:"status" bson:"status"` // Draft/Confirmed
	ForkedFrom       *string  `json:"forked_from,omitempty" bson:"forked_from,omitempty"`
	Deleted          bool     `json:"-" bson:"deleted,omitempty"` // Internal use only
	// the day-by-day schedule
	Days []Day `json:"days" bson:"days"`
}

// PublicItinerary is the recommended-list shape with owner fields stripped.
type PublicItinerary struct {
	ItineraryID string `json:"itineraryid" bson:"itineraryid"`
	Published   bool   `json:"published" bson:"published"`
	Location    string `json:"location" bson:"location"`
	Description string `json:"description" bson:"description"`
	StartDate   string `json:"start_date" bson:"start_date"`
	EndDate     string `json:"end_date" bson:"end_date"`
	Days        []Day  `json:"days" bson:"days"`
}

// CanEdit reports whether userID may mutate this itinerary.
func (it *Itinerary) CanEdit(userID string) bool {
	if userID == "" {
		return false
	}
	if it.UserID == userID {
		return true
	}
	for _, id := range it.AllowedEditors {
		if id == userID {
			return true
		}
	}
	return false
}
