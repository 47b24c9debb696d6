package planner

import (
	"context"
	"fmt"
	"math/rand"

	"wayfare/models"
)

// Generator produces a candidate day-by-day itinerary for a location and
// duration. The real backend is an external AI service; it is consumed here as
// an opaque collaborator.
type Generator interface {
	GenerateItinerary(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

type GenerateRequest struct {
	Location         string
	TotalDays        int
	TravelCategories []string
	Language         string
}

type GenerateResult struct {
	Description string
	Days        []models.Day
}

// PlaceResolver enriches an activity name with coordinates and photo
// references. The real backend is an external places/maps API.
type PlaceResolver interface {
	ResolvePlace(ctx context.Context, query string) (PlaceDetails, error)
}

type PlaceDetails struct {
	Latitude  float64
	Longitude float64
	PhotoURLs []string
}

// --- Sample-backed implementations ---

var sampleActivities = []map[string]string{
	{"name": "🏛️ Old Town Walking Tour", "location": "Historic Center", "description": "Wander the lanes and squares of the old quarter."},
	{"name": "🖼️ City Art Museum", "location": "Museum District", "description": "Permanent collection plus rotating exhibitions."},
	{"name": "🍜 Street Food Market", "location": "Riverside", "description": "Local stalls, best visited hungry."},
	{"name": "🌅 Harbour Sunset Point", "location": "Waterfront", "description": "The classic photo spot at golden hour."},
	{"name": "⛰️ Hillside Viewpoint Hike", "location": "North Ridge", "description": "Short climb, long views over the city."},
	{"name": "🛍️ Craft & Souvenir Lane", "location": "Market Street", "description": "Handmade goods from local workshops."},
	{"name": "☕ Roastery Coffee Stop", "location": "Arts Quarter", "description": "Single-origin pour-overs and people watching."},
	{"name": "🏯 Temple Gardens", "location": "East Gate", "description": "Quiet gardens behind the main shrine."},
	{"name": "🚲 Riverside Cycle Loop", "location": "Green Belt", "description": "Flat, easy ride along the water."},
	{"name": "🎭 Evening Theatre Show", "location": "Grand Theatre", "description": "Book ahead for the good seats."},
}

// SampleGenerator deals deterministic itineraries from the sample pool.
// Stands in for the AI backend in development and tests.
type SampleGenerator struct{}

func (SampleGenerator) GenerateItinerary(_ context.Context, req GenerateRequest) (GenerateResult, error) {
	if req.TotalDays < 1 {
		return GenerateResult{}, fmt.Errorf("total days must be at least 1, got %d", req.TotalDays)
	}

	// seed on location so the same request replays the same plan
	rng := rand.New(rand.NewSource(int64(len(req.Location))*31 + int64(req.TotalDays)))
	perDay := 3

	days := make([]models.Day, 0, req.TotalDays)
	pick := rng.Perm(len(sampleActivities))
	next := 0
	for d := 1; d <= req.TotalDays; d++ {
		day := models.Day{Day: d, Activities: make([]models.Activity, 0, perDay)}
		for i := 0; i < perDay; i++ {
			src := sampleActivities[pick[next%len(pick)]]
			next++
			day.Activities = append(day.Activities, models.Activity{
				Name:              src["name"],
				Description:       src["description"],
				Location:          src["location"],
				RecommendDuration: 60 + rng.Intn(4)*30,
				Order:             i,
			})
		}
		days = append(days, day)
	}

	return GenerateResult{
		Description: fmt.Sprintf("A %d-day trip around %s.", req.TotalDays, req.Location),
		Days:        days,
	}, nil
}

// SampleResolver fabricates stable coordinates and photo URLs from the query.
type SampleResolver struct{}

func (SampleResolver) ResolvePlace(_ context.Context, query string) (PlaceDetails, error) {
	if query == "" {
		return PlaceDetails{}, fmt.Errorf("empty place query")
	}
	// hash the query into a plausible coordinate so repeated lookups agree
	var h int64
	for _, r := range query {
		h = h*131 + int64(r)
	}
	if h < 0 {
		h = -h
	}
	return PlaceDetails{
		Latitude:  float64(h%18000)/100.0 - 90.0,
		Longitude: float64((h/7)%36000)/100.0 - 180.0,
		PhotoURLs: []string{fmt.Sprintf("https://photos.example.com/%d.jpg", h%100000)},
	}, nil
}
