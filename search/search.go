package search

import (
	"context"
	"strings"

	"wayfare/db"
	"wayfare/models"
	"wayfare/rdx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const locationKeyPrefix = "searchidx:location:"

// Tokenize lowercases and splits a location string into index tokens.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '-' || r == '/'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// IndexItinerary updates the Redis location index for one itinerary event.
func IndexItinerary(ctx context.Context, event models.Index) error {
	if event.EntityType != "itinerary" {
		return nil
	}

	if event.Method == "DELETE" {
		// membership checks on lookup tolerate stale entries; drop lazily
		return nil
	}

	var it models.Itinerary
	err := db.ItineraryCollection.FindOne(ctx,
		bson.M{"itineraryid": event.EntityId},
		options.FindOne().SetProjection(bson.M{"location": 1, "itineraryid": 1}),
	).Decode(&it)
	if err != nil {
		return err
	}

	for _, token := range Tokenize(it.Location) {
		if err := rdx.RdxSAdd(locationKeyPrefix+token, it.ItineraryID); err != nil {
			return err
		}
	}
	return nil
}

// LookupLocation returns itinerary ids whose indexed location matches every
// token of the query.
func LookupLocation(query string) ([]string, error) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	for _, token := range tokens {
		ids, err := rdx.RdxSMembers(locationKeyPrefix + token)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			counts[id]++
		}
	}

	var out []string
	for id, n := range counts {
		if n == len(tokens) {
			out = append(out, id)
		}
	}
	return out, nil
}
