package collab

import (
	"context"
	"fmt"
	"sort"

	"wayfare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DayStore is the slice of the itinerary document the ordering core reads and
// writes. GetDay returns activities sorted by order ascending.
type DayStore interface {
	GetDay(ctx context.Context, itineraryID string, day int) (models.Day, error)
	PutDay(ctx context.Context, itineraryID string, day models.Day) error
}

// EditorChecker answers whether a user may mutate an itinerary.
type EditorChecker interface {
	CanEdit(ctx context.Context, itineraryID, userID string) (bool, error)
}

// MongoStore keeps each day embedded in its itinerary document.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) GetDay(ctx context.Context, itineraryID string, dayNum int) (models.Day, error) {
	var it models.Itinerary
	err := s.coll.FindOne(ctx, bson.M{
		"itineraryid": itineraryID,
		"deleted":     bson.M{"$ne": true},
	}).Decode(&it)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Day{}, ErrDayNotFound
		}
		return models.Day{}, fmt.Errorf("get day: %w", err)
	}

	for _, d := range it.Days {
		if d.Day == dayNum {
			SortByOrder(d.Activities)
			return d, nil
		}
	}
	return models.Day{}, ErrDayNotFound
}

func (s *MongoStore) PutDay(ctx context.Context, itineraryID string, day models.Day) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"itineraryid": itineraryID, "days.day": day.Day},
		bson.M{"$set": bson.M{"days.$": day}},
	)
	if err != nil {
		return fmt.Errorf("put day: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrDayNotFound
	}
	return nil
}

func (s *MongoStore) CanEdit(ctx context.Context, itineraryID, userID string) (bool, error) {
	var it models.Itinerary
	err := s.coll.FindOne(ctx,
		bson.M{"itineraryid": itineraryID, "deleted": bson.M{"$ne": true}},
		options.FindOne().SetProjection(bson.M{"user_id": 1, "allowed_editors": 1}),
	).Decode(&it)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("can edit: %w", err)
	}
	return it.CanEdit(userID), nil
}

// SortByOrder sorts activities by their order field ascending.
func SortByOrder(activities []models.Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Order < activities[j].Order
	})
}
