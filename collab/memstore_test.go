package collab

import (
	"context"
	"errors"
	"sync"

	"wayfare/models"
)

// memStore is an in-memory DayStore for tests.
type memStore struct {
	mu      sync.Mutex
	days    map[string]map[int]models.Day
	putErr  error
	getErr  error
	putSeen int
}

func newMemStore() *memStore {
	return &memStore{days: make(map[string]map[int]models.Day)}
}

func (s *memStore) seed(itineraryID string, day models.Day) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.days[itineraryID] == nil {
		s.days[itineraryID] = make(map[int]models.Day)
	}
	s.days[itineraryID][day.Day] = copyDay(day)
}

func (s *memStore) GetDay(_ context.Context, itineraryID string, dayNum int) (models.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return models.Day{}, s.getErr
	}
	d, ok := s.days[itineraryID][dayNum]
	if !ok {
		return models.Day{}, ErrDayNotFound
	}
	d = copyDay(d)
	SortByOrder(d.Activities)
	return d, nil
}

func (s *memStore) PutDay(_ context.Context, itineraryID string, day models.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	if _, ok := s.days[itineraryID][day.Day]; !ok {
		return ErrDayNotFound
	}
	s.days[itineraryID][day.Day] = copyDay(day)
	s.putSeen++
	return nil
}

func copyDay(d models.Day) models.Day {
	out := d
	out.Activities = append([]models.Activity(nil), d.Activities...)
	return out
}

// staticEditors allows a fixed set of user ids on every itinerary.
type staticEditors map[string]bool

func (e staticEditors) CanEdit(_ context.Context, _, userID string) (bool, error) {
	return e[userID], nil
}

var errStoreDown = errors.New("connection refused")

func act(id string, order int) models.Activity {
	return models.Activity{
		ActivityID:        id,
		Name:              "stop " + id,
		Location:          "somewhere",
		RecommendDuration: 60,
		Order:             order,
	}
}
