package collab

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wayfare/models"
	"wayfare/utils"
)

type dayKey struct {
	itinerary string
	day       int
}

// Reconciler turns proposed mutations of one day into a consistent persisted
// state. Mutations for the same (itinerary, day) pair are serialized by a
// per-day mutex held only for the duration of a single call; different days
// proceed independently. Policy is last-accepted-write-wins: whichever call
// takes the lock first is applied, and a concurrent call validated against a
// now-stale id set is rejected.
type Reconciler struct {
	store DayStore

	mu    sync.Mutex
	locks map[dayKey]*sync.Mutex
}

func NewReconciler(store DayStore) *Reconciler {
	return &Reconciler{
		store: store,
		locks: make(map[dayKey]*sync.Mutex),
	}
}

func (r *Reconciler) lockDay(itineraryID string, dayNum int) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := dayKey{itinerary: itineraryID, day: dayNum}
	l, ok := r.locks[k]
	if !ok {
		l = &sync.Mutex{}
		r.locks[k] = l
	}
	return l
}

func (r *Reconciler) loadDay(ctx context.Context, itineraryID string, dayNum int) (models.Day, error) {
	day, err := r.store.GetDay(ctx, itineraryID, dayNum)
	if err != nil {
		if errors.Is(err, ErrDayNotFound) {
			return models.Day{}, err
		}
		return models.Day{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return day, nil
}

func (r *Reconciler) persist(ctx context.Context, itineraryID string, day models.Day) error {
	if err := r.store.PutDay(ctx, itineraryID, day); err != nil {
		if errors.Is(err, ErrDayNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Reconcile applies a client's proposed order for one day. proposed must be a
// permutation of the stored activity ids; otherwise a *StaleSetError carrying
// the authoritative day is returned and nothing changes. On acceptance, order
// values are rewritten 0..n-1 by proposal position, the day version is
// incremented, the day is persisted, and accepted (if non-nil) runs before the
// day lock is released so broadcasts observe acceptance order.
func (r *Reconciler) Reconcile(ctx context.Context, itineraryID string, dayNum int, proposed []string, accepted func(models.Day)) (models.Day, error) {
	l := r.lockDay(itineraryID, dayNum)
	l.Lock()
	defer l.Unlock()

	day, err := r.loadDay(ctx, itineraryID, dayNum)
	if err != nil {
		return models.Day{}, err
	}

	stored := make(map[string]models.Activity, len(day.Activities))
	for _, a := range day.Activities {
		stored[a.ActivityID] = a
	}
	if len(proposed) != len(stored) {
		return models.Day{}, &StaleSetError{Current: day}
	}

	next := make([]models.Activity, 0, len(proposed))
	seen := make(map[string]bool, len(proposed))
	for i, id := range proposed {
		a, ok := stored[id]
		if !ok || seen[id] {
			return models.Day{}, &StaleSetError{Current: day}
		}
		seen[id] = true
		a.Order = i
		next = append(next, a)
	}

	day.Activities = next
	day.Version++

	if err := r.persist(ctx, itineraryID, day); err != nil {
		return models.Day{}, err
	}
	if accepted != nil {
		accepted(day)
	}
	return day, nil
}

// ApplyInsert appends a new activity to the day with order max(existing)+1,
// or 0 when the day is empty. The activity id is assigned here if the caller
// did not provide one.
func (r *Reconciler) ApplyInsert(ctx context.Context, itineraryID string, dayNum int, activity models.Activity, accepted func(models.Day, models.Activity)) (models.Day, models.Activity, error) {
	l := r.lockDay(itineraryID, dayNum)
	l.Lock()
	defer l.Unlock()

	day, err := r.loadDay(ctx, itineraryID, dayNum)
	if err != nil {
		return models.Day{}, models.Activity{}, err
	}

	if activity.ActivityID == "" {
		activity.ActivityID = utils.GetUUID()
	}
	activity.Order = 0
	for _, a := range day.Activities {
		if a.Order >= activity.Order {
			activity.Order = a.Order + 1
		}
	}

	day.Activities = append(day.Activities, activity)
	day.Version++

	if err := r.persist(ctx, itineraryID, day); err != nil {
		return models.Day{}, models.Activity{}, err
	}
	if accepted != nil {
		accepted(day, activity)
	}
	return day, activity, nil
}

// ApplyDelete removes the activity from the day. Remaining order values are
// not renumbered; gaps are fine since only relative order matters on read.
func (r *Reconciler) ApplyDelete(ctx context.Context, itineraryID string, dayNum int, activityID string, accepted func(models.Day)) (models.Day, error) {
	l := r.lockDay(itineraryID, dayNum)
	l.Lock()
	defer l.Unlock()

	day, err := r.loadDay(ctx, itineraryID, dayNum)
	if err != nil {
		return models.Day{}, err
	}

	idx := -1
	for i, a := range day.Activities {
		if a.ActivityID == activityID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Day{}, ErrActivityNotFound
	}

	day.Activities = append(day.Activities[:idx], day.Activities[idx+1:]...)
	day.Version++

	if err := r.persist(ctx, itineraryID, day); err != nil {
		return models.Day{}, err
	}
	if accepted != nil {
		accepted(day)
	}
	return day, nil
}
