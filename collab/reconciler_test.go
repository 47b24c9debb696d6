package collab

import (
	"context"
	"errors"
	"sync"
	"testing"

	"wayfare/models"
)

func TestReconcileBasicReorder(t *testing.T) {
	store := newMemStore()
	store.seed("trip1", models.Day{
		Day:        1,
		Version:    3,
		Activities: []models.Activity{act("A", 0), act("B", 1), act("C", 2)},
	})
	rec := NewReconciler(store)

	day, err := rec.Reconcile(context.Background(), "trip1", 1, []string{"C", "A", "B"}, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if day.Version != 4 {
		t.Fatalf("expected version 4, got %d", day.Version)
	}

	want := []string{"C", "A", "B"}
	for i, a := range day.Activities {
		if a.ActivityID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], a.ActivityID)
		}
		if a.Order != i {
			t.Fatalf("activity %s: expected order %d, got %d", a.ActivityID, i, a.Order)
		}
	}

	// persisted state matches the returned one
	stored, err := store.GetDay(context.Background(), "trip1", 1)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if stored.Version != 4 || stored.Activities[0].ActivityID != "C" {
		t.Fatalf("persisted state does not reflect accepted reorder: %+v", stored)
	}
}

func TestReconcileStaleProposal(t *testing.T) {
	store := newMemStore()
	store.seed("trip1", models.Day{
		Day:        1,
		Version:    7,
		Activities: []models.Activity{act("A", 0), act("B", 1), act("C", 2)},
	})
	rec := NewReconciler(store)

	cases := [][]string{
		{"A", "B"},           // missing C
		{"A", "B", "X"},      // unknown id
		{"A", "A", "B", "C"}, // duplicate, wrong size
	}
	for _, proposed := range cases {
		_, err := rec.Reconcile(context.Background(), "trip1", 1, proposed, nil)
		var stale *StaleSetError
		if !errors.As(err, &stale) {
			t.Fatalf("proposal %v: expected StaleSetError, got %v", proposed, err)
		}
		if stale.Current.Version != 7 || len(stale.Current.Activities) != 3 {
			t.Fatalf("stale error should carry authoritative day, got %+v", stale.Current)
		}
	}

	// nothing changed, and nothing was written
	day, _ := store.GetDay(context.Background(), "trip1", 1)
	if day.Version != 7 {
		t.Fatalf("stale proposal must not mutate state, version=%d", day.Version)
	}
	if store.putSeen != 0 {
		t.Fatalf("stale proposals must not hit the store, saw %d writes", store.putSeen)
	}
}

func TestReconcileDayNotFound(t *testing.T) {
	rec := NewReconciler(newMemStore())
	_, err := rec.Reconcile(context.Background(), "missing", 1, []string{"A"}, nil)
	if !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("expected ErrDayNotFound, got %v", err)
	}
}

func TestReconcileStoreUnavailable(t *testing.T) {
	store := newMemStore()
	store.seed("trip1", models.Day{Day: 1, Activities: []models.Activity{act("A", 0)}})
	store.putErr = errStoreDown
	rec := NewReconciler(store)

	_, err := rec.Reconcile(context.Background(), "trip1", 1, []string{"A"}, nil)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestInsertThenDelete(t *testing.T) {
	store := newMemStore()
	store.seed("trip1", models.Day{Day: 2, Activities: []models.Activity{}})
	rec := NewReconciler(store)
	ctx := context.Background()

	_, d1, err := rec.ApplyInsert(ctx, "trip1", 2, models.Activity{Name: "D"}, nil)
	if err != nil {
		t.Fatalf("insert D: %v", err)
	}
	if d1.Order != 0 {
		t.Fatalf("first insert into empty day should get order 0, got %d", d1.Order)
	}
	if d1.ActivityID == "" {
		t.Fatal("insert must assign a stable activity id")
	}

	_, e1, err := rec.ApplyInsert(ctx, "trip1", 2, models.Activity{Name: "E"}, nil)
	if err != nil {
		t.Fatalf("insert E: %v", err)
	}
	if e1.Order != 1 {
		t.Fatalf("second insert should get order 1, got %d", e1.Order)
	}

	day, err := rec.ApplyDelete(ctx, "trip1", 2, d1.ActivityID, nil)
	if err != nil {
		t.Fatalf("delete D: %v", err)
	}
	if len(day.Activities) != 1 || day.Activities[0].ActivityID != e1.ActivityID {
		t.Fatalf("expected only E to remain, got %+v", day.Activities)
	}
	// gap at order 0 is permitted; E keeps order 1
	if day.Activities[0].Order != 1 {
		t.Fatalf("delete must not renumber, expected order 1, got %d", day.Activities[0].Order)
	}
	if day.Version != 3 {
		t.Fatalf("three accepted mutations should leave version 3, got %d", day.Version)
	}
}

func TestDeleteUnknownActivity(t *testing.T) {
	store := newMemStore()
	store.seed("trip1", models.Day{Day: 1, Activities: []models.Activity{act("A", 0)}})
	rec := NewReconciler(store)

	_, err := rec.ApplyDelete(context.Background(), "trip1", 1, "nope", nil)
	if !errors.Is(err, ErrActivityNotFound) {
		t.Fatalf("expected ErrActivityNotFound, got %v", err)
	}
}

func TestConcurrentReordersSerialize(t *testing.T) {
	store := newMemStore()
	store.seed("trip1", models.Day{
		Day:        1,
		Activities: []models.Activity{act("A", 0), act("B", 1), act("C", 2)},
	})
	rec := NewReconciler(store)

	proposals := [][]string{
		{"C", "A", "B"},
		{"B", "C", "A"},
		{"A", "C", "B"},
		{"C", "B", "A"},
	}

	var wg sync.WaitGroup
	accepted := 0
	var mu sync.Mutex
	for _, p := range proposals {
		wg.Add(1)
		go func(proposed []string) {
			defer wg.Done()
			if _, err := rec.Reconcile(context.Background(), "trip1", 1, proposed, nil); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()

	// every proposal is a valid permutation of the same id set, so all are
	// accepted in some serial order and the version counts exactly that
	day, err := store.GetDay(context.Background(), "trip1", 1)
	if err != nil {
		t.Fatalf("get day: %v", err)
	}
	if accepted != len(proposals) {
		t.Fatalf("expected %d accepted reorders, got %d", len(proposals), accepted)
	}
	if day.Version != int64(accepted) {
		t.Fatalf("version must increase by 1 per accepted call: accepted=%d version=%d", accepted, day.Version)
	}

	// permutation invariant: final orders are exactly 0..n-1
	ordersSeen := map[int]bool{}
	for _, a := range day.Activities {
		ordersSeen[a.Order] = true
	}
	for i := range day.Activities {
		if !ordersSeen[i] {
			t.Fatalf("order values are not a permutation of 0..n-1: %+v", day.Activities)
		}
	}
}
