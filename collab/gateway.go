package collab

import (
	"context"
	"encoding/json"
	"log"

	"wayfare/models"
)

// Gateway is the single entry point for insert/delete/reorder mutations. It
// resolves authorization, validates input shape, delegates to the reconciler,
// and fans the accepted change out to the room. Persistence always happens
// before broadcast, so no client can observe non-durable state.
type Gateway struct {
	rec     *Reconciler
	hub     *Hub
	editors EditorChecker
}

func NewGateway(rec *Reconciler, hub *Hub, editors EditorChecker) *Gateway {
	return &Gateway{rec: rec, hub: hub, editors: editors}
}

func (g *Gateway) authorize(ctx context.Context, actorID, itineraryID string) error {
	if actorID == "" {
		return ErrUnauthorized
	}
	ok, err := g.editors.CanEdit(ctx, itineraryID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

func (g *Gateway) publish(itineraryID, originConnID string, ev outboundEvent) {
	ev.ItineraryID = itineraryID
	data, err := json.Marshal(ev)
	if err != nil {
		log.Println("publish marshal:", err)
		return
	}
	g.hub.Publish(itineraryID, originConnID, data)
}

// HandleReorder applies a proposed full order for one day.
func (g *Gateway) HandleReorder(ctx context.Context, actorID, connID, itineraryID string, dayNum int, proposed []string) (models.Day, error) {
	if err := g.authorize(ctx, actorID, itineraryID); err != nil {
		return models.Day{}, err
	}
	if len(proposed) == 0 {
		return models.Day{}, ErrInvalidProposal
	}
	seen := make(map[string]bool, len(proposed))
	for _, id := range proposed {
		if id == "" || seen[id] {
			return models.Day{}, ErrInvalidProposal
		}
		seen[id] = true
	}

	return g.rec.Reconcile(ctx, itineraryID, dayNum, proposed, func(d models.Day) {
		g.publish(itineraryID, connID, outboundEvent{
			Action:     ActionReorderUpdate,
			Day:        dayNum,
			Version:    d.Version,
			Activities: d.Activities,
		})
	})
}

// HandleInsert appends a new activity to a day.
func (g *Gateway) HandleInsert(ctx context.Context, actorID, connID, itineraryID string, dayNum int, activity models.Activity) (models.Day, models.Activity, error) {
	if err := g.authorize(ctx, actorID, itineraryID); err != nil {
		return models.Day{}, models.Activity{}, err
	}
	if activity.Name == "" || activity.RecommendDuration < 0 {
		return models.Day{}, models.Activity{}, ErrInvalidActivity
	}
	if activity.Latitude < -90 || activity.Latitude > 90 ||
		activity.Longitude < -180 || activity.Longitude > 180 {
		return models.Day{}, models.Activity{}, ErrInvalidActivity
	}

	return g.rec.ApplyInsert(ctx, itineraryID, dayNum, activity, func(d models.Day, a models.Activity) {
		g.publish(itineraryID, connID, outboundEvent{
			Action:   ActionInsertUpdate,
			Day:      dayNum,
			Version:  d.Version,
			Activity: &a,
		})
	})
}

// HandleDelete removes an activity from a day.
func (g *Gateway) HandleDelete(ctx context.Context, actorID, connID, itineraryID string, dayNum int, activityID string) (models.Day, error) {
	if err := g.authorize(ctx, actorID, itineraryID); err != nil {
		return models.Day{}, err
	}
	if activityID == "" {
		return models.Day{}, ErrActivityNotFound
	}

	return g.rec.ApplyDelete(ctx, itineraryID, dayNum, activityID, func(d models.Day) {
		g.publish(itineraryID, connID, outboundEvent{
			Action:     ActionDeleteUpdate,
			Day:        dayNum,
			Version:    d.Version,
			ActivityID: activityID,
		})
	})
}
