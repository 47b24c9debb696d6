package mq

import (
	"context"
	"encoding/json"
	"log"

	"wayfare/models"
	"wayfare/rdx"
	"wayfare/search"
)

const eventsChannel = "itinerary-events"

// Emit publishes an indexing event to Redis; the indexing worker picks it up
// out of band so request handlers never wait on index maintenance.
func Emit(ctx context.Context, eventName string, content models.Index) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, eventsChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s: %v", eventName, err)
		return
	}
}

// StartIndexingWorker consumes itinerary events and keeps the Redis search
// index current. Runs until the process exits.
func StartIndexingWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, eventsChannel)
	ch := sub.Channel()

	log.Println("[IndexingWorker] Listening for itinerary events...")

	for msg := range ch {
		var event models.Index
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[IndexingWorker] Failed to parse event: %v", err)
			continue
		}

		if err := search.IndexItinerary(ctx, event); err != nil {
			log.Printf("[IndexingWorker] Index error for %s: %v", event.EntityId, err)
		}
	}
}
