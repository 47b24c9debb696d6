package collab

import "wayfare/models"

// Inbound actions (client -> server).
const (
	ActionJoinRoom = "join_room"
	ActionReorder  = "reorder_event"
	ActionInsert   = "insert_event"
	ActionDelete   = "delete_event"
)

// Outbound actions (server -> room members, or error frames to the caller only).
const (
	ActionRoomJoined    = "room_joined"
	ActionReorderUpdate = "reorder_update"
	ActionInsertUpdate  = "insert_update"
	ActionDeleteUpdate  = "delete_update"
	ActionError         = "error"
)

// inboundEvent is what clients send us over the websocket.
type inboundEvent struct {
	Action      string           `json:"action"`
	ItineraryID string           `json:"itineraryid"`
	Day         int              `json:"day,omitempty"`
	Proposed    []string         `json:"proposed,omitempty"` // activity ids, reorder only
	Activity    *models.Activity `json:"activity,omitempty"` // insert only
	ActivityID  string           `json:"activityid,omitempty"`
}

// outboundEvent is what we deliver to room members.
type outboundEvent struct {
	Action      string            `json:"action"`
	ItineraryID string            `json:"itineraryid,omitempty"`
	Day         int               `json:"day,omitempty"`
	Version     int64             `json:"version,omitempty"`
	Activities  []models.Activity `json:"activities,omitempty"`
	Activity    *models.Activity  `json:"activity,omitempty"`
	ActivityID  string            `json:"activityid,omitempty"`
	Failed      string            `json:"failed_action,omitempty"`
	Error       string            `json:"error,omitempty"`
	Current     *models.Day       `json:"current,omitempty"` // stale-set resync payload
}
