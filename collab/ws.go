package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"wayfare/middleware"
	"wayfare/models"
	"wayfare/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

const mutationTimeout = 10 * time.Second

// WebSocketHandler upgrades the connection and serves the collab protocol:
// join_room / reorder_event / insert_event / delete_event in,
// reorder_update / insert_update / delete_update out.
func WebSocketHandler(hub *Hub, gw *Gateway) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		token := r.URL.Query().Get("token")
		if token == "" {
			token = r.Header.Get("Authorization")
			if len(token) > 7 && token[:7] == "Bearer " {
				token = token[7:]
			}
		}
		claims, err := middleware.ValidateRawToken(token)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			ConnID: utils.GetUUID(),
			UserID: claims.UserID,
			done:   make(chan struct{}),
		}

		hub.register <- client
		go writePump(client)
		go readPump(client, hub, gw)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for {
		select {
		case msg := <-c.Send:
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func readPump(c *Client, hub *Hub, gw *Gateway) {
	defer func() {
		hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var in inboundEvent
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Println("invalid payload:", err)
			continue
		}
		if in.ItineraryID == "" {
			sendError(c, in.Action, "missing itineraryid", nil)
			continue
		}

		switch in.Action {
		case ActionJoinRoom:
			hub.Join(c, in.ItineraryID)
			sendEvent(c, outboundEvent{Action: ActionRoomJoined, ItineraryID: in.ItineraryID})

		case ActionReorder:
			ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
			_, err := gw.HandleReorder(ctx, c.UserID, c.ConnID, in.ItineraryID, in.Day, in.Proposed)
			cancel()
			if err != nil {
				replyError(c, in.Action, err)
			}

		case ActionInsert:
			if in.Activity == nil {
				sendError(c, in.Action, ErrInvalidActivity.Error(), nil)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
			_, _, err := gw.HandleInsert(ctx, c.UserID, c.ConnID, in.ItineraryID, in.Day, *in.Activity)
			cancel()
			if err != nil {
				replyError(c, in.Action, err)
			}

		case ActionDelete:
			ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
			_, err := gw.HandleDelete(ctx, c.UserID, c.ConnID, in.ItineraryID, in.Day, in.ActivityID)
			cancel()
			if err != nil {
				replyError(c, in.Action, err)
			}

		default:
			log.Println("unknown action:", in.Action)
		}
	}
}

// replyError maps a gateway error onto an error frame for the caller only.
// A stale-set rejection carries the authoritative day so the client can
// resynchronize in place.
func replyError(c *Client, action string, err error) {
	var stale *StaleSetError
	if errors.As(err, &stale) {
		current := stale.Current
		sendError(c, action, err.Error(), &current)
		return
	}
	sendError(c, action, err.Error(), nil)
}

func sendError(c *Client, action, msg string, current *models.Day) {
	sendEvent(c, outboundEvent{
		Action:  ActionError,
		Failed:  action,
		Error:   msg,
		Current: current,
	})
}

// sendEvent queues a caller-only frame. Send is never closed, so this cannot
// panic even if the hub drops the client mid-call; a full or dead client just
// misses the frame.
func sendEvent(c *Client, ev outboundEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	case <-c.done:
	default:
	}
}
