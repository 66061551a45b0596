package server

import (
	"encoding/json"

	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// WebSocket Hub
// -----------------------------------------------------------------------------

// runHub owns the client set. Registration, unregistration and publish
// fan-out all go through its channels so no handler touches a client's send
// queue concurrently.
func (s *ScreenerServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			latest := s.latestState
			s.stateMutex.Unlock()

			s.Logger.Info("Client registered: %s", client.conn.RemoteAddr())

			// New clients get the last publish event immediately so a
			// dashboard does not wait a full day for its first refresh cue
			if latest.Type != "INITIAL" {
				s.sendEvent(client, latest)
			}

		case client := <-s.unregister:
			s.stateMutex.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()

			s.Logger.Info("Client unregistered: %s", client.conn.RemoteAddr())

		case event := <-s.broadcast:
			s.stateMutex.Lock()
			for client := range s.clients {
				s.sendEventLocked(client, event)
			}
			s.stateMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------

func (s *ScreenerServer) sendEvent(client *Client, event models.MPublishEvent) {
	s.stateMutex.Lock()
	s.sendEventLocked(client, event)
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

// sendEventLocked pushes an event to one client, dropping the client when its
// send queue is full. Caller holds stateMutex.
func (s *ScreenerServer) sendEventLocked(client *Client, event models.MPublishEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.Logger.Error("Failed to marshal publish event: %v", err)
		return
	}

	select {
	case client.send <- payload:
	default:
		// Slow consumer, disconnect it
		delete(s.clients, client)
		close(client.send)
	}
}
