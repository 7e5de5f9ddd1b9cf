package server

import (
	"context"
	"encoding/json"
	"log"

	"partyforge/internal/models"
	"partyforge/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestSent     = "friend_request_sent"
	EventFriendStatusChanged   = "friend_status_changed"
	EventFriendRemoved         = "friend_removed"
	EventPartyMemberJoined     = "party_member_joined"
	EventPartyMemberLeft       = "party_member_left"
	EventPartyUpdated          = "party_updated"
	EventPartyDisbanded        = "party_disbanded"
)

func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
	}
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()
}

// publishPartyEvent fans an event out to every current member of the party.
// Delivery is best effort and never part of the mutation's transaction.
func (s *Server) publishPartyEvent(ctx context.Context, partyID uint, eventType string, payload map[string]interface{}) {
	members, err := s.partyRepo.ListMembers(ctx, partyID)
	if err != nil {
		log.Printf("failed to list party %d members for %s event: %v", partyID, eventType, err)
		return
	}
	for _, m := range members {
		s.publishUserEvent(m.ID, eventType, payload)
	}
}

func userSummary(user models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":        user.ID,
		"username":  user.Username,
		"gamer_tag": user.GamerTag,
	}
}
