package server

import (
	"time"

	"partyforge/internal/models"
	"partyforge/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/friends/requests/:userId
// @Summary Send a friend request
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Receiver user ID"
// @Success 201 {object} models.Friendship
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /friends/requests/{userId} [post]
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	userID := callerID(c)
	targetUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.SendRequest(c.Context(), userID, targetUserID)
	if err != nil {
		observability.FriendRequestEvents.WithLabelValues("send", "rejected").Inc()
		return models.RespondWithAppError(c, err)
	}
	observability.FriendRequestEvents.WithLabelValues("send", "success").Inc()

	// Notify both users so UI updates immediately.
	s.publishUserEvent(friendship.AddresseeID, EventFriendRequestReceived, map[string]interface{}{
		"request_id": friendship.ID,
		"from_user":  userSummary(friendship.Requester),
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	s.publishUserEvent(friendship.RequesterID, EventFriendRequestSent, map[string]interface{}{
		"request_id": friendship.ID,
		"to_user":    userSummary(friendship.Addressee),
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.Status(fiber.StatusCreated).JSON(friendship)
}

// RespondToFriendRequest handles PUT /api/friends/requests/:userId
// @Summary Respond to a friend request or change a friendship tier
// @Description Sets the friendship with the given user to the requested status. Only the receiver of the original request may do this.
// @Tags friends
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Param request body object{status=string} true "New status: friends, good_friends or best_friends"
// @Success 200 {object} models.Friendship
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /friends/requests/{userId} [put]
func (s *Server) RespondToFriendRequest(c *fiber.Ctx) error {
	userID := callerID(c)
	otherUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		Status models.FriendshipStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	friendship, err := s.friendService.RespondToRequest(c.Context(), userID, otherUserID, req.Status)
	if err != nil {
		observability.FriendRequestEvents.WithLabelValues("respond", "rejected").Inc()
		return models.RespondWithAppError(c, err)
	}
	observability.FriendRequestEvents.WithLabelValues("respond", "success").Inc()

	// The requester learns their request was accepted (or the tier changed).
	s.publishUserEvent(friendship.RequesterID, EventFriendStatusChanged, map[string]interface{}{
		"friendship_id": friendship.ID,
		"status":        friendship.Status,
		"by_user":       userSummary(friendship.Addressee),
	})

	return c.JSON(friendship)
}

// RemoveFriend handles DELETE /api/friends/:userId
// @Summary Remove a friendship or withdraw/decline a request
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /friends/{userId} [delete]
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	userID := callerID(c)
	otherUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.friendService.Remove(c.Context(), userID, otherUserID); err != nil {
		observability.FriendRequestEvents.WithLabelValues("remove", "rejected").Inc()
		return models.RespondWithAppError(c, err)
	}
	observability.FriendRequestEvents.WithLabelValues("remove", "success").Inc()

	s.publishUserEvent(otherUserID, EventFriendRemoved, map[string]interface{}{
		"user_id": userID,
	})

	return c.JSON(fiber.Map{
		"message": "Friendship removed",
	})
}

// GetFriends handles GET /api/friends
// @Summary List friends
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /friends [get]
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.ListFriends(c.Context(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(friends)
}

// GetFriendshipEdges handles GET /api/friends/edges
// @Summary List every friendship edge touching the caller
// @Description Edges the caller initiated come first, then edges where they are the addressee, each ordered by creation time.
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Friendship
// @Router /friends/edges [get]
func (s *Server) GetFriendshipEdges(c *fiber.Ctx) error {
	edges, err := s.friendService.ListForUser(c.Context(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(edges)
}

// GetPendingRequests handles GET /api/friends/requests
// @Summary List pending incoming friend requests
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Friendship
// @Router /friends/requests [get]
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListPendingIncoming(c.Context(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(requests)
}

// GetSentRequests handles GET /api/friends/requests/sent
// @Summary List pending friend requests the caller has sent
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Friendship
// @Router /friends/requests/sent [get]
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListPendingSent(c.Context(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(requests)
}

// GetFriendshipStatus handles GET /api/friends/status/:userId
// @Summary Get the friendship status with another user
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} object{status=string,friendship=models.Friendship}
// @Router /friends/status/{userId} [get]
func (s *Server) GetFriendshipStatus(c *fiber.Ctx) error {
	userID := callerID(c)
	otherUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.GetBetweenUsers(c.Context(), userID, otherUserID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	status := "none"
	if friendship != nil {
		if friendship.Status == models.FriendshipStatusPending {
			if friendship.RequesterID == userID {
				status = "pending_sent"
			} else {
				status = "pending_received"
			}
		} else {
			status = string(friendship.Status)
		}
	}

	return c.JSON(fiber.Map{
		"status":     status,
		"friendship": friendship,
	})
}
