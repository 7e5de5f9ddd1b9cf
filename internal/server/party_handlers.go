package server

import (
	"partyforge/internal/models"
	"partyforge/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateParty handles POST /api/parties
// @Summary Create a party
// @Description Creates a party led by the caller. The leader occupies the first slot.
// @Tags parties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,description=string,type=string,capacity=int} true "Party fields"
// @Success 201 {object} models.Party
// @Failure 400 {object} models.ErrorResponse
// @Router /parties [post]
func (s *Server) CreateParty(c *fiber.Ctx) error {
	var req struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Type        models.PartyType `json:"type"`
		Capacity    int              `json:"capacity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	party, err := s.partyService.Create(c.Context(), callerID(c), service.CreatePartyInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(party)
}

// JoinParty handles POST /api/parties/:id/join
// @Summary Join a party
// @Tags parties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Party ID"
// @Success 200 {object} models.Party
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /parties/{id}/join [post]
func (s *Server) JoinParty(c *fiber.Ctx) error {
	userID := callerID(c)
	partyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	party, err := s.partyService.Join(c.Context(), userID, partyID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishPartyEvent(c.Context(), party.ID, EventPartyMemberJoined, map[string]interface{}{
		"party_id": party.ID,
		"user_id":  userID,
		"size":     party.Size,
	})

	return c.JSON(party)
}

// LeaveParty handles POST /api/parties/:id/leave
// @Summary Leave a party
// @Description The leader cannot leave; they must disband instead.
// @Tags parties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Party ID"
// @Success 200 {object} models.Party
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /parties/{id}/leave [post]
func (s *Server) LeaveParty(c *fiber.Ctx) error {
	userID := callerID(c)
	partyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	party, err := s.partyService.Leave(c.Context(), userID, partyID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishPartyEvent(c.Context(), party.ID, EventPartyMemberLeft, map[string]interface{}{
		"party_id": party.ID,
		"user_id":  userID,
		"size":     party.Size,
	})

	return c.JSON(party)
}

// UpdateParty handles PUT /api/parties/:id
// @Summary Update a party
// @Description Leader-only. Capacity can never drop below the current size.
// @Tags parties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Party ID"
// @Param request body models.PartyUpdate true "Fields to update"
// @Success 200 {object} models.Party
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /parties/{id} [put]
func (s *Server) UpdateParty(c *fiber.Ctx) error {
	partyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.PartyUpdate
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	party, err := s.partyService.Update(c.Context(), callerID(c), partyID, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishPartyEvent(c.Context(), party.ID, EventPartyUpdated, map[string]interface{}{
		"party_id": party.ID,
	})

	return c.JSON(party)
}

// DisbandParty handles DELETE /api/parties/:id
// @Summary Disband a party
// @Description Leader-only. Releases every member before removing the party.
// @Tags parties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Party ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /parties/{id} [delete]
func (s *Server) DisbandParty(c *fiber.Ctx) error {
	partyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Snapshot members before the delete so they can still be notified.
	members, membersErr := s.partyService.ListMembers(c.Context(), partyID)

	if err := s.partyService.Disband(c.Context(), callerID(c), partyID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	if membersErr == nil {
		for _, m := range members {
			s.publishUserEvent(m.ID, EventPartyDisbanded, map[string]interface{}{
				"party_id": partyID,
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Party disbanded",
	})
}

// GetParty handles GET /api/parties/:id
// @Summary Get a party
// @Tags parties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Party ID"
// @Success 200 {object} models.Party
// @Failure 404 {object} models.ErrorResponse
// @Router /parties/{id} [get]
func (s *Server) GetParty(c *fiber.Ctx) error {
	partyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	party, err := s.partyService.GetByID(c.Context(), partyID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(party)
}

// GetMyParty handles GET /api/parties/me
// @Summary Get the caller's current party
// @Tags parties
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Party
// @Router /parties/me [get]
func (s *Server) GetMyParty(c *fiber.Ctx) error {
	party, err := s.partyService.GetByUser(c.Context(), callerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if party == nil {
		return c.JSON(fiber.Map{
			"party": nil,
		})
	}
	return c.JSON(fiber.Map{
		"party": party,
	})
}

// GetPartyMembers handles GET /api/parties/:id/members
// @Summary List a party's members
// @Tags parties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Party ID"
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /parties/{id}/members [get]
func (s *Server) GetPartyMembers(c *fiber.Ctx) error {
	partyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	members, err := s.partyService.ListMembers(c.Context(), partyID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(members)
}

// GetParties handles GET /api/parties
// @Summary Browse parties
// @Tags parties
// @Produce json
// @Param type query string false "Filter by activity type"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Party
// @Router /parties [get]
func (s *Server) GetParties(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	if t := c.Query("type"); t != "" {
		parties, err := s.partyService.ListByType(c.Context(), models.PartyType(t), p.Limit, p.Offset)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		return c.JSON(parties)
	}

	parties, err := s.partyService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(parties)
}

// SearchParties handles GET /api/parties/search
// @Summary Search parties by name
// @Tags parties
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} models.Party
// @Router /parties/search [get]
func (s *Server) SearchParties(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	parties, err := s.partyService.SearchByName(c.Context(), c.Query("q"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(parties)
}

// GetPartyTypes handles GET /api/parties/types
// @Summary List the configured activity types
// @Tags parties
// @Produce json
// @Success 200 {array} string
// @Router /parties/types [get]
func (s *Server) GetPartyTypes(c *fiber.Ctx) error {
	return c.JSON(s.partyService.Types())
}
