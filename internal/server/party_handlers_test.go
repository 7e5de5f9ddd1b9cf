package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"partyforge/internal/models"

	"github.com/gofiber/fiber/v2"
)

// partyAppAs builds a fiber app with the party routes authenticated as userID.
// Registration order mirrors the real router: literal segments before :id.
func partyAppAs(s *Server, userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/parties", s.CreateParty)
	app.Get("/parties/types", s.GetPartyTypes)
	app.Get("/parties/search", s.SearchParties)
	app.Get("/parties/me", s.GetMyParty)
	app.Get("/parties", s.GetParties)
	app.Post("/parties/:id/join", s.JoinParty)
	app.Post("/parties/:id/leave", s.LeaveParty)
	app.Get("/parties/:id/members", s.GetPartyMembers)
	app.Put("/parties/:id", s.UpdateParty)
	app.Delete("/parties/:id", s.DisbandParty)
	app.Get("/parties/:id", s.GetParty)
	return app
}

func decodeParty(t *testing.T, resp *http.Response) models.Party {
	t.Helper()
	var party models.Party
	if err := json.NewDecoder(resp.Body).Decode(&party); err != nil {
		t.Fatalf("decode party: %v", err)
	}
	return party
}

func TestPartyLifecycle(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := newHandlerTestServer(t, db)

	leader := createHandlerTestUser(t, db, "party_leader")
	member := createHandlerTestUser(t, db, "party_member")
	third := createHandlerTestUser(t, db, "party_third")
	late := createHandlerTestUser(t, db, "party_late")

	asLeader := partyAppAs(s, leader.ID)
	asMember := partyAppAs(s, member.ID)
	asThird := partyAppAs(s, third.ID)
	asLate := partyAppAs(s, late.ID)

	// Leader creates a party and occupies the first slot.
	resp := doJSON(t, asLeader, http.MethodPost, "/parties", map[string]interface{}{
		"name":        "Deadmines Run",
		"description": "fresh 60s welcome",
		"type":        "dungeon",
		"capacity":    3,
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create party: expected 201, got %d", resp.StatusCode)
	}
	party := decodeParty(t, resp)
	if party.Size != 1 {
		t.Fatalf("expected size 1 after create, got %d", party.Size)
	}
	if party.LeaderID != leader.ID {
		t.Fatalf("expected leader %d, got %d", leader.ID, party.LeaderID)
	}

	// The leader cannot create a second party while leading one.
	resp = doJSON(t, asLeader, http.MethodPost, "/parties", map[string]interface{}{
		"name":     "Second Party",
		"type":     "raid",
		"capacity": 10,
	})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("second create: expected 400, got %d", resp.StatusCode)
	}

	// Two members join, filling the party.
	resp = doJSON(t, asMember, http.MethodPost, fmt.Sprintf("/parties/%d/join", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("member join: expected 200, got %d", resp.StatusCode)
	}
	resp = doJSON(t, asThird, http.MethodPost, fmt.Sprintf("/parties/%d/join", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("third join: expected 200, got %d", resp.StatusCode)
	}
	joined := decodeParty(t, resp)
	if joined.Size != 3 {
		t.Fatalf("expected size 3, got %d", joined.Size)
	}

	// A fourth joiner bounces off the capacity limit.
	resp = doJSON(t, asLate, http.MethodPost, fmt.Sprintf("/parties/%d/join", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("join full party: expected 400, got %d", resp.StatusCode)
	}

	// Membership is reflected in /parties/me.
	resp = doJSON(t, asMember, http.MethodGet, "/parties/me", nil)
	defer func() { _ = resp.Body.Close() }()
	var mine map[string]*models.Party
	if err := json.NewDecoder(resp.Body).Decode(&mine); err != nil {
		t.Fatalf("decode my party: %v", err)
	}
	if mine["party"] == nil || mine["party"].ID != party.ID {
		t.Fatalf("expected member to be in party %d, got %+v", party.ID, mine["party"])
	}

	// A member leaving frees a slot; the late joiner gets in.
	resp = doJSON(t, asMember, http.MethodPost, fmt.Sprintf("/parties/%d/leave", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leave: expected 200, got %d", resp.StatusCode)
	}
	left := decodeParty(t, resp)
	if left.Size != 2 {
		t.Fatalf("expected size 2 after leave, got %d", left.Size)
	}

	resp = doJSON(t, asLate, http.MethodPost, fmt.Sprintf("/parties/%d/join", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("late join after slot freed: expected 200, got %d", resp.StatusCode)
	}

	// The leader cannot leave, only disband.
	resp = doJSON(t, asLeader, http.MethodPost, fmt.Sprintf("/parties/%d/leave", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("leader leave: expected 403, got %d", resp.StatusCode)
	}

	// Only the leader may update, and capacity can never undercut size.
	resp = doJSON(t, asThird, http.MethodPut, fmt.Sprintf("/parties/%d", party.ID),
		map[string]interface{}{"name": "Hijacked"})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-leader update: expected 403, got %d", resp.StatusCode)
	}

	resp = doJSON(t, asLeader, http.MethodPut, fmt.Sprintf("/parties/%d", party.ID),
		map[string]interface{}{"capacity": 2})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("capacity below size: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, asLeader, http.MethodPut, fmt.Sprintf("/parties/%d", party.ID),
		map[string]interface{}{"name": "Deadmines Speedrun", "capacity": 5})
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leader update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeParty(t, resp)
	if updated.Name != "Deadmines Speedrun" || updated.Capacity != 5 {
		t.Fatalf("update not applied: %+v", updated)
	}

	// Members endpoint lists everyone, leader included.
	resp = doJSON(t, asLeader, http.MethodGet, fmt.Sprintf("/parties/%d/members", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	var members []models.User
	if err := json.NewDecoder(resp.Body).Decode(&members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(members))
	}

	// Only the leader can disband; doing so releases every member.
	resp = doJSON(t, asThird, http.MethodDelete, fmt.Sprintf("/parties/%d", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-leader disband: expected 403, got %d", resp.StatusCode)
	}

	resp = doJSON(t, asLeader, http.MethodDelete, fmt.Sprintf("/parties/%d", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("disband: expected 200, got %d", resp.StatusCode)
	}

	var stranded int64
	db.Model(&models.User{}).Where("current_party_id IS NOT NULL").Count(&stranded)
	if stranded != 0 {
		t.Fatalf("expected no users pointing at the disbanded party, got %d", stranded)
	}

	resp = doJSON(t, asLeader, http.MethodGet, fmt.Sprintf("/parties/%d", party.ID), nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get disbanded party: expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateParty_Validation(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := newHandlerTestServer(t, db)

	user := createHandlerTestUser(t, db, "party_validator")
	app := partyAppAs(s, user.ID)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"blank name", map[string]interface{}{"name": "", "type": "raid", "capacity": 10}},
		{"unknown type", map[string]interface{}{"name": "Racers", "type": "speedrun", "capacity": 4}},
		{"zero capacity", map[string]interface{}{"name": "Empty", "type": "raid", "capacity": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/parties", tt.body)
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestGetParties_BrowseAndSearch(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := newHandlerTestServer(t, db)

	u1 := createHandlerTestUser(t, db, "browse_one")
	u2 := createHandlerTestUser(t, db, "browse_two")

	resp := doJSON(t, partyAppAs(s, u1.ID), http.MethodPost, "/parties", map[string]interface{}{
		"name": "Karazhan Cleanup", "type": "raid", "capacity": 10,
	})
	defer func() { _ = resp.Body.Close() }()
	resp = doJSON(t, partyAppAs(s, u2.ID), http.MethodPost, "/parties", map[string]interface{}{
		"name": "Arena Grind", "type": "pvp", "capacity": 3,
	})
	defer func() { _ = resp.Body.Close() }()

	app := partyAppAs(s, u1.ID)

	resp = doJSON(t, app, http.MethodGet, "/parties", nil)
	defer func() { _ = resp.Body.Close() }()
	var all []models.Party
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		t.Fatalf("decode parties: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 parties, got %d", len(all))
	}

	resp = doJSON(t, app, http.MethodGet, "/parties?type=raid", nil)
	defer func() { _ = resp.Body.Close() }()
	var raids []models.Party
	if err := json.NewDecoder(resp.Body).Decode(&raids); err != nil {
		t.Fatalf("decode raids: %v", err)
	}
	if len(raids) != 1 || raids[0].Name != "Karazhan Cleanup" {
		t.Fatalf("type filter wrong: %+v", raids)
	}

	resp = doJSON(t, app, http.MethodGet, "/parties?type=bogus", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown type filter: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/parties/search?q=KARAZHAN", nil)
	defer func() { _ = resp.Body.Close() }()
	var found []models.Party
	if err := json.NewDecoder(resp.Body).Decode(&found); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 search hit, got %d", len(found))
	}

	// Blank query returns no results rather than everything.
	resp = doJSON(t, app, http.MethodGet, "/parties/search", nil)
	defer func() { _ = resp.Body.Close() }()
	var empty []models.Party
	if err := json.NewDecoder(resp.Body).Decode(&empty); err != nil {
		t.Fatalf("decode empty search: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no hits for blank query, got %d", len(empty))
	}
}

func TestGetPartyTypes(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := newHandlerTestServer(t, db)

	user := createHandlerTestUser(t, db, "type_lister")
	app := partyAppAs(s, user.ID)

	resp := doJSON(t, app, http.MethodGet, "/parties/types", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var types []models.PartyType
	if err := json.NewDecoder(resp.Body).Decode(&types); err != nil {
		t.Fatalf("decode types: %v", err)
	}
	if len(types) != 5 {
		t.Fatalf("expected the 5 default types, got %d", len(types))
	}
	seen := make(map[models.PartyType]bool, len(types))
	for _, pt := range types {
		seen[pt] = true
	}
	if !seen[models.PartyTypeRaid] || !seen[models.PartyTypeDungeon] {
		t.Fatalf("default types missing from %v", types)
	}
}

func TestGetMyParty_NoParty(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := newHandlerTestServer(t, db)

	user := createHandlerTestUser(t, db, "solo_player")
	app := partyAppAs(s, user.ID)

	resp := doJSON(t, app, http.MethodGet, "/parties/me", nil)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]*models.Party
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["party"] != nil {
		t.Fatalf("expected nil party, got %+v", body["party"])
	}
}
