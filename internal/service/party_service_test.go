package service

import (
	"context"
	"strings"
	"testing"

	"partyforge/internal/models"
	"partyforge/internal/validation"
)

type partyRepoStub struct {
	createFn       func(context.Context, uint, *models.Party) (*models.Party, error)
	joinFn         func(context.Context, uint, uint) (*models.Party, error)
	leaveFn        func(context.Context, uint, uint) (*models.Party, error)
	updateFn       func(context.Context, uint, uint, models.PartyUpdate) (*models.Party, error)
	deleteFn       func(context.Context, uint, uint) error
	getByIDFn      func(context.Context, uint) (*models.Party, error)
	getByLeaderFn  func(context.Context, uint) (*models.Party, error)
	getByUserFn    func(context.Context, uint) (*models.Party, error)
	listMembersFn  func(context.Context, uint) ([]models.User, error)
	listFn         func(context.Context, int, int) ([]models.Party, error)
	listByTypeFn   func(context.Context, models.PartyType, int, int) ([]models.Party, error)
	searchByNameFn func(context.Context, string, int, int) ([]models.Party, error)
}

func (s *partyRepoStub) Create(ctx context.Context, leaderID uint, party *models.Party) (*models.Party, error) {
	return s.createFn(ctx, leaderID, party)
}
func (s *partyRepoStub) Join(ctx context.Context, userID, partyID uint) (*models.Party, error) {
	return s.joinFn(ctx, userID, partyID)
}
func (s *partyRepoStub) Leave(ctx context.Context, userID, partyID uint) (*models.Party, error) {
	return s.leaveFn(ctx, userID, partyID)
}
func (s *partyRepoStub) Update(ctx context.Context, callerID, partyID uint, update models.PartyUpdate) (*models.Party, error) {
	return s.updateFn(ctx, callerID, partyID, update)
}
func (s *partyRepoStub) Delete(ctx context.Context, callerID, partyID uint) error {
	return s.deleteFn(ctx, callerID, partyID)
}
func (s *partyRepoStub) GetByID(ctx context.Context, id uint) (*models.Party, error) {
	return s.getByIDFn(ctx, id)
}
func (s *partyRepoStub) GetByLeader(ctx context.Context, leaderID uint) (*models.Party, error) {
	return s.getByLeaderFn(ctx, leaderID)
}
func (s *partyRepoStub) GetByUser(ctx context.Context, userID uint) (*models.Party, error) {
	return s.getByUserFn(ctx, userID)
}
func (s *partyRepoStub) ListMembers(ctx context.Context, partyID uint) ([]models.User, error) {
	return s.listMembersFn(ctx, partyID)
}
func (s *partyRepoStub) List(ctx context.Context, limit, offset int) ([]models.Party, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *partyRepoStub) ListByType(ctx context.Context, partyType models.PartyType, limit, offset int) ([]models.Party, error) {
	return s.listByTypeFn(ctx, partyType, limit, offset)
}
func (s *partyRepoStub) SearchByName(ctx context.Context, query string, limit, offset int) ([]models.Party, error) {
	return s.searchByNameFn(ctx, query, limit, offset)
}

func noopPartyRepo() *partyRepoStub {
	return &partyRepoStub{
		createFn: func(_ context.Context, leaderID uint, party *models.Party) (*models.Party, error) {
			party.ID = 1
			party.LeaderID = leaderID
			party.Size = 1
			return party, nil
		},
		joinFn:         func(context.Context, uint, uint) (*models.Party, error) { return &models.Party{}, nil },
		leaveFn:        func(context.Context, uint, uint) (*models.Party, error) { return &models.Party{}, nil },
		updateFn:       func(context.Context, uint, uint, models.PartyUpdate) (*models.Party, error) { return &models.Party{}, nil },
		deleteFn:       func(context.Context, uint, uint) error { return nil },
		getByIDFn:      func(context.Context, uint) (*models.Party, error) { return &models.Party{}, nil },
		getByLeaderFn:  func(context.Context, uint) (*models.Party, error) { return nil, nil },
		getByUserFn:    func(context.Context, uint) (*models.Party, error) { return nil, nil },
		listMembersFn:  func(context.Context, uint) ([]models.User, error) { return nil, nil },
		listFn:         func(context.Context, int, int) ([]models.Party, error) { return nil, nil },
		listByTypeFn:   func(context.Context, models.PartyType, int, int) ([]models.Party, error) { return nil, nil },
		searchByNameFn: func(context.Context, string, int, int) ([]models.Party, error) { return nil, nil },
	}
}

func testPartyService(repo *partyRepoStub) *PartyService {
	return NewPartyService(repo, noopUserRepo(), validation.NewPartyTypeSet(""))
}

func TestPartyServiceCreateValidation(t *testing.T) {
	cases := []struct {
		name  string
		input CreatePartyInput
	}{
		{"blank name", CreatePartyInput{Name: "   ", Type: models.PartyTypeRaid, Capacity: 5}},
		{"long name", CreatePartyInput{Name: strings.Repeat("x", 121), Type: models.PartyTypeRaid, Capacity: 5}},
		{"long description", CreatePartyInput{Name: "ok", Description: strings.Repeat("d", 256), Type: models.PartyTypeRaid, Capacity: 5}},
		{"unknown type", CreatePartyInput{Name: "ok", Type: "speedrun", Capacity: 5}},
		{"zero capacity", CreatePartyInput{Name: "ok", Type: models.PartyTypeRaid, Capacity: 0}},
	}

	svc := testPartyService(noopPartyRepo())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tc.input)
			assertAppCode(t, err, models.CodeValidation)
		})
	}
}

func TestPartyServiceCreatePassesLeader(t *testing.T) {
	repo := noopPartyRepo()
	var gotLeader uint
	repo.createFn = func(_ context.Context, leaderID uint, party *models.Party) (*models.Party, error) {
		gotLeader = leaderID
		party.ID = 42
		party.LeaderID = leaderID
		party.Size = 1
		return party, nil
	}

	svc := testPartyService(repo)
	party, err := svc.Create(context.Background(), 9, CreatePartyInput{
		Name:     "Onyxia Attunement",
		Type:     models.PartyTypeQuest,
		Capacity: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLeader != 9 || party.LeaderID != 9 {
		t.Fatalf("leader not threaded through, got %d / %d", gotLeader, party.LeaderID)
	}
	if party.Size != 1 {
		t.Fatalf("expected size 1, got %d", party.Size)
	}
}

func TestPartyServiceUpdateValidatesProvidedFields(t *testing.T) {
	svc := testPartyService(noopPartyRepo())

	badType := models.PartyType("speedrun")
	_, err := svc.Update(context.Background(), 1, 2, models.PartyUpdate{Type: &badType})
	assertAppCode(t, err, models.CodeValidation)

	badName := "  "
	_, err = svc.Update(context.Background(), 1, 2, models.PartyUpdate{Name: &badName})
	assertAppCode(t, err, models.CodeValidation)

	badCap := 0
	_, err = svc.Update(context.Background(), 1, 2, models.PartyUpdate{Capacity: &badCap})
	assertAppCode(t, err, models.CodeValidation)
}

func TestPartyServiceUpdateRepoErrorsPassThrough(t *testing.T) {
	repo := noopPartyRepo()
	repo.updateFn = func(context.Context, uint, uint, models.PartyUpdate) (*models.Party, error) {
		return nil, models.NewForbiddenError("Only the party leader can update the party")
	}

	svc := testPartyService(repo)
	name := "New Name"
	_, err := svc.Update(context.Background(), 1, 2, models.PartyUpdate{Name: &name})
	assertAppCode(t, err, models.CodeForbidden)
}

func TestPartyServiceListByTypeRejectsUnknownType(t *testing.T) {
	svc := testPartyService(noopPartyRepo())
	_, err := svc.ListByType(context.Background(), "speedrun", 20, 0)
	assertAppCode(t, err, models.CodeValidation)
}

// Pagination bounds are applied once, in the route layer; the service must
// forward them untouched so the two layers cannot drift apart.
func TestPartyServiceListForwardsPagination(t *testing.T) {
	repo := noopPartyRepo()
	var gotLimit, gotOffset int
	repo.listFn = func(_ context.Context, limit, offset int) ([]models.Party, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}

	svc := testPartyService(repo)
	if _, err := svc.List(context.Background(), 37, 74); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 37 || gotOffset != 74 {
		t.Fatalf("expected pagination forwarded as 37/74, got %d/%d", gotLimit, gotOffset)
	}
}

func TestPartyServiceSearchEmptyQuery(t *testing.T) {
	repo := noopPartyRepo()
	repo.searchByNameFn = func(context.Context, string, int, int) ([]models.Party, error) {
		t.Fatal("repository should not be hit for an empty query")
		return nil, nil
	}

	svc := testPartyService(repo)
	parties, err := svc.SearchByName(context.Background(), "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parties) != 0 {
		t.Fatalf("expected empty result, got %d", len(parties))
	}
}

func TestPartyServiceGetByUserUnknownUser(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}

	svc := NewPartyService(noopPartyRepo(), users, validation.NewPartyTypeSet(""))
	_, err := svc.GetByUser(context.Background(), 99)
	assertAppCode(t, err, models.CodeNotFound)
}
