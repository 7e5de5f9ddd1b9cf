package service

import (
	"context"
	"errors"
	"testing"

	"partyforge/internal/models"
)

type friendRepoStub struct {
	createFn              func(context.Context, *models.Friendship) error
	getByIDFn             func(context.Context, uint) (*models.Friendship, error)
	getBetweenUsersFn     func(context.Context, uint, uint) (*models.Friendship, error)
	listForUserFn         func(context.Context, uint) ([]models.Friendship, error)
	listFriendsFn         func(context.Context, uint) ([]models.User, error)
	listPendingIncomingFn func(context.Context, uint) ([]models.Friendship, error)
	listPendingSentFn     func(context.Context, uint) ([]models.Friendship, error)
	updateStatusFn        func(context.Context, uint, models.FriendshipStatus) error
	deleteFn              func(context.Context, uint) error
	removeBetweenUsersFn  func(context.Context, uint, uint) error
}

func (s *friendRepoStub) Create(ctx context.Context, friendship *models.Friendship) error {
	return s.createFn(ctx, friendship)
}
func (s *friendRepoStub) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	return s.getByIDFn(ctx, id)
}
func (s *friendRepoStub) GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	return s.getBetweenUsersFn(ctx, userID1, userID2)
}
func (s *friendRepoStub) ListForUser(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *friendRepoStub) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.listFriendsFn(ctx, userID)
}
func (s *friendRepoStub) ListPendingIncoming(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.listPendingIncomingFn(ctx, userID)
}
func (s *friendRepoStub) ListPendingSent(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return s.listPendingSentFn(ctx, userID)
}
func (s *friendRepoStub) UpdateStatus(ctx context.Context, friendshipID uint, status models.FriendshipStatus) error {
	return s.updateStatusFn(ctx, friendshipID, status)
}
func (s *friendRepoStub) Delete(ctx context.Context, friendshipID uint) error {
	return s.deleteFn(ctx, friendshipID)
}
func (s *friendRepoStub) RemoveBetweenUsers(ctx context.Context, userID1, userID2 uint) error {
	return s.removeBetweenUsersFn(ctx, userID1, userID2)
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	searchFn        func(context.Context, string, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, q string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, q, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		listFn:          func(context.Context, int, int) ([]models.User, error) { return nil, nil },
		searchFn:        func(context.Context, string, int, int) ([]models.User, error) { return nil, nil },
	}
}

func noopFriendRepo() *friendRepoStub {
	return &friendRepoStub{
		createFn:              func(context.Context, *models.Friendship) error { return nil },
		getByIDFn:             func(context.Context, uint) (*models.Friendship, error) { return &models.Friendship{}, nil },
		getBetweenUsersFn:     func(context.Context, uint, uint) (*models.Friendship, error) { return nil, nil },
		listForUserFn:         func(context.Context, uint) ([]models.Friendship, error) { return nil, nil },
		listFriendsFn:         func(context.Context, uint) ([]models.User, error) { return nil, nil },
		listPendingIncomingFn: func(context.Context, uint) ([]models.Friendship, error) { return nil, nil },
		listPendingSentFn:     func(context.Context, uint) ([]models.Friendship, error) { return nil, nil },
		updateStatusFn:        func(context.Context, uint, models.FriendshipStatus) error { return nil },
		deleteFn:              func(context.Context, uint) error { return nil },
		removeBetweenUsersFn:  func(context.Context, uint, uint) error { return nil },
	}
}

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
}

func TestFriendServiceSendRequestSelf(t *testing.T) {
	svc := NewFriendService(noopFriendRepo(), noopUserRepo())
	_, err := svc.SendRequest(context.Background(), 3, 3)
	assertAppCode(t, err, models.CodeInvalidOperation)
}

func TestFriendServiceSendRequestUnknownReceiver(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}

	svc := NewFriendService(noopFriendRepo(), users)
	_, err := svc.SendRequest(context.Background(), 1, 99)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestFriendServiceSendRequestDuplicate(t *testing.T) {
	cases := []struct {
		name string
		edge models.Friendship
	}{
		{"already friends", models.Friendship{RequesterID: 1, AddresseeID: 2, Status: models.FriendshipStatusFriends}},
		{"already sent", models.Friendship{RequesterID: 1, AddresseeID: 2, Status: models.FriendshipStatusPending}},
		{"reverse pending", models.Friendship{RequesterID: 2, AddresseeID: 1, Status: models.FriendshipStatusPending}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := noopFriendRepo()
			repo.getBetweenUsersFn = func(context.Context, uint, uint) (*models.Friendship, error) {
				edge := tc.edge
				return &edge, nil
			}

			svc := NewFriendService(repo, noopUserRepo())
			_, err := svc.SendRequest(context.Background(), 1, 2)
			assertAppCode(t, err, models.CodeConflict)
		})
	}
}

func TestFriendServiceSendRequestCreatesPending(t *testing.T) {
	repo := noopFriendRepo()
	var created *models.Friendship
	repo.createFn = func(_ context.Context, f *models.Friendship) error {
		f.ID = 7
		created = f
		return nil
	}
	repo.getByIDFn = func(context.Context, uint) (*models.Friendship, error) {
		return created, nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	f, err := svc.SendRequest(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.RequesterID != 1 || f.AddresseeID != 2 || f.Status != models.FriendshipStatusPending {
		t.Fatalf("unexpected friendship: %#v", f)
	}
}

func TestFriendServiceRespondStatusRestricted(t *testing.T) {
	svc := NewFriendService(noopFriendRepo(), noopUserRepo())

	for _, status := range []models.FriendshipStatus{models.FriendshipStatusPending, "nemesis", ""} {
		_, err := svc.RespondToRequest(context.Background(), 2, 1, status)
		assertAppCode(t, err, models.CodeInvalidOperation)
	}
}

func TestFriendServiceRespondByRequesterForbidden(t *testing.T) {
	repo := noopFriendRepo()
	repo.getBetweenUsersFn = func(context.Context, uint, uint) (*models.Friendship, error) {
		return &models.Friendship{
			ID:          5,
			RequesterID: 10,
			AddresseeID: 11,
			Status:      models.FriendshipStatusPending,
		}, nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	// User 10 sent the request; they cannot respond to it
	_, err := svc.RespondToRequest(context.Background(), 10, 11, models.FriendshipStatusFriends)
	assertAppCode(t, err, models.CodeForbidden)
}

func TestFriendServiceRespondMissingEdge(t *testing.T) {
	svc := NewFriendService(noopFriendRepo(), noopUserRepo())
	_, err := svc.RespondToRequest(context.Background(), 2, 1, models.FriendshipStatusFriends)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestFriendServiceRespondAdvancesTier(t *testing.T) {
	edge := &models.Friendship{
		ID:          5,
		RequesterID: 10,
		AddresseeID: 11,
		Status:      models.FriendshipStatusFriends,
	}
	repo := noopFriendRepo()
	repo.getBetweenUsersFn = func(context.Context, uint, uint) (*models.Friendship, error) {
		return edge, nil
	}
	repo.updateStatusFn = func(_ context.Context, id uint, status models.FriendshipStatus) error {
		if id != 5 {
			t.Fatalf("unexpected friendship ID %d", id)
		}
		edge.Status = status
		return nil
	}
	repo.getByIDFn = func(context.Context, uint) (*models.Friendship, error) {
		return edge, nil
	}

	svc := NewFriendService(repo, noopUserRepo())
	f, err := svc.RespondToRequest(context.Background(), 11, 10, models.FriendshipStatusBestFriends)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Status != models.FriendshipStatusBestFriends {
		t.Fatalf("expected best_friends, got %s", f.Status)
	}
}

func TestFriendServiceRemovePassesThrough(t *testing.T) {
	repo := noopFriendRepo()
	repo.removeBetweenUsersFn = func(_ context.Context, a, b uint) error {
		if a != 1 || b != 2 {
			t.Fatalf("unexpected pair (%d, %d)", a, b)
		}
		return models.NewNotFoundError("Friendship", b)
	}

	svc := NewFriendService(repo, noopUserRepo())
	err := svc.Remove(context.Background(), 1, 2)
	assertAppCode(t, err, models.CodeNotFound)
}
