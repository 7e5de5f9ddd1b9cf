package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix  = "user:%d"
	PartyKeyPrefix = "party:%d"
)

const (
	UserTTL = 5 * time.Minute
	// PartyTTL is short because Size changes on every join/leave and stale
	// occupancy is directly user-visible.
	PartyTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PartyKey(partyID uint) string {
	return fmt.Sprintf(PartyKeyPrefix, partyID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateParty(ctx context.Context, partyID uint) {
	Invalidate(ctx, PartyKey(partyID))
}
