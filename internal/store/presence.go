package store

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// Presence mirrors room membership into Redis sets so operational tooling
// can see who is in a room. It is best-effort and fail-open: authoritative
// membership lives in the connection registry, and a missing or unhealthy
// Redis never affects message handling.
type Presence struct {
	redis *redis.Client
}

func NewPresence(redis *redis.Client) *Presence {
	return &Presence{redis: redis}
}

func (p *Presence) key(roomID string) string {
	return "room:" + roomID + ":members"
}

// Join records the user as a member of the room.
func (p *Presence) Join(ctx context.Context, roomID, userID string) {
	if p == nil || p.redis == nil {
		return
	}
	if err := p.redis.SAdd(ctx, p.key(roomID), userID).Err(); err != nil {
		log.Printf("[Presence] Failed to record join for room %s: %v", roomID, err)
	}
}

// Leave removes the user from the room's member set.
func (p *Presence) Leave(ctx context.Context, roomID, userID string) {
	if p == nil || p.redis == nil {
		return
	}
	if err := p.redis.SRem(ctx, p.key(roomID), userID).Err(); err != nil {
		log.Printf("[Presence] Failed to record leave for room %s: %v", roomID, err)
	}
}

// Members returns the mirrored member list, empty when Redis is unavailable.
func (p *Presence) Members(ctx context.Context, roomID string) []string {
	if p == nil || p.redis == nil {
		return nil
	}
	members, err := p.redis.SMembers(ctx, p.key(roomID)).Result()
	if err != nil {
		log.Printf("[Presence] Failed to list members for room %s: %v", roomID, err)
		return nil
	}
	return members
}
