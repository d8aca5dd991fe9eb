package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goalboard/internal/model"
	"goalboard/pkg/metrics"
)

type boardBackend interface {
	CreateWithOwner(ctx context.Context, userID int64, title string) (*model.Board, error)
	ListForUser(ctx context.Context, userID int64, ordering Ordering) ([]model.Board, error)
	GetForUser(ctx context.Context, userID, boardID int64) (*model.Board, error)
	UpdateTitle(ctx context.Context, actorID, boardID int64, title string) (*model.Board, error)
	SoftDeleteCascade(ctx context.Context, actorID, boardID int64) (*model.Board, error)
}

type participantLister interface {
	ListForBoard(ctx context.Context, boardID int64) ([]model.BoardParticipant, error)
}

// BoardCache caches per-user board listings in redis. Mutations evict the
// entries of every participant of the touched board, so no member keeps
// reading a board that was just deleted or renamed. Redis being down only
// costs the caching: reads fall through to the backing repository.
type BoardCache struct {
	base         boardBackend
	participants participantLister
	redis        *redis.Client
	ttl          time.Duration
	logger       *zap.Logger
}

func NewBoardCache(base boardBackend, participants participantLister, client *redis.Client, ttl time.Duration, logger *zap.Logger) *BoardCache {
	if base == nil {
		panic("repository.NewBoardCache: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &BoardCache{
		base:         base,
		participants: participants,
		redis:        client,
		ttl:          ttl,
		logger:       logger,
	}
}

func boardsCacheKey(userID int64, ordering Ordering) string {
	return fmt.Sprintf("boards:%d:%s", userID, ordering)
}

func (c *BoardCache) CreateWithOwner(ctx context.Context, userID int64, title string) (*model.Board, error) {
	board, err := c.base.CreateWithOwner(ctx, userID, title)
	if err != nil {
		return nil, err
	}
	c.evictUsers(ctx, userID)
	return board, nil
}

func (c *BoardCache) ListForUser(ctx context.Context, userID int64, ordering Ordering) ([]model.Board, error) {
	if boards, ok := c.load(ctx, userID, ordering); ok {
		metrics.IncrementBoardCache("hit")
		return boards, nil
	}
	metrics.IncrementBoardCache("miss")

	boards, err := c.base.ListForUser(ctx, userID, ordering)
	if err != nil {
		return nil, err
	}

	c.store(ctx, userID, ordering, boards)
	return boards, nil
}

func (c *BoardCache) GetForUser(ctx context.Context, userID, boardID int64) (*model.Board, error) {
	return c.base.GetForUser(ctx, userID, boardID)
}

func (c *BoardCache) UpdateTitle(ctx context.Context, actorID, boardID int64, title string) (*model.Board, error) {
	board, err := c.base.UpdateTitle(ctx, actorID, boardID, title)
	if err != nil {
		return nil, err
	}
	c.evictBoard(ctx, boardID, actorID)
	return board, nil
}

func (c *BoardCache) SoftDeleteCascade(ctx context.Context, actorID, boardID int64) (*model.Board, error) {
	// Snapshot the membership before the delete; afterwards the rows
	// still exist but the lookup is cheaper here.
	members := c.memberIDs(ctx, boardID)

	board, err := c.base.SoftDeleteCascade(ctx, actorID, boardID)
	if err != nil {
		return nil, err
	}
	c.evictUsers(ctx, append(members, actorID)...)
	return board, nil
}

// EvictBoard drops the cached listings of every participant of boardID.
// Exposed for participant grants, which change who sees the board.
func (c *BoardCache) EvictBoard(ctx context.Context, boardID int64, extraUsers ...int64) {
	c.evictBoard(ctx, boardID, extraUsers...)
}

func (c *BoardCache) load(ctx context.Context, userID int64, ordering Ordering) ([]model.Board, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, boardsCacheKey(userID, ordering)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// Broken cache entries must not shadow storage.
			_ = c.redis.Del(ctx, boardsCacheKey(userID, ordering)).Err()
		}
		return nil, false
	}
	var boards []model.Board
	if err := json.Unmarshal(data, &boards); err != nil {
		_ = c.redis.Del(ctx, boardsCacheKey(userID, ordering)).Err()
		return nil, false
	}
	return boards, true
}

func (c *BoardCache) store(ctx context.Context, userID int64, ordering Ordering, boards []model.Board) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(boards)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, boardsCacheKey(userID, ordering), data, c.ttl).Err()
}

func (c *BoardCache) memberIDs(ctx context.Context, boardID int64) []int64 {
	if c.participants == nil {
		return nil
	}
	members, err := c.participants.ListForBoard(ctx, boardID)
	if err != nil {
		c.logger.Warn("Failed to list participants for cache eviction",
			zap.Int64("board_id", boardID),
			zap.Error(err),
		)
		return nil
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (c *BoardCache) evictBoard(ctx context.Context, boardID int64, extraUsers ...int64) {
	c.evictUsers(ctx, append(c.memberIDs(ctx, boardID), extraUsers...)...)
}

func (c *BoardCache) evictUsers(ctx context.Context, userIDs ...int64) {
	if c.redis == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs)*3)
	for _, id := range userIDs {
		for _, ordering := range []Ordering{OrderDefault, OrderByTitle, OrderByCreated} {
			keys = append(keys, boardsCacheKey(id, ordering))
		}
	}
	_, _ = c.redis.Del(ctx, keys...).Result()
}
