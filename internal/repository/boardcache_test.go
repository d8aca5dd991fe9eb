package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
)

type fakeBoardBackend struct {
	boards    map[int64][]model.Board
	listCalls int
}

func (f *fakeBoardBackend) CreateWithOwner(ctx context.Context, userID int64, title string) (*model.Board, error) {
	b := model.Board{ID: int64(len(f.boards[userID]) + 1), Title: title}
	f.boards[userID] = append(f.boards[userID], b)
	return &b, nil
}

func (f *fakeBoardBackend) ListForUser(ctx context.Context, userID int64, ordering Ordering) ([]model.Board, error) {
	f.listCalls++
	return f.boards[userID], nil
}

func (f *fakeBoardBackend) GetForUser(ctx context.Context, userID, boardID int64) (*model.Board, error) {
	for _, b := range f.boards[userID] {
		if b.ID == boardID {
			out := b
			return &out, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeBoardBackend) UpdateTitle(ctx context.Context, actorID, boardID int64, title string) (*model.Board, error) {
	return &model.Board{ID: boardID, Title: title}, nil
}

func (f *fakeBoardBackend) SoftDeleteCascade(ctx context.Context, actorID, boardID int64) (*model.Board, error) {
	for userID, boards := range f.boards {
		kept := boards[:0]
		for _, b := range boards {
			if b.ID != boardID {
				kept = append(kept, b)
			}
		}
		f.boards[userID] = kept
	}
	return &model.Board{ID: boardID, IsDeleted: true}, nil
}

type fakeParticipants struct {
	members map[int64][]int64
}

func (f *fakeParticipants) ListForBoard(ctx context.Context, boardID int64) ([]model.BoardParticipant, error) {
	var out []model.BoardParticipant
	for _, userID := range f.members[boardID] {
		out = append(out, model.BoardParticipant{BoardID: boardID, UserID: userID})
	}
	return out, nil
}

func newCacheFixture(t *testing.T) (*BoardCache, *fakeBoardBackend, *fakeParticipants) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backend := &fakeBoardBackend{boards: map[int64][]model.Board{}}
	participants := &fakeParticipants{members: map[int64][]int64{}}
	cache := NewBoardCache(backend, participants, client, time.Minute, zap.NewNop())
	return cache, backend, participants
}

func TestBoardCacheHit(t *testing.T) {
	cache, backend, _ := newCacheFixture(t)
	ctx := context.Background()

	backend.boards[1] = []model.Board{{ID: 10, Title: "project"}}

	first, err := cache.ListForUser(ctx, 1, OrderDefault)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	second, err := cache.ListForUser(ctx, 1, OrderDefault)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}

	if backend.listCalls != 1 {
		t.Fatalf("backend hit %d times, want 1", backend.listCalls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].ID != 10 {
		t.Fatalf("unexpected listings %+v %+v", first, second)
	}
}

func TestBoardCacheKeyedByOrdering(t *testing.T) {
	cache, backend, _ := newCacheFixture(t)
	ctx := context.Background()

	backend.boards[1] = []model.Board{{ID: 10, Title: "project"}}

	if _, err := cache.ListForUser(ctx, 1, OrderDefault); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := cache.ListForUser(ctx, 1, OrderByTitle); err != nil {
		t.Fatalf("list: %v", err)
	}

	if backend.listCalls != 2 {
		t.Fatalf("backend hit %d times, want 2 (one per ordering)", backend.listCalls)
	}
}

func TestBoardCacheCreateEvictsActor(t *testing.T) {
	cache, backend, _ := newCacheFixture(t)
	ctx := context.Background()

	if _, err := cache.ListForUser(ctx, 1, OrderDefault); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := cache.CreateWithOwner(ctx, 1, "fresh"); err != nil {
		t.Fatalf("create: %v", err)
	}

	boards, err := cache.ListForUser(ctx, 1, OrderDefault)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if backend.listCalls != 2 {
		t.Fatalf("backend hit %d times, want 2 (cache evicted on create)", backend.listCalls)
	}
	if len(boards) != 1 || boards[0].Title != "fresh" {
		t.Fatalf("unexpected listing %+v", boards)
	}
}

func TestBoardCacheDeleteEvictsAllMembers(t *testing.T) {
	cache, backend, participants := newCacheFixture(t)
	ctx := context.Background()

	shared := model.Board{ID: 10, Title: "shared"}
	backend.boards[1] = []model.Board{shared}
	backend.boards[2] = []model.Board{shared}
	participants.members[shared.ID] = []int64{1, 2}

	// Warm both members' caches.
	if _, err := cache.ListForUser(ctx, 1, OrderDefault); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := cache.ListForUser(ctx, 2, OrderDefault); err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := cache.SoftDeleteCascade(ctx, 1, shared.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Neither member may still see the deleted board from cache.
	for _, userID := range []int64{1, 2} {
		boards, err := cache.ListForUser(ctx, userID, OrderDefault)
		if err != nil {
			t.Fatalf("list after delete: %v", err)
		}
		if len(boards) != 0 {
			t.Fatalf("user %d still sees %+v", userID, boards)
		}
	}
}

func TestBoardCacheCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	backend := &fakeBoardBackend{boards: map[int64][]model.Board{
		1: {{ID: 10, Title: "project"}},
	}}
	cache := NewBoardCache(backend, &fakeParticipants{members: map[int64][]int64{}}, client, time.Minute, zap.NewNop())
	ctx := context.Background()

	if err := mr.Set(boardsCacheKey(1, OrderDefault), "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	boards, err := cache.ListForUser(ctx, 1, OrderDefault)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(boards) != 1 || boards[0].ID != 10 {
		t.Fatalf("unexpected listing %+v", boards)
	}
	if mr.Exists(boardsCacheKey(1, OrderDefault)) {
		// The broken entry is replaced by the fresh one, which must
		// decode.
		if _, ok := cache.load(ctx, 1, OrderDefault); !ok {
			t.Fatal("cache entry not replaced after corruption")
		}
	}
}
