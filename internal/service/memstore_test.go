package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/internal/repository"
)

// memStore is an in-memory stand-in for the SQL repositories. It
// reproduces the visibility rules the real queries enforce through
// joins: membership, board and category soft-delete flags, and the
// archived status cutoff.
type memStore struct {
	boards       map[int64]*model.Board
	categories   map[int64]*model.Category
	goals        map[int64]*model.Goal
	comments     map[int64]*model.Comment
	participants []*model.BoardParticipant
	nextID       int64
}

func newMemStore() *memStore {
	return &memStore{
		boards:     map[int64]*model.Board{},
		categories: map[int64]*model.Category{},
		goals:      map[int64]*model.Goal{},
		comments:   map[int64]*model.Comment{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) participant(boardID, userID int64) *model.BoardParticipant {
	for _, p := range m.participants {
		if p.BoardID == boardID && p.UserID == userID {
			return p
		}
	}
	return nil
}

func (m *memStore) boardVisible(userID, boardID int64) bool {
	b, ok := m.boards[boardID]
	if !ok || b.IsDeleted {
		return false
	}
	return m.participant(boardID, userID) != nil
}

func (m *memStore) categoryVisible(userID, categoryID int64) bool {
	c, ok := m.categories[categoryID]
	if !ok || c.IsDeleted {
		return false
	}
	return m.boardVisible(userID, c.BoardID)
}

func (m *memStore) goalVisible(userID, goalID int64) bool {
	g, ok := m.goals[goalID]
	if !ok || g.Status >= model.StatusArchived {
		return false
	}
	return m.categoryVisible(userID, g.CategoryID)
}

// BoardStore

func (m *memStore) CreateWithOwner(ctx context.Context, userID int64, title string) (*model.Board, error) {
	b := &model.Board{ID: m.id(), Title: title, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.boards[b.ID] = b
	m.participants = append(m.participants, &model.BoardParticipant{
		ID: m.id(), BoardID: b.ID, UserID: userID, Role: model.RoleOwner,
	})
	return b, nil
}

func (m *memStore) ListForUser(ctx context.Context, userID int64, ordering repository.Ordering) ([]model.Board, error) {
	var out []model.Board
	for _, b := range m.boards {
		if m.boardVisible(userID, b.ID) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ordering == repository.OrderByTitle {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) GetForUser(ctx context.Context, userID, boardID int64) (*model.Board, error) {
	if !m.boardVisible(userID, boardID) {
		return nil, apperr.ErrNotFound
	}
	b := *m.boards[boardID]
	return &b, nil
}

func (m *memStore) UpdateTitle(ctx context.Context, actorID, boardID int64, title string) (*model.Board, error) {
	b, ok := m.boards[boardID]
	if !ok || b.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	b.Title = title
	b.UpdatedAt = time.Now()
	out := *b
	return &out, nil
}

func (m *memStore) SoftDeleteCascade(ctx context.Context, actorID, boardID int64) (*model.Board, error) {
	b, ok := m.boards[boardID]
	if !ok || b.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	b.IsDeleted = true
	for _, c := range m.categories {
		if c.BoardID == boardID {
			c.IsDeleted = true
		}
	}
	// Goals archive by board id through the category join, the
	// category's own deleted flag does not matter here.
	for _, g := range m.goals {
		if c, ok := m.categories[g.CategoryID]; ok && c.BoardID == boardID {
			g.Status = model.StatusArchived
		}
	}
	out := *b
	return &out, nil
}

// ParticipantStore

func (m *memStore) RoleOnBoard(ctx context.Context, userID, boardID int64) (model.Role, bool, error) {
	if b, ok := m.boards[boardID]; !ok || b.IsDeleted {
		return 0, false, nil
	}
	if p := m.participant(boardID, userID); p != nil {
		return p.Role, true, nil
	}
	return 0, false, nil
}

func (m *memStore) RoleForCategory(ctx context.Context, userID, categoryID int64) (model.Role, bool, error) {
	c, ok := m.categories[categoryID]
	if !ok {
		return 0, false, nil
	}
	return m.RoleOnBoard(ctx, userID, c.BoardID)
}

func (m *memStore) RoleForGoal(ctx context.Context, userID, goalID int64) (model.Role, bool, error) {
	g, ok := m.goals[goalID]
	if !ok {
		return 0, false, nil
	}
	return m.RoleForCategory(ctx, userID, g.CategoryID)
}

func (m *memStore) RoleForComment(ctx context.Context, userID, commentID int64) (model.Role, bool, error) {
	cm, ok := m.comments[commentID]
	if !ok {
		return 0, false, nil
	}
	return m.RoleForGoal(ctx, userID, cm.GoalID)
}

func (m *memStore) Insert(ctx context.Context, actorID, boardID, userID int64, role model.Role) (*model.BoardParticipant, error) {
	if m.participant(boardID, userID) != nil {
		return nil, apperr.ErrConflict
	}
	p := &model.BoardParticipant{ID: m.id(), BoardID: boardID, UserID: userID, Role: role}
	m.participants = append(m.participants, p)
	out := *p
	return &out, nil
}

func (m *memStore) UpdateRole(ctx context.Context, actorID, boardID, userID int64, role model.Role) (*model.BoardParticipant, error) {
	p := m.participant(boardID, userID)
	if p == nil || p.Role == model.RoleOwner {
		return nil, apperr.ErrNotFound
	}
	p.Role = role
	out := *p
	return &out, nil
}

func (m *memStore) Exists(ctx context.Context, boardID, userID int64) (bool, model.Role, error) {
	if p := m.participant(boardID, userID); p != nil {
		return true, p.Role, nil
	}
	return false, 0, nil
}

func (m *memStore) ListForBoard(ctx context.Context, boardID int64) ([]model.BoardParticipant, error) {
	var out []model.BoardParticipant
	for _, p := range m.participants {
		if p.BoardID == boardID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CategoryStore

func (m *memStore) InsertCategory(ctx context.Context, userID, boardID int64, title string) (*model.Category, error) {
	c := &model.Category{ID: m.id(), UserID: userID, BoardID: boardID, Title: title, CreatedAt: time.Now()}
	m.categories[c.ID] = c
	out := *c
	return &out, nil
}

func (m *memStore) ListCategoriesForUser(ctx context.Context, userID int64, boardID *int64, search string, ordering repository.Ordering) ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.categories {
		if !m.categoryVisible(userID, c.ID) {
			continue
		}
		if boardID != nil && c.BoardID != *boardID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(search)) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if ordering == repository.OrderByTitle {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memStore) GetCategoryForUser(ctx context.Context, userID, categoryID int64) (*model.Category, error) {
	if !m.categoryVisible(userID, categoryID) {
		return nil, apperr.ErrNotFound
	}
	c := *m.categories[categoryID]
	return &c, nil
}

func (m *memStore) UpdateCategoryTitle(ctx context.Context, actorID, categoryID int64, title string) (*model.Category, error) {
	c, ok := m.categories[categoryID]
	if !ok || c.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	c.Title = title
	out := *c
	return &out, nil
}

func (m *memStore) SoftDeleteCategoryCascade(ctx context.Context, actorID, categoryID int64) (*model.Category, error) {
	c, ok := m.categories[categoryID]
	if !ok || c.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	c.IsDeleted = true
	for _, g := range m.goals {
		if g.CategoryID == categoryID {
			g.Status = model.StatusArchived
		}
	}
	out := *c
	return &out, nil
}

// GoalStore

func (m *memStore) InsertGoal(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	stored := *g
	stored.ID = m.id()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.goals[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memStore) ListGoalsForUser(ctx context.Context, userID int64, filter repository.GoalsFilter, search string, ordering repository.Ordering) ([]model.Goal, error) {
	var out []model.Goal
	for _, g := range m.goals {
		if !m.goalVisible(userID, g.ID) {
			continue
		}
		c := m.categories[g.CategoryID]
		if filter.BoardID != nil && c.BoardID != *filter.BoardID {
			continue
		}
		if filter.CategoryID != nil && g.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Status != nil && g.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && g.Priority != *filter.Priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Title+" "+g.Description), strings.ToLower(search)) {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetGoalForUser(ctx context.Context, userID, goalID int64) (*model.Goal, error) {
	if !m.goalVisible(userID, goalID) {
		return nil, apperr.ErrNotFound
	}
	g := *m.goals[goalID]
	return &g, nil
}

func (m *memStore) UpdateGoal(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	stored, ok := m.goals[g.ID]
	if !ok || stored.Status >= model.StatusArchived {
		return nil, apperr.ErrNotFound
	}
	updated := *g
	updated.UpdatedAt = time.Now()
	m.goals[g.ID] = &updated
	out := updated
	return &out, nil
}

func (m *memStore) ArchiveGoal(ctx context.Context, actorID, goalID int64) (*model.Goal, error) {
	g, ok := m.goals[goalID]
	if !ok || g.Status >= model.StatusArchived {
		return nil, apperr.ErrNotFound
	}
	g.Status = model.StatusArchived
	out := *g
	return &out, nil
}

// CommentStore

func (m *memStore) InsertComment(ctx context.Context, userID, goalID int64, text string) (*model.Comment, error) {
	cm := &model.Comment{ID: m.id(), UserID: userID, GoalID: goalID, Text: text, CreatedAt: time.Now()}
	m.comments[cm.ID] = cm
	out := *cm
	return &out, nil
}

func (m *memStore) ListCommentsForUser(ctx context.Context, userID int64, goalID *int64, ordering repository.Ordering) ([]model.Comment, error) {
	var out []model.Comment
	for _, cm := range m.comments {
		if !m.goalVisible(userID, cm.GoalID) {
			continue
		}
		if goalID != nil && cm.GoalID != *goalID {
			continue
		}
		out = append(out, *cm)
	}
	sort.Slice(out, func(i, j int) bool {
		if ordering == repository.OrderByCreated {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) GetCommentForUser(ctx context.Context, userID, commentID int64) (*model.Comment, error) {
	cm, ok := m.comments[commentID]
	if !ok || !m.goalVisible(userID, cm.GoalID) {
		return nil, apperr.ErrNotFound
	}
	out := *cm
	return &out, nil
}

func (m *memStore) UpdateCommentText(ctx context.Context, commentID int64, text string) (*model.Comment, error) {
	cm, ok := m.comments[commentID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cm.Text = text
	out := *cm
	return &out, nil
}

func (m *memStore) DeleteComment(ctx context.Context, actorID, commentID int64) error {
	if _, ok := m.comments[commentID]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.comments, commentID)
	return nil
}

// Adapters so one memStore serves every store port despite the
// overlapping method names.

type memCategories struct{ *memStore }

func (m memCategories) Insert(ctx context.Context, userID, boardID int64, title string) (*model.Category, error) {
	return m.InsertCategory(ctx, userID, boardID, title)
}

func (m memCategories) ListForUser(ctx context.Context, userID int64, boardID *int64, search string, ordering repository.Ordering) ([]model.Category, error) {
	return m.ListCategoriesForUser(ctx, userID, boardID, search, ordering)
}

func (m memCategories) GetForUser(ctx context.Context, userID, categoryID int64) (*model.Category, error) {
	return m.GetCategoryForUser(ctx, userID, categoryID)
}

func (m memCategories) UpdateTitle(ctx context.Context, actorID, categoryID int64, title string) (*model.Category, error) {
	return m.UpdateCategoryTitle(ctx, actorID, categoryID, title)
}

func (m memCategories) SoftDeleteCascade(ctx context.Context, actorID, categoryID int64) (*model.Category, error) {
	return m.SoftDeleteCategoryCascade(ctx, actorID, categoryID)
}

type memGoals struct{ *memStore }

func (m memGoals) Insert(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	return m.InsertGoal(ctx, g)
}

func (m memGoals) ListForUser(ctx context.Context, userID int64, filter repository.GoalsFilter, search string, ordering repository.Ordering) ([]model.Goal, error) {
	return m.ListGoalsForUser(ctx, userID, filter, search, ordering)
}

func (m memGoals) GetForUser(ctx context.Context, userID, goalID int64) (*model.Goal, error) {
	return m.GetGoalForUser(ctx, userID, goalID)
}

func (m memGoals) Update(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	return m.UpdateGoal(ctx, g)
}

func (m memGoals) Archive(ctx context.Context, actorID, goalID int64) (*model.Goal, error) {
	return m.ArchiveGoal(ctx, actorID, goalID)
}

type memComments struct{ *memStore }

func (m memComments) Insert(ctx context.Context, userID, goalID int64, text string) (*model.Comment, error) {
	return m.InsertComment(ctx, userID, goalID, text)
}

func (m memComments) ListForUser(ctx context.Context, userID int64, goalID *int64, ordering repository.Ordering) ([]model.Comment, error) {
	return m.ListCommentsForUser(ctx, userID, goalID, ordering)
}

func (m memComments) GetForUser(ctx context.Context, userID, commentID int64) (*model.Comment, error) {
	return m.GetCommentForUser(ctx, userID, commentID)
}

func (m memComments) UpdateText(ctx context.Context, commentID int64, text string) (*model.Comment, error) {
	return m.UpdateCommentText(ctx, commentID, text)
}

func (m memComments) Delete(ctx context.Context, actorID, commentID int64) error {
	return m.DeleteComment(ctx, actorID, commentID)
}
