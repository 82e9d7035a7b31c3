package tracks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
)

// ProjectList is one user's projects in position order, with the list
// operations controllers need.
type ProjectList struct {
	store  store.Store
	log    zerolog.Logger
	userID string

	// Projects is kept sorted by position.
	Projects []model.Project
}

// LoadProjects reads a user's projects ordered by position.
func LoadProjects(ctx context.Context, s store.Store, logger zerolog.Logger, userID string) (*ProjectList, error) {
	projects, err := s.GetProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading projects for user %s: %w", userID, err)
	}
	return &ProjectList{
		store:    s,
		log:      logger.With().Str("user_id", userID).Str("list", "projects").Logger(),
		userID:   userID,
		Projects: projects,
	}, nil
}

// UserID returns the owner of the list.
func (l *ProjectList) UserID() string { return l.userID }

// FindByParams resolves "id", then "project_id", to one of the user's
// projects.
func (l *ProjectList) FindByParams(params map[string]string) (*model.Project, error) {
	p, err := findByParams(l.Projects, "project", params, "id", "project_id")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InState returns the projects in state, in position order.
func (l *ProjectList) InState(state string) []model.Project {
	return selectItems(l.Projects, ByState(state))
}

// NextFrom returns the project after p among projects in p's state, or
// nil when p is last.
func (l *ProjectList) NextFrom(p model.Project) *model.Project {
	next, ok := neighbour(l.Projects, p.ID, 1)
	if !ok {
		return nil
	}
	return &next
}

// PreviousFrom returns the project before p among projects in p's state,
// or nil when p is first.
func (l *ProjectList) PreviousFrom(p model.Project) *model.Project {
	prev, ok := neighbour(l.Projects, p.ID, -1)
	if !ok {
		return nil
	}
	return &prev
}

// UpdatePositions stores ids as the new project order, numbered from 1.
// Projects not named keep their relative order after the named ones.
// An id that is not one of the user's projects, or that repeats, fails
// with *store.NotAssociatedError and nothing is changed.
func (l *ProjectList) UpdatePositions(ctx context.Context, ids []string) error {
	if err := l.store.UpdateProjectPositions(ctx, l.userID, ids); err != nil {
		return fmt.Errorf("updating project positions: %w", err)
	}
	l.Projects = reorder(l.Projects, withPrefix(l.Projects, pick(l.Projects, ids)), setProjectPosition)
	l.log.Debug().Strs("order", idsOf(l.Projects)).Msg("positions updated")
	return nil
}

// Alphabetize moves the projects matching f to the front, sorted by
// case-insensitive name, and returns them in their new order. The other
// projects follow in their previous order.
func (l *ProjectList) Alphabetize(ctx context.Context, f Filter) ([]model.Project, error) {
	sorted := sortByName(selectItems(l.Projects, f))
	if err := l.UpdatePositions(ctx, withPrefix(l.Projects, sorted)); err != nil {
		return nil, err
	}
	return selectItems(l.Projects, f), nil
}

// Actionize moves the projects matching f that have no active todos to
// the front, and returns the projects matching f in their new order.
// Every other project follows in its previous order.
func (l *ProjectList) Actionize(ctx context.Context, f Filter) ([]model.Project, error) {
	counts, err := l.store.CountActiveTodosByProject(ctx, l.userID)
	if err != nil {
		return nil, fmt.Errorf("actionizing projects: %w", err)
	}

	var idle []model.Project
	for _, p := range selectItems(l.Projects, f) {
		if counts[p.ID] == 0 {
			idle = append(idle, p)
		}
	}
	sort.SliceStable(idle, func(i, j int) bool {
		return counts[idle[i].ID] > counts[idle[j].ID]
	})

	if err := l.UpdatePositions(ctx, withPrefix(l.Projects, idle)); err != nil {
		return nil, err
	}
	return selectItems(l.Projects, f), nil
}

// CacheNoteCounts sets CachedNoteCount on every project from a single
// grouped count. Nothing is written back.
func (l *ProjectList) CacheNoteCounts(ctx context.Context) error {
	counts, err := l.store.CountNotesByProject(ctx, l.userID)
	if err != nil {
		return fmt.Errorf("caching note counts: %w", err)
	}
	for i := range l.Projects {
		n := counts[l.Projects[i].ID]
		l.Projects[i].CachedNoteCount = &n
	}
	return nil
}

// NeedingReview returns the projects overdue for review at now.
func (l *ProjectList) NeedingReview(pref model.Preference, now time.Time) []model.Project {
	var due []model.Project
	for _, p := range l.Projects {
		if p.NeedsReview(pref, now) {
			due = append(due, p)
		}
	}
	return due
}

// MarkReviewed stamps a project as reviewed at now.
func (l *ProjectList) MarkReviewed(ctx context.Context, id string, now time.Time) error {
	if err := l.store.MarkProjectReviewed(ctx, l.userID, id, now); err != nil {
		return err
	}
	at := now.UTC()
	for i := range l.Projects {
		if l.Projects[i].ID == id {
			l.Projects[i].LastReviewedAt = &at
		}
	}
	return nil
}

func setProjectPosition(p *model.Project, pos int) { p.Position = pos }
