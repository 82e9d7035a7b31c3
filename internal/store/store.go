package store

import (
	"context"
	"time"

	"github.com/nhle/tracks/internal/model"
)

// TodoFilter controls filtering for todo queries. UserID is required.
type TodoFilter struct {
	UserID    string
	State     *string // one of model.TodoStates, or nil (all)
	ProjectID *string // project UUID, "" (no project), or nil (all)
	ContextID *string // context UUID, or nil (all)
	Limit     int
}

// Store defines the persistence interface for users and the records they
// own. Every record other than a user is scoped by user ID.
type Store interface {
	// === Users ===

	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	DestroyUser(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByToken(ctx context.Context, token string) (*model.User, error)
	ListUsers(ctx context.Context, page, perPage int) ([]model.User, error)
	CountUsers(ctx context.Context) (int, error)
	FindAdmin(ctx context.Context) (*model.User, error)

	// === Preferences ===

	GetPreference(ctx context.Context, userID string) (*model.Preference, error)
	UpdatePreference(ctx context.Context, pref *model.Preference) error

	// === Projects ===

	CreateProject(ctx context.Context, project *model.Project) error
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, userID, id string) error
	GetProjectByID(ctx context.Context, userID, id string) (*model.Project, error)
	GetProjects(ctx context.Context, userID string) ([]model.Project, error)
	MarkProjectReviewed(ctx context.Context, userID, id string, at time.Time) error
	UpdateProjectPositions(ctx context.Context, userID string, ids []string) error
	CountActiveTodosByProject(ctx context.Context, userID string) (map[string]int, error)

	// === Contexts ===

	CreateContext(ctx context.Context, c *model.Context) error
	UpdateContext(ctx context.Context, c *model.Context) error
	DeleteContext(ctx context.Context, userID, id string) error
	GetContextByID(ctx context.Context, userID, id string) (*model.Context, error)
	GetContexts(ctx context.Context, userID string) ([]model.Context, error)
	UpdateContextPositions(ctx context.Context, userID string, ids []string) error

	// === Todos ===

	CreateTodo(ctx context.Context, todo *model.Todo) error
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	UpdateTodos(ctx context.Context, todos []*model.Todo) error
	DeleteTodo(ctx context.Context, userID, id string) error
	GetTodoByID(ctx context.Context, userID, id string) (*model.Todo, error)
	GetTodos(ctx context.Context, filter TodoFilter) ([]model.Todo, error)
	GetDeferredTodos(ctx context.Context, userID string, readyBy *time.Time) ([]model.Todo, error)
	CountTodosByGroup(ctx context.Context, userID, column string) (map[string]int, error)

	// === Dependencies ===

	AddDependency(ctx context.Context, userID string, dep *model.Dependency) error
	RemoveDependency(ctx context.Context, predecessorID, successorID string) error
	GetPredecessors(ctx context.Context, todoID string) ([]model.Todo, error)
	GetSuccessors(ctx context.Context, todoID string) ([]model.Todo, error)
	CountOpenPredecessors(ctx context.Context, todoID string) (int, error)

	// === Recurring todos ===

	CreateRecurringTodo(ctx context.Context, rec *model.RecurringTodo) error
	UpdateRecurringTodo(ctx context.Context, rec *model.RecurringTodo) error
	DeleteRecurringTodo(ctx context.Context, userID, id string) error
	GetRecurringTodoByID(ctx context.Context, userID, id string) (*model.RecurringTodo, error)
	GetRecurringTodos(ctx context.Context, userID, state string) ([]model.RecurringTodo, error)
	RecordOccurrence(ctx context.Context, rec *model.RecurringTodo, todo *model.Todo) error

	// === Notes ===

	CreateNote(ctx context.Context, note *model.Note) error
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, userID, id string) error
	GetNoteByID(ctx context.Context, userID, id string) (*model.Note, error)
	GetNotes(ctx context.Context, userID string) ([]model.Note, error)
	GetProjectNotes(ctx context.Context, userID, projectID string) ([]model.Note, error)
	CountNotesByProject(ctx context.Context, userID string) (map[string]int, error)

	// === Maintenance ===

	SchemaVersion(ctx context.Context) (int, error)
	Counts(ctx context.Context) (RowCounts, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
