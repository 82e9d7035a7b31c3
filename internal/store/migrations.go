package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id                        TEXT PRIMARY KEY,
	login                     TEXT NOT NULL UNIQUE,
	crypted_password          TEXT NOT NULL,
	token                     TEXT NOT NULL DEFAULT '',
	is_admin                  INTEGER NOT NULL DEFAULT 0 CHECK(is_admin IN (0, 1)),
	auth_type                 TEXT NOT NULL DEFAULT 'database',
	first_name                TEXT NOT NULL DEFAULT '',
	last_name                 TEXT NOT NULL DEFAULT '',
	remember_token            TEXT,
	remember_token_expires_at DATETIME,
	created_at                DATETIME NOT NULL,
	updated_at                DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS preferences (
	id                    TEXT PRIMARY KEY,
	user_id               TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	time_zone             TEXT NOT NULL DEFAULT 'UTC',
	date_format           TEXT NOT NULL DEFAULT '%d/%m/%Y',
	show_number_completed INTEGER NOT NULL DEFAULT 5,
	staleness_starts      INTEGER NOT NULL DEFAULT 7,
	created_at            DATETIME NOT NULL,
	updated_at            DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS contexts (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	state      TEXT NOT NULL DEFAULT 'active' CHECK(state IN ('active', 'hidden', 'closed')),
	position   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(user_id, name)
);

CREATE TABLE IF NOT EXISTS projects (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	state            TEXT NOT NULL DEFAULT 'active' CHECK(state IN ('active', 'hidden', 'completed')),
	position         INTEGER NOT NULL DEFAULT 0,
	last_reviewed_at DATETIME,
	completed_at     DATETIME,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL,
	UNIQUE(user_id, name)
);

CREATE TABLE IF NOT EXISTS recurring_todos (
	id                    TEXT PRIMARY KEY,
	user_id               TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	context_id            TEXT NOT NULL REFERENCES contexts(id) ON DELETE CASCADE,
	project_id            TEXT REFERENCES projects(id) ON DELETE SET NULL,
	description           TEXT NOT NULL,
	notes                 TEXT NOT NULL DEFAULT '',
	state                 TEXT NOT NULL DEFAULT 'active' CHECK(state IN ('active', 'completed')),
	recurring_period      TEXT NOT NULL CHECK(recurring_period IN ('daily', 'weekly', 'monthly', 'yearly')),
	every_count           INTEGER NOT NULL DEFAULT 1 CHECK(every_count >= 1),
	start_from            DATETIME NOT NULL,
	ends_on               DATETIME,
	number_of_occurrences INTEGER NOT NULL DEFAULT 0,
	occurrences_count     INTEGER NOT NULL DEFAULT 0,
	last_occurrence       DATETIME,
	completed_at          DATETIME,
	created_at            DATETIME NOT NULL,
	updated_at            DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	context_id        TEXT NOT NULL REFERENCES contexts(id) ON DELETE CASCADE,
	project_id        TEXT REFERENCES projects(id) ON DELETE SET NULL,
	recurring_todo_id TEXT REFERENCES recurring_todos(id) ON DELETE SET NULL,
	description       TEXT NOT NULL,
	notes             TEXT NOT NULL DEFAULT '',
	state             TEXT NOT NULL DEFAULT 'active'
		CHECK(state IN ('active', 'deferred', 'pending', 'project_hidden', 'completed')),
	show_from         DATETIME,
	due               DATETIME,
	completed_at      DATETIME,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS dependencies (
	id                TEXT PRIMARY KEY,
	predecessor_id    TEXT NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
	successor_id      TEXT NOT NULL REFERENCES todos(id) ON DELETE CASCADE,
	relationship_type TEXT NOT NULL DEFAULT 'blocks',
	created_at        DATETIME NOT NULL,
	UNIQUE(predecessor_id, successor_id),
	CHECK(predecessor_id != successor_id)
);

CREATE INDEX IF NOT EXISTS idx_contexts_user_position ON contexts(user_id, position);
CREATE INDEX IF NOT EXISTS idx_projects_user_position ON projects(user_id, position);
CREATE INDEX IF NOT EXISTS idx_projects_user_state ON projects(user_id, state);
CREATE INDEX IF NOT EXISTS idx_todos_user_state ON todos(user_id, state);
CREATE INDEX IF NOT EXISTS idx_todos_user_show_from ON todos(user_id, show_from);
CREATE INDEX IF NOT EXISTS idx_todos_project_id ON todos(project_id);
CREATE INDEX IF NOT EXISTS idx_todos_context_id ON todos(context_id);
CREATE INDEX IF NOT EXISTS idx_recurring_todos_user_id ON recurring_todos(user_id);
CREATE INDEX IF NOT EXISTS idx_notes_user_project ON notes(user_id, project_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_predecessor ON dependencies(predecessor_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_successor ON dependencies(successor_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		// Weekly review support: how many days a project may go unreviewed.
		version: 2,
		sql: `
ALTER TABLE preferences ADD COLUMN review_period INTEGER NOT NULL DEFAULT 14;

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
