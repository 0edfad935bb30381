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

CREATE TABLE IF NOT EXISTS follow_ups (
	message_id   TEXT PRIMARY KEY,
	subject      TEXT NOT NULL DEFAULT '',
	sender       TEXT NOT NULL DEFAULT '',
	due_at       DATETIME NOT NULL,
	priority     TEXT NOT NULL DEFAULT 'medium'
	             CHECK(priority IN ('high', 'medium', 'low')),
	status       TEXT NOT NULL DEFAULT 'pending'
	             CHECK(status IN ('pending', 'completed')),
	created_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS retrieval_records (
	id           TEXT PRIMARY KEY,
	message_body TEXT NOT NULL,
	reply_body   TEXT NOT NULL,
	embedding    TEXT NOT NULL,
	stored_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_follow_ups_status ON follow_ups(status);
CREATE INDEX IF NOT EXISTS idx_follow_ups_due_at ON follow_ups(due_at);
CREATE INDEX IF NOT EXISTS idx_retrieval_stored_at ON retrieval_records(stored_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
