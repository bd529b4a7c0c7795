package migration

import (
	"github.com/scylladb/gocqlx/v2"
)

const createMessagesCQL = `
CREATE TABLE IF NOT EXISTS messages (
	channel_id text,
	created_at bigint,
	message_id text,
	view_type  text,
	view       text,
	created_by text,
	PRIMARY KEY (channel_id, created_at, message_id)
)`

// MigrateScylla creates the message table inside the configured keyspace.
func MigrateScylla(session gocqlx.Session) error {
	return session.ExecStmt(createMessagesCQL)
}
