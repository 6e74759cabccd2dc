package audit

// Schema is the audit trail DDL. Idempotent; applied by Init.
const Schema = `
CREATE TABLE IF NOT EXISTS tool_calls (
	entry_id      TEXT PRIMARY KEY,
	timestamp     INTEGER NOT NULL,
	tool_name     TEXT NOT NULL,
	arguments     TEXT,
	status        TEXT NOT NULL,
	error_message TEXT,
	duration_ms   INTEGER,
	transport     TEXT,
	session_id    TEXT
);
CREATE INDEX IF NOT EXISTS idx_tool_calls_timestamp ON tool_calls(timestamp);
CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool_name);
`
