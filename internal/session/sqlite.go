package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/stellarlinkco/lorewright/internal/card"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("pragma: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	status      TEXT NOT NULL,
	output      TEXT,
	iterations  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	role        TEXT NOT NULL,
	content     TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS steps (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	tool            TEXT NOT NULL,
	input           TEXT,
	output          TEXT,
	status          TEXT NOT NULL,
	execution_order INTEGER NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
CREATE INDEX IF NOT EXISTS idx_steps_session ON steps(session_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) CreateSession(ctx context.Context, title string) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, title, status, iterations, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		sess.ID, sess.Title, string(sess.Status), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, status, output, iterations, created_at, updated_at FROM sessions WHERE id = ?`, id)

	var sess Session
	var output sql.NullString
	var status string
	if err := row.Scan(&sess.ID, &sess.Title, &status, &output, &sess.Iterations, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sess.Status = Status(status)
	if output.Valid && output.String != "" {
		var out card.GenerationOutput
		if err := json.Unmarshal([]byte(output.String), &out); err != nil {
			return nil, fmt.Errorf("decode output: %w", err)
		}
		sess.Output = &out
	}

	msgs, err := s.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Messages = msgs

	steps, err := s.getSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Steps = steps
	return &sess, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, status, iterations, created_at, updated_at FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		var sess Session
		var status string
		if err := rows.Scan(&sess.ID, &sess.Title, &status, &sess.Iterations, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Status = Status(status)
		out = append(out, &sess)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddMessage(ctx context.Context, id string, msg Message) error {
	if err := s.touch(ctx, id); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		id, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddStep(ctx context.Context, id string, step Step) error {
	if err := s.touch(ctx, id); err != nil {
		return err
	}
	if step.ID == "" {
		step.ID = uuid.NewString()
	}
	input, err := json.Marshal(step.Input)
	if err != nil {
		return fmt.Errorf("encode step input: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO steps (id, session_id, tool, input, output, status, execution_order, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		step.ID, id, step.Tool, string(input), step.Output, string(step.Status), step.ExecutionOrder, step.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`, string(status), time.Now(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return s.requireRow(res)
}

func (s *SQLiteStore) UpdateOutput(ctx context.Context, id string, out *card.GenerationOutput) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET output = ?, updated_at = ? WHERE id = ?`, string(data), time.Now(), id)
	if err != nil {
		return fmt.Errorf("update output: %w", err)
	}
	return s.requireRow(res)
}

func (s *SQLiteStore) UpdateIterations(ctx context.Context, id string, n int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET iterations = ?, updated_at = ? WHERE id = ?`, n, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update iterations: %w", err)
	}
	return s.requireRow(res)
}

func (s *SQLiteStore) GetHistory(ctx context.Context, id string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *SQLiteStore) ClearCurrentSteps(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM steps WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear steps: %w", err)
	}
	return nil
}

func (s *SQLiteStore) getSteps(ctx context.Context, id string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tool, input, output, status, execution_order, created_at FROM steps WHERE session_id = ? ORDER BY execution_order`, id)
	if err != nil {
		return nil, fmt.Errorf("get steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		var input sql.NullString
		var status string
		if err := rows.Scan(&st.ID, &st.Tool, &input, &st.Output, &status, &st.ExecutionOrder, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		st.Status = StepStatus(status)
		if input.Valid && input.String != "" {
			if err := json.Unmarshal([]byte(input.String), &st.Input); err != nil {
				return nil, fmt.Errorf("decode step input: %w", err)
			}
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

func (s *SQLiteStore) touch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return s.requireRow(res)
}

func (s *SQLiteStore) requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
