package persistence

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/petrijr/decisor/pkg/api"
)

// SQLiteHistoryStore persists workflow histories in SQLite. The AUTOINCREMENT
// rowid doubles as the event sequence ID, which keeps IDs monotonic per
// execution (and globally).
type SQLiteHistoryStore struct {
	db *sql.DB
}

var _ HistoryStore = (*SQLiteHistoryStore)(nil)

func NewSQLiteHistoryStore(db *sql.DB) (*SQLiteHistoryStore, error) {
	s := &SQLiteHistoryStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteHistoryStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow_history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			workflow_id TEXT NOT NULL,
			type TEXT NOT NULL,
			attributes TEXT NOT NULL DEFAULT '{}'
		);
		CREATE INDEX IF NOT EXISTS idx_workflow_history_workflow_id ON workflow_history(workflow_id, seq);
	`)
	return err
}

func (s *SQLiteHistoryStore) AppendEvent(ctx context.Context, workflowID string, ev api.HistoryEvent) (int64, error) {
	// The sequence ID is assigned by the database; strip any caller value so
	// the stored attributes never disagree with the seq column.
	ev.ID = 0
	attrs, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO workflow_history (workflow_id, type, attributes)
		VALUES (?, ?, ?)`,
		workflowID,
		string(ev.Type),
		string(attrs),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteHistoryStore) ListEvents(ctx context.Context, workflowID string, afterID int64, limit int) ([]api.HistoryEvent, error) {
	query := `
		SELECT seq, attributes
		FROM workflow_history
		WHERE workflow_id = ? AND seq > ?
		ORDER BY seq ASC`
	args := []any{workflowID, afterID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []api.HistoryEvent
	for rows.Next() {
		var (
			seq   int64
			attrs string
		)
		if err := rows.Scan(&seq, &attrs); err != nil {
			return nil, err
		}
		var ev api.HistoryEvent
		if err := json.Unmarshal([]byte(attrs), &ev); err != nil {
			return nil, err
		}
		ev.ID = seq
		out = append(out, ev)
	}
	return out, rows.Err()
}
