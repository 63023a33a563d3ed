package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

const dbTimeout = 5 * time.Second

// Schema creates the tables PostgresStore and events.PostgresLogger write to.
const Schema = `
CREATE TABLE IF NOT EXISTS scheduled_tests (
	id          UUID PRIMARY KEY,
	batch_id    UUID NOT NULL,
	class       INT NOT NULL,
	subject     TEXT NOT NULL,
	test_kind   TEXT NOT NULL,
	tag         TEXT NOT NULL,
	name        TEXT NOT NULL,
	test_date   DATE NOT NULL,
	deadline    DATE NOT NULL CHECK (deadline > test_date),
	max_score   INT CHECK (max_score BETWEEN 1 AND 100),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS scheduled_tests_batch_idx ON scheduled_tests (batch_id);

CREATE TABLE IF NOT EXISTS workflow_events (
	id          BIGSERIAL PRIMARY KEY,
	workflow_id TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	data        JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// PostgresStore persists submitted tests locally instead of calling the
// remote submission service. A batch is written in one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed submitter.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Submit(ctx context.Context, req schedule.Request) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	switch req.Mode {
	case schedule.ModeCreate:
		return s.create(ctx, req.Create)
	case schedule.ModeEditSingle:
		return s.edit(ctx, req.TestID, req.Edit)
	}
	return false, fmt.Errorf("unknown request mode %d", req.Mode)
}

func (s *PostgresStore) create(ctx context.Context, p *schedule.CreatePayload) (bool, error) {
	batchID := uuid.NewString()
	tests := expandCreate(p, batchID)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, t := range tests {
			if _, err := tx.Exec(ctx,
				`INSERT INTO scheduled_tests
				   (id, batch_id, class, subject, test_kind, tag, name, test_date, deadline, max_score)
				 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10)`,
				uuid.NewString(),
				batchID,
				t.Class,
				t.Subject,
				string(t.Kind),
				t.Tag,
				t.Name,
				t.TestDate.Time(),
				t.Deadline.Time(),
				t.MaxScore,
			); err != nil {
				return fmt.Errorf("insert class %d %q: %w", t.Class, t.Subject, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("create batch: %w", err)
	}

	slog.Info("test batch stored", "batch_id", batchID, "tests", len(tests))
	return true, nil
}

func (s *PostgresStore) edit(ctx context.Context, id string, p *schedule.EditPayload) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	_, month := schedule.SplitTag(p.Tag)

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var class int
		var subject string
		if err := tx.QueryRow(ctx,
			`SELECT class, subject FROM scheduled_tests WHERE id = $1::uuid FOR UPDATE`,
			id,
		).Scan(&class, &subject); err != nil {
			return err
		}

		_, err := tx.Exec(ctx,
			`UPDATE scheduled_tests
			 SET test_kind = $2, tag = $3, name = $4, test_date = $5, deadline = $6, updated_at = NOW()
			 WHERE id = $1::uuid`,
			id,
			string(p.TestKind),
			p.Tag,
			schedule.TestName(subject, p.TestKind, class, month),
			p.TestDate.Time(),
			p.Deadline.Time(),
		)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update test %s: %w", id, err)
	}
	return true, nil
}

const selectTests = `SELECT id::text, batch_id::text, class, subject, test_kind, tag, name, test_date, deadline, max_score
 FROM scheduled_tests`

// Get loads a stored test.
func (s *PostgresStore) Get(ctx context.Context, id string) (ScheduledTest, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	t, err := scanTest(s.pool.QueryRow(ctx, selectTests+` WHERE id = $1::uuid`, id))
	if err != nil {
		return ScheduledTest{}, fmt.Errorf("get test %s: %w", id, err)
	}
	return t, nil
}

// ListBatch returns the tests of one batch ordered by class and subject.
func (s *PostgresStore) ListBatch(ctx context.Context, batchID string) ([]ScheduledTest, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, selectTests+` WHERE batch_id = $1::uuid ORDER BY class, subject`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch: %w", err)
	}
	defer rows.Close()

	var tests []ScheduledTest
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan test: %w", err)
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch: %w", err)
	}
	return tests, nil
}

func scanTest(row pgx.Row) (ScheduledTest, error) {
	var t ScheduledTest
	var kind string
	var testDate, deadline time.Time
	if err := row.Scan(&t.ID, &t.BatchID, &t.Class, &t.Subject, &kind, &t.Tag, &t.Name, &testDate, &deadline, &t.MaxScore); err != nil {
		return ScheduledTest{}, err
	}
	t.Kind = schedule.TestKind(kind)
	t.TestDate = schedule.DateOf(testDate)
	t.Deadline = schedule.DateOf(deadline)
	return t, nil
}
