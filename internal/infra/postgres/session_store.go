package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gitquiz-service/internal/domain"
)

// SessionStore persists exam attempts in Postgres. The partial unique index
// on (identity) WHERE finished_at IS NULL backs the create-or-return race:
// of two concurrent inserts for the same identity exactly one lands, and
// the loser reads the winner's row.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, candidate domain.Session) (domain.Session, error) {
	order, err := json.Marshal(candidate.QuestionOrder)
	if err != nil {
		return domain.Session{}, fmt.Errorf("marshal question order: %w", err)
	}

	// The guarded insert refuses to land once any finished row exists for
	// the identity, so a finish committing after the caller's policy check
	// cannot reopen the identity. Two rounds: if the insert loses the open
	// race and the select then misses (the winner finished in between),
	// the finished check resolves the second round.
	for attempt := 0; attempt < 2; attempt++ {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO sessions (id, identity, started_at, question_order)
			 SELECT $1, $2, $3, $4::jsonb
			 WHERE NOT EXISTS (SELECT 1 FROM sessions WHERE identity=$2 AND finished_at IS NOT NULL)
			 ON CONFLICT (identity) WHERE finished_at IS NULL DO NOTHING`,
			candidate.ID, candidate.Identity, candidate.StartedAt, string(order))
		if err != nil {
			return domain.Session{}, fmt.Errorf("insert session: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return candidate, nil
		}

		existing, err := s.openByIdentity(ctx, candidate.Identity)
		if err == nil {
			return existing, nil
		}
		if err != pgx.ErrNoRows {
			return domain.Session{}, fmt.Errorf("select open session: %w", err)
		}

		finished, err := s.HasFinished(ctx, candidate.Identity)
		if err != nil {
			return domain.Session{}, err
		}
		if finished {
			return domain.Session{}, domain.ErrAlreadyCompleted
		}
	}
	return domain.Session{}, fmt.Errorf("create session for %q: retries exhausted", candidate.Identity)
}

func (s *SessionStore) openByIdentity(ctx context.Context, identity string) (domain.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, identity, started_at, finished_at, total_time_ms, score, question_order
		 FROM sessions WHERE identity=$1 AND finished_at IS NULL`, identity)
	return scanSession(row)
}

func (s *SessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, identity, started_at, finished_at, total_time_ms, score, question_order
		 FROM sessions WHERE id=$1`, id)
	session, err := scanSession(row)
	if err == pgx.ErrNoRows {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("select session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) HasFinished(ctx context.Context, identity string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE identity=$1 AND finished_at IS NOT NULL)`,
		identity).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check finished: %w", err)
	}
	return exists, nil
}

func (s *SessionStore) Finish(ctx context.Context, id string, finishedAt time.Time, totalElapsed time.Duration, score int) error {
	// Conditional update: finished_at, total_time_ms and score land in one
	// statement, and only on the open-to-finished transition.
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET finished_at=$2, total_time_ms=$3, score=$4
		 WHERE id=$1 AND finished_at IS NULL`,
		id, finishedAt, totalElapsed.Milliseconds(), score)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE id=$1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists {
		return domain.ErrSessionFinished
	}
	return domain.ErrSessionNotFound
}

func (s *SessionStore) ListFinished(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, identity, started_at, finished_at, total_time_ms, score, question_order
		 FROM sessions WHERE finished_at IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list finished: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan finished session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session     domain.Session
		finishedAt  *time.Time
		totalTimeMs *int64
		score       *int
		orderRaw    []byte
	)
	err := row.Scan(&session.ID, &session.Identity, &session.StartedAt,
		&finishedAt, &totalTimeMs, &score, &orderRaw)
	if err != nil {
		return domain.Session{}, err
	}
	session.FinishedAt = finishedAt
	if totalTimeMs != nil {
		session.TotalElapsed = time.Duration(*totalTimeMs) * time.Millisecond
	}
	if score != nil {
		session.Score = *score
	}
	if err := json.Unmarshal(orderRaw, &session.QuestionOrder); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal question order: %w", err)
	}
	return session, nil
}
