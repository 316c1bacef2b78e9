package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"gitquiz-service/internal/domain"
)

// AnswerStore persists the answer ledger. The composite primary key plus
// ON CONFLICT DO UPDATE gives the linearizable last-write-wins upsert the
// recorder needs; a resubmission can never leave two rows or mix fields
// from different writes.
type AnswerStore struct {
	pool *pgxpool.Pool
}

func NewAnswerStore(pool *pgxpool.Pool) *AnswerStore {
	return &AnswerStore{pool: pool}
}

func (s *AnswerStore) Upsert(ctx context.Context, answer domain.Answer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO answers (session_id, question_id, answer, time_ms, correct)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET answer=EXCLUDED.answer, time_ms=EXCLUDED.time_ms, correct=EXCLUDED.correct`,
		answer.SessionID, answer.QuestionID, answer.Option, answer.Elapsed.Milliseconds(), answer.Correct)
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

func (s *AnswerStore) ListBySession(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, question_id, answer, time_ms, correct
		 FROM answers WHERE session_id=$1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var (
			answer domain.Answer
			timeMs int64
		)
		if err := rows.Scan(&answer.SessionID, &answer.QuestionID, &answer.Option, &timeMs, &answer.Correct); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answer.Elapsed = time.Duration(timeMs) * time.Millisecond
		answers = append(answers, answer)
	}
	return answers, rows.Err()
}

func (s *AnswerStore) CorrectCounts(ctx context.Context, questionIDs []int) (map[string]int, error) {
	counts := make(map[string]int)
	if len(questionIDs) == 0 {
		return counts, nil
	}

	ids := make([]int32, len(questionIDs))
	for i, id := range questionIDs {
		ids[i] = int32(id)
	}
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, COUNT(*) FROM answers
		 WHERE correct AND question_id = ANY($1)
		 GROUP BY session_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("count control answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID string
			count     int
		)
		if err := rows.Scan(&sessionID, &count); err != nil {
			return nil, fmt.Errorf("scan control count: %w", err)
		}
		counts[sessionID] = count
	}
	return counts, rows.Err()
}
