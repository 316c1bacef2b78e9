package memory

import (
	"context"
	"sync"

	"gitquiz-service/internal/domain"
)

type answerKey struct {
	sessionID  string
	questionID int
}

// AnswerStore is an in-memory implementation of app.AnswerStore. The map
// key is the (session, question) pair, so a resubmission replaces the whole
// row atomically and duplicates are impossible.
type AnswerStore struct {
	mu      sync.RWMutex
	answers map[answerKey]domain.Answer
}

func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(map[answerKey]domain.Answer)}
}

func (s *AnswerStore) Upsert(_ context.Context, answer domain.Answer) error {
	s.mu.Lock()
	s.answers[answerKey{answer.SessionID, answer.QuestionID}] = answer
	s.mu.Unlock()
	return nil
}

func (s *AnswerStore) ListBySession(_ context.Context, sessionID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Answer
	for key, answer := range s.answers {
		if key.sessionID == sessionID {
			out = append(out, answer)
		}
	}
	return out, nil
}

func (s *AnswerStore) CorrectCounts(_ context.Context, questionIDs []int) (map[string]int, error) {
	wanted := make(map[int]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for key, answer := range s.answers {
		if _, ok := wanted[key.questionID]; ok && answer.Correct {
			counts[key.sessionID]++
		}
	}
	return counts, nil
}
