package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gitquiz-service/internal/domain"
)

func TestSessionStoreGetOrCreateRace(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	const workers = 16
	results := make([]domain.Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidate := domain.Session{
				ID:            fmt.Sprintf("candidate-%d", i),
				Identity:      "alice@pmfst.hr",
				StartedAt:     time.Now(),
				QuestionOrder: []int{1, 2, 3},
			}
			session, err := store.GetOrCreate(ctx, candidate)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = session
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i].ID != results[0].ID {
			t.Fatalf("workers observed different sessions: %q vs %q", results[0].ID, results[i].ID)
		}
	}
}

func TestSessionStoreGetOrCreateRejectsFinishedIdentity(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	first := domain.Session{ID: "s1", Identity: "alice@pmfst.hr", StartedAt: time.Now(), QuestionOrder: []int{1}}
	if _, err := store.GetOrCreate(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Finish(ctx, "s1", time.Now(), time.Second, 1); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// The open-session index no longer knows the identity, but the
	// finished row must still block a fresh attempt.
	second := domain.Session{ID: "s2", Identity: "alice@pmfst.hr", StartedAt: time.Now(), QuestionOrder: []int{1}}
	if _, err := store.GetOrCreate(ctx, second); !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if _, err := store.Get(ctx, "s2"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("rejected candidate must not be stored, got %v", err)
	}
}

func TestSessionStoreFinishTransition(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := domain.Session{ID: "s1", Identity: "alice@pmfst.hr", StartedAt: time.Now(), QuestionOrder: []int{1}}
	if _, err := store.GetOrCreate(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	finishedAt := time.Now()
	if err := store.Finish(ctx, "s1", finishedAt, 30*time.Second, 2); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := store.Finish(ctx, "s1", finishedAt.Add(time.Minute), time.Minute, 99); !errors.Is(err, domain.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished on second finish, got %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Score != 2 || got.TotalElapsed != 30*time.Second {
		t.Fatalf("second finish must not alter outcome, got %+v", got)
	}

	if err := store.Finish(ctx, "missing", finishedAt, 0, 0); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStoreNewAttemptAfterFinish(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	first := domain.Session{ID: "s1", Identity: "alice@pmfst.hr", StartedAt: time.Now(), QuestionOrder: []int{1}}
	if _, err := store.GetOrCreate(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Finish(ctx, "s1", time.Now(), time.Second, 1); err != nil {
		t.Fatalf("finish: %v", err)
	}

	finished, err := store.HasFinished(ctx, "alice@pmfst.hr")
	if err != nil || !finished {
		t.Fatalf("expected identity marked finished, got %v %v", finished, err)
	}

	listed, err := store.ListFinished(ctx)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one finished session, got %d (%v)", len(listed), err)
	}
}
