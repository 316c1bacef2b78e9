package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitquiz-service/internal/domain"
	"gitquiz-service/internal/grading"
)

// SessionStore persists exam attempts (in-memory, Postgres, etc).
type SessionStore interface {
	// GetOrCreate atomically returns the open session for the candidate's
	// identity, inserts the candidate if the identity has no session yet,
	// or fails with domain.ErrAlreadyCompleted if a finished attempt
	// exists. The finished check happens inside the same atomic step as
	// the insert, so a finish racing the caller's policy check can never
	// reopen the identity.
	GetOrCreate(ctx context.Context, candidate domain.Session) (domain.Session, error)
	Get(ctx context.Context, id string) (domain.Session, error)
	// HasFinished reports whether the identity already completed an attempt.
	HasFinished(ctx context.Context, identity string) (bool, error)
	// Finish commits finishedAt, totalElapsed and score together. It fails
	// with domain.ErrSessionFinished if the transition already happened and
	// domain.ErrSessionNotFound if the session does not exist.
	Finish(ctx context.Context, id string, finishedAt time.Time, totalElapsed time.Duration, score int) error
	ListFinished(ctx context.Context) ([]domain.Session, error)
}

// AnswerStore persists the answer ledger: at most one row per
// (session, question) pair.
type AnswerStore interface {
	// Upsert replaces any previous answer for the same pair; all fields are
	// written together, never partially.
	Upsert(ctx context.Context, answer domain.Answer) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Answer, error)
	// CorrectCounts returns, per session id, how many of the given
	// questions were answered correctly.
	CorrectCounts(ctx context.Context, questionIDs []int) (map[string]int, error)
}

// CatalogRepository loads the question catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// Options tune the policy knobs of the service.
type Options struct {
	// EmailDomain is the required domain suffix for participant emails.
	EmailDomain string
	// LeaderboardSize caps the entries returned by Leaderboard reads.
	// Finish always returns the full ranking.
	LeaderboardSize int
}

// QuizService contains the exam use cases: start/resume a session, record
// answers, finish, and read the population-relative leaderboard.
type QuizService struct {
	sessions SessionStore
	answers  AnswerStore
	catalog  CatalogRepository
	opts     Options
	now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizService(sessions SessionStore, answers AnswerStore, catalog CatalogRepository, opts Options) *QuizService {
	if opts.LeaderboardSize <= 0 {
		opts.LeaderboardSize = 10
	}
	return &QuizService{
		sessions: sessions,
		answers:  answers,
		catalog:  catalog,
		opts:     opts,
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// Start validates the identity, resumes an open attempt if one exists, and
// otherwise creates a fresh session with a frozen random question order.
// An identity that already finished can never start again.
func (s *QuizService) Start(ctx context.Context, email string) (domain.SessionView, error) {
	identity, ok := normalizeIdentity(email, s.opts.EmailDomain)
	if !ok {
		return domain.SessionView{}, domain.ErrInvalidIdentity
	}

	finished, err := s.sessions.HasFinished(ctx, identity)
	if err != nil {
		return domain.SessionView{}, err
	}
	if finished {
		return domain.SessionView{}, domain.ErrAlreadyCompleted
	}

	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return domain.SessionView{}, err
	}

	candidate := domain.Session{
		ID:            uuid.NewString(),
		Identity:      identity,
		StartedAt:     s.now(),
		QuestionOrder: s.shuffledOrder(catalog),
	}
	session, err := s.sessions.GetOrCreate(ctx, candidate)
	if err != nil {
		return domain.SessionView{}, err
	}
	return s.viewOf(ctx, session, catalog)
}

// Resume returns the view of an open session by id, so a reloaded client
// can pick up where it left off with the identical question sequence.
func (s *QuizService) Resume(ctx context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	if session.Finished() {
		return domain.SessionView{}, domain.ErrSessionFinished
	}
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return domain.SessionView{}, err
	}
	return s.viewOf(ctx, session, catalog)
}

// RecordAnswer validates the question, clamps the client-reported elapsed
// time into [0, question limit], computes correctness against the catalog's
// canonical option text and upserts the (session, question) row. Retries
// and duplicate dispatches are safe: the last write wins.
func (s *QuizService) RecordAnswer(ctx context.Context, sessionID string, questionID int, option *string, elapsedMs int64) error {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return err
	}
	question, ok := catalog.ByID(questionID)
	if !ok {
		return domain.ErrQuestionNotFound
	}

	elapsed := time.Duration(elapsedMs) * time.Millisecond
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > question.TimeLimit {
		elapsed = question.TimeLimit
	}

	correct := option != nil && *option == question.CorrectOption()

	return s.answers.Upsert(ctx, domain.Answer{
		SessionID:  sessionID,
		QuestionID: questionID,
		Option:     option,
		Elapsed:    elapsed,
		Correct:    correct,
	})
}

// Finish scores the session in its frozen question order, commits the
// finish transition exactly once, then regrades the whole finished
// population. A second Finish on the same session is rejected with
// domain.ErrSessionFinished and leaves nothing changed.
func (s *QuizService) Finish(ctx context.Context, sessionID string) (domain.FinishResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.FinishResult{}, err
	}
	if session.Finished() {
		return domain.FinishResult{}, domain.ErrSessionFinished
	}

	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return domain.FinishResult{}, err
	}
	answers, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return domain.FinishResult{}, err
	}

	byQuestion := make(map[int]domain.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	score := 0
	var incorrect []domain.IncorrectAnswer
	for _, qid := range session.QuestionOrder {
		question, ok := catalog.ByID(qid)
		if !ok {
			continue
		}
		answer, answered := byQuestion[qid]
		if answered && answer.Correct {
			score++
			continue
		}
		var submitted *string
		if answered {
			submitted = answer.Option
		}
		incorrect = append(incorrect, domain.IncorrectAnswer{
			QuestionID:    qid,
			Prompt:        question.Prompt,
			YourAnswer:    submitted,
			CorrectAnswer: question.CorrectOption(),
		})
	}

	finishedAt := s.now()
	totalElapsed := finishedAt.Sub(session.StartedAt)
	if totalElapsed < 0 {
		totalElapsed = 0
	}

	if err := s.sessions.Finish(ctx, sessionID, finishedAt, totalElapsed, score); err != nil {
		return domain.FinishResult{}, err
	}

	leaderboard, grades, err := s.buildLeaderboard(ctx, catalog)
	if err != nil {
		return domain.FinishResult{}, err
	}

	return domain.FinishResult{
		Score:          score,
		TotalQuestions: len(session.QuestionOrder),
		TotalTimeMs:    totalElapsed.Milliseconds(),
		Incorrect:      incorrect,
		Grade:          grades[sessionID],
		Leaderboard:    leaderboard,
		ControlTotal:   leaderboard.ControlTotal,
	}, nil
}

// Leaderboard recomputes grades from the live finished population and
// returns the top entries. It mutates nothing, so it is safe to poll; the
// caller's grade is nil unless sessionID names a finished session.
func (s *QuizService) Leaderboard(ctx context.Context, sessionID string) (domain.LeaderboardStanding, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return domain.LeaderboardStanding{}, err
	}
	leaderboard, grades, err := s.buildLeaderboard(ctx, catalog)
	if err != nil {
		return domain.LeaderboardStanding{}, err
	}

	if len(leaderboard.Entries) > s.opts.LeaderboardSize {
		leaderboard.Entries = leaderboard.Entries[:s.opts.LeaderboardSize]
	}

	var grade *int
	if sessionID != "" {
		if g, ok := grades[sessionID]; ok {
			grade = &g
		}
	}
	return domain.LeaderboardStanding{Grade: grade, Leaderboard: leaderboard}, nil
}

// buildLeaderboard scans all finished sessions, grades them relative to the
// population's best score and time, and joins the control-question signal.
func (s *QuizService) buildLeaderboard(ctx context.Context, catalog domain.Catalog) (domain.Leaderboard, map[string]int, error) {
	finished, err := s.sessions.ListFinished(ctx)
	if err != nil {
		return domain.Leaderboard{}, nil, err
	}

	population := make([]grading.FinishedSession, 0, len(finished))
	for _, sess := range finished {
		population = append(population, grading.FinishedSession{
			ID:        sess.ID,
			Identity:  sess.Identity,
			Score:     sess.Score,
			TotalTime: sess.TotalElapsed,
		})
	}
	result := grading.Compute(population)

	controlIDs := catalog.ControlIDs()
	controlCounts := map[string]int{}
	if len(controlIDs) > 0 && len(finished) > 0 {
		controlCounts, err = s.answers.CorrectCounts(ctx, controlIDs)
		if err != nil {
			return domain.Leaderboard{}, nil, err
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(result.Ranked))
	for _, g := range result.Ranked {
		count := controlCounts[g.ID]
		entries = append(entries, domain.LeaderboardEntry{
			SessionID:           g.ID,
			Identity:            g.Identity,
			Score:               g.Score,
			TotalTimeMs:         g.TotalTime.Milliseconds(),
			Grade:               g.Grade,
			ControlCorrectCount: count,
			ControlAllCorrect:   count == len(controlIDs),
		})
	}

	return domain.Leaderboard{
		Entries:      entries,
		ControlTotal: len(controlIDs),
		UpdatedAt:    s.now(),
	}, result.GradeByID, nil
}

// viewOf projects a session into its participant-safe shape: questions in
// the frozen order with no correct-answer information, plus the set of
// already-answered ids so the client can skip ahead.
func (s *QuizService) viewOf(ctx context.Context, session domain.Session, catalog domain.Catalog) (domain.SessionView, error) {
	answers, err := s.answers.ListBySession(ctx, session.ID)
	if err != nil {
		return domain.SessionView{}, err
	}
	answeredIDs := make([]int, 0, len(answers))
	for _, a := range answers {
		answeredIDs = append(answeredIDs, a.QuestionID)
	}

	questions := make([]domain.QuestionView, 0, len(session.QuestionOrder))
	for _, qid := range session.QuestionOrder {
		q, ok := catalog.ByID(qid)
		if !ok {
			continue
		}
		questions = append(questions, domain.QuestionView{
			ID:               q.ID,
			Prompt:           q.Prompt,
			Options:          q.Options,
			TimeLimitSeconds: int(q.TimeLimit / time.Second),
		})
	}

	return domain.SessionView{
		SessionID:        session.ID,
		StartedAt:        session.StartedAt,
		TotalTimeSeconds: int(catalog.TotalTimeLimit / time.Second),
		Questions:        questions,
		AnsweredIDs:      answeredIDs,
	}, nil
}

func (s *QuizService) shuffledOrder(catalog domain.Catalog) []int {
	ids := catalog.IDs()
	s.mu.Lock()
	s.rnd.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	s.mu.Unlock()
	return ids
}

// normalizeIdentity lower-cases and trims the email and enforces the
// configured domain suffix. An empty configured domain accepts any
// well-formed address.
func normalizeIdentity(email, requiredDomain string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	local, dom, ok := strings.Cut(normalized, "@")
	if !ok || local == "" || dom == "" {
		return "", false
	}
	if requiredDomain != "" && dom != requiredDomain {
		return "", false
	}
	return normalized, true
}
