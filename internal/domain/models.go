package domain

import "time"

// Question is a single catalog entry. The correct option is identified by
// index into Options; correctness checks always compare canonical option
// text, never a presentation-layer position.
type Question struct {
	ID           int           `json:"id"`
	Prompt       string        `json:"prompt"`
	Options      []string      `json:"options"`
	CorrectIndex int           `json:"correctIndex"`
	TimeLimit    time.Duration `json:"timeLimit"`
	IsControl    bool          `json:"isControl,omitempty"`
}

// CorrectOption returns the canonical text of the correct option.
func (q Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// Catalog is the full ordered question set served to every participant.
type Catalog struct {
	Questions      []Question    `json:"questions"`
	TotalTimeLimit time.Duration `json:"totalTimeLimit"`
}

// ByID returns the question with the given id.
func (c Catalog) ByID(id int) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// IDs returns the catalog question ids in canonical order.
func (c Catalog) IDs() []int {
	ids := make([]int, len(c.Questions))
	for i, q := range c.Questions {
		ids[i] = q.ID
	}
	return ids
}

// ControlIDs returns the ids of questions flagged as control checks.
func (c Catalog) ControlIDs() []int {
	var ids []int
	for _, q := range c.Questions {
		if q.IsControl {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// Session is one participant's single attempt. FinishedAt == nil means the
// attempt is still open; once set the session is immutable.
type Session struct {
	ID            string
	Identity      string
	StartedAt     time.Time
	FinishedAt    *time.Time
	TotalElapsed  time.Duration
	Score         int
	QuestionOrder []int
}

// Finished reports whether the session has completed its finish transition.
func (s Session) Finished() bool {
	return s.FinishedAt != nil
}

// Answer is the recorded submission for one (session, question) pair.
// Option == nil means the participant explicitly skipped ("I don't know").
type Answer struct {
	SessionID  string
	QuestionID int
	Option     *string
	Elapsed    time.Duration
	Correct    bool
}

// QuestionView is the participant-safe projection of a question: no correct
// index, no control flag.
type QuestionView struct {
	ID               int      `json:"id"`
	Prompt           string   `json:"prompt"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// SessionView is what Start and Resume hand back to the caller.
type SessionView struct {
	SessionID        string         `json:"sessionId"`
	StartedAt        time.Time      `json:"startedAt"`
	TotalTimeSeconds int            `json:"totalTimeLimitSeconds"`
	Questions        []QuestionView `json:"questions"`
	AnsweredIDs      []int          `json:"answeredIds"`
}

// IncorrectAnswer is feedback for a missed question. It is produced at
// finish time and never influences scoring.
type IncorrectAnswer struct {
	QuestionID    int     `json:"id"`
	Prompt        string  `json:"prompt"`
	YourAnswer    *string `json:"yourAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
}

// LeaderboardEntry is a derived ranking row; it is recomputed from the
// finished-session population on every read and never stored.
type LeaderboardEntry struct {
	SessionID           string `json:"sessionId"`
	Identity            string `json:"identity"`
	Score               int    `json:"score"`
	TotalTimeMs         int64  `json:"totalTimeMs"`
	Grade               int    `json:"grade"`
	ControlCorrectCount int    `json:"controlCorrectCount"`
	ControlAllCorrect   bool   `json:"controlAllCorrect"`
}

// Leaderboard is the ranked scoreboard over all finished sessions.
type Leaderboard struct {
	Entries      []LeaderboardEntry `json:"entries"`
	ControlTotal int                `json:"controlTotal"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// FinishResult summarizes a completed attempt together with the
// population-relative standing at the moment of finishing.
type FinishResult struct {
	Score          int               `json:"score"`
	TotalQuestions int               `json:"totalQuestions"`
	TotalTimeMs    int64             `json:"totalTimeMs"`
	Incorrect      []IncorrectAnswer `json:"incorrect"`
	Grade          int               `json:"grade"`
	Leaderboard    Leaderboard       `json:"leaderboard"`
	ControlTotal   int               `json:"controlTotal"`
}

// LeaderboardStanding is the read-only poll result for a leaderboard query.
// Grade is nil when the caller did not identify a finished session.
type LeaderboardStanding struct {
	Grade       *int        `json:"grade"`
	Leaderboard Leaderboard `json:"leaderboard"`
}
