// Package grading ranks finished exam sessions against each other.
//
// Grades are population-relative: the best score and best time among all
// finished sessions define the reference point, so every participant's
// grade can change whenever a new participant finishes. Nothing here is
// cached or stored; callers recompute from the live population on every
// read.
package grading

import (
	"sort"
	"time"
)

const (
	scoreWeight = 0.85
	speedWeight = 0.15
)

// FinishedSession is the minimal projection of a completed attempt that
// the grading formula needs.
type FinishedSession struct {
	ID        string
	Identity  string
	Score     int
	TotalTime time.Duration
}

// Graded is a ranked session with its composite-derived grade.
type Graded struct {
	FinishedSession
	Grade int
}

// Result holds the ranked population and the reference statistics it was
// graded against.
type Result struct {
	BestScore int
	BestTime  time.Duration
	Ranked    []Graded
	GradeByID map[string]int
}

// Compute grades every finished session relative to the population's best
// score and best time. An empty population yields an empty result.
func Compute(sessions []FinishedSession) Result {
	result := Result{GradeByID: make(map[string]int, len(sessions))}
	if len(sessions) == 0 {
		return result
	}

	bestScore := sessions[0].Score
	bestTime := sessions[0].TotalTime
	for _, s := range sessions[1:] {
		if s.Score > bestScore {
			bestScore = s.Score
		}
		if s.TotalTime < bestTime {
			bestTime = s.TotalTime
		}
	}
	result.BestScore = bestScore
	result.BestTime = bestTime

	ranked := make([]Graded, 0, len(sessions))
	for _, s := range sessions {
		grade := gradeFor(s, bestScore, bestTime)
		ranked = append(ranked, Graded{FinishedSession: s, Grade: grade})
		result.GradeByID[s.ID] = grade
	}

	// Descending score, ties broken by faster total time.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].TotalTime < ranked[j].TotalTime
	})
	result.Ranked = ranked
	return result
}

func gradeFor(s FinishedSession, bestScore int, bestTime time.Duration) int {
	var scoreRatio, speedRatio float64
	if bestScore > 0 {
		scoreRatio = float64(s.Score) / float64(bestScore)
	}
	if bestTime > 0 && s.TotalTime > 0 {
		speedRatio = float64(bestTime) / float64(s.TotalTime)
	}
	composite := clamp(scoreWeight*scoreRatio + speedWeight*speedRatio)
	switch {
	case composite >= 0.9:
		return 5
	case composite >= 0.8:
		return 4
	case composite >= 0.7:
		return 3
	case composite >= 0.6:
		return 2
	default:
		return 1
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
