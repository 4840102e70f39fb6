package session

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"versecoach/internal/domain"
	"versecoach/internal/ports"
)

// Aggregator owns one practice session: its identity, the ordered log of
// verse scores and the materialized report. Scores append in completion
// order; a re-recorded verse adds a new entry rather than replacing the old
// one, so the log is a full record of attempts.
type Aggregator struct {
	reports ports.ReportService
	logger  *zap.Logger

	mu     sync.Mutex
	id     string
	scores []domain.ScoreResult
	report *domain.Report

	materialize singleflight.Group
}

func NewAggregator(reports ports.ReportService, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		reports: reports,
		logger:  logger,
		id:      uuid.NewString(),
	}
}

// NewAggregatorWithID resumes an existing session identity, e.g. one carried
// in a navigable address across a reload.
func NewAggregatorWithID(id string, reports ports.ReportService, logger *zap.Logger) *Aggregator {
	if id == "" {
		id = uuid.NewString()
	}
	return &Aggregator{
		reports: reports,
		logger:  logger,
		id:      id,
	}
}

// ID returns the stable session identifier.
func (a *Aggregator) ID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.id
}

// RecordScore appends one completed verse score. Pure append; prior entries
// are never mutated.
func (a *Aggregator) RecordScore(verseIndex, score int) {
	a.mu.Lock()
	a.scores = append(a.scores, domain.ScoreResult{Score: score, VerseIndex: verseIndex})
	count := len(a.scores)
	a.mu.Unlock()

	a.logger.Debug("score recorded",
		zap.Int("verse", verseIndex),
		zap.Int("score", score),
		zap.Int("attempts", count))
}

// Scores returns the score log in completion order.
func (a *Aggregator) Scores() []domain.ScoreResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.ScoreResult, len(a.scores))
	copy(out, a.scores)
	return out
}

// Aggregate recomputes the session mean, rounded to the nearest integer,
// 0 when no verse has been scored yet.
func (a *Aggregator) Aggregate() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range a.scores {
		sum += s.Score
	}
	return int(math.Round(float64(sum) / float64(len(a.scores))))
}

// RequestReport materializes the session report at most once. Duplicate
// triggers return the already-materialized report without another upstream
// call, and concurrent triggers share a single in-flight request. A failed
// request caches nothing, leaving the caller free to retry.
func (a *Aggregator) RequestReport(ctx context.Context, songID int) (domain.Report, error) {
	a.mu.Lock()
	if a.report != nil {
		report := *a.report
		a.mu.Unlock()
		return report, nil
	}
	id := a.id
	a.mu.Unlock()

	v, err, _ := a.materialize.Do(id, func() (any, error) {
		report, err := a.reports.MaterializeReport(ctx, songID, id)
		if err != nil {
			return nil, err
		}

		a.mu.Lock()
		// Ignore a report that raced with Restart.
		if a.id == id {
			a.report = &report
		}
		a.mu.Unlock()
		return report, nil
	})
	if err != nil {
		a.logger.Warn("report materialization failed",
			zap.String("session", id),
			zap.Error(err))
		return domain.Report{}, err
	}
	return v.(domain.Report), nil
}

// Restart begins a fresh session: new identifier, empty score log, no
// report. Returns the new session id.
func (a *Aggregator) Restart() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.id = uuid.NewString()
	a.scores = nil
	a.report = nil
	return a.id
}

// PreviousVerse steps back one verse, wrapping from the first to the last.
// Verse numbering is 1-based.
func PreviousVerse(current, total int) int {
	if total <= 0 {
		return current
	}
	if current > 1 {
		return current - 1
	}
	return total
}

// NextVerse steps forward one verse, wrapping from the last to the first.
func NextVerse(current, total int) int {
	if total <= 0 {
		return current
	}
	if current < total {
		return current + 1
	}
	return 1
}
