package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"versecoach/internal/domain"
	"versecoach/internal/ports"
)

// submitter turns one finalized clip into a ScoreResult or a classified
// error. A ScoreResult is only built from an acknowledged in-range score.
type submitter struct {
	scoring ports.ScoringService
	logger  *zap.Logger
}

func newSubmitter(scoring ports.ScoringService, logger *zap.Logger) submitter {
	return submitter{scoring: scoring, logger: logger}
}

func (s submitter) Submit(ctx context.Context, clip domain.AudioClip, verse domain.VerseContext) (domain.ScoreResult, error) {
	score, err := s.scoring.Score(ctx, clip, verse)
	if err != nil {
		var ce *domain.CaptureError
		if !errors.As(err, &ce) {
			ce = domain.NewCaptureError(domain.ErrorCodeUnknown, err)
		}
		s.logger.Warn("score submission failed",
			zap.String("code", string(ce.Code)),
			zap.Int("verse", verse.VerseIndex),
			zap.Error(err))
		return domain.ScoreResult{}, ce
	}

	if score < 0 || score > 100 {
		return domain.ScoreResult{}, domain.NewCaptureError(domain.ErrorCodeUnknown,
			fmt.Errorf("scoring service acknowledged an out-of-range score %d", score))
	}

	return domain.ScoreResult{Score: score, VerseIndex: verse.VerseIndex}, nil
}
