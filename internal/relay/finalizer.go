package relay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voxhire/voxhire/server/domain/entities"
	"github.com/voxhire/voxhire/server/domain/repositories"
)

// Reporter produces a narrative evaluation report for a finished interview.
type Reporter interface {
	Report(ctx context.Context, lang string, outcome *entities.InterviewOutcome) (string, error)
}

// Finalizer persists the interview outcome after a session ends. It runs in
// connection teardown, so every failure is logged rather than propagated.
type Finalizer struct {
	candidates repositories.CandidateRepository
	reporter   Reporter
	logger     *zap.Logger
}

// NewFinalizer builds a finalizer; reporter may be nil.
func NewFinalizer(candidates repositories.CandidateRepository, reporter Reporter, logger *zap.Logger) *Finalizer {
	return &Finalizer{candidates: candidates, reporter: reporter, logger: logger}
}

// Finalize stores the session outcome for its candidate. Sessions that never
// completed leave no record.
func (f *Finalizer) Finalize(ctx context.Context, session *entities.InterviewSession) {
	outcome := session.Outcome()
	if outcome == nil {
		f.logger.Debug("session ended without completion, nothing to persist",
			zap.String("session_id", session.ID()),
		)
		return
	}

	if f.reporter != nil {
		reportCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		report, err := f.reporter.Report(reportCtx, session.Language(), outcome)
		cancel()
		if err != nil {
			f.logger.Warn("report generation failed",
				zap.String("session_id", session.ID()),
				zap.Error(err),
			)
		} else {
			outcome.Report = report
		}
	}

	if err := f.candidates.SaveInterviewResult(ctx, session.CandidateID(), outcome); err != nil {
		f.logger.Error("interview result persistence failed",
			zap.String("session_id", session.ID()),
			zap.String("candidate_id", session.CandidateID()),
			zap.Error(err),
		)
		return
	}

	f.logger.Info("interview result persisted",
		zap.String("session_id", session.ID()),
		zap.String("candidate_id", session.CandidateID()),
		zap.Int("score", outcome.Score),
		zap.String("decision", outcome.Decision),
	)
}
