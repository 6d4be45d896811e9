package relay

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voxhire/voxhire/server/domain/entities"
	"github.com/voxhire/voxhire/server/domain/repositories"
)

// sessionUpdateFrame wraps the session configuration for the upstream
// session.update message.
type sessionUpdateFrame struct {
	Type    string         `json:"type"`
	Session *SessionConfig `json:"session"`
}

// Handler owns the websocket endpoint: it authenticates nothing by itself
// (route middleware does), loads the candidate, dials upstream, and runs the
// two relay pumps until either side disconnects.
type Handler struct {
	candidates repositories.CandidateRepository
	vacancies  repositories.VacancyRepository
	registry   *Registry
	dialer     UpstreamDialer
	finalizer  *Finalizer
	params     entities.SessionParams
	model      string
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewHandler(
	candidates repositories.CandidateRepository,
	vacancies repositories.VacancyRepository,
	registry *Registry,
	dialer UpstreamDialer,
	finalizer *Finalizer,
	params entities.SessionParams,
	model string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		candidates: candidates,
		vacancies:  vacancies,
		registry:   registry,
		dialer:     dialer,
		finalizer:  finalizer,
		params:     params,
		model:      model,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Registry exposes the live-session registry for the HTTP API.
func (h *Handler) Registry() *Registry {
	return h.registry
}

// HandleWS upgrades the request and runs a full interview session on the
// resulting connection.
func (h *Handler) HandleWS(c echo.Context) error {
	candidateID := c.Param("candidate_id")

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "websocket upgrade failed")
	}
	client := NewSocket(conn)
	defer client.Close()

	ctx := c.Request().Context()

	candidate, err := h.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			h.writeError(client, "candidate not found")
			return nil
		}
		h.logger.Error("candidate lookup failed", zap.String("candidate_id", candidateID), zap.Error(err))
		h.writeError(client, "candidate lookup failed")
		return nil
	}

	// An explicit lang query parameter wins over the stored preference.
	requested := c.QueryParam("lang")
	if requested == "" {
		requested = candidate.Language
	}
	lang := entities.NormalizeLanguage(requested)
	if lang != candidate.Language {
		if err := h.candidates.UpdateLanguage(ctx, candidateID, lang); err != nil {
			h.logger.Warn("language normalization persistence failed",
				zap.String("candidate_id", candidateID),
				zap.Error(err),
			)
		}
	}

	vacancy, scenario := h.loadScenario(ctx, candidate.VacancyID, lang)

	session := entities.NewInterviewSession(uuid.NewString(), candidateID, candidate.VacancyID, lang, scenario, h.params)
	h.registry.Register(session)
	defer h.registry.Remove(session.ID())

	h.logger.Info("interview session starting",
		zap.String("session_id", session.ID()),
		zap.String("candidate_id", candidateID),
		zap.String("lang", lang),
		zap.Int("total_questions", scenario.TotalQuestions()),
	)

	upstream, err := h.dialer.Dial(ctx)
	if err != nil {
		h.logger.Error("upstream dial failed", zap.String("session_id", session.ID()), zap.Error(err))
		h.writeError(client, "realtime endpoint unavailable")
		return nil
	}
	defer upstream.Close()

	if err := h.kickoff(upstream, candidate, vacancy, scenario, lang); err != nil {
		h.logger.Error("session kickoff failed", zap.String("session_id", session.ID()), zap.Error(err))
		h.writeError(client, "session initialization failed")
		return nil
	}

	if err := client.WriteJSON(SessionCreatedFrame{
		Type: FrameSessionCreated,
		Session: SessionInfo{
			ID:             session.ID(),
			CandidateID:    candidateID,
			VacancyID:      candidate.VacancyID,
			Language:       lang,
			TotalQuestions: scenario.TotalQuestions(),
		},
	}); err != nil {
		h.logger.Warn("session announcement failed", zap.String("session_id", session.ID()), zap.Error(err))
		return nil
	}

	h.runPumps(session, client, upstream)

	finalizeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	h.finalizer.Finalize(finalizeCtx, session)

	h.logger.Info("interview session closed",
		zap.String("session_id", session.ID()),
		zap.Bool("completed", session.Completed()),
	)
	return nil
}

// loadScenario resolves the vacancy scenario, falling back to the default
// script when the vacancy is missing or carries no scenario.
func (h *Handler) loadScenario(ctx context.Context, vacancyID, lang string) (*entities.Vacancy, entities.Scenario) {
	if vacancyID == "" {
		return nil, entities.DefaultScenario(lang)
	}

	vacancy, err := h.vacancies.GetByID(ctx, vacancyID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		h.logger.Warn("vacancy lookup failed", zap.String("vacancy_id", vacancyID), zap.Error(err))
	}

	scenario, err := h.vacancies.GetScenario(ctx, vacancyID)
	if err != nil {
		h.logger.Warn("scenario lookup failed", zap.String("vacancy_id", vacancyID), zap.Error(err))
	}
	if len(scenario) == 0 {
		scenario = entities.DefaultScenario(lang)
	}
	return vacancy, scenario
}

// kickoff configures the upstream session, pins the language, and requests
// the greeting so the interviewer speaks first.
func (h *Handler) kickoff(upstream Socket, candidate *entities.Candidate, vacancy *entities.Vacancy, scenario entities.Scenario, lang string) error {
	config, err := BuildSessionConfig(BuildConfigInputs(h.model, candidate, vacancy, scenario, lang))
	if err != nil {
		return err
	}
	if err := upstream.WriteJSON(sessionUpdateFrame{Type: FrameSessionUpdate, Session: config}); err != nil {
		return err
	}
	if err := upstream.WriteJSON(newSystemNoticeFrame(SystemLanguageNotice(lang))); err != nil {
		return err
	}
	return upstream.WriteJSON(newResponseCreateFrame(GreetingInstructions(lang, scenario)))
}

// runPumps runs both relay directions until either one stops, then closes
// the opposite socket so the sibling pump unblocks.
func (h *Handler) runPumps(session *entities.InterviewSession, client, upstream Socket) {
	var g errgroup.Group

	g.Go(func() error {
		err := NewClientRelay(session, client, upstream, h.logger).Run()
		upstream.Close()
		return err
	})
	g.Go(func() error {
		err := NewUpstreamRelay(session, client, upstream, h.logger).Run()
		client.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		h.logger.Debug("relay pumps stopped", zap.String("session_id", session.ID()), zap.Error(err))
	}
}

func (h *Handler) writeError(client Socket, message string) {
	if err := client.WriteJSON(NewErrorFrame(message)); err != nil {
		h.logger.Debug("error frame delivery failed", zap.Error(err))
	}
}
