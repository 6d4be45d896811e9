package relay

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxhire/voxhire/server/domain/entities"
)

// ClientRelay pumps frames from the browser to the upstream endpoint,
// enforcing half-duplex audio gating and intercepting control frames.
type ClientRelay struct {
	session  *entities.InterviewSession
	client   Socket
	upstream Socket
	logger   *zap.Logger
}

func NewClientRelay(session *entities.InterviewSession, client, upstream Socket, logger *zap.Logger) *ClientRelay {
	return &ClientRelay{
		session:  session,
		client:   client,
		upstream: upstream,
		logger:   logger,
	}
}

// Run reads client frames until the connection errors out. The caller tears
// down both sockets when either pump returns.
func (r *ClientRelay) Run() error {
	for {
		data, err := r.client.ReadMessage()
		if err != nil {
			return fmt.Errorf("read client frame: %w", err)
		}

		var env frameEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			r.logger.Warn("dropping malformed client frame", zap.Error(err))
			continue
		}

		switch env.Type {
		case FrameSessionUpdateLang:
			r.lockLanguage(env.Lang)

		case FrameInputAudioBufferAppend:
			if r.session.AssistantSpeaking() {
				continue
			}
			if err := r.upstream.WriteMessage(data); err != nil {
				return fmt.Errorf("forward audio frame: %w", err)
			}

		case FrameResponseCancel:
			r.session.CancelResponse()
			if err := r.upstream.WriteMessage(data); err != nil {
				return fmt.Errorf("forward cancel frame: %w", err)
			}

		case FrameResponseCreate:
			if prior := r.session.BeginClientResponse(); prior != "" {
				if err := r.upstream.WriteJSON(cancelFrame{Type: FrameResponseCancel, ResponseID: prior}); err != nil {
					r.logger.Warn("cancel of superseded response failed", zap.String("response_id", prior), zap.Error(err))
				}
			}
			if err := r.upstream.WriteMessage(data); err != nil {
				return fmt.Errorf("forward response.create: %w", err)
			}

		case FrameSpeechTurn:
			r.session.AddUserSpeech(env.SpeechMs)

		default:
			if err := r.upstream.WriteMessage(data); err != nil {
				return fmt.Errorf("forward client frame %q: %w", env.Type, err)
			}
		}
	}
}

// lockLanguage normalizes the requested language, reconfigures the upstream
// session, and acknowledges the client. A mid-session switch re-pins voice
// and transcription without restarting the interview.
func (r *ClientRelay) lockLanguage(raw string) {
	lang := r.session.SetLanguage(raw)

	if err := r.upstream.WriteJSON(NewLanguageSessionUpdate(lang)); err != nil {
		r.logger.Warn("language reconfiguration failed", zap.String("lang", lang), zap.Error(err))
	}
	if err := r.upstream.WriteJSON(newSystemNoticeFrame(SystemLanguageNotice(lang))); err != nil {
		r.logger.Warn("language notice failed", zap.String("lang", lang), zap.Error(err))
	}
	if err := r.client.WriteJSON(LangLockedFrame{Type: FrameSessionLangLocked, Lang: lang}); err != nil {
		r.logger.Warn("language ack failed", zap.String("lang", lang), zap.Error(err))
	}

	r.logger.Info("interview language locked",
		zap.String("session_id", r.session.ID()),
		zap.String("lang", lang),
	)
}
