package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/voxhire/voxhire/server/domain/entities"
)

// UpstreamRelay pumps frames from the upstream endpoint to the browser,
// tracking response lifecycle, filtering stale audio, and dispatching tool
// calls.
type UpstreamRelay struct {
	session  *entities.InterviewSession
	client   Socket
	upstream Socket
	logger   *zap.Logger
}

func NewUpstreamRelay(session *entities.InterviewSession, client, upstream Socket, logger *zap.Logger) *UpstreamRelay {
	return &UpstreamRelay{
		session:  session,
		client:   client,
		upstream: upstream,
		logger:   logger,
	}
}

// Run reads upstream frames until the connection errors out.
func (r *UpstreamRelay) Run() error {
	for {
		data, err := r.upstream.ReadMessage()
		if err != nil {
			return fmt.Errorf("read upstream frame: %w", err)
		}

		var env frameEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			r.logger.Warn("dropping malformed upstream frame", zap.Error(err))
			continue
		}

		switch env.Type {
		case FrameResponseCreated:
			r.session.ResponseStarted(env.responseID())
			if err := r.forward(data, env.Type); err != nil {
				return err
			}

		case FrameResponseDone, FrameResponseCancelled:
			r.session.ResponseFinished()
			if err := r.forward(data, env.Type); err != nil {
				return err
			}

		case FrameResponseAudioDelta:
			if r.session.DropsAudioDelta(env.responseID()) {
				continue
			}
			if err := r.forward(data, env.Type); err != nil {
				return err
			}

		case FrameConversationItemCreated:
			if len(env.Item) > 0 {
				r.session.AppendConversationItem(env.Item)
			}
			if err := r.forward(data, env.Type); err != nil {
				return err
			}

		case FrameResponseFunctionCall:
			r.dispatchToolCall(env.CallID, env.Function.Name, env.Function.Arguments)
			if err := r.forward(data, env.Type); err != nil {
				return err
			}

		default:
			if err := r.forward(data, env.Type); err != nil {
				return err
			}
		}
	}
}

func (r *UpstreamRelay) forward(data []byte, frameType string) error {
	if err := r.client.WriteMessage(data); err != nil {
		return fmt.Errorf("forward upstream frame %q: %w", frameType, err)
	}
	return nil
}

// dispatchToolCall applies a tool invocation to the session and reports the
// result back to the model. Tool failures never tear the relay down.
func (r *UpstreamRelay) dispatchToolCall(callID, name, arguments string) {
	call, err := ParseToolCall(name, arguments)
	if err != nil {
		r.logger.Warn("tool call arguments unparseable, using defaults",
			zap.String("tool", name),
			zap.Error(err),
		)
	}

	var output toolOutput
	switch c := call.(type) {
	case QuestionAsked:
		output = r.handleQuestionAsked(c)
	case EvaluateAnswer:
		r.session.AddScore(c.Score, c.Reasoning)
		output = toolOutput{Status: "ok", Message: "answer scored"}
	case EndInterview:
		output = r.handleEndInterview(c)
	case UnknownToolCall:
		r.logger.Warn("unknown tool call", zap.String("tool", c.Name))
		output = toolOutput{Status: "error", Message: fmt.Sprintf("unknown tool %q", c.Name)}
	}

	r.sendToolOutput(callID, output)
}

func (r *UpstreamRelay) handleQuestionAsked(call QuestionAsked) toolOutput {
	progress, advanced := r.session.MarkQuestionAsked(call.Index, call.IsPrimary)
	if advanced {
		if err := r.client.WriteJSON(ProgressUpdateFrame{
			Type:    FrameProgressUpdate,
			Current: progress.Current,
			Total:   progress.Total,
		}); err != nil {
			r.logger.Warn("progress update failed", zap.Error(err))
		}
	}

	if r.session.ClaimAutoFinish() {
		r.logger.Info("all questions covered, requesting final evaluation",
			zap.String("session_id", r.session.ID()),
		)
		if err := r.upstream.WriteJSON(newResponseCreateFrame(AutoFinishInstructions())); err != nil {
			r.logger.Warn("auto-finish request failed", zap.Error(err))
		}
	}

	return toolOutput{
		Status:  "ok",
		Message: fmt.Sprintf("progress %d/%d", progress.Current, progress.Total),
	}
}

func (r *UpstreamRelay) handleEndInterview(call EndInterview) toolOutput {
	result, first, err := r.session.CompleteInterview(call.OverallScore, call.Strengths, call.Weaknesses, call.Recommendation)

	var notMet *entities.ThresholdNotMetError
	if errors.As(err, &notMet) {
		r.logger.Info("end_interview ignored, thresholds not met",
			zap.String("session_id", r.session.ID()),
			zap.String("reason", notMet.Reason()),
		)
		return toolOutput{Status: "ignored", Message: notMet.Reason() + "; continue the interview"}
	}
	if err != nil {
		r.logger.Warn("end_interview rejected", zap.Error(err))
		return toolOutput{Status: "error", Message: err.Error()}
	}

	if first {
		if err := r.client.WriteJSON(InterviewCompletedFrame{
			Type:        FrameInterviewCompleted,
			Decision:    result.Decision,
			RedirectURL: result.RedirectURL,
		}); err != nil {
			r.logger.Warn("completion notification failed", zap.Error(err))
		}
		r.logger.Info("interview completed",
			zap.String("session_id", r.session.ID()),
			zap.Int("score", result.OverallScore),
			zap.String("decision", result.Decision),
		)
	}

	return toolOutput{
		Status:       "ok",
		Message:      "interview finalized",
		OverallScore: &result.OverallScore,
		Passed:       &result.Passed,
	}
}

func (r *UpstreamRelay) sendToolOutput(callID string, output toolOutput) {
	payload, err := json.Marshal(output)
	if err != nil {
		r.logger.Warn("tool output marshal failed", zap.Error(err))
		return
	}
	frame := functionCallOutputFrame{
		Type:   FrameFunctionCallOutput,
		CallID: callID,
		Output: string(payload),
	}
	if err := r.upstream.WriteJSON(frame); err != nil {
		r.logger.Warn("tool output delivery failed", zap.String("call_id", callID), zap.Error(err))
	}
}
