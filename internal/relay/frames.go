package relay

import "encoding/json"

// Frame type names. Passthrough frame schemas are owned by the upstream
// realtime API; local extension frames are defined below.
const (
	// Upstream-owned passthrough types.
	FrameSessionUpdate            = "session.update"
	FrameConversationItemCreate   = "conversation.item.create"
	FrameConversationItemCreated  = "conversation.item.created"
	FrameResponseCreate           = "response.create"
	FrameResponseCancel           = "response.cancel"
	FrameResponseCreated          = "response.created"
	FrameResponseDone             = "response.done"
	FrameResponseCancelled        = "response.cancelled"
	FrameResponseAudioDelta       = "response.audio.delta"
	FrameResponseFunctionCall     = "response.function_call"
	FrameFunctionCallOutput       = "function_call_output"
	FrameInputAudioBufferAppend   = "input_audio_buffer.append"
	FrameTranscriptionCompleted   = "conversation.item.input_audio_transcription.completed"

	// Local inbound extensions.
	FrameSessionUpdateLang = "session.update_lang"
	FrameSpeechTurn        = "speech.turn"

	// Local outbound extensions.
	FrameSessionCreated     = "session.created"
	FrameSessionLangLocked  = "session.lang.locked"
	FrameProgressUpdate     = "progress.update"
	FrameInterviewCompleted = "interview.completed"
	FrameError              = "error"
)

// frameEnvelope is the superset of fields the relay inspects. Frames are
// forwarded as raw bytes; the envelope only steers routing and state updates.
type frameEnvelope struct {
	Type       string          `json:"type"`
	Response   responseRef     `json:"response"`
	ResponseID string          `json:"response_id"`
	CallID     string          `json:"call_id"`
	Function   functionRef     `json:"function"`
	Item       json.RawMessage `json:"item"`
	Lang       string          `json:"lang"`
	SpeechMs   int64           `json:"speech_ms"`
}

type responseRef struct {
	ID string `json:"id"`
}

type functionRef struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// responseID returns the correlation id a lifecycle frame carries, preferring
// the nested response object.
func (e *frameEnvelope) responseID() string {
	if e.Response.ID != "" {
		return e.Response.ID
	}
	return e.ResponseID
}

// SessionCreatedFrame announces the registered session to the client once the
// upstream connection is established.
type SessionCreatedFrame struct {
	Type    string      `json:"type"`
	Session SessionInfo `json:"session"`
}

// SessionInfo is the session payload inside SessionCreatedFrame.
type SessionInfo struct {
	ID             string `json:"id"`
	CandidateID    string `json:"candidate_id"`
	VacancyID      string `json:"vacancy_id,omitempty"`
	Language       string `json:"lang"`
	TotalQuestions int    `json:"total_questions"`
}

// LangLockedFrame acknowledges a session.update_lang control message.
type LangLockedFrame struct {
	Type string `json:"type"`
	Lang string `json:"lang"`
}

// ProgressUpdateFrame notifies the client of question progression.
type ProgressUpdateFrame struct {
	Type    string `json:"type"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// InterviewCompletedFrame carries the final decision and redirect target.
type InterviewCompletedFrame struct {
	Type        string `json:"type"`
	Decision    string `json:"decision"`
	RedirectURL string `json:"redirect_url"`
}

// ErrorFrame is the single user-visible failure shape.
type ErrorFrame struct {
	Type  string     `json:"type"`
	Error ErrorBody  `json:"error"`
}

// ErrorBody is the error payload inside ErrorFrame.
type ErrorBody struct {
	Message string `json:"message"`
}

// NewErrorFrame builds an error frame with the given message.
func NewErrorFrame(message string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Error: ErrorBody{Message: message}}
}

// cancelFrame is the synthesized upstream cancel preceding a new
// response.create while another response is active.
type cancelFrame struct {
	Type       string `json:"type"`
	ResponseID string `json:"response_id,omitempty"`
}

// functionCallOutputFrame reports a tool result back to the upstream model.
type functionCallOutputFrame struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// responseCreateFrame is a server-synthesized response request, used by the
// kickoff greeting and the auto-finish trigger.
type responseCreateFrame struct {
	Type     string          `json:"type"`
	Response responseRequest `json:"response"`
}

type responseRequest struct {
	Modalities   []string `json:"modalities"`
	Instructions string   `json:"instructions"`
}

func newResponseCreateFrame(instructions string) responseCreateFrame {
	return responseCreateFrame{
		Type: FrameResponseCreate,
		Response: responseRequest{
			Modalities:   []string{"audio", "text"},
			Instructions: instructions,
		},
	}
}

// conversationItemCreateFrame injects a system message into the upstream
// conversation.
type conversationItemCreateFrame struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

type conversationItem struct {
	Type    string                    `json:"type"`
	Role    string                    `json:"role"`
	Content []conversationItemContent `json:"content"`
}

type conversationItemContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func newSystemNoticeFrame(text string) conversationItemCreateFrame {
	return conversationItemCreateFrame{
		Type: FrameConversationItemCreate,
		Item: conversationItem{
			Type: "message",
			Role: "system",
			Content: []conversationItemContent{
				{Type: "input_text", Text: text},
			},
		},
	}
}

// toolOutput is the generic tool result payload serialized into
// function_call_output frames.
type toolOutput struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	OverallScore *int   `json:"overall_score,omitempty"`
	Passed       *bool  `json:"passed,omitempty"`
}
