package entities

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ResponseState is the lifecycle of the single in-flight upstream response.
//
// Idle -> Creating -> Active -> Idle, with Cancelling reachable from
// Creating and Active. Transitions happen only through InterviewSession
// methods; assistant audio is considered "speaking" exactly while the state
// is Active.
type ResponseState int

const (
	ResponseIdle ResponseState = iota
	ResponseCreating
	ResponseActive
	ResponseCancelling
)

func (s ResponseState) String() string {
	switch s {
	case ResponseIdle:
		return "idle"
	case ResponseCreating:
		return "creating"
	case ResponseActive:
		return "active"
	case ResponseCancelling:
		return "cancelling"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// AnswerScore is a single evaluate_answer tool result.
type AnswerScore struct {
	QuestionIndex int    `json:"question" bson:"question"`
	Score         int    `json:"score" bson:"score"`
	Reasoning     string `json:"reasoning" bson:"reasoning"`
}

// Recommendation values the upstream model may return from end_interview.
const (
	RecommendationHire   = "hire"
	RecommendationMaybe  = "maybe"
	RecommendationReject = "reject"
)

// Decision labels derived from the recommendation and overall score.
const (
	DecisionHired    = "hired"
	DecisionMaybe    = "maybe"
	DecisionRejected = "rejected"
)

// InterviewResult is the in-session completion context populated by
// end_interview.
type InterviewResult struct {
	OverallScore   int
	Strengths      []string
	Weaknesses     []string
	Recommendation string
	Passed         bool
	Decision       string
	RedirectURL    string
}

// SessionParams are the completion gates an end-of-interview request must
// satisfy. They are fixed at session creation.
type SessionParams struct {
	MinPrimaryRequired int
	MinDialogMs        int64
}

// ThresholdNotMetError reports how far a premature end_interview call is from
// the completion gates. It is a normal "ignored" outcome, not a failure.
type ThresholdNotMetError struct {
	PrimaryShort  int
	DialogShortMs int64
}

func (e *ThresholdNotMetError) Error() string {
	return "interview completion thresholds not met: " + e.Reason()
}

// Reason renders the shortfall for the tool result sent back to the model.
func (e *ThresholdNotMetError) Reason() string {
	var parts []string
	if e.PrimaryShort > 0 {
		parts = append(parts, fmt.Sprintf("%d more primary question(s) must be covered", e.PrimaryShort))
	}
	if e.DialogShortMs > 0 {
		parts = append(parts, fmt.Sprintf("%d more second(s) of candidate speech are required", (e.DialogShortMs+999)/1000))
	}
	if len(parts) == 0 {
		return "thresholds not met"
	}
	return strings.Join(parts, "; ")
}

// Progress is a point-in-time view of question progression.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// SessionSnapshot is the read-only view served by the session info endpoint.
type SessionSnapshot struct {
	ID              string        `json:"session_id"`
	CandidateID     string        `json:"candidate_id"`
	VacancyID       string        `json:"vacancy_id,omitempty"`
	Language        string        `json:"lang"`
	CreatedAt       time.Time     `json:"created_at"`
	CurrentQuestion int           `json:"current_question"`
	TotalQuestions  int           `json:"total_questions"`
	AnsweredPrimary int           `json:"answered_primary"`
	AssistantActive bool          `json:"assistant_speaking"`
	UserSpeakingMs  int64         `json:"user_speaking_ms"`
	Scores          []AnswerScore `json:"scores,omitempty"`
	Completed       bool          `json:"completed"`
}

// InterviewSession is the mutable state shared by the two relay pumps of one
// live connection. All mutation goes through its methods; the mutex keeps
// critical sections short and I/O free.
type InterviewSession struct {
	mu sync.Mutex

	id          string
	candidateID string
	vacancyID   string
	language    string
	createdAt   time.Time

	scenario Scenario
	params   SessionParams

	totalQuestions  int
	currentQuestion int
	answeredPrimary int

	respState        ResponseState
	activeResponseID string
	questionMarked   bool

	userSpeakingMs int64

	conversation []json.RawMessage
	scores       []AnswerScore

	result         *InterviewResult
	autoFinishSent bool
}

// NewInterviewSession builds the session for one connection. The scenario
// must already be non-empty (callers substitute DefaultScenario beforehand).
func NewInterviewSession(id, candidateID, vacancyID, language string, scenario Scenario, params SessionParams) *InterviewSession {
	return &InterviewSession{
		id:             id,
		candidateID:    candidateID,
		vacancyID:      vacancyID,
		language:       NormalizeLanguage(language),
		createdAt:      time.Now(),
		scenario:       scenario,
		params:         params,
		totalQuestions: scenario.TotalQuestions(),
		respState:      ResponseIdle,
	}
}

func (s *InterviewSession) ID() string          { return s.id }
func (s *InterviewSession) CandidateID() string { return s.candidateID }
func (s *InterviewSession) VacancyID() string   { return s.vacancyID }
func (s *InterviewSession) CreatedAt() time.Time {
	return s.createdAt
}

// Scenario returns the immutable question list.
func (s *InterviewSession) Scenario() Scenario { return s.scenario }

// Language returns the current interview language.
func (s *InterviewSession) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage locks the interview language after normalization and returns
// the normalized value.
func (s *InterviewSession) SetLanguage(raw string) string {
	lang := NormalizeLanguage(raw)
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	return lang
}

// AssistantSpeaking reports whether assistant audio for the active response
// is still in flight.
func (s *InterviewSession) AssistantSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.respState == ResponseActive
}

// ActiveResponseID returns the correlation id of the in-flight response, or
// "" when none is active.
func (s *InterviewSession) ActiveResponseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeResponseID
}

// BeginClientResponse registers a client-initiated response.create. If a
// response is still active its id is returned so the caller can issue the
// cancel that must precede the create; the session then holds no active
// response until the upstream acknowledges the new one.
func (s *InterviewSession) BeginClientResponse() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.activeResponseID
	s.activeResponseID = ""
	s.respState = ResponseCreating
	return prior
}

// CancelResponse records a cancel sent upstream. Speaking and the active
// response id clear immediately, before any upstream acknowledgement.
func (s *InterviewSession) CancelResponse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeResponseID = ""
	if s.respState == ResponseCreating || s.respState == ResponseActive {
		s.respState = ResponseCancelling
	} else {
		s.respState = ResponseIdle
	}
}

// ResponseStarted handles the upstream response-started event: the debounce
// guard resets, the correlation id is pinned and the assistant is speaking.
func (s *InterviewSession) ResponseStarted(responseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questionMarked = false
	s.activeResponseID = responseID
	s.respState = ResponseActive
}

// ResponseFinished handles response-done/cancelled: the assistant stops
// speaking and no response is active.
func (s *InterviewSession) ResponseFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeResponseID = ""
	s.respState = ResponseIdle
}

// DropsAudioDelta reports whether an audio delta carrying the given
// correlation id belongs to a superseded response and must not reach the
// client.
func (s *InterviewSession) DropsAudioDelta(responseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeResponseID != "" && responseID != "" && responseID != s.activeResponseID
}

// AddUserSpeech accumulates reported candidate speaking time.
func (s *InterviewSession) AddUserSpeech(ms int64) {
	if ms <= 0 {
		return
	}
	s.mu.Lock()
	s.userSpeakingMs += ms
	s.mu.Unlock()
}

// UserSpeakingMs returns the accumulated candidate speaking time.
func (s *InterviewSession) UserSpeakingMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userSpeakingMs
}

// AppendConversationItem records a conversation item for audit/report use.
func (s *InterviewSession) AppendConversationItem(item json.RawMessage) {
	if len(item) == 0 {
		return
	}
	s.mu.Lock()
	s.conversation = append(s.conversation, item)
	s.mu.Unlock()
}

// ConversationItemCount returns the size of the conversation log.
func (s *InterviewSession) ConversationItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversation)
}

// AddScore appends an evaluate_answer result against the current question.
func (s *InterviewSession) AddScore(score int, reasoning string) {
	s.mu.Lock()
	s.scores = append(s.scores, AnswerScore{
		QuestionIndex: s.currentQuestion,
		Score:         score,
		Reasoning:     reasoning,
	})
	s.mu.Unlock()
}

// Scores returns a copy of the scoring accumulator.
func (s *InterviewSession) Scores() []AnswerScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AnswerScore, len(s.scores))
	copy(out, s.scores)
	return out
}

// MarkQuestionAsked applies a question_asked tool call. It is debounced: only
// the first call per response can advance progress, and only when the
// referenced question is primary. position is the 1-based scenario index;
// when it is out of range the model's is_primary hint decides, defaulting to
// primary. The returned Progress is valid only when advanced is true.
func (s *InterviewSession) MarkQuestionAsked(position int, isPrimaryHint *bool) (progress Progress, advanced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.questionMarked {
		return Progress{}, false
	}
	s.questionMarked = true

	primary, known := s.scenario.IsPrimaryAt(position)
	if !known {
		primary = true
		if isPrimaryHint != nil {
			primary = *isPrimaryHint
		}
	}
	if !primary {
		return Progress{}, false
	}

	s.answeredPrimary++
	if s.currentQuestion < s.totalQuestions {
		s.currentQuestion++
	}
	return Progress{Current: s.currentQuestion, Total: s.totalQuestions}, true
}

// Progress returns the current question progression.
func (s *InterviewSession) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{Current: s.currentQuestion, Total: s.totalQuestions}
}

// AnsweredPrimary returns the number of acknowledged primary questions.
func (s *InterviewSession) AnsweredPrimary() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answeredPrimary
}

// ClaimAutoFinish reports whether the auto-finish instruction should be sent
// now, latching so it fires at most once per session. It is due once the last
// primary question is reached and both completion gates are already
// satisfied.
func (s *InterviewSession) ClaimAutoFinish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autoFinishSent || s.result != nil {
		return false
	}
	if s.currentQuestion < s.totalQuestions {
		return false
	}
	if s.answeredPrimary < s.params.MinPrimaryRequired || s.userSpeakingMs < s.params.MinDialogMs {
		return false
	}
	s.autoFinishSent = true
	return true
}

// CompleteInterview applies an end_interview tool call. When the completion
// gates are not met it returns a ThresholdNotMetError and changes nothing.
// The transition happens exactly once; repeated calls return the stored
// result with first=false.
func (s *InterviewSession) CompleteInterview(overallScore int, strengths, weaknesses []string, recommendation string) (result *InterviewResult, first bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil {
		return s.result, false, nil
	}

	shortfall := &ThresholdNotMetError{}
	if s.answeredPrimary < s.params.MinPrimaryRequired {
		shortfall.PrimaryShort = s.params.MinPrimaryRequired - s.answeredPrimary
	}
	if s.userSpeakingMs < s.params.MinDialogMs {
		shortfall.DialogShortMs = s.params.MinDialogMs - s.userSpeakingMs
	}
	if shortfall.PrimaryShort > 0 || shortfall.DialogShortMs > 0 {
		return nil, false, shortfall
	}

	recommendation = strings.ToLower(strings.TrimSpace(recommendation))
	if recommendation == "" {
		recommendation = RecommendationMaybe
	}

	decision := DecisionRejected
	switch {
	case recommendation == RecommendationHire:
		decision = DecisionHired
	case recommendation == RecommendationMaybe && overallScore >= 70:
		decision = DecisionMaybe
	}

	s.result = &InterviewResult{
		OverallScore:   overallScore,
		Strengths:      strengths,
		Weaknesses:     weaknesses,
		Recommendation: recommendation,
		Passed:         recommendation == RecommendationHire || recommendation == RecommendationMaybe,
		Decision:       decision,
		RedirectURL:    fmt.Sprintf("/complete.html?score=%d&decision=%s&id=%s", overallScore, decision, s.candidateID),
	}
	return s.result, true, nil
}

// Completed reports whether end_interview has been honored.
func (s *InterviewSession) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

// Result returns the completion context, or nil when the interview never
// completed.
func (s *InterviewSession) Result() *InterviewResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Outcome assembles the persistence payload for the Finalizer. It returns nil
// when the interview never completed.
func (s *InterviewSession) Outcome() *InterviewOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	scores := make([]AnswerScore, len(s.scores))
	copy(scores, s.scores)
	return &InterviewOutcome{
		Completed:             true,
		Score:                 s.result.OverallScore,
		Passed:                s.result.Passed,
		Decision:              s.result.Decision,
		Recommendation:        s.result.Recommendation,
		Strengths:             s.result.Strengths,
		Weaknesses:            s.result.Weaknesses,
		Scores:                scores,
		ConversationItemCount: len(s.conversation),
		Duration:              time.Since(s.createdAt),
		CompletedAt:           time.Now(),
	}
}

// Snapshot returns the read-only view for the session info endpoint.
func (s *InterviewSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make([]AnswerScore, len(s.scores))
	copy(scores, s.scores)
	return SessionSnapshot{
		ID:              s.id,
		CandidateID:     s.candidateID,
		VacancyID:       s.vacancyID,
		Language:        s.language,
		CreatedAt:       s.createdAt,
		CurrentQuestion: s.currentQuestion,
		TotalQuestions:  s.totalQuestions,
		AnsweredPrimary: s.answeredPrimary,
		AssistantActive: s.respState == ResponseActive,
		UserSpeakingMs:  s.userSpeakingMs,
		Scores:          scores,
		Completed:       s.result != nil,
	}
}
