package relay

import (
	"encoding/json"
	"fmt"
)

// Tool names exposed to the upstream model.
const (
	ToolQuestionAsked  = "question_asked"
	ToolEvaluateAnswer = "evaluate_answer"
	ToolEndInterview   = "end_interview"
)

// ToolCall is the closed set of tool invocations the upstream model can make.
type ToolCall interface {
	toolName() string
}

// QuestionAsked marks interview progress for a scenario question.
type QuestionAsked struct {
	Index     int   `json:"index"`
	IsPrimary *bool `json:"is_primary,omitempty"`
}

// EvaluateAnswer scores the candidate's last answer.
type EvaluateAnswer struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// EndInterview requests finalization; the relay verifies thresholds before
// honoring it.
type EndInterview struct {
	OverallScore   int      `json:"overall_score"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	Recommendation string   `json:"recommendation"`
}

// UnknownToolCall is any name outside the schema; answered with an error
// output and otherwise ignored.
type UnknownToolCall struct {
	Name string
}

func (QuestionAsked) toolName() string   { return ToolQuestionAsked }
func (EvaluateAnswer) toolName() string  { return ToolEvaluateAnswer }
func (EndInterview) toolName() string    { return ToolEndInterview }
func (c UnknownToolCall) toolName() string { return c.Name }

// ParseToolCall converts a function_call frame into a typed variant.
// Unparseable arguments degrade to the zero-value variant for the named tool
// and are reported through the returned error; they are never fatal.
func ParseToolCall(name, arguments string) (ToolCall, error) {
	raw := []byte(arguments)
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	switch name {
	case ToolQuestionAsked:
		var call QuestionAsked
		if err := json.Unmarshal(raw, &call); err != nil {
			return QuestionAsked{}, fmt.Errorf("question_asked arguments: %w", err)
		}
		return call, nil
	case ToolEvaluateAnswer:
		var call EvaluateAnswer
		if err := json.Unmarshal(raw, &call); err != nil {
			return EvaluateAnswer{}, fmt.Errorf("evaluate_answer arguments: %w", err)
		}
		return call, nil
	case ToolEndInterview:
		var call EndInterview
		if err := json.Unmarshal(raw, &call); err != nil {
			return EndInterview{}, fmt.Errorf("end_interview arguments: %w", err)
		}
		return call, nil
	}
	return UnknownToolCall{Name: name}, nil
}
