package relay

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/voxhire/voxhire/server/domain/entities"
)

// fakeSocket feeds a fixed frame sequence to ReadMessage and records every
// write. Reads return io.EOF when the sequence is exhausted, which ends a
// relay pump the same way a closed connection does.
type fakeSocket struct {
	mu     sync.Mutex
	queue  [][]byte
	sent   [][]byte
	closed bool
}

func newFakeSocket(frames ...string) *fakeSocket {
	s := &fakeSocket{}
	for _, frame := range frames {
		s.queue = append(s.queue, []byte(frame))
	}
	return s
}

func (s *fakeSocket) ReadMessage() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, io.EOF
	}
	frame := s.queue[0]
	s.queue = s.queue[1:]
	return frame, nil
}

func (s *fakeSocket) WriteMessage(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.sent = append(s.sent, buf)
	return nil
}

func (s *fakeSocket) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.WriteMessage(data)
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// sentTypes decodes the "type" field of every recorded write, in order.
func (s *fakeSocket) sentTypes(t *testing.T) []string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.sent))
	for _, frame := range s.sent {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("recorded frame is not JSON: %v", err)
		}
		types = append(types, env.Type)
	}
	return types
}

// sentOfType returns the first recorded frame of the given type.
func (s *fakeSocket) sentOfType(t *testing.T, frameType string) []byte {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, frame := range s.sent {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("recorded frame is not JSON: %v", err)
		}
		if env.Type == frameType {
			return frame
		}
	}
	return nil
}

func countType(types []string, frameType string) int {
	n := 0
	for _, v := range types {
		if v == frameType {
			n++
		}
	}
	return n
}

func relayTestScenario() entities.Scenario {
	return entities.Scenario{
		{Competence: entities.CompetenceIntro, Question: "Tell me about yourself"},
		{Competence: "motivation", Question: "Why this role?"},
		{Competence: "stack", Question: "Which stack do you use?"},
		{Competence: "cases", Question: "Describe a hard project"},
		{Competence: entities.CompetenceFinal, Question: "When can you start?"},
	}
}

func newRelayTestSession(params entities.SessionParams) *entities.InterviewSession {
	return entities.NewInterviewSession("sess-1", "cand-1", "vac-1", "en", relayTestScenario(), params)
}
