package relay

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/voxhire/voxhire/server/domain/entities"
)

func runClientRelay(t *testing.T, session *entities.InterviewSession, client, upstream *fakeSocket) {
	t.Helper()
	if err := NewClientRelay(session, client, upstream, zap.NewNop()).Run(); err == nil {
		t.Fatal("pump must stop with the read error of the drained connection")
	}
}

func TestClientRelayForwardsByDefault(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	client := newFakeSocket(`{"type":"input_audio_buffer.commit"}`)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	types := upstream.sentTypes(t)
	if len(types) != 1 || types[0] != "input_audio_buffer.commit" {
		t.Errorf("forwarded = %v", types)
	}
}

func TestClientRelayDropsAudioWhileAssistantSpeaks(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	session.ResponseStarted("resp-1")

	client := newFakeSocket(`{"type":"input_audio_buffer.append","audio":"AAAA"}`)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	if len(upstream.sentTypes(t)) != 0 {
		t.Error("candidate audio must be dropped while the assistant speaks")
	}
}

func TestClientRelayForwardsAudioWhenIdle(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	client := newFakeSocket(`{"type":"input_audio_buffer.append","audio":"AAAA"}`)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	types := upstream.sentTypes(t)
	if countType(types, FrameInputAudioBufferAppend) != 1 {
		t.Errorf("forwarded = %v, want the audio frame", types)
	}
}

func TestClientRelayLocksLanguage(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	client := newFakeSocket(`{"type":"session.update_lang","lang":"ru-RU"}`)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	if got := session.Language(); got != "ru" {
		t.Errorf("session language = %q, want ru", got)
	}

	upstreamTypes := upstream.sentTypes(t)
	if countType(upstreamTypes, FrameSessionUpdate) != 1 {
		t.Errorf("upstream frames = %v, want a session.update", upstreamTypes)
	}
	if countType(upstreamTypes, FrameConversationItemCreate) != 1 {
		t.Errorf("upstream frames = %v, want a language notice", upstreamTypes)
	}

	ack := client.sentOfType(t, FrameSessionLangLocked)
	if ack == nil {
		t.Fatal("client must receive the language ack")
	}
	var locked LangLockedFrame
	if err := json.Unmarshal(ack, &locked); err != nil {
		t.Fatalf("decoding ack: %v", err)
	}
	if locked.Lang != "ru" {
		t.Errorf("ack lang = %q, want ru", locked.Lang)
	}

	update := upstream.sentOfType(t, FrameSessionUpdate)
	var langUpdate LanguageSessionUpdate
	if err := json.Unmarshal(update, &langUpdate); err != nil {
		t.Fatalf("decoding session.update: %v", err)
	}
	if langUpdate.Session.Voice != "verse" {
		t.Errorf("voice = %q, want verse for Russian", langUpdate.Session.Voice)
	}
	if langUpdate.Session.InputAudioTranscription.Language != "ru" {
		t.Errorf("transcription language = %q, want ru", langUpdate.Session.InputAudioTranscription.Language)
	}
}

func TestClientRelayCancelsSupersededResponse(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	session.ResponseStarted("resp-1")

	client := newFakeSocket(`{"type":"response.create"}`)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	types := upstream.sentTypes(t)
	if len(types) != 2 || types[0] != FrameResponseCancel || types[1] != FrameResponseCreate {
		t.Fatalf("upstream frames = %v, want cancel then create", types)
	}

	var cancel cancelFrame
	if err := json.Unmarshal(upstream.sentOfType(t, FrameResponseCancel), &cancel); err != nil {
		t.Fatalf("decoding cancel: %v", err)
	}
	if cancel.ResponseID != "resp-1" {
		t.Errorf("cancel targets %q, want resp-1", cancel.ResponseID)
	}
	if session.AssistantSpeaking() {
		t.Error("superseded response must not count as speaking")
	}
}

func TestClientRelayCreateWithoutActiveResponse(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	client := newFakeSocket(`{"type":"response.create"}`)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	types := upstream.sentTypes(t)
	if len(types) != 1 || types[0] != FrameResponseCreate {
		t.Errorf("upstream frames = %v, want only the create", types)
	}
}

func TestClientRelayForwardsExplicitCancel(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	session.ResponseStarted("resp-1")

	client := newFakeSocket(`{"type":"response.cancel","response_id":"resp-1"}`)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	if countType(upstream.sentTypes(t), FrameResponseCancel) != 1 {
		t.Error("explicit cancel must reach the upstream")
	}
	if session.AssistantSpeaking() {
		t.Error("cancel must clear speaking immediately")
	}
}

func TestClientRelayAccumulatesSpeechTurns(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	client := newFakeSocket(
		`{"type":"speech.turn","speech_ms":1200}`,
		`{"type":"speech.turn","speech_ms":800}`,
	)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	if got := session.UserSpeakingMs(); got != 2000 {
		t.Errorf("UserSpeakingMs() = %d, want 2000", got)
	}
	if len(upstream.sentTypes(t)) != 0 {
		t.Error("speech.turn is a control frame and must not be forwarded")
	}
}

func TestClientRelayDropsMalformedFrames(t *testing.T) {
	session := newRelayTestSession(entities.SessionParams{})
	client := newFakeSocket(
		`not json at all`,
		`{"type":"input_audio_buffer.commit"}`,
	)
	upstream := newFakeSocket()

	runClientRelay(t, session, client, upstream)

	types := upstream.sentTypes(t)
	if len(types) != 1 || types[0] != "input_audio_buffer.commit" {
		t.Errorf("forwarded = %v, malformed frame must be dropped, pump must continue", types)
	}
}
