package relay

import (
	"testing"

	"github.com/voxhire/voxhire/server/domain/entities"
)

func TestRegistryLifecycle(t *testing.T) {
	registry := NewRegistry()
	session := newRelayTestSession(entities.SessionParams{})

	if _, ok := registry.Get(session.ID()); ok {
		t.Fatal("empty registry must not resolve sessions")
	}

	registry.Register(session)
	got, ok := registry.Get(session.ID())
	if !ok || got != session {
		t.Fatal("registered session must resolve to the same instance")
	}
	if registry.Len() != 1 {
		t.Errorf("Len() = %d, want 1", registry.Len())
	}

	snapshots := registry.List()
	if len(snapshots) != 1 || snapshots[0].ID != session.ID() {
		t.Errorf("List() = %+v", snapshots)
	}

	registry.Remove(session.ID())
	if _, ok := registry.Get(session.ID()); ok {
		t.Error("removed session must not resolve")
	}
	if registry.Len() != 0 {
		t.Errorf("Len() after remove = %d, want 0", registry.Len())
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			registry.Register(newRelayTestSession(entities.SessionParams{}))
			registry.List()
			registry.Remove("sess-1")
		}
	}()
	for i := 0; i < 100; i++ {
		registry.Get("sess-1")
		registry.Len()
	}
	<-done
}
