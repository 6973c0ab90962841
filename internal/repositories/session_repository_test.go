package repositories

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"schemadesigner/internal/models"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository()

	session := &models.Session{}
	session.Prepare()
	repo.Save(session)

	got := repo.Get(session.ID)
	if got == nil {
		t.Fatal("saved session not found")
	}
	if got.ID != session.ID {
		t.Errorf("id = %s, want %s", got.ID, session.ID)
	}
	if repo.Count() != 1 {
		t.Errorf("count = %d", repo.Count())
	}

	repo.Delete(session.ID)
	if repo.Get(session.ID) != nil {
		t.Error("session still present after delete")
	}
}

func TestSessionRepositoryMissingReturnsNil(t *testing.T) {
	repo := NewSessionRepository()
	if repo.Get(uuid.New()) != nil {
		t.Error("expected nil for unknown session")
	}
}

func TestSessionRepositoryConcurrentAccess(t *testing.T) {
	repo := NewSessionRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := &models.Session{}
			session.Prepare()
			repo.Save(session)
			repo.Get(session.ID)
			repo.Delete(session.ID)
		}()
	}
	wg.Wait()

	if repo.Count() != 0 {
		t.Errorf("count = %d after balanced save/delete", repo.Count())
	}
}
