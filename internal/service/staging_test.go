package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStagingSessionsAreIsolated(t *testing.T) {
	sm := NewStagingManager()

	a := sm.NewSession()
	b := sm.NewSession()
	assert.NotEqual(t, a, b)

	sm.Add(a, CreateTaskInput{Title: "A1"})
	sm.Add(a, CreateTaskInput{Title: "A2"})
	sm.Add(b, CreateTaskInput{Title: "B1"})

	assert.Len(t, sm.Peek(a), 2)
	assert.Len(t, sm.Peek(b), 1)
}

func TestStagingPeekDoesNotDrain(t *testing.T) {
	sm := NewStagingManager()
	session := sm.NewSession()
	sm.Add(session, CreateTaskInput{Title: "Draft"})

	assert.Len(t, sm.Peek(session), 1)
	assert.Len(t, sm.Peek(session), 1)

	drained := sm.GetAndClear(session)
	assert.Len(t, drained, 1)
	assert.Empty(t, sm.Peek(session))
}

func TestStagingUnknownSession(t *testing.T) {
	sm := NewStagingManager()

	assert.Empty(t, sm.Peek("missing"))
	assert.Empty(t, sm.GetAndClear("missing"))
}

func TestStagingConcurrentAdds(t *testing.T) {
	sm := NewStagingManager()
	session := sm.NewSession()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sm.Add(session, CreateTaskInput{Title: "Concurrent"})
		}()
	}
	wg.Wait()

	assert.Len(t, sm.GetAndClear(session), 50)
}
