package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateOnFirstContact(t *testing.T) {
	st := NewStore()
	s := st.Get(1)
	require.Equal(t, AwaitingFile, s.State)
	require.NotEmpty(t, s.ID)
	require.Same(t, s, st.Get(1), "second Get must return the same session")
}

func TestStoreIsolation(t *testing.T) {
	st := NewStore()
	a := st.Get(1)
	b := st.Get(2)
	a.State = AwaitingQuery
	a.Column = 3
	require.Equal(t, AwaitingFile, b.State)
	require.Zero(t, b.Column)
	require.NotEqual(t, a.ID, b.ID)
}

func TestStoreReset(t *testing.T) {
	st := NewStore()
	old := st.Get(1)
	old.State = AwaitingSelection
	fresh := st.Reset(1)
	require.Equal(t, AwaitingFile, fresh.State)
	require.NotEqual(t, old.ID, fresh.ID)
}

func TestStoreDelete(t *testing.T) {
	st := NewStore()
	st.Get(1)
	st.Delete(1)
	require.False(t, st.Contains(1))
	require.Zero(t, st.Len())
}

func TestStorePruneStale(t *testing.T) {
	st := NewStore()
	st.Get(1)
	st.mu.Lock()
	st.lastSeen[1] = time.Now().Add(-time.Hour)
	st.mu.Unlock()
	st.Get(2)
	st.Touch(2)

	expired := st.PruneStale(30 * time.Minute)
	require.Len(t, expired, 1)
	require.Equal(t, int64(1), expired[0].ChatID)
	require.False(t, st.Contains(1))
	require.True(t, st.Contains(2))
}

func TestStoreTouchRefreshesIdleClock(t *testing.T) {
	st := NewStore()
	st.Get(1)
	st.mu.Lock()
	st.lastSeen[1] = time.Now().Add(-time.Hour)
	st.mu.Unlock()

	st.Touch(1)
	require.Empty(t, st.PruneStale(30*time.Minute))
	require.True(t, st.Contains(1))
}

func TestStoreTouchUnknownChatIsNoop(t *testing.T) {
	st := NewStore()
	st.Touch(99)
	require.False(t, st.Contains(99))
	require.Zero(t, st.Len())
}

// Handlers refresh the idle clock while the janitor sweeps; both sides must
// go through the store mutex so -race stays quiet.
func TestStoreTouchConcurrentWithPrune(t *testing.T) {
	st := NewStore()
	st.Get(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			st.Touch(1)
		}
	}()
	for i := 0; i < 1000; i++ {
		st.PruneStale(time.Hour)
	}
	<-done

	require.True(t, st.Contains(1))
}
