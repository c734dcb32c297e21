package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabot/internal/quiz"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore()
	s.now = clock.Now
	return s, clock
}

func TestStore_DoCreatesIdleSession(t *testing.T) {
	s, _ := newTestStore()

	var seen Session
	s.Do(5, func(sess *Session) { seen = *sess })

	assert.Equal(t, int64(5), seen.UserID)
	assert.Equal(t, Idle, seen.State)
	assert.Equal(t, 1, s.Len())
}

func TestStore_DoPersistsChanges(t *testing.T) {
	s, clock := newTestStore()

	s.Do(1, func(sess *Session) {
		sess.State = AwaitingLanguage
		sess.Command = Command{Kind: CommandAdd}
	})
	clock.Advance(time.Minute)
	s.Do(2, func(sess *Session) {})

	one, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, AwaitingLanguage, one.State)

	two, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, Idle, two.State)
	assert.True(t, two.LastActive.After(one.LastActive))

	_, ok = s.Get(3)
	assert.False(t, ok)
}

func TestStore_SerializesSameUser(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(1, func(sess *Session) {
				sess.Quiz = nil
				sess.Command.Count++
			})
		}()
	}
	wg.Wait()

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, 100, got.Command.Count)
}

func TestStore_DifferentUsersDoNotBlock(t *testing.T) {
	s := NewStore()

	entered := make(chan struct{})
	release := make(chan struct{})
	go s.Do(1, func(*Session) {
		close(entered)
		<-release
	})
	<-entered

	done := make(chan struct{})
	go func() {
		s.Do(2, func(*Session) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("user 2 blocked behind user 1")
	}
	close(release)
}

func TestStore_EvictIdle(t *testing.T) {
	s, clock := newTestStore()

	s.Do(1, func(*Session) {})
	clock.Advance(2 * time.Hour)
	s.Do(2, func(*Session) {})

	removed := s.EvictIdle(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get(1)
	assert.False(t, ok)

	s.Do(1, func(sess *Session) {
		assert.Equal(t, Idle, sess.State)
	})
	assert.Equal(t, 2, s.Len())
}

func TestStore_EvictIdleSkipsLocked(t *testing.T) {
	s, clock := newTestStore()
	s.Do(1, func(*Session) {})
	clock.Advance(2 * time.Hour)

	entered := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		s.Do(1, func(*Session) {
			close(entered)
			<-release
		})
		close(finished)
	}()
	<-entered

	assert.Equal(t, 0, s.EvictIdle(time.Hour))
	close(release)
	<-finished
	assert.Equal(t, 1, s.Len())
}

func TestStore_EvictIdleKeepsRunningFlows(t *testing.T) {
	s, clock := newTestStore()
	s.Do(1, func(sess *Session) {
		sess.State = AwaitingWord
		sess.Language = "eng"
		sess.Command = Command{Kind: CommandLookup}
	})
	s.Do(2, func(sess *Session) {
		sess.Quiz = &Quiz{Kind: quiz.MultipleChoice, PollID: "poll-1"}
	})
	s.Do(3, func(*Session) {})
	clock.Advance(48 * time.Hour)

	assert.Equal(t, 1, s.EvictIdle(24*time.Hour))

	_, ok := s.Get(1)
	assert.True(t, ok)
	_, ok = s.Get(2)
	assert.True(t, ok)
	_, ok = s.Get(3)
	assert.False(t, ok)
}
