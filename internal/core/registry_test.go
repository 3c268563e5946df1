package core

import (
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anmol0706/kalov/internal/domain"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func TestCreateRoomCodeFormat(t *testing.T) {
	r := NewRegistry()
	seen := make(map[domain.RoomCode]bool)
	for i := 0; i < 64; i++ {
		code := r.CreateRoom()
		assert.Regexp(t, codePattern, string(code))
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestCreateThenGet(t *testing.T) {
	r := NewRegistry()
	code := r.CreateRoom()

	info, ok := r.Get(code)
	require.True(t, ok)
	assert.Equal(t, code, info.Code)
	assert.Equal(t, 0, info.ParticipantCount)
	assert.False(t, info.CreatedAt.IsZero())

	_, ok = r.Get("NOPE-NOPE")
	assert.False(t, ok)
}

func TestGetNormalizesCase(t *testing.T) {
	r := NewRegistry()
	r.rooms["AB12-CD34"] = &room{createdAt: time.Now()}

	info, ok := r.Get("ab12-cd34")
	require.True(t, ok)
	assert.Equal(t, domain.RoomCode("AB12-CD34"), info.Code)
}

func TestEnsureCreatesOnce(t *testing.T) {
	r := NewRegistry()

	first := r.Ensure("ab12-cd34")
	assert.Equal(t, domain.RoomCode("AB12-CD34"), first.Code)
	assert.Equal(t, 0, first.ParticipantCount)
	assert.Equal(t, 1, r.Len())

	again := r.Ensure("AB12-CD34")
	assert.Equal(t, first.CreatedAt, again.CreatedAt)
	assert.Equal(t, 1, r.Len())
}

func TestJoinSequence(t *testing.T) {
	r := NewRegistry()
	code := domain.RoomCode("AB12-CD34")

	res, err := r.Join(code, domain.Participant{ID: "c1", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.True(t, res.Initiator)
	assert.Empty(t, res.Peers)

	res, err = r.Join(code, domain.Participant{ID: "c2", Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.False(t, res.Initiator)
	require.Len(t, res.Peers, 1)
	assert.Equal(t, domain.ConnID("c1"), res.Peers[0].ID)
	assert.Equal(t, "Alice", res.Peers[0].Name)

	_, err = r.Join(code, domain.Participant{ID: "c3", Name: "Carol"})
	assert.ErrorIs(t, err, ErrRoomFull)

	info, ok := r.Get(code)
	require.True(t, ok)
	assert.Equal(t, 2, info.ParticipantCount)
}

func TestJoinNormalizesCode(t *testing.T) {
	r := NewRegistry()
	res, err := r.Join(" ab12-cd34 ", domain.Participant{ID: "c1", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("AB12-CD34"), res.Code)

	_, ok := r.Get("AB12-CD34")
	assert.True(t, ok)
}

func TestRemoveParticipant(t *testing.T) {
	r := NewRegistry()
	code := domain.RoomCode("AB12-CD34")
	_, err := r.Join(code, domain.Participant{ID: "c1", Name: "Alice"})
	require.NoError(t, err)
	_, err = r.Join(code, domain.Participant{ID: "c2", Name: "Bob"})
	require.NoError(t, err)

	removed, remaining, ok := r.RemoveParticipant(code, "c1")
	require.True(t, ok)
	assert.Equal(t, "Alice", removed.Name)
	require.Len(t, remaining, 1)
	assert.Equal(t, domain.ConnID("c2"), remaining[0].ID)

	// Room still present with one occupant.
	info, exists := r.Get(code)
	require.True(t, exists)
	assert.Equal(t, 1, info.ParticipantCount)

	// Removing the last occupant deletes the room immediately.
	_, remaining, ok = r.RemoveParticipant(code, "c2")
	require.True(t, ok)
	assert.Empty(t, remaining)
	_, exists = r.Get(code)
	assert.False(t, exists)
	assert.Equal(t, 0, r.Len())
}

func TestRemoveParticipantMisses(t *testing.T) {
	r := NewRegistry()
	code := domain.RoomCode("AB12-CD34")
	_, err := r.Join(code, domain.Participant{ID: "c1", Name: "Alice"})
	require.NoError(t, err)

	_, _, ok := r.RemoveParticipant("ZZZZ-ZZZZ", "c1")
	assert.False(t, ok)

	_, _, ok = r.RemoveParticipant(code, "ghost")
	assert.False(t, ok)

	info, exists := r.Get(code)
	require.True(t, exists)
	assert.Equal(t, 1, info.ParticipantCount)
}

func TestDeleteStale(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	threshold := 30 * time.Minute

	r := NewRegistry()
	r.now = func() time.Time { return t0 }

	empty := r.CreateRoom()
	occupied := domain.RoomCode("AB12-CD34")
	_, err := r.Join(occupied, domain.Participant{ID: "c1", Name: "Alice"})
	require.NoError(t, err)

	// Not yet past the threshold.
	assert.Equal(t, 0, r.DeleteStale(t0.Add(threshold), threshold))
	_, ok := r.Get(empty)
	assert.True(t, ok)

	// Past the threshold: the never-joined room goes, the occupied one
	// stays no matter how old it is.
	assert.Equal(t, 1, r.DeleteStale(t0.Add(threshold+time.Minute), threshold))
	_, ok = r.Get(empty)
	assert.False(t, ok)
	_, ok = r.Get(occupied)
	assert.True(t, ok)

	assert.Equal(t, 0, r.DeleteStale(t0.Add(24*time.Hour), threshold))
	_, ok = r.Get(occupied)
	assert.True(t, ok)
}

// Ensure reads the participant slice that Join appends to; both must stay
// under the registry lock. Run with -race.
func TestEnsureConcurrentWithJoin(t *testing.T) {
	r := NewRegistry()
	code := domain.RoomCode("AB12-CD34")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			info := r.Ensure(code)
			assert.LessOrEqual(t, info.ParticipantCount, MaxParticipants)
		}
	}()

	for i := 0; i < 500; i++ {
		id := domain.ConnID("c1")
		if i%2 == 1 {
			id = "c2"
		}
		if _, err := r.Join(code, domain.Participant{ID: id, Name: "X"}); err == nil {
			r.RemoveParticipant(code, id)
		}
	}
	wg.Wait()

	info := r.Ensure(code)
	assert.LessOrEqual(t, info.ParticipantCount, MaxParticipants)
}

func TestConcurrentJoinsKeepInvariant(t *testing.T) {
	const attempts = 16
	r := NewRegistry()
	code := domain.RoomCode("AB12-CD34")

	var wg sync.WaitGroup
	var joined, initiators, full int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := r.Join(code, domain.Participant{ID: domain.ConnID(rune('a' + n)), Name: "X"})
			switch {
			case err == nil:
				atomic.AddInt64(&joined, 1)
				if res.Initiator {
					atomic.AddInt64(&initiators, 1)
				}
			default:
				atomic.AddInt64(&full, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 2, joined)
	assert.EqualValues(t, 1, initiators, "exactly one side may create the offer")
	assert.EqualValues(t, attempts-2, full)

	info, ok := r.Get(code)
	require.True(t, ok)
	assert.Equal(t, 2, info.ParticipantCount)
}
