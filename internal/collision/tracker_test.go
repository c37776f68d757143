package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dbuswire/errs"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Empty(t, tracker.Names())
}

func TestTracker_Track(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("org.example.Player", "Play", 1))
	require.NoError(t, tracker.Track("org.example.Player", "Stop", 2))
	require.NoError(t, tracker.Track("org.example.Player", "Play", 1))
	require.NoError(t, tracker.Track("", "Ping", 3))

	require.Equal(t, 3, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Equal(t, []string{"org.example.Player.Play", "org.example.Player.Stop", ".Ping"}, tracker.Names())
}

func TestTracker_Track_EmptyMember(t *testing.T) {
	tracker := NewTracker()

	err := tracker.Track("org.example.Player", "", 1)
	require.ErrorIs(t, err, errs.ErrInvalidMemberName)
	require.Equal(t, 0, tracker.Count())
}

func TestTracker_Track_Collision(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("a.b", "C", 0xabc))
	require.NoError(t, tracker.Track("x.y", "Z", 0xabc))
	require.True(t, tracker.HasCollision())

	// repeats of either colliding member are not listed again
	require.NoError(t, tracker.Track("x.y", "Z", 0xabc))
	require.NoError(t, tracker.Track("a.b", "C", 0xabc))
	require.Equal(t, []string{"a.b.C", "x.y.Z"}, tracker.Names())
}

func TestTracker_Track_SplitAmbiguity(t *testing.T) {
	tracker := NewTracker()

	// same joined text, different split
	require.NoError(t, tracker.Track("a.b", "C", 7))
	require.NoError(t, tracker.Track("a", "b.C", 7))

	require.False(t, tracker.HasCollision())
	require.Equal(t, 1, tracker.Count())
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	require.NoError(t, tracker.Track("a.b", "C", 1))
	require.NoError(t, tracker.Track("x.y", "Z", 1))

	tracker.Reset()
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())

	require.NoError(t, tracker.Track("x.y", "Z", 1))
	require.Equal(t, []string{"x.y.Z"}, tracker.Names())
}
