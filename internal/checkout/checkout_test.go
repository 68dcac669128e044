package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextHappyPath(t *testing.T) {
	state := StateIdle
	for _, step := range []struct {
		ev   Event
		want State
	}{
		{EventSelectGoal, StateGoalSelected},
		{EventOpenPayment, StatePaymentOpen},
		{EventSubmitPayment, StatePaymentProcessing},
		{EventSucceed, StateSuccess},
	} {
		next, err := Next(state, step.ev)
		require.NoError(t, err)
		assert.Equal(t, step.want, next)
		state = next
	}
}

func TestNextCloseAbandons(t *testing.T) {
	for _, from := range []State{StateIdle, StateGoalSelected, StatePaymentOpen, StatePaymentProcessing, StateError} {
		next, err := Next(from, EventClose)
		require.NoError(t, err, from)
		assert.Equal(t, StateIdle, next)
	}
	_, err := Next(StateSuccess, EventClose)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNextRejectsInvalid(t *testing.T) {
	cases := []struct {
		from State
		ev   Event
	}{
		{StateIdle, EventOpenPayment},
		{StateIdle, EventSucceed},
		{StateGoalSelected, EventSubmitPayment},
		{StatePaymentOpen, EventSucceed},
		{StateSuccess, EventFail},
		{StateSuccess, EventSubmitPayment},
		{StatePaymentOpen, Event("teleport")},
	}
	for _, tc := range cases {
		next, err := Next(tc.from, tc.ev)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, tc.from, next)
	}
}

func TestErrorAllowsRetry(t *testing.T) {
	next, err := Next(StatePaymentProcessing, EventFail)
	require.NoError(t, err)
	next, err = Next(next, EventSubmitPayment)
	require.NoError(t, err)
	assert.Equal(t, StatePaymentProcessing, next)
}

func TestTracker(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Apply("pi_missing", EventSubmitPayment)
	assert.ErrorIs(t, err, ErrUnknownIntent)

	tr.Open("pi_1")
	s, ok := tr.Get("pi_1")
	require.True(t, ok)
	assert.Equal(t, StatePaymentOpen, s.State)

	s, err = tr.Apply("pi_1", EventSubmitPayment)
	require.NoError(t, err)
	assert.Equal(t, StatePaymentProcessing, s.State)

	_, err = tr.Apply("pi_1", EventOpenPayment)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	tr.Complete("pi_1")
	s, _ = tr.Get("pi_1")
	assert.Equal(t, StateSuccess, s.State)

	tr.Open("")
	_, ok = tr.Get("")
	assert.False(t, ok)
}

func TestTrackerPrune(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return base }
	tr.Open("pi_old")
	tr.now = func() time.Time { return base.Add(2 * time.Hour) }
	tr.Open("pi_new")

	assert.Equal(t, 1, tr.Prune(time.Hour))
	_, ok := tr.Get("pi_old")
	assert.False(t, ok)
	_, ok = tr.Get("pi_new")
	assert.True(t, ok)
}
