package seats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorAssignsSeatsInOrder(t *testing.T) {
	for n := 1; n <= Count; n++ {
		a := NewAllocator()
		got := make([]Seat, 0, n)
		for i := 0; i < n; i++ {
			seat, err := a.Acquire()
			require.NoError(t, err)
			got = append(got, seat)
		}
		assert.Equal(t, All()[:n], got)
		assert.Equal(t, n, a.InUse())
	}
}

func TestAllocatorRejectsFifth(t *testing.T) {
	a := NewAllocator()
	for i := 0; i < Count; i++ {
		_, err := a.Acquire()
		require.NoError(t, err)
	}

	_, err := a.Acquire()
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestAllocatorReusesFirstFreeSeat(t *testing.T) {
	a := NewAllocator()
	for i := 0; i < Count; i++ {
		_, err := a.Acquire()
		require.NoError(t, err)
	}

	assert.True(t, a.Release(TopRight))
	assert.True(t, a.Release(TopLeft))
	assert.False(t, a.Release(TopLeft), "double release is a no-op")

	seat, err := a.Acquire()
	require.NoError(t, err)
	assert.Equal(t, TopLeft, seat)

	seat, err = a.Acquire()
	require.NoError(t, err)
	assert.Equal(t, TopRight, seat)
}

func TestSeatNames(t *testing.T) {
	names := make([]string, 0, Count)
	for _, seat := range All() {
		names = append(names, seat.String())
	}
	assert.Equal(t, []string{"topLeft", "topRight", "bottomLeft", "bottomRight"}, names)
	assert.Equal(t, "SEAT_7", Seat(7).String())
	assert.Equal(t, TopLeft, BottomRight.Next())
}

func TestAllocatorHeld(t *testing.T) {
	a := NewAllocator()
	assert.False(t, a.Held(TopLeft))

	_, err := a.Acquire()
	require.NoError(t, err)
	assert.True(t, a.Held(TopLeft))
	assert.False(t, a.Held(TopRight))
	assert.False(t, a.Held(Seat(9)))

	a.Release(TopLeft)
	assert.False(t, a.Held(TopLeft))
}
