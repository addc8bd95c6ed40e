package safe

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type recordingTracker struct {
	mu     sync.Mutex
	active map[uint64]int64
	freed  int
}

func newRecordingTracker() *recordingTracker {
	return &recordingTracker{active: make(map[uint64]int64)}
}

func (r *recordingTracker) TrackAllocation(id uint64, size int64, tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[id] = size
}

func (r *recordingTracker) TrackDeallocation(id uint64, tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
	r.freed++
}

func TestNewGrayFromBytesCopiesData(t *testing.T) {
	pix := []uint8{1, 2, 3, 4, 5, 6}
	mat, err := NewGrayFromBytes(2, 3, pix, "test")
	require.NoError(t, err)
	defer mat.Close()

	pix[0] = 99

	v, err := mat.GetUCharAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v)

	data, err := mat.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, data)
	assert.NoError(t, ValidateGray(mat, "test"))
}

func TestMatTracksAllocations(t *testing.T) {
	tracker := newRecordingTracker()
	mat, err := NewMatWithTracker(4, 4, gocv.MatTypeCV8UC1, tracker, "tracked")
	require.NoError(t, err)

	assert.Equal(t, int64(16), tracker.active[mat.ID()])

	mat.Close()
	mat.Close()
	assert.Empty(t, tracker.active)
	assert.Equal(t, 1, tracker.freed)
	assert.False(t, mat.IsValid())
	assert.True(t, mat.Empty())
}

func TestMatBoundsAndValidation(t *testing.T) {
	mat, err := NewMat(2, 2, gocv.MatTypeCV8UC1, "bounds")
	require.NoError(t, err)
	defer mat.Close()

	assert.Error(t, mat.SetUCharAt(2, 0, 1))
	_, err = mat.GetUCharAt(0, -1)
	assert.Error(t, err)

	_, err = NewMat(0, 2, gocv.MatTypeCV8UC1, "zero")
	assert.Error(t, err)
	_, err = NewGrayFromBytes(2, 2, []uint8{1}, "short")
	assert.Error(t, err)

	assert.Error(t, ValidateMatForOperation(nil, "nil"))

	color, err := NewMat(2, 2, gocv.MatTypeCV8UC3, "color")
	require.NoError(t, err)
	defer color.Close()
	assert.Error(t, ValidateGray(color, "color"))
}

func TestCloneIsIndependent(t *testing.T) {
	mat, err := NewGrayFromBytes(1, 2, []uint8{10, 20}, "orig")
	require.NoError(t, err)
	defer mat.Close()

	clone, err := mat.Clone()
	require.NoError(t, err)
	defer clone.Close()

	require.NoError(t, clone.SetUCharAt(0, 0, 0))
	v, err := mat.GetUCharAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(10), v)
	assert.Equal(t, "orig_clone", clone.Tag())
}
