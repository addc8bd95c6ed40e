package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// MemoryTracker receives allocation events for every tracked Mat.
type MemoryTracker interface {
	TrackAllocation(id uint64, size int64, tag string)
	TrackDeallocation(id uint64, tag string)
}

// Mat wraps gocv.Mat with validity tracking so a closed Mat is never handed
// back to OpenCV.
type Mat struct {
	mat        gocv.Mat
	isValid    int32
	mu         sync.RWMutex
	id         uint64
	memTracker MemoryTracker
	tag        string
}

var (
	nextMatID uint64

	trackerMu      sync.RWMutex
	defaultTracker MemoryTracker
)

// SetDefaultTracker installs the tracker used by constructors that are not
// given one explicitly. Pass nil to disable tracking.
func SetDefaultTracker(tracker MemoryTracker) {
	trackerMu.Lock()
	defer trackerMu.Unlock()
	defaultTracker = tracker
}

func currentTracker() MemoryTracker {
	trackerMu.RLock()
	defer trackerMu.RUnlock()
	return defaultTracker
}

func NewMat(rows, cols int, matType gocv.MatType, tag string) (*Mat, error) {
	return NewMatWithTracker(rows, cols, matType, currentTracker(), tag)
}

func NewMatWithTracker(rows, cols int, matType gocv.MatType, memTracker MemoryTracker, tag string) (*Mat, error) {
	if err := ValidateDimensions(cols, rows, tag); err != nil {
		return nil, err
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return wrap(mat, memTracker, tag), nil
}

// NewMatFromMat clones src; the caller keeps ownership of src.
func NewMatFromMat(src gocv.Mat, tag string) (*Mat, error) {
	if src.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}
	if src.Rows() <= 0 || src.Cols() <= 0 {
		return nil, fmt.Errorf("source Mat has invalid dimensions: %dx%d", src.Cols(), src.Rows())
	}

	cloned := src.Clone()
	if cloned.Empty() {
		cloned.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	return wrap(cloned, currentTracker(), tag), nil
}

// NewGrayFromBytes builds a CV_8UC1 Mat holding a private copy of pix.
func NewGrayFromBytes(rows, cols int, pix []uint8, tag string) (*Mat, error) {
	if err := ValidateDimensions(cols, rows, tag); err != nil {
		return nil, err
	}
	if len(pix) != rows*cols {
		return nil, fmt.Errorf("pixel buffer has %d bytes, want %d", len(pix), rows*cols)
	}

	// gocv may reference the Go slice directly, so clone before returning.
	view, err := gocv.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, pix)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from bytes: %w", err)
	}
	defer view.Close()

	return NewMatFromMat(view, tag)
}

// Adopt takes ownership of an existing gocv.Mat without copying it.
func Adopt(mat gocv.Mat, tag string) (*Mat, error) {
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("cannot adopt empty Mat (%s)", tag)
	}
	return wrap(mat, currentTracker(), tag), nil
}

func wrap(mat gocv.Mat, memTracker MemoryTracker, tag string) *Mat {
	safeMat := &Mat{
		mat:        mat,
		isValid:    1,
		id:         atomic.AddUint64(&nextMatID, 1),
		memTracker: memTracker,
		tag:        tag,
	}

	if memTracker != nil {
		size := int64(mat.Rows()) * int64(mat.Cols()) * int64(mat.ElemSize())
		memTracker.TrackAllocation(safeMat.id, size, tag)
	}

	runtime.SetFinalizer(safeMat, (*Mat).finalize)
	return safeMat
}

func (sm *Mat) IsValid() bool {
	return atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return true
	}
	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0
	}
	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}
	return sm.mat.Type()
}

func (sm *Mat) Clone() (*Mat, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return nil, fmt.Errorf("cannot clone invalid Mat")
	}
	if sm.mat.Empty() {
		return nil, fmt.Errorf("cannot clone empty Mat")
	}

	return NewMatFromMat(sm.mat, sm.tag+"_clone")
}

func (sm *Mat) GetUCharAt(row, col int) (uint8, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() {
		return 0, fmt.Errorf("Mat is invalid")
	}
	if err := ValidateCoordinates(row, col, sm.mat.Rows(), sm.mat.Cols(), "GetUCharAt"); err != nil {
		return 0, err
	}

	return sm.mat.GetUCharAt(row, col), nil
}

func (sm *Mat) SetUCharAt(row, col int, value uint8) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.IsValid() {
		return fmt.Errorf("Mat is invalid")
	}
	if err := ValidateCoordinates(row, col, sm.mat.Rows(), sm.mat.Cols(), "SetUCharAt"); err != nil {
		return err
	}

	sm.mat.SetUCharAt(row, col, value)
	return nil
}

// Bytes returns a copy of the Mat data in row-major order.
func (sm *Mat) Bytes() ([]uint8, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.IsValid() || sm.mat.Empty() {
		return nil, fmt.Errorf("Mat is invalid")
	}

	if sm.mat.IsContinuous() {
		return sm.mat.ToBytes(), nil
	}

	cont := sm.mat.Clone()
	defer cont.Close()
	return cont.ToBytes(), nil
}

// GetMat exposes the underlying Mat. The Mat must not be closed by the caller.
func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

func (sm *Mat) ID() uint64 {
	return sm.id
}

func (sm *Mat) Tag() string {
	return sm.tag
}

func (sm *Mat) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if sm.memTracker != nil {
			sm.memTracker.TrackDeallocation(sm.id, sm.tag)
		}

		sm.mat.Close()
		runtime.SetFinalizer(sm, nil)
	}
}

// finalize is the garbage collector's last-resort cleanup
func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}
