// Package session ties the edit history to the image and processing
// collaborators. It is the single entry point used by the GUI controller
// and by batch mode.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/services"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

// Processor applies operations. services.ProcessingService implements it.
type Processor interface {
	Apply(ctx context.Context, state models.ImageState, op models.Operation) (services.Result, error)
	Spectrum(ctx context.Context, state models.ImageState) (models.ImageState, error)
}

// Codec loads and saves images. services.ImageService implements it.
type Codec interface {
	Load(ctx context.Context, r io.Reader, name string) (*models.ImageData, error)
	LoadFile(ctx context.Context, path string) (*models.ImageData, error)
	Save(ctx context.Context, w io.Writer, state models.ImageState, format string) error
	SaveFile(ctx context.Context, path string, state models.ImageState) (string, error)
}

// Observer receives history and operation events. metrics.Recorder
// implements it.
type Observer interface {
	OperationApplied(operation string, elapsed time.Duration)
	OperationFailed(operation string)
	HistoryMoved(direction string)
	HistoryChanged(depth, cursor int)
}

// Snapshot is a consistent view of the session for rendering.
type Snapshot struct {
	State    models.ImageState
	HasImage bool
	CanUndo  bool
	CanRedo  bool
	Depth    int
	Cursor   int
	Capacity int
	// Generation increases with every change to the history. A snapshot
	// with a lower generation is older.
	Generation uint64
	// Source describes the loaded file. Its State field is always empty.
	Source models.ImageData
}

// Outcome is returned by every successful request.
type Outcome struct {
	Snapshot  Snapshot
	Message   string
	Operation string
	Duration  time.Duration
	// Path is the file written by SaveFile.
	Path string
}

type Session struct {
	mu         sync.Mutex
	history    *models.EditHistory
	original   models.ImageState
	source     models.ImageData
	generation uint64
	inFlight   bool

	processor Processor
	codec     Codec
	observer  Observer
	logger    logger.Logger
}

// New creates a session with a history of the given capacity.
func New(capacity int, processor Processor, codec Codec, log logger.Logger) *Session {
	return &Session{
		history:   models.NewEditHistory(capacity),
		processor: processor,
		codec:     codec,
		observer:  nopObserver{},
		logger:    log,
	}
}

// SetObserver installs o; nil restores the no-op observer.
func (s *Session) SetObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// Load decodes r and seeds the history with it. Any edit still running
// will have its result discarded.
func (s *Session) Load(ctx context.Context, r io.Reader, name string) (Outcome, error) {
	start := time.Now()
	data, err := s.codec.Load(ctx, r, name)
	if err != nil {
		return s.loadFailed(name, err)
	}
	return s.adopt(data, time.Since(start)), nil
}

// LoadFile is Load for a path on disk.
func (s *Session) LoadFile(ctx context.Context, path string) (Outcome, error) {
	start := time.Now()
	data, err := s.codec.LoadFile(ctx, path)
	if err != nil {
		return s.loadFailed(path, err)
	}
	return s.adopt(data, time.Since(start)), nil
}

func (s *Session) loadFailed(name string, err error) (Outcome, error) {
	s.logger.Error("Session", err, map[string]interface{}{"operation": "load", "name": name})
	return Outcome{}, &OperationError{Operation: "load", Err: err}
}

func (s *Session) adopt(data *models.ImageData, elapsed time.Duration) Outcome {
	s.mu.Lock()
	s.history.Reset(data.State)
	s.original = data.State.Clone()
	s.source = *data
	s.source.State = models.ImageState{}
	s.generation++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("Session", "image loaded", map[string]interface{}{
		"name":   data.Name,
		"format": data.Format,
		"width":  data.State.Width(),
		"height": data.State.Height(),
	})

	return Outcome{
		Snapshot:  snap,
		Operation: "load",
		Duration:  elapsed,
		Message: fmt.Sprintf("Loaded %s (%d×%d, %s)", data.Name,
			data.State.Width(), data.State.Height(), humanize.Bytes(uint64(max(data.Metadata.FileSize, 0)))),
	}
}

// Apply runs op on the current state and records the result. Only one
// Apply may run at a time; a second concurrent call gets ErrBusy.
func (s *Session) Apply(ctx context.Context, op models.Operation) (Outcome, error) {
	if op == nil {
		return Outcome{}, &OperationError{Operation: "apply", Err: errors.New("no operation given")}
	}
	op = models.Normalize(op)
	name := string(op.Kind())

	s.mu.Lock()
	current, err := s.history.Current()
	if err != nil {
		s.mu.Unlock()
		return Outcome{}, ErrNoImage
	}
	if s.inFlight {
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	s.inFlight = true
	generation := s.generation
	observer := s.observer
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	start := time.Now()
	result, err := s.processor.Apply(ctx, current, op)
	elapsed := time.Since(start)
	if err != nil {
		observer.OperationFailed(name)
		s.logger.Error("Session", err, map[string]interface{}{"operation": name})
		return Outcome{}, &OperationError{Operation: op.String(), Err: err}
	}

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		s.logger.Warning("Session", "discarding stale result", map[string]interface{}{"operation": name})
		return Outcome{}, ErrStaleResult
	}
	s.history.Record(result.State)
	s.generation++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	observer.OperationApplied(name, elapsed)
	observer.HistoryChanged(snap.Depth, snap.Cursor)

	message := fmt.Sprintf("%s applied in %s", op.String(), formatDuration(elapsed))
	if result.Detail != "" {
		message += " (" + result.Detail + ")"
	}

	s.logger.Info("Session", "operation applied", map[string]interface{}{
		"operation": name,
		"duration":  elapsed.String(),
		"depth":     snap.Depth,
	})

	return Outcome{
		Snapshot:  snap,
		Message:   message,
		Operation: name,
		Duration:  elapsed,
	}, nil
}

// Undo steps back one state. At the oldest state it returns
// models.ErrNoHistory and nothing changes.
func (s *Session) Undo() (Outcome, error) {
	return s.navigate("undo", s.history.Undo)
}

// Redo steps forward one state. At the newest state it returns
// models.ErrNoHistory and nothing changes.
func (s *Session) Redo() (Outcome, error) {
	return s.navigate("redo", s.history.Redo)
}

func (s *Session) navigate(direction string, step func() (models.ImageState, error)) (Outcome, error) {
	s.mu.Lock()
	if _, err := step(); err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}
	s.generation++
	snap := s.snapshotLocked()
	observer := s.observer
	s.mu.Unlock()

	observer.HistoryMoved(direction)
	observer.HistoryChanged(snap.Depth, snap.Cursor)

	verb := "Undone"
	if direction == "redo" {
		verb = "Redone"
	}
	return Outcome{
		Snapshot:  snap,
		Operation: direction,
		Message:   fmt.Sprintf("%s (step %d of %d)", verb, snap.Cursor+1, snap.Depth),
	}, nil
}

// ResetToOriginal re-seeds the history with the image as it was loaded.
func (s *Session) ResetToOriginal() (Outcome, error) {
	s.mu.Lock()
	if s.original.IsEmpty() {
		s.mu.Unlock()
		return Outcome{}, ErrNoImage
	}
	s.history.Reset(s.original)
	s.generation++
	snap := s.snapshotLocked()
	observer := s.observer
	s.mu.Unlock()

	observer.HistoryMoved("reset")
	observer.HistoryChanged(snap.Depth, snap.Cursor)

	return Outcome{
		Snapshot:  snap,
		Operation: "reset",
		Message:   "Reset to original image",
	}, nil
}

// Save encodes the current state to w.
func (s *Session) Save(ctx context.Context, w io.Writer, format string) error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if err := s.codec.Save(ctx, w, state, format); err != nil {
		return &OperationError{Operation: "save", Err: err}
	}
	return nil
}

// SaveFile writes the current state to path.
func (s *Session) SaveFile(ctx context.Context, path string) (Outcome, error) {
	state, err := s.State()
	if err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	written, err := s.codec.SaveFile(ctx, path, state)
	if err != nil {
		s.logger.Error("Session", err, map[string]interface{}{"operation": "save", "path": path})
		return Outcome{}, &OperationError{Operation: "save", Err: err}
	}

	message := "Saved " + written
	if info, statErr := os.Stat(written); statErr == nil {
		message += " (" + humanize.Bytes(uint64(info.Size())) + ")"
	}

	return Outcome{
		Snapshot:  s.Current(),
		Operation: "save",
		Duration:  time.Since(start),
		Message:   message,
		Path:      written,
	}, nil
}

// State returns the current image or ErrNoImage.
func (s *Session) State() (models.ImageState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.history.Current()
	if err != nil {
		return models.ImageState{}, ErrNoImage
	}
	return state, nil
}

// Current returns a snapshot of the session.
func (s *Session) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Busy reports whether an Apply is running.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Spectrum renders the magnitude spectrum of the current state. It is a
// view and never touches the history.
func (s *Session) Spectrum(ctx context.Context) (models.ImageState, error) {
	state, err := s.State()
	if err != nil {
		return models.ImageState{}, err
	}
	spectrum, err := s.processor.Spectrum(ctx, state)
	if err != nil {
		return models.ImageState{}, &OperationError{Operation: "spectrum", Err: err}
	}
	return spectrum, nil
}

// Shutdown drops every held state.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Clear()
	s.original = models.ImageState{}
	s.generation++
	s.logger.Debug("Session", "session closed", nil)
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		CanUndo:    s.history.CanUndo(),
		CanRedo:    s.history.CanRedo(),
		Depth:      s.history.Len(),
		Cursor:     s.history.Cursor(),
		Capacity:   s.history.Capacity(),
		Generation: s.generation,
		Source:     s.source,
	}
	if state, err := s.history.Current(); err == nil {
		snap.State = state
		snap.HasImage = true
	}
	return snap
}

func formatDuration(d time.Duration) string {
	if out := durafmt.ParseShort(d).String(); out != "" {
		return out
	}
	return d.String()
}

type nopObserver struct{}

func (nopObserver) OperationApplied(string, time.Duration) {}
func (nopObserver) OperationFailed(string)                 {}
func (nopObserver) HistoryMoved(string)                    {}
func (nopObserver) HistoryChanged(int, int)                {}
