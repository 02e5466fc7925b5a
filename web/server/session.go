package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Session is a continuously accumulating render of one scene that clients
// steer between frames. mu is the frame barrier: it is held for the whole of
// every Render call and every edit, so edits never land mid-frame.
type Session struct {
	ID string

	mu        sync.Mutex
	scene     *scene.Scene
	camera    *renderer.PerspectiveCamera
	renderer  *renderer.Renderer
	logger    *WebLogger
	maxFrames int // Frames rendered after the last edit before the loop idles
	rendered  int

	subMu       sync.Mutex
	subscribers map[chan SSEEvent]struct{}

	wake    chan struct{}
	console chan ConsoleMessage
	cancel  context.CancelFunc
	done    chan struct{}
}

// SessionState is the JSON view of a session
type SessionState struct {
	ID         string            `json:"id"`
	Scene      string            `json:"scene"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	FrameIndex int               `json:"frameIndex"`
	Rendered   int               `json:"rendered"`
	MaxFrames  int               `json:"maxFrames"`
	Position   core.Vec3         `json:"position"`
	Forward    core.Vec3         `json:"forward"`
	Settings   renderer.Settings `json:"settings"`
	Materials  []scene.Material  `json:"materials"`
	Shapes     []ShapeInfo       `json:"shapes"`
}

// ShapeInfo describes one primitive of a session's scene
type ShapeInfo struct {
	Kind     string    `json:"kind"`
	Origin   core.Vec3 `json:"origin"`
	Material int       `json:"material"`
}

// newSession binds a renderer to the camera's image size and starts the render loop
func newSession(id string, sc *scene.Scene, cam *renderer.PerspectiveCamera, settings renderer.Settings, maxFrames int, base log.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	console := make(chan ConsoleMessage, 50)
	logger := NewWebLogger(id, base, console)

	width, height := cam.Size()
	rt := renderer.New(settings, logger)
	rt.SetImage(renderer.NewImage(width, height))

	s := &Session{
		ID:          id,
		scene:       sc,
		camera:      cam,
		renderer:    rt,
		logger:      logger,
		maxFrames:   maxFrames,
		subscribers: make(map[chan SSEEvent]struct{}),
		wake:        make(chan struct{}, 1),
		console:     console,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	go s.forwardConsole()
	go s.run(ctx)
	return s
}

// run renders frames until cancelled, idling once maxFrames frames have
// accumulated since the last edit
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	for {
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		if s.rendered >= s.maxFrames {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-ctx.Done():
				return
			}
		}

		start := time.Now()
		stats, err := s.renderer.Render(ctx, s.scene, s.camera)
		if err != nil {
			s.mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			s.logger.Errorf("render failed: %v", err)
			s.mu.Lock()
			s.rendered = s.maxFrames
			s.mu.Unlock()
			continue
		}
		s.rendered++
		rendered := s.rendered

		var snapshot *FrameUpdate
		if s.hasSubscribers() {
			snapshot = &FrameUpdate{Frame: stats.Frame, Stats: newFrameStats(stats, s.scene.PrimitiveCount())}
			img := s.renderer.Image().RGBA()
			s.mu.Unlock()

			data, err := imageToBase64PNG(img)
			if err != nil {
				s.logger.Errorf("failed to encode frame: %v", err)
				continue
			}
			snapshot.ImageData = data
		} else {
			s.mu.Unlock()
		}

		if snapshot != nil {
			snapshot.IsComplete = rendered >= s.maxFrames
			snapshot.ElapsedMs = time.Since(start).Milliseconds()
			s.publish("frame", snapshot)
		}
	}
}

// Close stops the render loop and releases the workers
func (s *Session) Close() {
	s.cancel()
	<-s.done

	s.mu.Lock()
	s.renderer.Close()
	s.mu.Unlock()
}

// Done is closed when the render loop has stopped
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ApplyInput moves the camera. Any movement restarts accumulation.
func (s *Session) ApplyInput(input renderer.Input) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.camera.Update(input) {
		return false
	}
	s.restartLocked()
	return true
}

// SetCamera places the camera at position looking along forward
func (s *Session) SetCamera(position, forward core.Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := s.camera.SetPosition(position)
	if forward != (core.Vec3{}) && s.camera.SetForward(forward) {
		moved = true
	}
	if moved {
		s.restartLocked()
	}
	return moved
}

// SetMaterial replaces one material and restarts accumulation
func (s *Session) SetMaterial(index int, material scene.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.scene.Materials) {
		return fmt.Errorf("%w: material %d, scene has %d", scene.ErrMaterialIndex, index, len(s.scene.Materials))
	}
	s.scene.Materials[index] = material
	s.logger.Infof("material %d updated", index)
	s.restartLocked()
	return nil
}

// MoveShape repositions one primitive and restarts accumulation
func (s *Session) MoveShape(index int, origin core.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.scene.Shapes) {
		return fmt.Errorf("shape %d out of range, scene has %d", index, len(s.scene.Shapes))
	}
	s.scene.Shapes[index].MoveTo(origin)
	s.logger.Infof("shape %d moved to %v", index, origin)
	s.restartLocked()
	return nil
}

// SetSettings swaps the render settings. Accumulation only restarts when
// the accumulate flag toggles; other changes blend into the running average.
func (s *Session) SetSettings(settings renderer.Settings) {
	s.UpdateSettings(func(current *renderer.Settings) { *current = settings })
}

// UpdateSettings applies update to the current settings under the frame
// lock, so concurrent edits to different fields all survive.
func (s *Session) UpdateSettings(update func(*renderer.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.renderer.Settings()
	settings := previous
	update(&settings)
	s.renderer.SetSettings(settings)
	if previous.Accumulate != settings.Accumulate {
		s.renderer.ResetFrameIndex()
	}
	s.rendered = 0
	s.notify()
}

// Inspect traces the primary ray under pixel (x, y), y counting from the top
func (s *Session) Inspect(x, y int) (renderer.PixelInspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, height := s.camera.Size()
	return s.renderer.Inspect(s.scene, s.camera, x, height-1-y)
}

// State returns a snapshot of the session for clients
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	width, height := s.camera.Size()
	state := SessionState{
		ID:         s.ID,
		Scene:      s.scene.Name,
		Width:      width,
		Height:     height,
		FrameIndex: s.renderer.FrameIndex(),
		Rendered:   s.rendered,
		MaxFrames:  s.maxFrames,
		Position:   s.camera.Position(),
		Forward:    s.camera.Forward(),
		Settings:   s.renderer.Settings(),
		Materials:  append([]scene.Material(nil), s.scene.Materials...),
	}
	for _, shape := range s.scene.Shapes {
		state.Shapes = append(state.Shapes, ShapeInfo{
			Kind:     shape.Kind().String(),
			Origin:   shape.Origin(),
			Material: shape.MaterialIndex(),
		})
	}
	return state
}

// restartLocked clears accumulation and wakes an idle loop; mu must be held
func (s *Session) restartLocked() {
	s.renderer.ResetFrameIndex()
	s.rendered = 0
	s.notify()
}

func (s *Session) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Subscribe registers a stream for frame and console events
func (s *Session) Subscribe() chan SSEEvent {
	ch := make(chan SSEEvent, 16)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()
	return ch
}

// Unsubscribe removes a stream registered with Subscribe
func (s *Session) Unsubscribe(ch chan SSEEvent) {
	s.subMu.Lock()
	delete(s.subscribers, ch)
	s.subMu.Unlock()
}

func (s *Session) hasSubscribers() bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers) > 0
}

// publish fans an event out to every subscriber, dropping it for any
// subscriber that has fallen behind
func (s *Session) publish(eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.base.Errorf("error marshaling %s event: %v", eventType, err)
		return
	}
	event := SSEEvent{Type: eventType, Data: string(data)}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// forwardConsole publishes log lines until the render loop stops. The
// console channel is never closed; late messages are dropped once it fills.
func (s *Session) forwardConsole() {
	for {
		select {
		case msg := <-s.console:
			s.publish("console", msg)
		case <-s.done:
			return
		}
	}
}
