package ui

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/assets"
	"github.com/edwinsyarief/mado/geom"
)

var (
	// ErrStopped is returned by Tick once the app has stopped after a render
	// failure.
	ErrStopped = errors.New("ui: app stopped")
	// ErrRenderFailure marks a failed draw. Renderers wrap their errors with
	// it; the app stops accepting ticks once it sees one.
	ErrRenderFailure = errors.New("ui: render failure")
)

// Renderer consumes the resolved tree once per tick.
type Renderer interface {
	Draw(f *Frame) error
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	log         *zap.Logger
	renderer    Renderer
	size        geom.Vec2
	effectLimit int64
	capacity    int
}

// WithLogger sets the app logger.
func WithLogger(l *zap.Logger) AppOption {
	return func(o *appOptions) { o.log = l }
}

// WithRenderer sets the renderer invoked after every schedule run.
func WithRenderer(r Renderer) AppOption {
	return func(o *appOptions) { o.renderer = r }
}

// WithSize sets the initial window size.
func WithSize(width, height float32) AppOption {
	return func(o *appOptions) { o.size = geom.V(width, height) }
}

// WithEffectLimit bounds how many effects may run concurrently.
func WithEffectLimit(n int64) AppOption {
	return func(o *appOptions) { o.effectLimit = n }
}

// WithCapacity preallocates room for n entities.
func WithCapacity(n int) AppOption {
	return func(o *appOptions) { o.capacity = n }
}

// App drives the tick loop: poll effects, run the schedule, draw.
type App struct {
	frame    *Frame
	schedule *mado.Schedule
	renderer Renderer
	input    *InputState
	root     mado.Entity
	log      *zap.Logger
	stopped  bool
}

// NewApp builds the world, mounts content under a Canvas root and wires the
// window boundary events.
func NewApp(content Widget, opts ...AppOption) (*App, error) {
	o := appOptions{
		log:         zap.NewNop(),
		size:        geom.V(800, 600),
		effectLimit: 8,
		capacity:    1024,
	}
	for _, opt := range opts {
		opt(&o)
	}
	w := mado.NewWorld(o.capacity, mado.WithLogger(o.log.Named("world")))
	frame := NewFrame(w, assets.NewCache(), NewEffects(o.effectLimit, o.log.Named("effects")))

	canvas := &Canvas{Size: o.size}
	if content != nil {
		canvas.Content = []Widget{content}
	}
	root, err := frame.NewRoot(canvas)
	if err != nil {
		return nil, fmt.Errorf("mount root: %w", err)
	}
	a := &App{
		frame:    frame,
		schedule: NewSchedule(o.log.Named("schedule")),
		renderer: o.renderer,
		input:    NewInputState(w, frame.Events),
		root:     root,
		log:      o.log,
	}
	mado.SetResource(w.Resources(), a.input)
	mado.Subscribe(frame.Events, func(ev Resized) {
		if err := mado.Set(w, a.root, geom.FromSize(ev.Size)); err != nil {
			a.log.Error("resize root", zap.Error(err))
		}
	})
	return a, nil
}

// Frame returns the app's frame.
func (a *App) Frame() *Frame { return a.frame }

// World is shorthand for Frame().World.
func (a *App) World() *mado.World { return a.frame.World }

// Root returns the canvas entity.
func (a *App) Root() mado.Entity { return a.root }

// Input returns the pointer state.
func (a *App) Input() *InputState { return a.input }

// SetRenderer replaces the renderer. Renderers usually need the frame, so
// they are attached after the app is built.
func (a *App) SetRenderer(r Renderer) { a.renderer = r }

// Stopped reports whether a render failure stopped the app.
func (a *App) Stopped() bool { return a.stopped }

// Tick advances the app by dt. A render failure stops the app: the error is
// returned once and every later Tick returns ErrStopped.
func (a *App) Tick(dt time.Duration) error {
	if a.stopped {
		return ErrStopped
	}
	f := a.frame
	f.DeltaTime = dt
	if err := f.Effects.Poll(f.World); err != nil {
		a.log.Warn("effects", zap.Error(err))
	}
	if err := a.schedule.Execute(f.World); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if a.renderer == nil {
		return nil
	}
	if err := a.renderer.Draw(f); err != nil {
		a.stopped = true
		a.log.Error("render failed, stopping", zap.Error(err))
		if !errors.Is(err, ErrRenderFailure) {
			err = fmt.Errorf("%w: %w", ErrRenderFailure, err)
		}
		return err
	}
	return nil
}

// Resize turns a window resize into a write of the root's Rect.
func (a *App) Resize(width, height float32) {
	mado.Publish(a.frame.Events, Resized{Size: geom.V(width, height)})
}

// PointerMove forwards a pointer motion to the input state.
func (a *App) PointerMove(x, y float32) {
	mado.Publish(a.frame.Events, PointerMoved{Pos: geom.V(x, y)})
}

// PointerButton forwards a button press or release to the input state.
func (a *App) PointerButton(x, y float32, button int, pressed bool) {
	mado.Publish(a.frame.Events, PointerButton{Pos: geom.V(x, y), Button: button, Pressed: pressed})
}

// KeyInput forwards a key press or release to the input state.
func (a *App) KeyInput(key string, pressed bool) {
	mado.Publish(a.frame.Events, KeyInput{Key: key, Pressed: pressed})
}

// Close cancels every running effect.
func (a *App) Close() {
	a.frame.Effects.Close()
}
