// Package prefs owns the live theme preferences: the record, its derived
// display values, and write-through persistence to the session's backend.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kalambet/themeprefs/internal/backend"
	"github.com/kalambet/themeprefs/internal/localstore"
	"github.com/kalambet/themeprefs/internal/theme"
)

// ErrNotInitialized is returned by setters on a store whose Init never ran.
var ErrNotInitialized = errors.New("preference store not initialized")

// Deps configures a Store. Zero fields get defaults: environment detection,
// no shell store, a memory-only local store, the builtin catalog, light mode,
// DefaultRecord and slog.Default.
type Deps struct {
	Detect   func() backend.Kind
	Shell    backend.ShellOpener
	Local    backend.KeyValue
	Catalog  theme.Catalog
	Mode     theme.ModeProvider
	Defaults *Record
	Logger   *slog.Logger
}

// View is a snapshot of the record and everything derived from it.
type View struct {
	Theme        string     `json:"theme,omitempty"`
	Radius       float64    `json:"radius"`
	DisplayClass string     `json:"display_class"`
	PrimaryColor string     `json:"primary_color"`
	Mode         theme.Mode `json:"mode"`
	Backend      string     `json:"backend,omitempty"`
	Ready        bool       `json:"ready"`
}

// Store holds the preference record for one session.
type Store struct {
	detect   func() backend.Kind
	shell    backend.ShellOpener
	local    backend.KeyValue
	catalog  theme.Catalog
	mode     theme.ModeProvider
	defaults Record
	logger   *slog.Logger
	session  string

	mu       sync.RWMutex
	rec      Record
	adapter  backend.Adapter
	detected backend.Kind

	initOnce sync.Once
	started  atomic.Bool
	ready    chan struct{}
	initErr  error

	seq      atomic.Uint64
	saveMu   sync.Mutex
	lastSave uint64
	inflight saveTracker
}

// New returns a store holding the defaults. Call Init before mutating it.
func New(deps Deps) *Store {
	s := &Store{
		detect:  deps.Detect,
		shell:   deps.Shell,
		local:   deps.Local,
		catalog: deps.Catalog,
		mode:    deps.Mode,
		logger:  deps.Logger,
		session: uuid.NewString(),
		ready:   make(chan struct{}),
	}
	if s.detect == nil {
		s.detect = backend.DetectEnv
	}
	if s.local == nil {
		s.local = localstore.NewMemory()
	}
	if s.catalog == nil {
		s.catalog = theme.Builtin()
	}
	if s.mode == nil {
		s.mode = theme.StaticMode(theme.ModeLight)
	}
	if deps.Defaults != nil {
		s.defaults = deps.Defaults.clone()
	} else {
		s.defaults = DefaultRecord()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("session", s.session)
	s.rec = s.defaults.clone()
	return s
}

// Init detects the backend, loads any stored record and merges it over the
// defaults. It runs once; later calls return the first call's result.
// Backend and data failures are logged and leave the defaults in place, so
// the only error is ctx's own when it ends before loading completes.
func (s *Store) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.started.Store(true)
		defer close(s.ready)
		s.initErr = s.init(ctx)
	})
	<-s.ready
	return s.initErr
}

func (s *Store) init(ctx context.Context) error {
	s.mu.Lock()
	s.rec = s.defaults.clone()
	s.mu.Unlock()

	kind := s.detect()
	adapter, err := backend.Select(ctx, kind, StorageKey, s.shell, s.local, s.logger)
	if err != nil {
		s.logger.Warn("demoted to local storage for this session", "detected", kind, "error", err)
	}

	raw, ok, err := adapter.Load(ctx)
	if err != nil && ctx.Err() == nil && !errors.Is(err, backend.ErrMalformed) && adapter.Kind() == backend.KindDesktopShell {
		s.logger.Warn("reading shell store failed, demoted to local storage for this session", "error", err)
		adapter = backend.NewBrowserAdapter(StorageKey, s.local)
		raw, ok, err = adapter.Load(ctx)
	}

	rec := s.defaults.clone()
	switch {
	case err != nil:
		s.logger.Error("loading preferences, using defaults", "backend", adapter.Kind(), "error", err)
	case ok:
		merged, mergeErr := Merge(s.defaults, raw)
		if mergeErr != nil {
			s.logger.Error("parsing saved preferences, using defaults", "backend", adapter.Kind(), "error", mergeErr)
		} else {
			rec = merged
			s.logger.Debug("loaded preferences", "backend", adapter.Kind(), "theme", rec.Theme, "radius", rec.Radius)
		}
	}

	s.mu.Lock()
	s.rec = rec
	s.adapter = adapter
	s.detected = kind
	s.mu.Unlock()
	return ctx.Err()
}

// Ready reports whether Init has completed.
func (s *Store) Ready() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

func (s *Store) awaitReady(ctx context.Context) error {
	if !s.started.Load() {
		return ErrNotInitialized
	}
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetTheme replaces the theme name and saves the record in the background.
// Any name is accepted; names missing from the catalog resolve no color.
func (s *Store) SetTheme(ctx context.Context, name string) error {
	return s.mutate(ctx, func(r *Record) { r.Theme = name })
}

// SetRadius replaces the radius and saves the record in the background.
func (s *Store) SetRadius(ctx context.Context, radius float64) error {
	return s.mutate(ctx, func(r *Record) { r.Radius = radius })
}

// mutate waits for Init, applies fn, then starts a save of the resulting
// record. Save errors are logged, not returned.
func (s *Store) mutate(ctx context.Context, fn func(*Record)) error {
	if err := s.awaitReady(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	fn(&s.rec)
	snapshot := s.rec.clone()
	adapter := s.adapter
	seq := s.seq.Add(1)
	s.inflight.start()
	s.mu.Unlock()

	go s.persist(context.WithoutCancel(ctx), adapter, seq, snapshot)
	return nil
}

func (s *Store) persist(ctx context.Context, adapter backend.Adapter, seq uint64, rec Record) {
	defer s.inflight.done()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	// A newer record has already been written (or attempted).
	if seq <= s.lastSave {
		return
	}
	s.lastSave = seq

	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("encoding preferences", "error", err)
		return
	}
	if err := adapter.Save(ctx, data); err != nil {
		s.logger.Error("saving preferences", "backend", adapter.Kind(), "error", err)
		return
	}
	s.logger.Debug("saved preferences", "backend", adapter.Kind(), "theme", rec.Theme, "radius", rec.Radius)
}

// Flush waits until every save started before the call has finished.
func (s *Store) Flush(ctx context.Context) error {
	return s.inflight.wait(ctx)
}

// Record returns a copy of the live record.
func (s *Store) Record() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.clone()
}

func (s *Store) ThemeName() string { return s.Record().Theme }

func (s *Store) Radius() float64 { return s.Record().Radius }

func (s *Store) DisplayClass() string { return DisplayClass(s.Record()) }

// PrimaryColor resolves the current theme against the catalog in the
// current appearance mode.
func (s *Store) PrimaryColor() string {
	return PrimaryColor(s.Record(), s.catalog, s.mode.Mode())
}

// CSS renders the display class rule for the current record and mode.
func (s *Store) CSS() string {
	return CSS(s.Record(), s.catalog, s.mode.Mode())
}

// Catalog returns the catalog the store resolves themes against.
func (s *Store) Catalog() theme.Catalog { return s.catalog }

// Mode returns the current appearance mode.
func (s *Store) Mode() theme.Mode { return s.mode.Mode() }

// Session returns the id attached to this store's log lines.
func (s *Store) Session() string { return s.session }

// Backend returns the backend in use. ok is false before Init completes.
func (s *Store) Backend() (kind backend.Kind, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.adapter == nil {
		return backend.KindBrowser, false
	}
	return s.adapter.Kind(), true
}

// Detected returns the backend the environment asked for, which differs
// from Backend after a demotion.
func (s *Store) Detected() backend.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detected
}

// View snapshots the record and its derived values.
func (s *Store) View() View {
	s.mu.RLock()
	rec := s.rec.clone()
	adapter := s.adapter
	s.mu.RUnlock()

	mode := s.mode.Mode()
	v := View{
		Theme:        rec.Theme,
		Radius:       rec.Radius,
		DisplayClass: DisplayClass(rec),
		PrimaryColor: PrimaryColor(rec, s.catalog, mode),
		Mode:         mode,
		Ready:        s.Ready(),
	}
	if adapter != nil {
		v.Backend = adapter.Kind().String()
	}
	return v
}

// saveTracker counts in-flight saves and lets callers wait for zero.
type saveTracker struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (t *saveTracker) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.n == 0 {
		t.idle = make(chan struct{})
	}
	t.n++
}

func (t *saveTracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n == 0 {
		close(t.idle)
	}
}

func (t *saveTracker) wait(ctx context.Context) error {
	t.mu.Lock()
	if t.n == 0 {
		t.mu.Unlock()
		return nil
	}
	idle := t.idle
	t.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
