package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/internal/collision"
	"github.com/ngageoint/six-library-sub017/internal/hash"
	"github.com/ngageoint/six-library-sub017/internal/options"
)

const sourceBuiltin = "builtin"

type entry struct {
	kind    Kind
	ident   string
	handler Handler
	source  string
}

// Registry maps {kind, identifier} to the handler serving it.
//
// Resolution order is built-ins, then handlers installed with WithHandler,
// then shared libraries found in the search paths. The search paths are
// scanned once, on the first identifier no earlier handler serves. A library
// that fails to load is recorded and logged; the failure is only reported,
// together with the not-found error, when a requested identifier is missing.
//
// The tables are guarded by a mutex, but discovery calls into plugin code
// (init and construct entry points) that may not be reentrant. Resolve every
// identifier needed during single-threaded start-up when plugins are loaded
// from shared libraries.
type Registry struct {
	mu       sync.Mutex
	cfg      *RegistryConfig
	entries  map[uint64]*entry
	memo     map[uint64]any
	idents   map[Kind][]string
	handlers []Handler
	libs     []Library
	tracker  *collision.Tracker
	loadErrs *multierror.Error
	scanned  bool
	closed   bool
}

// New creates a registry holding the built-in handlers and the handlers
// given with WithHandler.
func New(opts ...RegistryOption) (*Registry, error) {
	cfg := newRegistryConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	r := &Registry{
		cfg:     cfg,
		entries: make(map[uint64]*entry),
		memo:    make(map[uint64]any),
		idents:  make(map[Kind][]string),
		tracker: collision.NewTracker(),
	}

	var regs []registration
	if cfg.builtins {
		regs = append(regs, registeredBuiltins()...)
	}
	regs = append(regs, cfg.handlers...)

	for _, reg := range regs {
		if err := r.install(reg.kind, reg.handler, sourceBuiltin); err != nil {
			_ = r.closeLocked()
			return nil, err
		}
	}

	return r, nil
}

// install claims every identifier of h for kind. Identifiers already claimed
// stay with their first owner.
func (r *Registry) install(kind Kind, h Handler, source string) error {
	idents, err := h.Init()
	if err != nil {
		return fmt.Errorf("plugin init from %s: %w", source, err)
	}
	r.handlers = append(r.handlers, h)

	for _, ident := range idents {
		key := hash.Key(kind.String(), ident)
		if err := r.tracker.Track(key, ident, source); err != nil {
			if errors.Is(err, errs.ErrDuplicatePlugin) {
				r.cfg.logger.Warn("duplicate plugin identifier ignored",
					slog.String("kind", kind.String()), slog.String("ident", ident), slog.String("source", source))
				continue
			}

			return err
		}

		r.entries[key] = &entry{kind: kind, ident: ident, handler: h, source: source}
		r.idents[kind] = append(r.idents[kind], ident)
		r.cfg.logger.Debug("plugin identifier registered",
			slog.String("kind", kind.String()), slog.String("ident", ident), slog.String("source", source))
	}

	return nil
}

// Resolve returns the interface value registered for ident under kind.
//
// The value is constructed on first use and memoized; later calls return the
// same value. A missing identifier yields errs.ErrUnknownCompressionType for
// codec kinds and errs.ErrUnknownTREType for TREs, both wrapping
// errs.ErrPluginNotFound. Libraries that failed to load are appended to
// that error.
func (r *Registry) Resolve(kind Kind, ident string) (any, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: plugin kind %s", errs.ErrInvalidParameter, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("%w: registry is closed", errs.ErrInvalidObject)
	}

	key := hash.Key(kind.String(), ident)
	if v, ok := r.memo[key]; ok {
		return v, nil
	}

	e, ok := r.entries[key]
	if !ok && !r.scanned {
		r.scan()
		e, ok = r.entries[key]
	}
	if !ok {
		err := notFound(kind, ident)
		if r.loadErrs != nil {
			merr := multierror.Append(err, r.loadErrs.Errors...)
			return nil, merr.ErrorOrNil()
		}

		return nil, err
	}

	v, err := e.handler.Construct(ident)
	if err != nil {
		return nil, fmt.Errorf("construct %s %q from %s: %w", kind, ident, e.source, err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s %q from %s constructed nil", errs.ErrInvalidObject, kind, ident, e.source)
	}
	r.memo[key] = v

	return v, nil
}

// Has reports whether ident is registered under kind, scanning the search
// paths if it has not been found yet.
func (r *Registry) Has(kind Kind, ident string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	key := hash.Key(kind.String(), ident)
	if _, ok := r.entries[key]; ok {
		return true
	}
	if !r.scanned {
		r.scan()
	}
	_, ok := r.entries[key]

	return ok
}

// Identifiers returns the identifiers registered under kind, in the order
// they were claimed. Search paths are not scanned.
func (r *Registry) Identifiers(kind Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.idents[kind])
}

// LoadErrors returns the recorded library load failures, or nil.
func (r *Registry) LoadErrors() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadErrs.ErrorOrNil()
}

// scan loads every library found in the search paths. It runs once.
func (r *Registry) scan() {
	r.scanned = true

	for _, dir := range r.cfg.searchPaths {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			r.recordLoadError(fmt.Errorf("%w: plugin directory %s: %w", errs.ErrIO, dir, err))
			continue
		}

		names := make([]string, 0, len(dirEntries))
		for _, de := range dirEntries {
			if de.IsDir() || filepath.Ext(de.Name()) != LibraryExt {
				continue
			}
			names = append(names, de.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			r.loadLibrary(filepath.Join(dir, name))
		}
	}
}

func (r *Registry) loadLibrary(path string) {
	lib, err := r.cfg.loader.Load(path)
	if err != nil {
		r.recordLoadError(err)
		return
	}

	h, err := newLibraryHandler(lib, path)
	if err != nil {
		r.recordLoadError(err)
		if cerr := lib.Close(); cerr != nil {
			r.recordLoadError(cerr)
		}

		return
	}
	r.libs = append(r.libs, lib)

	if err := r.install(h.kind, h, path); err != nil {
		r.recordLoadError(err)
		return
	}
	r.cfg.logger.Info("plugin library loaded",
		slog.String("path", path), slog.String("kind", h.kind.String()), slog.Int("identifiers", len(h.idents)))
}

func (r *Registry) recordLoadError(err error) {
	r.cfg.logger.Warn("plugin load failed", slog.Any("error", err))
	r.loadErrs = multierror.Append(r.loadErrs, err)
}

// Close calls Cleanup on every handler, closes every library and makes the
// registry unusable. Library close failures are aggregated.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	return r.closeLocked()
}

func (r *Registry) closeLocked() error {
	r.closed = true

	for i := len(r.handlers) - 1; i >= 0; i-- {
		r.handlers[i].Cleanup()
	}

	var result *multierror.Error
	for i := len(r.libs) - 1; i >= 0; i-- {
		if err := r.libs[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	r.handlers = nil
	r.libs = nil
	clear(r.entries)
	clear(r.memo)
	clear(r.idents)
	r.tracker.Reset()

	return result.ErrorOrNil()
}
