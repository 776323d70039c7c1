package plugin

import (
	"fmt"
	"path/filepath"
	goplugin "plugin"
	"strings"

	"github.com/ngageoint/six-library-sub017/errs"
)

// LibraryExt is the file extension of the shared libraries scanned in the
// search paths.
const LibraryExt = ".so"

// Library is a loaded shared library.
type Library interface {
	Lookup(symbol string) (any, error)
	Close() error
}

// Loader opens shared libraries.
type Loader interface {
	Load(path string) (Library, error)
}

// SharedObjectLoader loads Go plugins built with -buildmode=plugin.
type SharedObjectLoader struct{}

// Load opens the plugin at path.
func (SharedObjectLoader) Load(path string) (Library, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open plugin %s: %w", errs.ErrIO, path, err)
	}

	return &sharedObject{p: p}, nil
}

type sharedObject struct {
	p *goplugin.Plugin
}

func (s *sharedObject) Lookup(symbol string) (any, error) {
	sym, err := s.p.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	return sym, nil
}

// Close is a no-op: the Go runtime cannot unload a plugin.
func (s *sharedObject) Close() error {
	return nil
}

// Symbol signatures of the shared-library contract. A library file named
// TAG.so exports:
//
//	func TAG_init() ([]string, error)               // kind key followed by identifiers
//	func TAG_cleanup()                              // optional
//	func IDENT_construct(ident string) (any, error) // one per identifier
type (
	LibraryInitFunc      = func() ([]string, error)
	LibraryCleanupFunc   = func()
	LibraryConstructFunc = func(string) (any, error)
)

// libraryHandler adapts a Library to the Handler contract.
type libraryHandler struct {
	lib     Library
	path    string
	kind    Kind
	idents  []string
	cleanup LibraryCleanupFunc
}

// libraryTag returns the tag a library exports its entry points under.
func libraryTag(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newLibraryHandler(lib Library, path string) (*libraryHandler, error) {
	tag := libraryTag(path)

	sym, err := lib.Lookup(tag + "_init")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: missing %s_init: %w", errs.ErrInvalidObject, path, tag, err)
	}
	initFn, ok := sym.(LibraryInitFunc)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s_init has type %T", errs.ErrInvalidObject, path, tag, sym)
	}

	list, err := initFn()
	if err != nil {
		return nil, fmt.Errorf("%s: %s_init: %w", path, tag, err)
	}
	if len(list) < 1 {
		return nil, fmt.Errorf("%w: %s: %s_init returned no kind", errs.ErrInvalidObject, path, tag)
	}
	kind, err := ParseKind(list[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	h := &libraryHandler{lib: lib, path: path, kind: kind, idents: list[1:]}
	if sym, err := lib.Lookup(tag + "_cleanup"); err == nil {
		if fn, ok := sym.(LibraryCleanupFunc); ok {
			h.cleanup = fn
		}
	}

	return h, nil
}

func (h *libraryHandler) Init() ([]string, error) {
	return h.idents, nil
}

func (h *libraryHandler) Construct(ident string) (any, error) {
	sym, err := h.lib.Lookup(ident + "_construct")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: missing %s_construct: %w", errs.ErrInvalidObject, h.path, ident, err)
	}
	fn, ok := sym.(LibraryConstructFunc)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s_construct has type %T", errs.ErrInvalidObject, h.path, ident, sym)
	}

	return fn(ident)
}

func (h *libraryHandler) Cleanup() {
	if h.cleanup != nil {
		h.cleanup()
	}
}
