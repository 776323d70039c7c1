package plugin

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ngageoint/six-library-sub017/errs"
)

// Handler is the contract every plugin fulfils, whether linked in statically
// or loaded from a shared library.
//
// Init returns the identifiers the handler serves. Construct returns the
// interface value for one identifier: a codec.Decompressor for kind
// Decompression, a codec.Compressor for Compression and a tre.Handler for
// TRE. Cleanup releases whatever Init acquired; it is called once when the
// registry is closed.
type Handler interface {
	Init() ([]string, error)
	Construct(ident string) (any, error)
	Cleanup()
}

// ConstructFunc builds the interface value of one identifier.
type ConstructFunc func(ident string) (any, error)

type staticHandler struct {
	idents    []string
	construct ConstructFunc
}

// Static returns a Handler serving idents through construct. It has nothing
// to clean up.
func Static(construct ConstructFunc, idents ...string) Handler {
	return &staticHandler{idents: slices.Clone(idents), construct: construct}
}

func (h *staticHandler) Init() ([]string, error) {
	return slices.Clone(h.idents), nil
}

func (h *staticHandler) Construct(ident string) (any, error) {
	if !slices.Contains(h.idents, ident) {
		return nil, fmt.Errorf("%w: handler does not serve %q", errs.ErrInvalidParameter, ident)
	}

	return h.construct(ident)
}

func (h *staticHandler) Cleanup() {}

type registration struct {
	kind    Kind
	handler Handler
}

var (
	builtinMu sync.Mutex
	builtins  []registration
)

// Register adds a statically linked handler to the set of built-ins copied
// into every registry created afterwards. It is meant to be called from init
// functions, e.g. by the tre and codec packages for their built-in handlers.
//
// Register panics if kind is invalid or h is nil.
func Register(kind Kind, h Handler) {
	if !kind.IsValid() || h == nil {
		panic("plugin: Register with invalid kind or nil handler")
	}

	builtinMu.Lock()
	defer builtinMu.Unlock()

	builtins = append(builtins, registration{kind: kind, handler: h})
}

func registeredBuiltins() []registration {
	builtinMu.Lock()
	defer builtinMu.Unlock()

	return slices.Clone(builtins)
}
