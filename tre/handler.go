package tre

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/internal/options"
	"github.com/ngageoint/six-library-sub017/plugin"
)

// Handler is the interface value registered under plugin.TRE.
type Handler interface {
	// Parse builds a TRE of tag from its data.
	Parse(tag string, data []byte) (*TRE, error)
	// Description returns the layout of tag, or nil when the handler parses
	// without one.
	Description(tag string) *Description
}

// DescriptionHandler parses TREs with a fixed Description.
type DescriptionHandler struct {
	desc *Description
}

// NewDescriptionHandler validates desc and wraps it as a Handler.
func NewDescriptionHandler(desc *Description) (*DescriptionHandler, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil description", errs.ErrInvalidParameter)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	return &DescriptionHandler{desc: desc}, nil
}

func (h *DescriptionHandler) Parse(tag string, data []byte) (*TRE, error) {
	return Parse(tag, h.desc, data)
}

func (h *DescriptionHandler) Description(string) *Description {
	return h.desc
}

// Resolve returns the handler registered for tag in reg.
func Resolve(reg *plugin.Registry, tag string) (Handler, error) {
	v, err := reg.Resolve(plugin.TRE, tag)
	if err != nil {
		return nil, err
	}
	h, ok := v.(Handler)
	if !ok {
		return nil, fmt.Errorf("%w: TRE plugin %q provides %T", errs.ErrInvalidObject, tag, v)
	}

	return h, nil
}

// NewFromRegistry creates an empty TRE of tag laid out by its registered
// description.
func NewFromRegistry(reg *plugin.Registry, tag string) (*TRE, error) {
	h, err := Resolve(reg, tag)
	if err != nil {
		return nil, err
	}

	return New(tag, h.Description(tag))
}

// ParseConfig controls how extension data is interpreted.
type ParseConfig struct {
	registry *plugin.Registry
	strict   bool
	logger   *slog.Logger
}

// ParseOption represents a functional option for ParseExtensions.
type ParseOption = options.Option[*ParseConfig]

// WithRegistry resolves TRE layouts through reg. Without a registry every
// TRE is kept raw.
func WithRegistry(reg *plugin.Registry) ParseOption {
	return options.NoError(func(c *ParseConfig) {
		c.registry = reg
	})
}

// WithStrict makes unknown tags and malformed TREs an error instead of
// falling back to raw storage.
func WithStrict() ParseOption {
	return options.NoError(func(c *ParseConfig) {
		c.strict = true
	})
}

// WithLogger reports raw fallbacks to l.
func WithLogger(l *slog.Logger) ParseOption {
	return options.NoError(func(c *ParseConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

// ParseExtensions splits data into TREs.
//
// Tags the registry does not know are kept raw, and so are TREs whose data
// does not match their description; in strict mode both are errors.
// A truncated prefix or a length running past the end of data is always an
// error.
func ParseExtensions(data []byte, opts ...ParseOption) (*Extensions, error) {
	cfg := &ParseConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	x := NewExtensions()
	for pos := 0; pos < len(data); {
		if len(data)-pos < HeaderSize {
			return nil, fmt.Errorf("%w: %d bytes left at offset %d, TRE prefix needs %d",
				errs.ErrInvalidHeader, len(data)-pos, pos, HeaderSize)
		}

		tag := strings.TrimRight(string(data[pos:pos+TagSize]), " ")
		n, err := strconv.Atoi(string(data[pos+TagSize : pos+HeaderSize]))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: TRE %q length %q", errs.ErrInvalidHeader, tag, data[pos+TagSize:pos+HeaderSize])
		}
		pos += HeaderSize
		if pos+n > len(data) {
			return nil, fmt.Errorf("%w: TRE %q length %d exceeds the %d remaining bytes",
				errs.ErrInvalidHeader, tag, n, len(data)-pos)
		}

		t, err := cfg.parseOne(tag, data[pos:pos+n])
		if err != nil {
			return nil, err
		}
		x.Append(t)
		pos += n
	}

	return x, nil
}

func (c *ParseConfig) parseOne(tag string, data []byte) (*TRE, error) {
	if c.registry == nil {
		if c.strict {
			return nil, fmt.Errorf("%w: %q: no registry", errs.ErrUnknownTREType, tag)
		}

		return NewRaw(tag, data)
	}

	h, err := Resolve(c.registry, tag)
	if err != nil {
		if c.strict || !errors.Is(err, errs.ErrUnknownTREType) {
			return nil, err
		}
		c.logger.Debug("unknown TRE kept raw", slog.String("tag", tag), slog.Int("length", len(data)))

		return NewRaw(tag, data)
	}

	t, err := h.Parse(tag, data)
	if err != nil {
		if c.strict {
			return nil, err
		}
		c.logger.Warn("malformed TRE kept raw", slog.String("tag", tag), slog.Any("error", err))

		return NewRaw(tag, data)
	}

	return t, nil
}
