package nitf

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/imageio"
	"github.com/ngageoint/six-library-sub017/internal/options"
	"github.com/ngageoint/six-library-sub017/plugin"
	"github.com/ngageoint/six-library-sub017/record"
	"github.com/ngageoint/six-library-sub017/tre"
)

// Config holds the settings shared by Reader and Writer.
type Config struct {
	registry  *plugin.Registry
	logger    *slog.Logger
	strict    bool
	fhdr      string
	fver      string
	imageOpts []imageio.Option
}

// Option configures a Reader or a Writer.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	c := &Config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// resolveRegistry returns the configured registry or the process default.
func (c *Config) resolveRegistry() (*plugin.Registry, error) {
	if c.registry != nil {
		return c.registry, nil
	}
	reg, err := plugin.Default()
	if err != nil {
		return nil, err
	}
	c.registry = reg

	return reg, nil
}

func (c *Config) parseOptions(reg *plugin.Registry) []tre.ParseOption {
	opts := []tre.ParseOption{tre.WithRegistry(reg), tre.WithLogger(c.logger)}
	if c.strict {
		opts = append(opts, tre.WithStrict())
	}

	return opts
}

// WithRegistry sets the plugin registry used to resolve TRE handlers and
// codecs. The default is plugin.Default.
func WithRegistry(reg *plugin.Registry) Option {
	return options.New(func(c *Config) error {
		if reg == nil {
			return fmt.Errorf("%w: nil registry", errs.ErrInvalidParameter)
		}
		c.registry = reg

		return nil
	})
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithStrictTREs makes an unknown or malformed TRE a read error instead of
// keeping it as raw bytes.
func WithStrictTREs() Option {
	return options.NoError(func(c *Config) {
		c.strict = true
	})
}

// WithFileVersion sets the FHDR and FVER the Writer stamps on the header:
// NITF 02.10 or NSIF 01.00.
func WithFileVersion(fhdr, fver string) Option {
	return options.New(func(c *Config) error {
		switch {
		case fhdr == record.NITFSignature && fver == record.NITF21Version:
		case fhdr == record.NSIFSignature && fver == record.NSIF10Version:
		default:
			return fmt.Errorf("%w: file version %q %q", errs.ErrInvalidParameter, fhdr, fver)
		}
		c.fhdr, c.fver = fhdr, fver

		return nil
	})
}

// WithImageOptions passes opts to every image session and image writer.
func WithImageOptions(opts ...imageio.Option) Option {
	return options.NoError(func(c *Config) {
		c.imageOpts = append(c.imageOpts, opts...)
	})
}
