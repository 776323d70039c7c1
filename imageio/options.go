package imageio

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/internal/options"
)

// Config holds the settings of a read session or a block writer.
type Config struct {
	padValue    []byte
	padCode     bool
	downSampler DownSampler
	transforms  []Transform
	workers     int
	logger      *slog.Logger
}

// Option configures a Session or a BlockWriter.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	c := &Config{
		workers: 1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// WithPadValue sets the pixel value returned for absent blocks and written
// into the pixels of a block that lie outside the image. v must be one
// pixel wide. A writer of masked data also records v as the pad code.
func WithPadValue(v []byte) Option {
	return options.New(func(c *Config) error {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty pad value", errs.ErrInvalidParameter)
		}
		c.padValue = append([]byte(nil), v...)
		c.padCode = true

		return nil
	})
}

// WithDownSampler sets the down-sampler used by windows that name none.
func WithDownSampler(d DownSampler) Option {
	return options.NoError(func(c *Config) {
		c.downSampler = d
	})
}

// WithTransform appends t to the transforms applied to every window read.
// Transforms run in the order they were added.
func WithTransform(t Transform) Option {
	return options.New(func(c *Config) error {
		if t == nil {
			return fmt.Errorf("%w: nil transform", errs.ErrInvalidParameter)
		}
		c.transforms = append(c.transforms, t)

		return nil
	})
}

// WithWorkers sets how many goroutines run the transforms. The rows of a
// window are split into that many non-overlapping ranges.
func WithWorkers(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: %d workers", errs.ErrInvalidParameter, n)
		}
		c.workers = n

		return nil
	})
}

// WithLogger sets the logger for block fetch diagnostics. The default discards.
func WithLogger(l *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		if l != nil {
			c.logger = l
		}
	})
}
