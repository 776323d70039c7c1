package plugin

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ngageoint/six-library-sub017/errs"
	"github.com/ngageoint/six-library-sub017/internal/options"
)

// EnvSearchPath names the environment variable holding plugin directories,
// separated by os.PathListSeparator.
const EnvSearchPath = "NITF_PLUGIN_PATH"

// RegistryConfig holds the settings a Registry is created with.
type RegistryConfig struct {
	searchPaths []string
	loader      Loader
	builtins    bool
	handlers    []registration
	logger      *slog.Logger
}

func newRegistryConfig() *RegistryConfig {
	return &RegistryConfig{
		loader:   SharedObjectLoader{},
		builtins: true,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// RegistryOption represents a functional option for configuring a Registry.
type RegistryOption = options.Option[*RegistryConfig]

// WithSearchPaths appends directories scanned for shared-library plugins.
func WithSearchPaths(dirs ...string) RegistryOption {
	return options.NoError(func(c *RegistryConfig) {
		for _, d := range dirs {
			if d != "" {
				c.searchPaths = append(c.searchPaths, filepath.Clean(d))
			}
		}
	})
}

// WithEnvSearchPath appends the directories listed in NITF_PLUGIN_PATH.
// An unset variable adds nothing.
func WithEnvSearchPath() RegistryOption {
	return options.NoError(func(c *RegistryConfig) {
		for _, d := range filepath.SplitList(os.Getenv(EnvSearchPath)) {
			if d != "" {
				c.searchPaths = append(c.searchPaths, filepath.Clean(d))
			}
		}
	})
}

// WithLoader replaces the shared-library loader. Tests use it to provide
// libraries without real dynamic loading.
func WithLoader(l Loader) RegistryOption {
	return options.New(func(c *RegistryConfig) error {
		if l == nil {
			return fmt.Errorf("%w: nil loader", errs.ErrInvalidParameter)
		}
		c.loader = l

		return nil
	})
}

// WithoutBuiltins creates the registry without the handlers added by Register.
func WithoutBuiltins() RegistryOption {
	return options.NoError(func(c *RegistryConfig) {
		c.builtins = false
	})
}

// WithHandler installs h for kind in this registry only. Explicit handlers
// are installed after the built-ins, so they cannot shadow them.
func WithHandler(kind Kind, h Handler) RegistryOption {
	return options.New(func(c *RegistryConfig) error {
		if !kind.IsValid() || h == nil {
			return fmt.Errorf("%w: handler for %s", errs.ErrInvalidParameter, kind)
		}
		c.handlers = append(c.handlers, registration{kind: kind, handler: h})

		return nil
	})
}

// WithLogger sets the logger used to report discovery. The default discards.
func WithLogger(l *slog.Logger) RegistryOption {
	return options.NoError(func(c *RegistryConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
