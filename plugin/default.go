package plugin

import "sync"

var (
	defaultMu  sync.Mutex
	defaultReg *Registry
)

// Default returns the process-wide registry, creating it on first use with
// the built-ins and the NITF_PLUGIN_PATH search path.
func Default() (*Registry, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultReg != nil {
		return defaultReg, nil
	}

	r, err := New(WithEnvSearchPath())
	if err != nil {
		return nil, err
	}
	defaultReg = r

	return r, nil
}

// Shutdown closes the process-wide registry. A later Default call creates a
// fresh one.
func Shutdown() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultReg == nil {
		return nil
	}
	err := defaultReg.Close()
	defaultReg = nil

	return err
}
