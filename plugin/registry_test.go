package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ngageoint/six-library-sub017/errs"
)

type fakeCodec struct {
	ident string
}

func newFakeCodec(ident string) (any, error) {
	return &fakeCodec{ident: ident}, nil
}

type fakeLibrary struct {
	symbols map[string]any
	closed  bool
}

func (l *fakeLibrary) Lookup(symbol string) (any, error) {
	if sym, ok := l.symbols[symbol]; ok {
		return sym, nil
	}

	return nil, fmt.Errorf("symbol %s not found", symbol)
}

func (l *fakeLibrary) Close() error {
	l.closed = true
	return nil
}

// fakeLoader serves libraries by base name; unknown names fail to load.
type fakeLoader struct {
	libs  map[string]*fakeLibrary
	loads []string
}

func (l *fakeLoader) Load(path string) (Library, error) {
	l.loads = append(l.loads, path)
	lib, ok := l.libs[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("cannot load %s", path)
	}

	return lib, nil
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
}

func j2kLibrary(cleanups *int) *fakeLibrary {
	return &fakeLibrary{symbols: map[string]any{
		"J2K_init": LibraryInitFunc(func() ([]string, error) {
			return []string{"DECOMPRESSION", "C8", "M8"}, nil
		}),
		"J2K_cleanup":  LibraryCleanupFunc(func() { *cleanups++ }),
		"C8_construct": LibraryConstructFunc(newFakeCodec),
		"M8_construct": LibraryConstructFunc(newFakeCodec),
	}}
}

func TestRegistry_StaticHandler(t *testing.T) {
	reg, err := New(WithoutBuiltins(), WithHandler(Decompression, Static(newFakeCodec, "ZS", "S2")))
	require.NoError(t, err)
	defer reg.Close()

	v, err := reg.Resolve(Decompression, "ZS")
	require.NoError(t, err)
	require.Equal(t, "ZS", v.(*fakeCodec).ident)

	again, err := reg.Resolve(Decompression, "ZS")
	require.NoError(t, err)
	require.Same(t, v, again, "resolution is memoized")

	require.True(t, reg.Has(Decompression, "S2"))
	require.False(t, reg.Has(Compression, "S2"))
	require.Equal(t, []string{"ZS", "S2"}, reg.Identifiers(Decompression))
}

func TestRegistry_NotFound(t *testing.T) {
	reg, err := New(WithoutBuiltins())
	require.NoError(t, err)
	defer reg.Close()

	tests := []struct {
		kind Kind
		want error
	}{
		{Decompression, errs.ErrUnknownCompressionType},
		{Compression, errs.ErrUnknownCompressionType},
		{TRE, errs.ErrUnknownTREType},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			_, err := reg.Resolve(tt.kind, "ZZ")
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, errs.ErrPluginNotFound)
		})
	}

	_, err = reg.Resolve(Kind(9), "ZZ")
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestRegistry_SharedLibraries(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "J2K.so", "README.txt")

	cleanups := 0
	lib := j2kLibrary(&cleanups)
	loader := &fakeLoader{libs: map[string]*fakeLibrary{"J2K.so": lib}}

	reg, err := New(WithoutBuiltins(), WithSearchPaths(dir), WithLoader(loader))
	require.NoError(t, err)
	require.Empty(t, loader.loads, "search paths are scanned lazily")

	v, err := reg.Resolve(Decompression, "C8")
	require.NoError(t, err)
	require.Equal(t, "C8", v.(*fakeCodec).ident)
	require.Equal(t, []string{filepath.Join(dir, "J2K.so")}, loader.loads)

	_, err = reg.Resolve(Decompression, "M8")
	require.NoError(t, err)
	require.Len(t, loader.loads, 1, "search paths are scanned once")

	_, err = reg.Resolve(Compression, "C8")
	require.ErrorIs(t, err, errs.ErrUnknownCompressionType)

	require.NoError(t, reg.Close())
	require.Equal(t, 1, cleanups)
	require.True(t, lib.closed)
}

func TestRegistry_LoadFailureIsDeferred(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "BROKEN.so", "J2K.so")

	cleanups := 0
	loader := &fakeLoader{libs: map[string]*fakeLibrary{"J2K.so": j2kLibrary(&cleanups)}}

	reg, err := New(WithoutBuiltins(), WithSearchPaths(dir), WithLoader(loader))
	require.NoError(t, err)
	defer reg.Close()

	_, err = reg.Resolve(Decompression, "C8")
	require.NoError(t, err, "a broken library does not affect other identifiers")

	_, err = reg.Resolve(Decompression, "C4")
	require.ErrorIs(t, err, errs.ErrUnknownCompressionType)
	require.Contains(t, err.Error(), "cannot load")
	require.Error(t, reg.LoadErrors())
}

func TestRegistry_BadLibraryContract(t *testing.T) {
	tests := []struct {
		name    string
		symbols map[string]any
	}{
		{"missing init", map[string]any{}},
		{"wrong init type", map[string]any{"BAD_init": func() []string { return nil }}},
		{"init fails", map[string]any{"BAD_init": LibraryInitFunc(func() ([]string, error) {
			return nil, errors.New("license expired")
		})}},
		{"empty list", map[string]any{"BAD_init": LibraryInitFunc(func() ([]string, error) {
			return nil, nil
		})}},
		{"unknown kind", map[string]any{"BAD_init": LibraryInitFunc(func() ([]string, error) {
			return []string{"FILTER", "X1"}, nil
		})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, "BAD.so")
			lib := &fakeLibrary{symbols: tt.symbols}
			loader := &fakeLoader{libs: map[string]*fakeLibrary{"BAD.so": lib}}

			reg, err := New(WithoutBuiltins(), WithSearchPaths(dir), WithLoader(loader))
			require.NoError(t, err)
			defer reg.Close()

			require.False(t, reg.Has(Decompression, "X1"))
			require.Error(t, reg.LoadErrors())
			require.True(t, lib.closed, "rejected libraries are closed")
		})
	}
}

func TestRegistry_MissingConstruct(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "TRES.so")
	lib := &fakeLibrary{symbols: map[string]any{
		"TRES_init": LibraryInitFunc(func() ([]string, error) {
			return []string{"TRE", "PIAIMC"}, nil
		}),
	}}
	loader := &fakeLoader{libs: map[string]*fakeLibrary{"TRES.so": lib}}

	reg, err := New(WithoutBuiltins(), WithSearchPaths(dir), WithLoader(loader))
	require.NoError(t, err)
	defer reg.Close()

	_, err = reg.Resolve(TRE, "PIAIMC")
	require.ErrorIs(t, err, errs.ErrInvalidObject)
}

func TestRegistry_FirstRegistrationWins(t *testing.T) {
	first := Static(func(string) (any, error) { return "first", nil }, "C3")
	second := Static(func(string) (any, error) { return "second", nil }, "C3", "M3")

	reg, err := New(WithoutBuiltins(), WithHandler(Decompression, first), WithHandler(Decompression, second))
	require.NoError(t, err)
	defer reg.Close()

	v, err := reg.Resolve(Decompression, "C3")
	require.NoError(t, err)
	require.Equal(t, "first", v)

	v, err = reg.Resolve(Decompression, "M3")
	require.NoError(t, err)
	require.Equal(t, "second", v)
}

func TestRegistry_Closed(t *testing.T) {
	reg, err := New(WithoutBuiltins(), WithHandler(TRE, Static(newFakeCodec, "BLOCKA")))
	require.NoError(t, err)
	require.NoError(t, reg.Close())
	require.NoError(t, reg.Close(), "closing twice is a no-op")

	_, err = reg.Resolve(TRE, "BLOCKA")
	require.ErrorIs(t, err, errs.ErrInvalidObject)
	require.False(t, reg.Has(TRE, "BLOCKA"))
}

func TestRegistry_EnvSearchPath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "J2K.so")
	t.Setenv(EnvSearchPath, "/does/not/exist"+string(os.PathListSeparator)+dir)

	cleanups := 0
	loader := &fakeLoader{libs: map[string]*fakeLibrary{"J2K.so": j2kLibrary(&cleanups)}}
	reg, err := New(WithoutBuiltins(), WithEnvSearchPath(), WithLoader(loader))
	require.NoError(t, err)
	defer reg.Close()

	_, err = reg.Resolve(Decompression, "C8")
	require.NoError(t, err)
	require.ErrorIs(t, reg.LoadErrors(), errs.ErrIO, "missing directories are recorded")
}

func TestRegistry_InvalidOptions(t *testing.T) {
	_, err := New(WithLoader(nil))
	require.ErrorIs(t, err, errs.ErrInvalidParameter)

	_, err = New(WithHandler(Kind(0), Static(newFakeCodec, "X")))
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestDefault(t *testing.T) {
	t.Setenv(EnvSearchPath, "")
	require.NoError(t, Shutdown())

	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	require.Same(t, a, b)

	require.NoError(t, Shutdown())
	_, err = a.Resolve(TRE, "ANY")
	require.ErrorIs(t, err, errs.ErrInvalidObject)

	c, err := Default()
	require.NoError(t, err)
	require.NotSame(t, a, c)
	require.NoError(t, Shutdown())
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Decompression, Compression, TRE} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}

	_, err := ParseKind("decompression")
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
	require.Equal(t, "Kind(7)", Kind(7).String())
}
