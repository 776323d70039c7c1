// Package plugin resolves compression, decompression and TRE identifiers to
// the handlers that implement them.
//
// Handlers come from two places. Statically linked built-ins are added with
// Register from package init functions, the way image formats register with
// the image package:
//
//	func init() {
//	    plugin.Register(plugin.Decompression, plugin.Static(newDecompressor, "ZS", "S2"))
//	}
//
// Shared libraries are discovered by scanning search paths (WithSearchPaths,
// WithEnvSearchPath) through a Loader. A library named TAG.so exports
// TAG_init, which returns its kind key followed by its identifiers, an
// optional TAG_cleanup, and one IDENT_construct per identifier.
//
// A Registry is an explicit object so tests can build independent
// registries. Default returns a lazily created process-wide instance and
// Shutdown tears it down.
//
//	reg, err := plugin.New(plugin.WithSearchPaths("/opt/nitf/plugins"))
//	if err != nil {
//	    return err
//	}
//	defer reg.Close()
//
//	v, err := reg.Resolve(plugin.Decompression, "C8")
//	if errors.Is(err, errs.ErrUnknownCompressionType) {
//	    // no JPEG 2000 handler installed
//	}
package plugin
