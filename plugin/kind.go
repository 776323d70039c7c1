package plugin

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
)

// Kind is the category a plugin identifier is registered under.
type Kind uint8

const (
	Decompression Kind = iota + 1
	Compression
	TRE
)

// String returns the key a shared library uses to announce the kind in its
// init list.
func (k Kind) String() string {
	switch k {
	case Decompression:
		return "DECOMPRESSION"
	case Compression:
		return "COMPRESSION"
	case TRE:
		return "TRE"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k >= Decompression && k <= TRE
}

// ParseKind converts an init-list key into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "DECOMPRESSION":
		return Decompression, nil
	case "COMPRESSION":
		return Compression, nil
	case "TRE":
		return TRE, nil
	default:
		return 0, fmt.Errorf("%w: unknown plugin kind %q", errs.ErrInvalidParameter, s)
	}
}

// notFound builds the error of a failed resolution. Missing codecs and TREs
// carry their own kind so callers can tell them apart.
func notFound(kind Kind, ident string) error {
	switch kind {
	case Decompression, Compression:
		return fmt.Errorf("%w: %s %q: %w", errs.ErrUnknownCompressionType, kind, ident, errs.ErrPluginNotFound)
	case TRE:
		return fmt.Errorf("%w: %q: %w", errs.ErrUnknownTREType, ident, errs.ErrPluginNotFound)
	default:
		return fmt.Errorf("%w: %s %q", errs.ErrPluginNotFound, kind, ident)
	}
}
