package override

import "go.trai.ch/zerr"

var (
	// ErrInvalidOverrideKey is returned for a module override key that is
	// not "group:artifact@module" or "group:artifact@*".
	ErrInvalidOverrideKey = zerr.New("invalid override key")

	// ErrUnresolvableReference is returned when a "bom:" override value
	// names a bill of materials or coordinate that is not loaded.
	ErrUnresolvableReference = zerr.New("unresolvable override reference")

	// ErrStrictViolation is returned when strict alignment rejects a target
	// and violations are fatal.
	ErrStrictViolation = zerr.New("override is not a compatible extension")

	// ErrUnknownPrecedence is returned for an unrecognised precedence name.
	ErrUnknownPrecedence = zerr.New("unknown precedence")

	// ErrUnknownBOM is returned by a source that has no tables for a
	// reference.
	ErrUnknownBOM = zerr.New("unknown bill of materials")

	// ErrUnsupportedFormat is returned for override files with an unknown
	// extension.
	ErrUnsupportedFormat = zerr.New("unsupported override file format")
)
