package realign

import (
	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/override"
	"github.com/albertocavalcante/go-realign/property"
)

// Sentinel errors for alignment failures. Returned errors wrap one of these
// and carry the offending coordinate, project or key as zerr metadata.
var (
	// ErrInvalidConfig indicates conflicting or out-of-range options.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrStrictAlignment indicates a strict-mode violation while failing on
	// violations is enabled.
	ErrStrictAlignment = override.ErrStrictViolation

	// ErrInvalidOverrideKey indicates a malformed module override key.
	ErrInvalidOverrideKey = override.ErrInvalidOverrideKey

	// ErrUnresolvableReference indicates a "bom:" override value that names
	// a bill of materials or coordinate that is not loaded.
	ErrUnresolvableReference = override.ErrUnresolvableReference

	// ErrPropertyConflict indicates two alignments disagreeing on a property
	// under the fail policy.
	ErrPropertyConflict = property.ErrPropertyConflict

	// ErrForbiddenVersion indicates an alignment target is listed as
	// forbidden by the version policy.
	ErrForbiddenVersion = zerr.New("forbidden version")

	// ErrTranslation indicates the translation service failed.
	ErrTranslation = zerr.New("translation service failed")
)
