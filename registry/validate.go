package registry

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.trai.ch/zerr"
)

var validate = newValidator()

// newValidator reports fields by their JSON names, e.g. "versions[2]".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that versions are non-blank and unique and that every
// forbidden entry names a version. Failures are returned as
// [validator.ValidationErrors].
func (m *Metadata) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return fields
	}
	return zerr.Wrap(err, "validate metadata")
}

// ValidateMetadataJSON decodes and validates a metadata document.
func ValidateMetadataJSON(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.Wrap(err, "parse metadata")
	}
	if err := m.Validate(); err != nil {
		return nil, zerr.Wrap(errors.Join(ErrInvalidMetadata, err), "validate metadata")
	}
	return &m, nil
}
