package registry

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataHelpers(t *testing.T) {
	m := &Metadata{
		Versions:          []string{"1.0.redhat-2", "1.0.redhat-10", "1.0.redhat-1"},
		ForbiddenVersions: map[string]string{"1.0.redhat-10": "broken build"},
	}
	assert.Equal(t, "1.0.redhat-10", m.LatestVersion())
	assert.True(t, m.IsForbidden("1.0.redhat-10"))
	assert.Equal(t, "broken build", m.ForbiddenReason("1.0.redhat-10"))
	assert.True(t, m.HasVersion("1.0.redhat-1"))
	assert.False(t, m.HasVersion("2.0"))
	assert.Equal(t, []string{"1.0.redhat-2", "1.0.redhat-1"}, m.AllowedVersions())
	assert.Empty(t, (&Metadata{}).LatestVersion())
}

func TestMetadataValidate(t *testing.T) {
	assert.NoError(t, (&Metadata{
		Versions:          []string{"1.0", "1.0.redhat-1"},
		ForbiddenVersions: map[string]string{"1.0": "cve"},
	}).Validate())

	tests := []struct {
		name   string
		input  *Metadata
		prefix string
		tag    string
	}{
		{"empty version", &Metadata{Versions: []string{"1.0", ""}}, "Metadata.versions[1]", "notblank"},
		{"blank version", &Metadata{Versions: []string{"  "}}, "Metadata.versions[0]", "notblank"},
		{"duplicate version", &Metadata{Versions: []string{"1.0", "1.0"}}, "Metadata.versions", "unique"},
		{"empty forbidden version", &Metadata{ForbiddenVersions: map[string]string{"": "why"}}, "Metadata.forbidden_versions", "notblank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields validator.ValidationErrors
			require.ErrorAs(t, tt.input.Validate(), &fields)
			require.Len(t, fields, 1)
			assert.True(t, strings.HasPrefix(fields[0].Namespace(), tt.prefix), fields[0].Namespace())
			assert.Equal(t, tt.tag, fields[0].Tag())
		})
	}
}
