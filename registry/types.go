package registry

import (
	"slices"

	"github.com/albertocavalcante/go-realign/coord"
	"github.com/albertocavalcante/go-realign/version"
)

// Metadata is the published state of one artifact.
type Metadata struct {
	// Versions lists every published version.
	Versions []string `json:"versions" validate:"unique,dive,notblank"`

	// ForbiddenVersions maps versions that must not be used to the reason.
	ForbiddenVersions map[string]string `json:"forbidden_versions,omitempty" validate:"dive,keys,notblank,endkeys"`
}

// LatestVersion returns the highest published version, or "".
func (m *Metadata) LatestVersion() string {
	if len(m.Versions) == 0 {
		return ""
	}
	sorted := slices.Clone(m.Versions)
	version.Sort(sorted)
	return sorted[len(sorted)-1]
}

// IsForbidden reports whether v must not be used.
func (m *Metadata) IsForbidden(v string) bool {
	_, ok := m.ForbiddenVersions[v]
	return ok
}

// ForbiddenReason returns why v must not be used, or "".
func (m *Metadata) ForbiddenReason(v string) string {
	return m.ForbiddenVersions[v]
}

// HasVersion reports whether v is published.
func (m *Metadata) HasVersion(v string) bool {
	return slices.Contains(m.Versions, v)
}

// AllowedVersions returns the published versions that are not forbidden.
func (m *Metadata) AllowedVersions() []string {
	var out []string
	for _, v := range m.Versions {
		if !m.IsForbidden(v) {
			out = append(out, v)
		}
	}
	return out
}

func (m *Metadata) clone() *Metadata {
	out := &Metadata{Versions: slices.Clone(m.Versions)}
	if m.ForbiddenVersions != nil {
		out.ForbiddenVersions = make(map[string]string, len(m.ForbiddenVersions))
		for k, v := range m.ForbiddenVersions {
			out.ForbiddenVersions[k] = v
		}
	}
	return out
}

// Translation is the translation service's answer for one coordinate.
type Translation struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`

	// BestMatchVersion is the version the build should use, or "" when the
	// service has no recommendation.
	BestMatchVersion string `json:"bestMatchVersion,omitempty"`

	// AvailableVersions lists the aligned versions already published.
	AvailableVersions []string `json:"availableVersions,omitempty"`

	// ForbiddenVersions lists versions of this artifact that must not be used.
	ForbiddenVersions []string `json:"forbiddenVersions,omitempty"`
}

// GAV returns the requested coordinate.
func (t Translation) GAV() coord.GAV {
	return coord.NewGAV(t.GroupID, t.ArtifactID, t.Version)
}

type gavRequest struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}
