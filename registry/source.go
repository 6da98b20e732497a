package registry

import (
	"context"
	"errors"

	"go.trai.ch/zerr"

	"github.com/albertocavalcante/go-realign/coord"
)

var (
	// ErrNotFound is returned when a source has no metadata for a coordinate.
	ErrNotFound = zerr.New("artifact not found")

	// ErrInvalidMetadata is returned when metadata fails validation.
	ErrInvalidMetadata = zerr.New("invalid metadata")

	// ErrNoSources is returned when a chain is built without sources.
	ErrNoSources = zerr.New("no registry sources")
)

// Source provides artifact metadata.
type Source interface {
	// GetMetadata returns the metadata for ga, or an error wrapping
	// ErrNotFound when the source does not know the artifact.
	GetMetadata(ctx context.Context, ga coord.GA) (*Metadata, error)

	// BaseURL identifies the source in logs and errors.
	BaseURL() string
}

func notFound(src Source, ga coord.GA) error {
	return zerr.With(zerr.With(zerr.Wrap(ErrNotFound, "no metadata"), "coordinate", ga.String()), "source", src.BaseURL())
}

// IsNotFound reports whether err means the artifact is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// versionsFrom returns published versions, treating an unknown artifact as
// having none.
func versionsFrom(ctx context.Context, src Source, ga coord.GA) ([]string, error) {
	m, err := src.GetMetadata(ctx, ga)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return append([]string(nil), m.Versions...), nil
}

// forbiddenFrom reports whether gav is forbidden by src.
func forbiddenFrom(ctx context.Context, src Source, gav coord.GAV) (string, bool, error) {
	m, err := src.GetMetadata(ctx, gav.GA)
	if err != nil {
		if IsNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if !m.IsForbidden(gav.Version) {
		return "", false, nil
	}
	return m.ForbiddenReason(gav.Version), true, nil
}
