package calc

import (
	"context"

	"github.com/albertocavalcante/go-realign/coord"
)

// VersionSource lists the published versions of an artifact.
//
//go:generate go run -modfile=../tools/lint/go.mod go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock_version_source.go -package=mocks
type VersionSource interface {
	// Versions returns every known version of ga. An unknown artifact yields
	// an empty list, not an error.
	Versions(ctx context.Context, ga coord.GA) ([]string, error)
}
