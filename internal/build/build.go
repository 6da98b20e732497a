// Package build holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/albertocavalcante/go-realign/internal/build.Version=v1.2.0"
package build

var (
	// Version is the release version.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
)

// String returns a version line for display.
func String() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return Version + " (commit: " + Commit + ")"
}
