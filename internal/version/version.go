// Package version holds build metadata for swatchbook, set with -ldflags:
//
//	-X github.com/jmylchreest/swatchbook/internal/version.Version=x.y.z
//	-X github.com/jmylchreest/swatchbook/internal/version.Commit=$(git rev-parse HEAD)
//	-X github.com/jmylchreest/swatchbook/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)
package version

import (
	"fmt"
	"runtime"
)

const unknown = "unknown"

var (
	// Version is the semantic version of the application.
	Version = "dev"

	// Commit is the git commit hash of the build.
	Commit = unknown

	// Date is the build date in RFC3339 format.
	Date = unknown
)

// Info is the build metadata in structured form.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata of the running binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// ShortCommit returns the first 8 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

func (i Info) String() string {
	if i.Commit != unknown && i.Date != unknown {
		return fmt.Sprintf("swatchbook version %s (commit: %s, built: %s, %s, %s)",
			i.Version, i.ShortCommit(), i.Date, i.GoVersion, i.Platform)
	}
	return fmt.Sprintf("swatchbook version %s (%s, %s)", i.Version, i.GoVersion, i.Platform)
}

// String returns a human-readable version line.
func String() string {
	return GetInfo().String()
}

// Short returns the bare version, for --version and the HTTP User-Agent.
func Short() string {
	return Version
}
