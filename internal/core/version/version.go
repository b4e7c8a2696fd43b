// Package version provides information about the build version of the service.
package version

// Engine is bumped whenever detector weights, thresholds or analyzers change
// in a way that makes new scores incomparable with stored ones
const Engine = 1

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Engine  int    `json:"engine"`
}

// Info returns the build information. The variables below are set at build
// time, e.g. -ldflags "-X 'genscan/internal/core/version.version=v0.1.0'
// -X 'genscan/internal/core/version.commit=abcd' -X 'genscan/internal/core/version.date=2026-10-01'"
func Info() BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
		Engine:  Engine,
	}
}

var (
	service = "genscan"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
