package web

import "sync"

type buildInfo struct {
	version string
	commit  string
	built   string
}

var (
	buildMu sync.RWMutex
	build   = buildInfo{version: "dev", commit: "unknown", built: "unknown"}
)

// SetVersionInfo records the build reported by /api/status.
func SetVersionInfo(version, commit, buildTime string) {
	buildMu.Lock()
	build = buildInfo{version: version, commit: commit, built: buildTime}
	buildMu.Unlock()
}

// GetVersionInfo returns version, commit and build time.
func GetVersionInfo() (string, string, string) {
	buildMu.RLock()
	defer buildMu.RUnlock()
	return build.version, build.commit, build.built
}
