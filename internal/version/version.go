// Package version reports the build of the hue binary
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/angristan/hue-panel/internal/version.Version=v0.3.0 \
//	                   -X github.com/angristan/hue-panel/internal/version.Commit=1a2b3c4"
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		fromBuildInfo(debug.ReadBuildInfo)
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromBuildInfo fills whatever ldflags left empty. `go install ...@vX` records
// the module version; local builds only carry VCS settings.
func fromBuildInfo(read func() (*debug.BuildInfo, bool)) {
	info, ok := read()
	if !ok {
		return
	}

	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	var revision, vcsTime string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			vcsTime = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if Commit == "" && revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		Commit = revision
		if dirty {
			Commit += "-dirty"
		}
	}

	if Version == "" && vcsTime != "" {
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			Version = "dev-" + t.UTC().Format("20060102")
		}
	}
}

// Full returns the version with its commit
func Full() string {
	if strings.HasPrefix(Commit, "unknown") {
		return Version
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
