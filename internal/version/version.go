package version

import (
	"fmt"
	"runtime/debug"
)

// Version is overridden at build time with
// -ldflags "-X github.com/bnema/gptgame/internal/version.Version=v1.2.3".
var Version = "dev"

const shortRevision = 12

// String returns Version followed by the VCS revision and Go version
// recorded in the binary, when present.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}

	return format(Version, info)
}

func format(v string, info *debug.BuildInfo) string {
	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if len(revision) > shortRevision {
		revision = revision[:shortRevision]
	}
	if revision == "" {
		return fmt.Sprintf("%s (%s)", v, info.GoVersion)
	}
	if modified {
		revision += "-dirty"
	}

	return fmt.Sprintf("%s (%s, %s)", v, revision, info.GoVersion)
}
