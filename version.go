package petango

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/bigwing/petango.Version=...".
var (
	Version   = "v1.0.0"
	GitCommit = ""
	BuildDate = ""
)

// BuildInfo identifies the running build.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// CurrentBuild reports the linker-injected build values, falling back to
// the VCS stamp the toolchain embeds when they were not set.
func CurrentBuild() BuildInfo {
	b := BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "":
				b.Commit = s.Value
			case s.Key == "vcs.time" && b.BuildDate == "":
				b.BuildDate = s.Value
			}
		}
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.BuildDate == "" {
		b.BuildDate = "unknown"
	}
	return b
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("petango %s (commit: %s, built: %s, go: %s)",
		b.Version, b.Commit, b.BuildDate, b.GoVersion)
}

// GetVersion returns a human-readable version string.
func GetVersion() string {
	return CurrentBuild().String()
}

// UserAgent is sent with every request.
func UserAgent() string {
	return "petango-go/" + strings.TrimPrefix(Version, "v")
}
