// Package meta reports build metadata of the running binary for --version.
//
// Best-effort: binaries built outside a module or VCS checkout fall back to
// "devel" without revision details.
package meta

import (
	"runtime/debug"
	"strings"
)

// Info is a minimal summary of how the binary was built.
type Info struct {
	Version  string // module version, e.g. "v0.3.1" or "devel"
	Revision string // short VCS revision, "" when unknown
	Modified bool   // built from a dirty tree
	Go       string // toolchain version, e.g. "go1.25.1"
}

// Detect reads the build info embedded by the Go toolchain.
func Detect() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{Version: "devel"}
	}
	return fromBuildInfo(bi)
}

func fromBuildInfo(bi *debug.BuildInfo) Info {
	inf := Info{Version: bi.Main.Version, Go: bi.GoVersion}
	if inf.Version == "" || inf.Version == "(devel)" {
		inf.Version = "devel"
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			inf.Revision = s.Value
			if len(inf.Revision) > 12 {
				inf.Revision = inf.Revision[:12]
			}
		case "vcs.modified":
			inf.Modified = s.Value == "true"
		}
	}
	return inf
}

// String renders "devel (abc123def456, dirty) go1.25.1".
func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.Version)
	if i.Revision != "" {
		b.WriteString(" (")
		b.WriteString(i.Revision)
		if i.Modified {
			b.WriteString(", dirty")
		}
		b.WriteString(")")
	}
	if i.Go != "" {
		b.WriteString(" ")
		b.WriteString(i.Go)
	}
	return b.String()
}
