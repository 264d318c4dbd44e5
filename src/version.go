package pulsedemod

import (
	"fmt"
	"io"
	"runtime/debug"
	"strconv"
)

// Set at build time via `-ldflags "-X 'github.com/doismellburning/pulsedemod/src.PULSEDEMOD_VERSION=X'"`
var PULSEDEMOD_VERSION string

// VersionInfo is what --version reports.
type VersionInfo struct {
	Version  string
	Revision string
	Built    string
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("pulsedemod - Version %s (revision %s, built at %s)", v.Version, v.Revision, v.Built)
}

// versionFrom pulls the VCS stamps out of bi, which may be nil when the
// binary was built without module support.
func versionFrom(bi *debug.BuildInfo, version string) VersionInfo {
	var settings = map[string]string{}
	if bi != nil {
		for _, bs := range bi.Settings {
			settings[bs.Key] = bs.Value
		}
	}

	var v = VersionInfo{
		Version:  version,
		Revision: "UNKNOWN",
		Built:    "UNKNOWN",
	}
	if v.Version == "" {
		v.Version = "!UNKNOWN!"
	}
	if rev, ok := settings["vcs.revision"]; ok {
		v.Revision = rev
	}
	if t, ok := settings["vcs.time"]; ok {
		v.Built = t
	}

	switch dirty, err := strconv.ParseBool(settings["vcs.modified"]); {
	case err != nil:
		v.Revision += "-UNKNOWNDIRTY"
	case dirty:
		v.Revision += "-DIRTY"
	}

	return v
}

func printVersion(w io.Writer) {
	var bi, _ = debug.ReadBuildInfo()
	fmt.Fprintln(w, versionFrom(bi, PULSEDEMOD_VERSION))
}
