package cli

import (
	"fmt"
	"runtime/debug"
)

// Version contains version information set at build time
type Version struct {
	AppName   string
	Version   string
	Revision  string
	BuildDate string
}

// Print returns the version information as a string
func (v Version) Print() string {
	version := v.Version
	revision := v.Revision

	// fall back to module build info for go-install builds
	if version == "develop" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, setting := range buildSettings() {
			if setting.Key == "vcs.revision" && revision == "unset" {
				revision = setting.Value
			}
		}
	}

	return fmt.Sprintf("%s %s (%s)\n", v.AppName, version, revision)
}

func buildSettings() []debug.BuildSetting {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info.Settings
}
