// Package misc has build related helpers.
package misc

import (
	"runtime/debug"
)

// set with -ldflags "-X arxmerge/misc.version=... -X arxmerge/misc.gitHash=..."
var (
	version = "dev"
	gitHash = ""
)

const appName = "arxmerge"

// GetAppName returns name of the program used for logs and reports.
func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns revision program was built from, falling back to VCS
// information recorded by go build.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
