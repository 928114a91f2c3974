package main

import (
	"fmt"
	"runtime/debug"
)

const shortRevisionLength = 7

var readBuildInfo = debug.ReadBuildInfo

// initVersion fills version and commit from the embedded build info when
// they were not set at link time
func initVersion() {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return
	}

	if version == defaultVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}

	if commit != defaultCommit {
		return
	}
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
	if revision == "" {
		return
	}
	if len(revision) > shortRevisionLength {
		revision = revision[:shortRevisionLength]
	}
	commit = revision
	dirty = modified
}

// versionString is the version shown by --version
func versionString() string {
	if commit == defaultCommit || commit == "" {
		return version
	}
	if dirty {
		return fmt.Sprintf("%s (%s, modified)", version, commit)
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}
