package main

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo) {
	t.Helper()
	prevVersion, prevCommit, prevDirty := version, commit, dirty
	prevReader := readBuildInfo
	t.Cleanup(func() {
		version, commit, dirty = prevVersion, prevCommit, prevDirty
		readBuildInfo = prevReader
	})

	version, commit, dirty = defaultVersion, defaultCommit, false
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return info, info != nil
	}
}

func buildInfo(moduleVersion string, settings ...debug.BuildSetting) *debug.BuildInfo {
	return &debug.BuildInfo{
		Main:     debug.Module{Path: "github.com/satococoa/autogit", Version: moduleVersion},
		Settings: settings,
	}
}

func TestInitVersion(t *testing.T) {
	revision := debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef0123456789abcdef01234567"}
	modified := debug.BuildSetting{Key: "vcs.modified", Value: "true"}
	clean := debug.BuildSetting{Key: "vcs.modified", Value: "false"}

	tests := []struct {
		name   string
		info   *debug.BuildInfo
		preset string
		want   string
	}{
		{
			name: "module version without vcs data",
			info: buildInfo("v2.3.4"),
			want: "v2.3.4",
		},
		{
			name: "devel build keeps the default version",
			info: buildInfo("(devel)"),
			want: defaultVersion,
		},
		{
			name: "clean checkout shows the short revision",
			info: buildInfo("v2.3.4", revision, clean),
			want: "v2.3.4 (0123456)",
		},
		{
			name: "modified checkout is flagged",
			info: buildInfo("(devel)", revision, modified),
			want: "dev (0123456, modified)",
		},
		{
			name:   "link time version wins",
			info:   buildInfo("v2.3.4", revision),
			preset: "custom",
			want:   "custom (0123456)",
		},
		{
			name: "no build info",
			want: defaultVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubBuildInfo(t, tt.info)
			if tt.preset != "" {
				version = tt.preset
			}

			initVersion()

			assert.Equal(t, tt.want, versionString())
		})
	}
}

func TestInitVersionRespectsLinkTimeCommit(t *testing.T) {
	stubBuildInfo(t, buildInfo("v2.3.4",
		debug.BuildSetting{Key: "vcs.revision", Value: "fedcba9876543210"},
		debug.BuildSetting{Key: "vcs.modified", Value: "true"},
	))
	commit = "abc1234"

	initVersion()

	assert.Equal(t, "v2.3.4 (abc1234)", versionString())
}

func TestAppRun_VersionIncludesRevision(t *testing.T) {
	stubBuildInfo(t, buildInfo("v2.3.4", debug.BuildSetting{Key: "vcs.revision", Value: "0123456789"}))
	initVersion()

	stdout, _, err := runApp(t, "--version")

	assert.NoError(t, err)
	assert.Contains(t, stdout, "v2.3.4 (0123456)")
}
