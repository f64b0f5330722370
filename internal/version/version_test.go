package version

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuildVars(t *testing.T, version, commit, built string) {
	t.Helper()
	oldVersion, oldCommit, oldBuilt := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = version, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldBuilt })
}

func TestShortVersion(t *testing.T) {
	withBuildVars(t, "v1.2.0", "0123456789abcdef", "2024-03-01T10:00:00Z")
	assert.Equal(t, "v1.2.0 (0123456)", GetShortVersion())

	withBuildVars(t, "v1.2.0", "abc", "unknown")
	assert.Equal(t, "v1.2.0", GetShortVersion())
}

func TestBuildInfo(t *testing.T) {
	withBuildVars(t, "v1.2.0", "0123456789abcdef", "2024-03-01T10:00:00Z")

	info := GetBuildInfo()
	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), info.BuildTime.UTC())
	assert.Equal(t, runtime.Version(), info.GoVersion)

	detailed := GetDetailedVersion()
	assert.Contains(t, detailed, "Version: v1.2.0")
	assert.Contains(t, detailed, "Commit: 0123456789abcdef")
	assert.Contains(t, detailed, "Built: 2024-03-01T10:00:00Z")
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("").IsZero())
	assert.False(t, parseBuildTime("2024-03-01T10:00:00+02:00").IsZero())
}
