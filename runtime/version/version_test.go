package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// withVersionVars temporarily sets version variables and restores them after the test.
func withVersionVars(t *testing.T, v, c, date string) {
	t.Helper()
	origVersion, origCommit, origDate := version, gitCommit, buildDate
	t.Cleanup(func() {
		version, gitCommit, buildDate = origVersion, origCommit, origDate
	})
	version, gitCommit, buildDate = v, c, date
}

func TestGetVersion_Dev(t *testing.T) {
	withVersionVars(t, devVersion, "", "")
	// Test binaries carry no module version for this package.
	assert.Equal(t, devVersion, GetVersion())
}

func TestGetVersion_Ldflags(t *testing.T) {
	withVersionVars(t, "1.2.3", "", "")
	assert.Equal(t, "1.2.3", GetVersion())
}

func TestString(t *testing.T) {
	withVersionVars(t, "1.2.3", "abc1234", "2026-01-01")
	assert.Equal(t, "tts-wrapper 1.2.3 (abc1234) built 2026-01-01", String())
}

func TestGetBuildInfo(t *testing.T) {
	withVersionVars(t, "1.2.3", "abc1234", "2026-01-01")
	assert.Equal(t, []any{"version", "1.2.3", "commit", "abc1234", "built", "2026-01-01"}, GetBuildInfo())
}

func TestGetBuildInfo_Minimal(t *testing.T) {
	withVersionVars(t, "1.2.3", "", "")
	attrs := GetBuildInfo()
	assert.Equal(t, []any{"version", "1.2.3"}, attrs[:2])
}
