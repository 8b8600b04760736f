package version

import (
	"runtime/debug"
	"testing"
	"time"
)

func withBuildVars(t *testing.T, v, commit, branch, built string) {
	t.Helper()
	oldV, oldC, oldB, oldT := Version, GitCommit, GitBranch, BuildTime
	Version, GitCommit, GitBranch, BuildTime = v, commit, branch, built
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime = oldV, oldC, oldB, oldT
	})
}

func TestResolveFromLinkerFlags(t *testing.T) {
	withBuildVars(t, "v1.4.0", "abcdef0123456", "release", "2026-03-01T10:00:00Z")

	info := resolve(nil, false)
	if info.Version != "v1.4.0" {
		t.Errorf("expected v1.4.0, got %q", info.Version)
	}
	if info.GitCommit != "abcdef0123456" {
		t.Errorf("expected commit untouched without build info, got %q", info.GitCommit)
	}
	if !info.BuildTime.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected build time %v", info.BuildTime)
	}
	if !info.IsRelease() {
		t.Error("expected release build")
	}
}

func TestResolveFromBuildInfo(t *testing.T) {
	withBuildVars(t, "dev", "", "", "")

	build := &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-02-01T00:00:00Z"},
		},
	}
	info := resolve(build, true)

	if info.GitCommit != "0123456" {
		t.Errorf("expected truncated commit, got %q", info.GitCommit)
	}
	if !info.Dirty {
		t.Error("expected dirty tree")
	}
	if info.GoVersion != "go1.26.0" {
		t.Errorf("unexpected go version %q", info.GoVersion)
	}
	if info.BuildTime.IsZero() {
		t.Error("expected build time from vcs.time")
	}
	if info.IsRelease() {
		t.Error("dev build must not be a release")
	}
}

func TestShortAndString(t *testing.T) {
	tests := []struct {
		name      string
		info      Info
		wantShort string
		wantLong  string
	}{
		{"bare", Info{Version: "dev"}, "dev", "dev"},
		{"commit", Info{Version: "v1.0.0", GitCommit: "abc1234"}, "v1.0.0-abc1234", "v1.0.0-abc1234"},
		{"dirty", Info{Version: "v1.0.0", GitCommit: "abc1234", Dirty: true}, "v1.0.0-abc1234-dirty", "v1.0.0-abc1234-dirty"},
		{"branch", Info{Version: "dev", GitBranch: "feature"}, "dev", "dev (feature)"},
		{"main branch hidden", Info{Version: "dev", GitBranch: "main"}, "dev", "dev"},
		{
			"full",
			Info{Version: "v2.0.0", BuildTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), GoVersion: "go1.26.0"},
			"v2.0.0",
			"v2.0.0 built 2026-01-02T03:04:05Z go1.26.0",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.wantShort {
				t.Errorf("Short() = %q, want %q", got, tc.wantShort)
			}
			if got := tc.info.String(); got != tc.wantLong {
				t.Errorf("String() = %q, want %q", got, tc.wantLong)
			}
		})
	}
}

func TestGet(t *testing.T) {
	if Get().Version == "" {
		t.Error("expected a version")
	}
}
