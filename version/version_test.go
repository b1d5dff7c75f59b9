package version

import (
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo(3)
	if info.Version != Version {
		t.Errorf("expected version %q, got %q", Version, info.Version)
	}
	if info.DocumentVersion != 3 {
		t.Errorf("expected document version 3, got %d", info.DocumentVersion)
	}
	if info.IsRelease {
		t.Error("dev builds are not releases")
	}
	if len(info.GitCommit) > 7 {
		t.Errorf("expected short commit, got %q", info.GitCommit)
	}
}

func TestLdflagsOverride(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	defer func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime }()

	Version = "1.2.0"
	GitCommit = "abcdef0123"
	BuildTime = "2026-01-02T03:04:05Z"

	info := GetVersionInfo(3)
	if !info.IsRelease {
		t.Error("expected tagged build to be a release")
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("expected truncated commit, got %q", info.GitCommit)
	}
	s := info.String()
	for _, want := range []string{"1.2.0-abcdef0", "built 2026-01-02T03:04:05Z", "document version 3"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
}
