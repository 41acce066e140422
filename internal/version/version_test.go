package version

import "testing"

func TestFillFromBuildInfo(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "", ""
	fillFromBuildInfo(map[string]string{
		"vcs.revision": "0123456789abcdef",
		"vcs.modified": "true",
		"main.version": "v0.3.1",
	})

	if Version != "v0.3.1" {
		t.Errorf("Version = %q, want v0.3.1", Version)
	}
	if Commit != "0123456-dirty" {
		t.Errorf("Commit = %q, want 0123456-dirty", Commit)
	}
}

func TestCurrent(t *testing.T) {
	info := Current()
	if info.Version == "" || info.Commit == "" || info.GoVersion == "" {
		t.Errorf("Current() = %+v, all fields should be populated", info)
	}
}
