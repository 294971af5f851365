// Package version reports the build identity of the voxsearch binary.
package version

import (
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set at link time with -ldflags "-X github.com/fmueller/voxsearch/internal/version.Version=...".
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

type BuildInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

// Resolve returns the full version string, appending a git-derived suffix
// when the binary is run from inside a git repository whose HEAD is not on
// a release tag.
func Resolve() string {
	return resolveVersion(Version, runGit)
}

// Info returns the resolved version together with commit and build date.
// Unset link-time values fall back to the VCS stamp the Go toolchain embeds.
func Info() BuildInfo {
	return buildInfo(Resolve(), Commit, Date, debug.ReadBuildInfo)
}

func buildInfo(resolved, commit, date string, read func() (*debug.BuildInfo, bool)) BuildInfo {
	info := BuildInfo{
		Version:   resolved,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}

	bi, ok := read()
	if !ok || bi == nil {
		return info
	}
	if bi.GoVersion != "" {
		info.GoVersion = bi.GoVersion
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if unset(info.Commit) {
				info.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if unset(info.Date) {
				info.Date = s.Value
			}
		}
	}
	return info
}

func unset(v string) bool {
	return v == "" || v == "unknown"
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

func resolveVersion(base string, git func(...string) (string, error)) string {
	if base == "" {
		base = "0.0.0"
	}

	suffix := computeGitSuffix(base, git)
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}

func computeGitSuffix(base string, git func(...string) (string, error)) string {
	if _, err := git("rev-parse", "--git-dir"); err != nil {
		return ""
	}

	if _, err := git("describe", "--tags", "--exact-match"); err == nil {
		return ""
	}

	desc, err := git("describe", "--tags", "--dirty", "--always")
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(desc, "v"+base+"-")
}

func runGit(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
