package rendezvous

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Filled in by git export-subst in release archives.
const (
	versionInfo = "$Format:%d$"
	commitHash  = "$Format:%h$"
)

// GetVersion returns the release tag, the commit hash, the module version
// from the build info, or "dev", whichever is found first.
func GetVersion() string {
	if tag := tagFromRefNames(versionInfo); tag != "" {
		return tag
	}
	if !strings.HasPrefix(commitHash, "$Format") {
		return commitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// GetVersionInfo returns a one-line version string.
func GetVersionInfo() string {
	return fmt.Sprintf("rendezvous %s (%s)", GetVersion(), runtime.Version())
}

// tagFromRefNames extracts the tag from a %d ref list such as
// " (HEAD, tag: v0.2.0, origin/main)".
func tagFromRefNames(refs string) string {
	refs = strings.TrimSpace(refs)
	if !strings.HasPrefix(refs, "(") || !strings.HasSuffix(refs, ")") {
		return ""
	}
	for _, ref := range strings.Split(refs[1:len(refs)-1], ",") {
		if tag, ok := strings.CutPrefix(strings.TrimSpace(ref), "tag: "); ok {
			return tag
		}
	}
	return ""
}
