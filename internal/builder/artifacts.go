package builder

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IsExecutable reports whether a build directory entry counts as a runnable artifact:
// a regular file that either ends in .exe or has no extension and an execute bit.
// Windows reports no execute bits, so only .exe files qualify there.
func IsExecutable(name string, info fs.FileInfo) bool {
	if !info.Mode().IsRegular() {
		return false
	}
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".exe") {
		return true
	}
	return ext == "" && info.Mode().Perm()&0o111 != 0
}

// FindExecutables lists the executable entries directly inside dir, skipping names that
// match any of the exclude globs.
//
// The result is in raw directory enumeration order, which depends on the filesystem and
// is deliberately left unsorted: callers that pick "the first" executable inherit that order.
func FindExecutables(dir string, exclude []string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// (*os.File).ReadDir does not sort, unlike os.ReadDir
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if excluded(name, exclude) {
			continue
		}
		// stat rather than entry.Info so that symlinks to binaries are followed
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if IsExecutable(name, info) {
			names = append(names, name)
		}
	}
	return names, nil
}

func excluded(name string, patterns []string) bool {
	for _, pat := range patterns {
		if doublestar.MatchUnvalidated(pat, name) {
			return true
		}
	}
	return false
}
