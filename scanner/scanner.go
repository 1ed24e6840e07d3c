// Package scanner performs the cold-start directory walk that builds a
// snapshot's initial contents. It walks configured roots with
// filepath.WalkDir, the same traversal zoekt's own build options use for
// IgnoreSizeMax-style filtering, and applies exclusion globs with
// github.com/bmatcuk/doublestar, as zoekt's build.Builder does for its
// LargeFiles patterns.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Entry is a single file discovered during a scan, carrying the identity
// fields the index needs without re-statting the file.
type Entry struct {
	AbsPath string
	Size    int64
	ModTime int64
	Dev     uint64
	Ino     uint64
	Mode    uint32
}

// Options configures a scan.
type Options struct {
	// Roots are the absolute directories to walk.
	Roots []string
	// Exclusions are doublestar glob patterns. A pattern without a '/' is
	// matched against bare component names (e.g. "node_modules", "*.o",
	// ".git"); a pattern with a '/' is matched against the walked path
	// (root joined with the relative part). A directory match prunes the
	// whole subtree.
	Exclusions []string
}

// Scan walks opts.Roots and sends every non-excluded regular file to out,
// closing out when the walk finishes. It runs synchronously in the calling
// goroutine; callers that want concurrency should call it in its own
// goroutine, as cmd/vicayad does for the cold-start index build.
func Scan(opts Options, out chan<- Entry) error {
	defer close(out)

	for _, root := range opts.Roots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				// A single unreadable entry (permission denied, race with
				// a delete) shouldn't abort the whole walk.
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			name := d.Name()
			if excluded(opts.Exclusions, p, name) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}

			dev, ino := identity(info)
			out <- Entry{
				AbsPath: p,
				Size:    info.Size(),
				ModTime: info.ModTime().Unix(),
				Dev:     dev,
				Ino:     ino,
				Mode:    uint32(info.Mode()),
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// excluded reports whether p (or its base name) matches any of patterns.
// Patterns without a path separator are matched against the bare name only,
// so "node_modules" excludes every directory with that name regardless of
// depth, matching the spec's "exact component name or glob" exclusion rule.
func excluded(patterns []string, p, name string) bool {
	for _, pattern := range patterns {
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// identity extracts platform device/inode numbers when available. It
// returns zero values on platforms (or stat shapes) that don't expose them.
// The values are stored with each file; index.Store resolves files by path
// and does not consult dev/ino.
func identity(info os.FileInfo) (dev, ino uint64) {
	return statIdentity(info)
}
