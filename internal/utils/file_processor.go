package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// FileProcessor discovers compiler inputs on disk
type FileProcessor struct {
	fileReader *FileReader
	extensions map[string]bool
	excludes   []glob.Glob
}

// SourceExtensions are the file extensions picked up when walking directories
var SourceExtensions = []string{".groovy", ".java", ".txtar"}

// NewFileProcessor creates a file processor for the given extensions
func NewFileProcessor(extensions ...string) *FileProcessor {
	if len(extensions) == 0 {
		extensions = SourceExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	return &FileProcessor{
		fileReader: NewFileReader(),
		extensions: exts,
	}
}

// Exclude adds glob patterns matched against slash-separated relative paths.
// Patterns use '/' as separator, so '*' stays within one path segment.
func (fp *FileProcessor) Exclude(patterns ...string) error {
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		fp.excludes = append(fp.excludes, g)
	}
	return nil
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// SourceFileFilter accepts files with one of the processor's extensions
func (fp *FileProcessor) SourceFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		return fp.extensions[strings.ToLower(filepath.Ext(info.Name()))]
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"build":        true,
		"target":       true,
		"bin":          true,
		"out":          true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// Collect expands command-line arguments into a sorted, de-duplicated file
// list. A directory contributes its direct source files; "dir/..." walks it
// recursively. Files named explicitly are always kept.
func (fp *FileProcessor) Collect(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}

	for _, arg := range args {
		recursive := false
		root := arg
		if strings.HasSuffix(arg, "/...") || arg == "..." {
			recursive = true
			root = strings.TrimSuffix(strings.TrimSuffix(arg, "..."), "/")
			if root == "" {
				root = "."
			}
		}

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		files, err := fp.walk(root, recursive)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}

	sort.Strings(out)
	return out, nil
}

func (fp *FileProcessor) walk(root string, recursive bool) ([]string, error) {
	var matched []string
	dirFilter := DefaultDirectoryFilter()
	fileFilter := fp.SourceFileFilter()

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || !dirFilter(path, d) {
				return filepath.SkipDir
			}
			return nil
		}
		if fileFilter(path, d) && !fp.excluded(root, path) {
			matched = append(matched, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return matched, nil
}

func (fp *FileProcessor) excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, g := range fp.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// ReadSource reads one input file through the processor's cache
func (fp *FileProcessor) ReadSource(path string) (string, error) {
	return fp.fileReader.ReadFile(path)
}

// GetFileReader returns the underlying FileReader
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
