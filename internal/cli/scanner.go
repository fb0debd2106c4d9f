package cli

import (
	"path/filepath"
	"strings"

	"github.com/toyz/jointc/internal/compiler"
	"github.com/toyz/jointc/internal/errors"
	"github.com/toyz/jointc/internal/utils"
)

// SourceScanner turns command-line paths into compiler sources
type SourceScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewSourceScanner creates a scanner for Groovy, Java and txtar inputs
func NewSourceScanner() *SourceScanner {
	return &SourceScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// Exclude skips files matching any of the glob patterns while walking
func (s *SourceScanner) Exclude(patterns ...string) error {
	if err := s.fileProcessor.Exclude(patterns...); err != nil {
		return errors.WrapConfigurationError("exclude", "compile", err)
	}
	return nil
}

// Scan collects the sources named by paths. Each txtar archive contributes
// its members, in archive order, with their archive paths. Other files keep
// their path as given, slash separated.
func (s *SourceScanner) Scan(paths []string) ([]compiler.Source, error) {
	files, err := s.fileProcessor.Collect(paths)
	if err != nil {
		return nil, errors.WrapFileSystemError("scan", strings.Join(paths, " "), err)
	}

	var sources []compiler.Source
	for _, file := range files {
		if strings.EqualFold(filepath.Ext(file), ".txtar") {
			members, err := compiler.LoadArchive(file)
			if err != nil {
				return nil, err
			}
			sources = append(sources, members...)
			continue
		}
		text, err := s.fileProcessor.ReadSource(file)
		if err != nil {
			return nil, errors.WrapFileSystemError("read", file, err)
		}
		sources = append(sources, compiler.Source{Path: filepath.ToSlash(file), Text: text})
	}
	return sources, nil
}
