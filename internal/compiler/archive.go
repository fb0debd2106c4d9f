package compiler

import (
	"os"
	"strings"

	"golang.org/x/tools/txtar"

	"github.com/toyz/jointc/internal/errors"
)

// ArchiveSources turns a txtar archive into sources, one per file, in
// archive order. Files without text are kept; the archive comment is ignored.
func ArchiveSources(data []byte) []Source {
	ar := txtar.Parse(data)
	out := make([]Source, 0, len(ar.Files))
	for _, f := range ar.Files {
		out = append(out, Source{Path: f.Name, Text: string(f.Data)})
	}
	return out
}

// LoadArchive reads a txtar file from disk
func LoadArchive(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return ArchiveSources(data), nil
}

// Archive renders sources as a txtar archive
func Archive(sources []Source) []byte {
	ar := &txtar.Archive{}
	for _, s := range sources {
		text := s.Text
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		ar.Files = append(ar.Files, txtar.File{Name: s.Path, Data: []byte(text)})
	}
	return txtar.Format(ar)
}
