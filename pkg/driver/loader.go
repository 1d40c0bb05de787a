package driver

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Source is one MicroKotlin program held in memory.
type Source struct {
	Path string
	Text string
}

// LoadSource reads name from fs.
func LoadSource(fs billy.Filesystem, name string) (*Source, error) {
	if fs == nil {
		return nil, fmt.Errorf("loader: nil filesystem")
	}
	if name == "" {
		return nil, fmt.Errorf("loader: empty path")
	}
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", name, err)
	}
	return &Source{Path: name, Text: string(data)}, nil
}

// LoadSourceFile reads a program from the local disk. The returned Source
// keeps path as given so diagnostics echo what the user typed.
func LoadSourceFile(path string) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("loader: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	src, err := LoadSource(osfs.New(filepath.Dir(abs)), filepath.Base(abs))
	if err != nil {
		return nil, err
	}
	src.Path = path
	return src, nil
}
