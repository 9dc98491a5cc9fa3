package acl

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is one rule file handed to the engine: the name is used only for
// parse-error reporting.
type File struct {
	Name    string
	Content string
}

// Source yields the rule files associated with an ACL group name. The
// group name may be treated as a glob by implementations, matching the
// observed "<group>.acl" file layout.
type Source interface {
	Files(group string) ([]File, error)
}

// DirSource looks rule files up as "<dir>/<group>.acl", expanding glob
// characters in the group name, so a membership of "orange*" pulls in
// every file starting with "orange".
type DirSource struct {
	Dir string
}

// Files globs and reads the rule files for group.
func (d DirSource) Files(group string) ([]File, error) {
	pattern := filepath.Join(d.Dir, group+".acl")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad acl glob %s: %w", pattern, err)
	}

	var files []File
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read acl file %s: %w", path, err)
		}
		files = append(files, File{Name: path, Content: string(data)})
	}
	return files, nil
}

// StaticSource maps group names directly to rule files, used in tests.
type StaticSource map[string][]File

// Files returns the fixed file list for group.
func (s StaticSource) Files(group string) ([]File, error) {
	return s[group], nil
}
