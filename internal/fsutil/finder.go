// Package fsutil finds manifest and locale files on disk and in embedded
// file systems.
package fsutil

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FindFiles walks root inside fsys and returns the paths of all files whose
// name ends with extension, sorted. Entries starting with a dot are
// skipped, directories included.
func FindFiles(fsys fs.FS, root, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// FindFilesByExtension is FindFiles over the directory rootPath on the
// local disk. The returned paths include rootPath.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	rel, err := FindFiles(os.DirFS(rootPath), ".", extension)
	if err != nil {
		return nil, err
	}

	files := make([]string, len(rel))
	for i, p := range rel {
		files[i] = filepath.Join(rootPath, filepath.FromSlash(path.Clean(p)))
	}
	return files, nil
}
