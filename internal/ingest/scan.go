package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Expand resolves command-line arguments into data files. Directories are
// replaced by the supported files they contain, sorted by path; lock files
// left by open spreadsheets are skipped. Plain files are kept as given so
// that the loader reports a precise error for them.
func Expand(args []string, recursive bool) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := scanDir(arg, recursive)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no .csv, .txt, .xlsx or .xlsm files in %s", arg)
		}
		files = append(files, found...)
	}
	return files, nil
}

func scanDir(root string, recursive bool) ([]string, error) {
	var found []string
	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible
		}
		if d.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), "~$") || !Supported(d.Name()) {
			return nil
		}
		found = append(found, path)
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}
