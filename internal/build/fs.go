package build

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// matchFiles walks root in lexical order and returns the regular files whose
// base name matches pattern. A missing root matches nothing.
func matchFiles(root, pattern string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// copyFile copies src to dest byte for byte, creating parent directories
// and keeping the permission bits of src.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeFile writes data to dest, creating parent directories.
func writeFile(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// copyTree copies every file under srcRoot matching pattern to the same
// relative location under destRoot.
func copyTree(srcRoot, pattern, destRoot string) (int, error) {
	files, err := matchFiles(srcRoot, pattern)
	if err != nil {
		return 0, err
	}
	for _, file := range files {
		rel, err := filepath.Rel(srcRoot, file)
		if err != nil {
			return 0, err
		}
		if err := copyFile(file, filepath.Join(destRoot, rel)); err != nil {
			return 0, fmt.Errorf("copy %s: %w", file, err)
		}
	}
	return len(files), nil
}
