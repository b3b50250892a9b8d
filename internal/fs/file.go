package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces name with data. The bytes go to a temporary file in
// the same directory, which is synced and renamed over name. On any failure
// the temporary file is removed and name is left untouched.
func WriteFileAtomic(fsys FileSystem, name string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(name)
	tmp, err := fsys.CreateTemp(dir, "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	if err = fsys.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}

	if err = fsys.Rename(tmpName, name); err != nil {
		return fmt.Errorf("rename into %s: %w", name, err)
	}
	return nil
}
