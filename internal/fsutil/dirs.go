package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// DirInfo is the ownership and permission metadata of a directory.
type DirInfo struct {
	UID  int
	GID  int
	Mode os.FileMode
}

// IsDir reports whether path exists and is a directory. Symlinks are followed.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsRegular reports whether path exists and is a regular file. Symlinks are followed.
func IsRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ListDirs returns the full paths of all directories directly inside dir, in
// lexicographic order by name. Entries that are symlinks pointing at
// directories are included; everything else is ignored.
func ListDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	var dirs []string
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			dirs = append(dirs, p)
		case e.Type()&os.ModeSymlink != 0 && IsDir(p):
			dirs = append(dirs, p)
		}
	}
	return dirs, nil
}

// StatDir reads the owner, group and permission bits of the directory at path.
func StatDir(path string) (DirInfo, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return DirInfo{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	mode := uint32(st.Mode)
	if mode&unix.S_IFMT != unix.S_IFDIR {
		return DirInfo{}, fmt.Errorf("%s is not a directory", path)
	}
	return DirInfo{
		UID:  int(st.Uid),
		GID:  int(st.Gid),
		Mode: toFileMode(mode),
	}, nil
}

// toFileMode converts raw st_mode permission and special bits into an os.FileMode.
func toFileMode(mode uint32) os.FileMode {
	m := os.FileMode(mode & 0o777)
	if mode&unix.S_ISUID != 0 {
		m |= os.ModeSetuid
	}
	if mode&unix.S_ISGID != 0 {
		m |= os.ModeSetgid
	}
	if mode&unix.S_ISVTX != 0 {
		m |= os.ModeSticky
	}
	return m
}
