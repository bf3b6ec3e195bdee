package job

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/syncfan/internal/ctxlog"
)

// DestinationPath is a destination directory that must exist before the job
// that recorded it is dispatched.
type DestinationPath struct {
	Path string
	UID  int
	GID  int
	Mode os.FileMode
}

// Create makes the directory, then sets its owner and its mode, in that order.
// A directory that already exists, even one created by someone else after the
// destination was diffed, is left untouched. It reports whether it created the
// directory.
func (d DestinationPath) Create(ctx context.Context) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("path", d.Path)

	if err := os.Mkdir(d.Path, 0o700); err != nil {
		if errors.Is(err, os.ErrExist) {
			info, statErr := os.Stat(d.Path)
			if statErr == nil && info.IsDir() {
				logger.Debug("Destination directory already exists, skipping.")
				return false, nil
			}
			return false, fmt.Errorf("destination %s exists and is not a directory", d.Path)
		}
		return false, fmt.Errorf("failed to create destination %s: %w", d.Path, err)
	}

	if err := os.Chown(d.Path, d.UID, d.GID); err != nil {
		return true, fmt.Errorf("failed to set owner of %s: %w", d.Path, err)
	}
	if err := os.Chmod(d.Path, d.Mode); err != nil {
		return true, fmt.Errorf("failed to set mode of %s: %w", d.Path, err)
	}

	logger.Debug("Created destination directory.", "uid", d.UID, "gid", d.GID, "mode", fmt.Sprintf("%o", d.Mode.Perm()))
	return true, nil
}
