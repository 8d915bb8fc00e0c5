package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lysyi3m/getpods/app/feed"
)

var (
	ErrNoEnclosure  = errors.New("nothing to download")
	ErrTargetExists = errors.New("target file already exists")
	ErrTargetIsDir  = errors.New("target is a directory")
)

// Target is <root>/<feed dir>/<local filename>.
func Target(root string, item *feed.Item) string {
	return filepath.Join(root, item.Feed.DirName, item.LocalFilename())
}

// Prepare computes the target path and makes sure its directory exists. It
// returns ErrNoEnclosure when the item has no downloadable media and
// ErrTargetExists (with the path) when the file is already on disk. A
// directory in the way is an ErrTargetIsDir failure.
func Prepare(root string, item *feed.Item) (string, error) {
	if item.LocalFilename() == "" {
		return "", ErrNoEnclosure
	}

	target := Target(root, item)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return target, fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	if info, err := os.Stat(target); err == nil {
		if info.IsDir() {
			return target, fmt.Errorf("cannot download to %s: %w", target, ErrTargetIsDir)
		}
		return target, ErrTargetExists
	} else if !os.IsNotExist(err) {
		return target, fmt.Errorf("failed to check %s: %w", target, err)
	}

	return target, nil
}
