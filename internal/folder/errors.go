package folder

import (
	"errors"
	"fmt"
	"io/fs"
)

// Collaborator failures. Callers test with errors.Is; the returned errors
// wrap the underlying cause as well.
var (
	// ErrUserCancelled means the folder picker was dismissed.
	ErrUserCancelled = errors.New("folder selection cancelled")
	// ErrPermissionDenied means the folder or photo is not accessible.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidFolder means the folder handle is stale, missing or not a folder.
	ErrInvalidFolder = errors.New("invalid folder")
	// ErrFetchFailed means a page of photos could not be listed.
	ErrFetchFailed = errors.New("failed to list images")
	// ErrDeleteFailed means a photo could not be deleted or moved to trash.
	ErrDeleteFailed = errors.New("failed to delete photo")
	// ErrOpenFailed means a photo could not be opened or decoded.
	ErrOpenFailed = errors.New("failed to open photo")
)

// wrap tags err with kind. Permission failures are additionally tagged with
// ErrPermissionDenied and missing paths on list calls become ErrInvalidFolder.
func wrap(kind error, err error, subject string) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w: %s: %w", kind, ErrPermissionDenied, subject, err)
	case kind == ErrFetchFailed && errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrInvalidFolder, subject, err)
	default:
		return fmt.Errorf("%w: %s: %w", kind, subject, err)
	}
}
