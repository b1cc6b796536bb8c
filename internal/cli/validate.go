package cli

import (
	"errors"
	"path/filepath"

	"github.com/fpang/photoswipe/internal/folder"
)

// ValidateAndResolveDirectory checks that the path is a readable directory,
// then returns the absolute path.
func ValidateAndResolveDirectory(dirPath string) (string, error) {
	if err := folder.CheckReadable(dirPath); err != nil {
		return "", err
	}
	if absPath, err := filepath.Abs(dirPath); err == nil {
		dirPath = absPath
	}
	return dirPath, nil
}

// UserMessage turns a collaborator error into a short message for a status
// line or an error response.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, folder.ErrUserCancelled):
		return "Folder selection cancelled"
	case errors.Is(err, folder.ErrPermissionDenied):
		return "Permission denied - pick the folder again or check its access rights"
	case errors.Is(err, folder.ErrInvalidFolder):
		return "Folder is no longer available - pick it again"
	case errors.Is(err, folder.ErrFetchFailed):
		return "Could not load more photos - will retry"
	case errors.Is(err, folder.ErrDeleteFailed):
		return "Some photos could not be deleted - they stay in the trash"
	case errors.Is(err, folder.ErrOpenFailed):
		return "Could not open photo"
	default:
		return err.Error()
	}
}
