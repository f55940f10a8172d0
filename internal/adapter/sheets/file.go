package sheets

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/pollution-map-service/internal/domain"
)

// FileFeed implements domain.Feed over a saved response body, for offline
// inspection of a downloaded feed.
type FileFeed struct {
	Path string
}

func (f FileFeed) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", domain.ErrFetchFailure, f.Path, err)
	}
	return string(data), nil
}
