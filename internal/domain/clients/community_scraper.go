package clients

import (
	"context"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

// CommunityScraper возвращает не больше limit постов, от новых к старым.
type CommunityScraper interface {
	Fetch(ctx context.Context, channelURL string, limit int) ([]models.RawPost, error)
}
