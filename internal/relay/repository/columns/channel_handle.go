package columns

import (
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/jackc/pgx/v5"
)

var ChannelHandle = []string{
	"channel_id",
	"handle",
	"channel_name",
	"resolved_at",
	"last_verified",
}

func ScanChannelHandle(row pgx.Row) (*models.ChannelHandle, error) {
	handle := &models.ChannelHandle{}

	if err := row.Scan(
		&handle.ChannelID,
		&handle.Handle,
		&handle.ChannelName,
		&handle.ResolvedAt,
		&handle.LastVerified,
	); err != nil {
		return nil, err
	}

	handle.ResolvedAt = handle.ResolvedAt.UTC()
	handle.LastVerified = handle.LastVerified.UTC()

	return handle, nil
}
