package sql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/database"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/repository/columns"
	"github.com/central-university-dev/go-tubecord/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type ChannelHandleRepository struct {
	db *database.PostgresDB
}

func NewChannelHandleRepository(db *database.PostgresDB) *ChannelHandleRepository {
	return &ChannelHandleRepository{db: db}
}

func (r *ChannelHandleRepository) Get(ctx context.Context, channelID string) (*models.ChannelHandle, error) {
	row := txs.GetQuerier(ctx, r.db.Pool).QueryRow(ctx,
		"SELECT "+strings.Join(columns.ChannelHandle, ", ")+" FROM channel_handles WHERE channel_id = $1",
		channelID)

	handle, err := columns.ScanChannelHandle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrChannelHandleNotFound{ChannelID: channelID}
		}

		return nil, &customerrors.ErrSQLScan{Entity: "хэндла канала", Cause: err}
	}

	return handle, nil
}

func (r *ChannelHandleRepository) Save(ctx context.Context, handle *models.ChannelHandle) error {
	now := time.Now().UTC()

	if handle.ResolvedAt.IsZero() {
		handle.ResolvedAt = now
	}

	if handle.LastVerified.IsZero() {
		handle.LastVerified = now
	}

	_, err := txs.GetQuerier(ctx, r.db.Pool).Exec(ctx,
		`INSERT INTO channel_handles (channel_id, handle, channel_name, resolved_at, last_verified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel_id) DO UPDATE SET
			handle = EXCLUDED.handle,
			channel_name = EXCLUDED.channel_name,
			resolved_at = EXCLUDED.resolved_at,
			last_verified = EXCLUDED.last_verified`,
		handle.ChannelID, handle.Handle, handle.ChannelName, handle.ResolvedAt.UTC(), handle.LastVerified.UTC())
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение хэндла канала", Cause: err}
	}

	return nil
}
