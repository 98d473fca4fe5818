package orm

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-tubecord/internal/database"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/repository/columns"
	"github.com/central-university-dev/go-tubecord/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type ChannelHandleRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewChannelHandleRepository(db *database.PostgresDB) *ChannelHandleRepository {
	return &ChannelHandleRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ChannelHandleRepository) Get(ctx context.Context, channelID string) (*models.ChannelHandle, error) {
	query, args, err := r.sq.Select(columns.ChannelHandle...).
		From("channel_handles").
		Where(sq.Eq{"channel_id": channelID}).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск хэндла канала", Cause: err}
	}

	handle, err := columns.ScanChannelHandle(txs.GetQuerier(ctx, r.db.Pool).QueryRow(ctx, query, args...))
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

	query, args, err := r.sq.Insert("channel_handles").
		Columns(columns.ChannelHandle...).
		Values(handle.ChannelID, handle.Handle, handle.ChannelName, handle.ResolvedAt.UTC(), handle.LastVerified.UTC()).
		Suffix("ON CONFLICT (channel_id) DO UPDATE SET " +
			"handle = EXCLUDED.handle, channel_name = EXCLUDED.channel_name, " +
			"resolved_at = EXCLUDED.resolved_at, last_verified = EXCLUDED.last_verified").
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение хэндла канала", Cause: err}
	}

	if _, err := txs.GetQuerier(ctx, r.db.Pool).Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение хэндла канала", Cause: err}
	}

	return nil
}
