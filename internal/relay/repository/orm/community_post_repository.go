package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/central-university-dev/go-tubecord/internal/database"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/repository/columns"
	"github.com/central-university-dev/go-tubecord/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type CommunityPostRepository struct {
	db *database.PostgresDB
	sq sq.StatementBuilderType
}

func NewCommunityPostRepository(db *database.PostgresDB) *CommunityPostRepository {
	return &CommunityPostRepository{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CommunityPostRepository) Insert(ctx context.Context, post *models.CommunityPost) (bool, error) {
	columns.PrepareCommunityPost(post, time.Now())

	values, err := columns.CommunityPostValues(post)
	if err != nil {
		return false, err
	}

	query, args, err := r.sq.Insert("community_posts").
		Columns(columns.CommunityPost...).
		Values(values...).
		Suffix("ON CONFLICT (post_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, &customerrors.ErrBuildSQLQuery{Operation: "вставка поста сообщества", Cause: err}
	}

	tag, err := txs.GetQuerier(ctx, r.db.Pool).Exec(ctx, query, args...)
	if err != nil {
		return false, &customerrors.ErrSQLExecution{Operation: "сохранение поста сообщества", Cause: err}
	}

	return tag.RowsAffected() == 1, nil
}

func (r *CommunityPostRepository) FindByID(ctx context.Context, postID string) (*models.CommunityPost, error) {
	query, args, err := r.sq.Select(columns.CommunityPost...).
		From("community_posts").
		Where(sq.Eq{"post_id": postID}).
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск поста сообщества", Cause: err}
	}

	post, err := columns.ScanCommunityPost(txs.GetQuerier(ctx, r.db.Pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrCommunityPostNotFound{PostID: postID}
		}

		return nil, &customerrors.ErrSQLScan{Entity: "поста сообщества", Cause: err}
	}

	return post, nil
}

func (r *CommunityPostRepository) FindUnnotified(ctx context.Context, channelID string) ([]*models.CommunityPost, error) {
	query, args, err := r.sq.Select(columns.CommunityPost...).
		From("community_posts").
		Where(sq.Eq{"channel_id": channelID, "notified": false}).
		OrderBy("published_time DESC").
		ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск неотправленных постов", Cause: err}
	}

	rows, err := txs.GetQuerier(ctx, r.db.Pool).Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "поиск неотправленных постов", Cause: err}
	}
	defer rows.Close()

	var posts []*models.CommunityPost

	for rows.Next() {
		post, err := columns.ScanCommunityPost(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "поста сообщества", Cause: err}
		}

		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по постам сообщества: %w", err)
	}

	return posts, nil
}

func (r *CommunityPostRepository) MarkNotified(ctx context.Context, postIDs ...string) error {
	if len(postIDs) == 0 {
		return nil
	}

	query, args, err := r.sq.Update("community_posts").
		Set("notified", true).
		Where(sq.Eq{"post_id": postIDs, "notified": false}).
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "отметка постов как отправленных", Cause: err}
	}

	if _, err := txs.GetQuerier(ctx, r.db.Pool).Exec(ctx, query, args...); err != nil {
		return &customerrors.ErrSQLExecution{Operation: "отметка постов как отправленных", Cause: err}
	}

	return nil
}

func (r *CommunityPostRepository) DeleteNotifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := r.sq.Delete("community_posts").
		Where(sq.Eq{"notified": true}).
		Where(sq.Lt{"published_time": cutoff.UTC()}).
		ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "удаление старых постов", Cause: err}
	}

	tag, err := txs.GetQuerier(ctx, r.db.Pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "удаление старых постов", Cause: err}
	}

	return tag.RowsAffected(), nil
}

func (r *CommunityPostRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.sq.Select("COUNT(*)").From("community_posts").ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "подсчет постов сообщества", Cause: err}
	}

	var count int

	if err := txs.GetQuerier(ctx, r.db.Pool).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "подсчет постов сообщества", Cause: err}
	}

	return count, nil
}
