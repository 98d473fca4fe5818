package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/database"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/relay/repository/columns"
	"github.com/central-university-dev/go-tubecord/pkg/txs"
	"github.com/jackc/pgx/v5"
)

type CommunityPostRepository struct {
	db *database.PostgresDB
}

func NewCommunityPostRepository(db *database.PostgresDB) *CommunityPostRepository {
	return &CommunityPostRepository{db: db}
}

var communityPostColumns = strings.Join(columns.CommunityPost, ", ")

func (r *CommunityPostRepository) Insert(ctx context.Context, post *models.CommunityPost) (bool, error) {
	columns.PrepareCommunityPost(post, time.Now())

	values, err := columns.CommunityPostValues(post)
	if err != nil {
		return false, err
	}

	query := "INSERT INTO community_posts (" + communityPostColumns + ") " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) " +
		"ON CONFLICT (post_id) DO NOTHING"

	tag, err := txs.GetQuerier(ctx, r.db.Pool).Exec(ctx, query, values...)
	if err != nil {
		return false, &customerrors.ErrSQLExecution{Operation: "сохранение поста сообщества", Cause: err}
	}

	return tag.RowsAffected() == 1, nil
}

func (r *CommunityPostRepository) FindByID(ctx context.Context, postID string) (*models.CommunityPost, error) {
	row := txs.GetQuerier(ctx, r.db.Pool).QueryRow(ctx,
		"SELECT "+communityPostColumns+" FROM community_posts WHERE post_id = $1", postID)

	post, err := columns.ScanCommunityPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrCommunityPostNotFound{PostID: postID}
		}

		return nil, &customerrors.ErrSQLScan{Entity: "поста сообщества", Cause: err}
	}

	return post, nil
}

func (r *CommunityPostRepository) FindUnnotified(ctx context.Context, channelID string) ([]*models.CommunityPost, error) {
	rows, err := txs.GetQuerier(ctx, r.db.Pool).Query(ctx,
		"SELECT "+communityPostColumns+" FROM community_posts "+
			"WHERE channel_id = $1 AND notified = FALSE ORDER BY published_time DESC",
		channelID)
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

	_, err := txs.GetQuerier(ctx, r.db.Pool).Exec(ctx,
		"UPDATE community_posts SET notified = TRUE WHERE post_id = ANY($1) AND notified = FALSE",
		postIDs)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "отметка постов как отправленных", Cause: err}
	}

	return nil
}

func (r *CommunityPostRepository) DeleteNotifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := txs.GetQuerier(ctx, r.db.Pool).Exec(ctx,
		"DELETE FROM community_posts WHERE notified = TRUE AND published_time < $1",
		cutoff.UTC())
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "удаление старых постов", Cause: err}
	}

	return tag.RowsAffected(), nil
}

func (r *CommunityPostRepository) Count(ctx context.Context) (int, error) {
	var count int

	err := txs.GetQuerier(ctx, r.db.Pool).QueryRow(ctx, "SELECT COUNT(*) FROM community_posts").Scan(&count)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "подсчет постов сообщества", Cause: err}
	}

	return count, nil
}
