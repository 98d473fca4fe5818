package repository

import (
	"log/slog"

	"github.com/central-university-dev/go-tubecord/internal/config"
	"github.com/central-university-dev/go-tubecord/internal/database"
	"github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/repositories"
	"github.com/central-university-dev/go-tubecord/internal/relay/repository/orm"
	sqlrepo "github.com/central-university-dev/go-tubecord/internal/relay/repository/sql"
)

type Factory struct {
	db     *database.PostgresDB
	config *config.Config
	logger *slog.Logger
}

func NewFactory(db *database.PostgresDB, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (f *Factory) CreateCommunityPostRepository() (repositories.CommunityPostRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория постов сообщества")
		return orm.NewCommunityPostRepository(f.db), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория постов сообщества")
		return sqlrepo.NewCommunityPostRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}

func (f *Factory) CreateChannelHandleRepository() (repositories.ChannelHandleRepository, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозитория хэндлов каналов")
		return orm.NewChannelHandleRepository(f.db), nil
	case config.SQLAccess:
		f.logger.Info("Создание SQL репозитория хэндлов каналов")
		return sqlrepo.NewChannelHandleRepository(f.db), nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}
