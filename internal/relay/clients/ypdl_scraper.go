package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/common/metrics"
	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

const (
	defaultYpDlPath    = "yp-dl"
	defaultYpDlTimeout = 5 * time.Minute
)

// YpDlScraper запускает yp-dl во временном каталоге и собирает посты из JSON файлов,
// которые он оставляет после себя.
type YpDlScraper struct {
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

func NewYpDlScraper(path string, timeout time.Duration, logger *slog.Logger) *YpDlScraper {
	if path == "" {
		path = defaultYpDlPath
	}

	if timeout <= 0 {
		timeout = defaultYpDlTimeout
	}

	return &YpDlScraper{
		path:    path,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch возвращает до limit постов, новые первыми. Ненулевой код выхода yp-dl
// означает отсутствие новых постов, а не ошибку.
func (s *YpDlScraper) Fetch(ctx context.Context, channelURL string, limit int) ([]models.RawPost, error) {
	start := time.Now()

	posts, err := s.fetch(ctx, channelURL, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	metrics.RecordScraperRun(status, time.Since(start))

	return posts, err
}

func (s *YpDlScraper) fetch(ctx context.Context, channelURL string, limit int) ([]models.RawPost, error) {
	workDir, err := os.MkdirTemp("", "tubecord-ypdl-")
	if err != nil {
		return nil, &customerrors.ErrScraperFailed{ChannelURL: channelURL, Cause: err}
	}
	defer os.RemoveAll(workDir)

	// yp-dl пишет файлы в подкаталог channel/ и падает, если его нет.
	if err := os.MkdirAll(filepath.Join(workDir, "channel"), 0o755); err != nil {
		return nil, &customerrors.ErrScraperFailed{ChannelURL: channelURL, Cause: err}
	}

	cmdCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, s.path, "--reverse", "--verbose", channelURL)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug("Запуск yp-dl", "channel_url", channelURL, "dir", workDir)

	if err := cmd.Run(); err != nil {
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return nil, &customerrors.ErrScraperFailed{ChannelURL: channelURL, Cause: cmdCtx.Err()}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			s.logger.Warn("yp-dl завершился с ошибкой",
				"channel_url", channelURL,
				"exit_code", exitErr.ExitCode(),
				"stderr", strings.TrimSpace(stderr.String()),
			)

			return []models.RawPost{}, nil
		}

		return nil, &customerrors.ErrScraperFailed{ChannelURL: channelURL, Cause: err}
	}

	files, err := collectJSONFiles(workDir)
	if err != nil {
		return nil, &customerrors.ErrScraperFailed{ChannelURL: channelURL, Cause: err}
	}

	if len(files) == 0 {
		s.logger.Warn("yp-dl не создал ни одного JSON файла", "channel_url", channelURL)
		return []models.RawPost{}, nil
	}

	posts := make([]models.RawPost, 0, limit)

	for _, file := range files {
		filePosts, err := loadRawPosts(file)
		if err != nil {
			s.logger.Error("Ошибка при чтении файла yp-dl", "file", file, "error", err)
			continue
		}

		posts = append(posts, filePosts...)
	}

	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	s.logger.Info("Посты сообщества получены",
		"channel_url", channelURL,
		"files", len(files),
		"posts", len(posts),
	)

	return posts, nil
}

func collectJSONFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске файлов yp-dl: %w", err)
	}

	sort.Strings(files)

	return files, nil
}

// loadRawPosts принимает список постов, объект с полем posts или одиночный пост.
func loadRawPosts(path string) ([]models.RawPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var posts []models.RawPost
		if err := json.Unmarshal(data, &posts); err != nil {
			return nil, err
		}

		return posts, nil
	}

	var wrapper struct {
		Posts []models.RawPost `json:"posts"`
	}

	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	if wrapper.Posts != nil {
		return wrapper.Posts, nil
	}

	var single models.RawPost
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}

	return []models.RawPost{single}, nil
}
