package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/legalrag/internal/cache"
	"github.com/nikhilbhutani/legalrag/internal/models"
	"github.com/nikhilbhutani/legalrag/internal/storage"
	"github.com/nikhilbhutani/legalrag/pkg/textextract"
)

var ErrNotFound = errors.New("file not found")

// Enqueuer schedules background processing of an uploaded file.
type Enqueuer interface {
	EnqueueDocumentProcess(ctx context.Context, fileID int64) error
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	db       *pgxpool.Pool
	storage  storage.Storage
	cache    Cache
	enqueuer Enqueuer
	bucket   string
}

func NewService(db *pgxpool.Pool, store storage.Storage, c Cache, enq Enqueuer, bucket string) *Service {
	return &Service{
		db:       db,
		storage:  store,
		cache:    c,
		enqueuer: enq,
		bucket:   bucket,
	}
}

type UploadRequest struct {
	FileName string
	CaseType string
	Date     string
	Data     []byte
}

const fileColumns = `file_id, file_url, file_summary, case_type, file_date, file_name, storage_path, status, error, created_at, updated_at`

func metaKey(fileID int64) string { return "file_meta:" + strconv.FormatInt(fileID, 10) }

// Upload stores the file, records it as pending and schedules processing.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.FileMetadata, error) {
	ext, err := textextract.TypeFromName(req.FileName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.CaseType) == "" {
		req.CaseType = models.UnknownValue
	}
	if strings.TrimSpace(req.Date) == "" {
		req.Date = models.UnknownValue
	}

	objectPath := path.Join(time.Now().UTC().Format("2006/01"), uuid.NewString()+ext)
	if err := s.storage.Upload(ctx, s.bucket, objectPath, bytes.NewReader(req.Data), contentType(ext)); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO legal_files (file_url, case_type, file_date, file_name, storage_path, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+fileColumns,
		s.storage.GetPublicURL(s.bucket, objectPath), req.CaseType, req.Date, req.FileName, objectPath, models.DocStatusPending,
	)
	meta, err := scanFile(row)
	if err != nil {
		return nil, fmt.Errorf("insert file: %w", err)
	}

	if err := s.enqueuer.EnqueueDocumentProcess(ctx, meta.FileID); err != nil {
		if uerr := s.UpdateStatus(ctx, meta.FileID, models.DocStatusFailed, err.Error()); uerr != nil {
			slog.Error("failed to mark file failed", "file_id", meta.FileID, "error", uerr)
		}
		return nil, fmt.Errorf("enqueue processing: %w", err)
	}

	slog.Info("file uploaded", "file_id", meta.FileID, "file_name", req.FileName, "case_type", req.CaseType)
	return meta, nil
}

// Get reads the file row, bypassing the cache.
func (s *Service) Get(ctx context.Context, fileID int64) (*models.FileMetadata, error) {
	meta, err := scanFile(s.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM legal_files WHERE file_id = $1`, fileID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return meta, nil
}

// FileMetadata is the cached lookup used when assembling answers.
func (s *Service) FileMetadata(ctx context.Context, fileID int64) (*models.FileMetadata, error) {
	if s.cache != nil {
		var meta models.FileMetadata
		err := s.cache.Get(ctx, metaKey(fileID), &meta)
		if err == nil {
			return &meta, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("file metadata cache read failed", "file_id", fileID, "error", err)
		}
	}

	meta, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, metaKey(fileID), meta); err != nil {
			slog.Warn("file metadata cache write failed", "file_id", fileID, "error", err)
		}
	}
	return meta, nil
}

func (s *Service) UpdateStatus(ctx context.Context, fileID int64, status, errMsg string) error {
	return s.exec(ctx, fileID, `UPDATE legal_files SET status = $2, error = $3, updated_at = now() WHERE file_id = $1`, status, errMsg)
}

func (s *Service) SetSummary(ctx context.Context, fileID int64, summary string) error {
	return s.exec(ctx, fileID, `UPDATE legal_files SET file_summary = $2, updated_at = now() WHERE file_id = $1`, summary)
}

// Download returns the stored bytes of a file.
func (s *Service) Download(ctx context.Context, meta *models.FileMetadata) ([]byte, error) {
	rc, err := s.storage.Download(ctx, s.bucket, meta.StoragePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Service) exec(ctx context.Context, fileID int64, sql string, args ...any) error {
	tag, err := s.db.Exec(ctx, sql, append([]any{fileID}, args...)...)
	if err != nil {
		return fmt.Errorf("update file %d: %w", fileID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, metaKey(fileID)); err != nil {
			slog.Warn("file metadata cache invalidation failed", "file_id", fileID, "error", err)
		}
	}
	return nil
}

func scanFile(row pgx.Row) (*models.FileMetadata, error) {
	var m models.FileMetadata
	err := row.Scan(&m.FileID, &m.FileURL, &m.FileSummary, &m.CaseType, &m.FileDate,
		&m.FileName, &m.StoragePath, &m.Status, &m.Error, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func contentType(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
