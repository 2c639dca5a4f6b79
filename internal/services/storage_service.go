package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"stepwise/internal/models/db_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/internal/storage"
	"stepwise/pkg/utils"
)

const MaxUploadBytes = 25 << 20

var allowedMediaPrefixes = []string{"image/", "video/", "application/pdf"}

type StorageServiceInterface interface {
	Upload(ctx context.Context, workspaceID, actorID uuid.UUID, filename string, body io.Reader) (*response_models.UploadResponse, error)
}

type StorageService struct {
	primary  storage.Uploader
	fallback storage.Uploader
	guard    memberGuard
	log      *zap.Logger
}

// NewStorageService uploads to primary and retries once on fallback when primary fails.
// primary may be nil, in which case fallback is the only target.
func NewStorageService(primary, fallback storage.Uploader, workspaces repositories.WorkspaceRepository, log *zap.Logger) StorageServiceInterface {
	return &StorageService{
		primary:  primary,
		fallback: fallback,
		guard:    memberGuard{workspaces: workspaces},
		log:      log.Named("storage"),
	}
}

func (s *StorageService) Upload(ctx context.Context, workspaceID, actorID uuid.UUID, filename string, body io.Reader) (*response_models.UploadResponse, error) {
	if _, err := s.guard.authorize(ctx, workspaceID, actorID, db_models.RoleEditor); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(body, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, utils.NewValidationError("file", "file is empty")
	}
	if len(raw) > MaxUploadBytes {
		return nil, utils.NewValidationError("file", "file exceeds 25 MB")
	}

	mtype := mimetype.Detect(raw)
	if !mediaAllowed(mtype.String()) {
		return nil, utils.NewValidationError("file", "unsupported file type "+mtype.String())
	}

	key, err := objectKey(workspaceID, filename, mtype.Extension())
	if err != nil {
		return nil, fmt.Errorf("object key: %w", err)
	}
	contentType := mtype.String()

	target := s.primary
	if target == nil {
		target = s.fallback
	}
	url, err := target.Upload(ctx, key, contentType, bytes.NewReader(raw))
	if err != nil && target != s.fallback && s.fallback != nil {
		s.log.Warn("primary upload failed, using fallback",
			zap.String("provider", target.Name()),
			zap.String("key", key),
			zap.Error(err))
		target = s.fallback
		url, err = target.Upload(ctx, key, contentType, bytes.NewReader(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	s.log.Info("media uploaded",
		zap.String("workspace_id", workspaceID.String()),
		zap.String("provider", target.Name()),
		zap.String("content_type", contentType),
		zap.Int("size", len(raw)))
	return &response_models.UploadResponse{
		URL:         url,
		Provider:    target.Name(),
		ContentType: contentType,
		Size:        int64(len(raw)),
	}, nil
}

func mediaAllowed(contentType string) bool {
	for _, prefix := range allowedMediaPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

// objectKey builds "<workspace>/<slugged-name>-<random><ext>", using the sniffed extension.
func objectKey(workspaceID uuid.UUID, filename, ext string) (string, error) {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	name := slug.Make(base)
	if name == "" {
		name = "file"
	}
	suffix, err := utils.GenerateSecureToken(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s-%s%s", workspaceID, name, suffix, ext), nil
}
