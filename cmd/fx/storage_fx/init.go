package storage_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stepwise/internal/config"
	"stepwise/internal/repositories"
	"stepwise/internal/services"
	"stepwise/internal/storage"
)

var Module = fx.Provide(
	provideLocalUploader,
	provideStorageService,
)

func provideLocalUploader(cfg *config.Config) (*storage.LocalUploader, error) {
	return storage.NewLocalUploader(cfg.UploadDir, cfg.PublicURL)
}

// provideStorageService uploads to Cloudinary when it is configured and keeps the local
// directory as the fallback.
func provideStorageService(
	cfg *config.Config,
	local *storage.LocalUploader,
	workspaces repositories.WorkspaceRepository,
	log *zap.Logger,
) (services.StorageServiceInterface, error) {
	var primary storage.Uploader
	if cfg.Cloudinary.Enabled() {
		cld, err := storage.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			return nil, err
		}
		primary = cld
	} else {
		log.Info("cloudinary not configured, storing uploads locally", zap.String("dir", local.Root()))
	}
	return services.NewStorageService(primary, local, workspaces, log), nil
}
