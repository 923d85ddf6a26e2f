package service

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.SystemSettings, error)
	Update(ctx context.Context, patch dto.SettingsPatch) (*models.SystemSettings, error)
	Backups(ctx context.Context) ([]models.Backup, error)
	CreateBackup(ctx context.Context) (*models.Backup, error)
	DownloadBackup(ctx context.Context, id string) ([]byte, error)
	Restore(ctx context.Context, archive dto.Attachment) error
}

// backupStorage keeps downloaded archives on disk.
type backupStorage interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

// DownloadedBackup points at an archive saved locally.
type DownloadedBackup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Size int    `json:"size"`
}

// SettingsService manages the institution settings singleton and backups.
type SettingsService struct {
	repo    settingsRepository
	storage backupStorage
	ops     *Operations
	logger  *zap.Logger
}

// NewSettingsService constructs a SettingsService. storage may be nil when
// backups are never downloaded.
func NewSettingsService(repo settingsRepository, storage backupStorage, ops *Operations, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, storage: storage, ops: ops, logger: logger}
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (*models.SystemSettings, error) {
	return Run(ctx, s.ops, Query[struct{}, *models.SystemSettings]{
		Name:  "settings.get",
		Fetch: func(ctx context.Context, _ struct{}) (*models.SystemSettings, error) { return s.repo.Get(ctx) },
	}, struct{}{})
}

// Update applies a partial update. An empty patch is rejected.
func (s *SettingsService) Update(ctx context.Context, patch dto.SettingsPatch) (*models.SystemSettings, error) {
	if patch.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "settings patch is empty")
	}
	return Exec(ctx, s.ops, Mutation[dto.SettingsPatch, *models.SystemSettings]{Name: "settings.update", Exec: s.repo.Update}, patch)
}

// Backups lists server-side backups.
func (s *SettingsService) Backups(ctx context.Context) ([]models.Backup, error) {
	return Run(ctx, s.ops, Query[struct{}, []models.Backup]{
		Name:  "settings.backups",
		Fetch: func(ctx context.Context, _ struct{}) ([]models.Backup, error) { return s.repo.Backups(ctx) },
	}, struct{}{})
}

// CreateBackup asks the backend for a fresh backup.
func (s *SettingsService) CreateBackup(ctx context.Context) (*models.Backup, error) {
	backup, err := Exec(ctx, s.ops, Mutation[struct{}, *models.Backup]{
		Name: "settings.createBackup",
		Exec: func(ctx context.Context, _ struct{}) (*models.Backup, error) { return s.repo.CreateBackup(ctx) },
	}, struct{}{})
	if err != nil {
		return nil, err
	}
	s.logger.Info("backup created", zap.String("backup_id", backup.ID))
	return backup, nil
}

// DownloadBackup fetches an archive and stores it under the backups directory.
func (s *SettingsService) DownloadBackup(ctx context.Context, id string) (*DownloadedBackup, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "backup id is required")
	}
	if s.storage == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "backup storage not configured")
	}
	raw, err := s.repo.DownloadBackup(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := s.storage.Save(filepath.Join(id, "backup-"+id+".zip"), raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store backup")
	}
	s.logger.Info("backup downloaded", zap.String("backup_id", id), zap.Int("bytes", len(raw)))
	return &DownloadedBackup{ID: id, Name: name, Path: s.storage.Path(name), Size: len(raw)}, nil
}

// Restore uploads an archive and replaces the backend state with it.
func (s *SettingsService) Restore(ctx context.Context, archive dto.Attachment) error {
	if archive.Content == nil {
		return appErrors.Clone(appErrors.ErrValidation, "backup file is required")
	}
	_, err := Exec(ctx, s.ops, Mutation[dto.Attachment, struct{}]{
		Name: "settings.restore",
		Exec: func(ctx context.Context, a dto.Attachment) (struct{}, error) { return struct{}{}, s.repo.Restore(ctx, a) },
	}, archive)
	if err != nil {
		return err
	}
	s.logger.Warn("backup restored", zap.String("file", archive.Filename))
	return nil
}
