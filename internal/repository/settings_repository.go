package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const settingsBase = "/api/settings"

// SettingsRepository calls the system settings and backup endpoints.
type SettingsRepository struct {
	client *transport.Client
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(client *transport.Client) *SettingsRepository {
	return &SettingsRepository{client: client}
}

// Shape reports how settings responses are wrapped.
func (r *SettingsRepository) Shape() transport.Shape { return transport.Enveloped }

// Get returns the settings singleton.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SystemSettings, error) {
	return transport.Fetch[*models.SystemSettings](ctx, r.client, r.Shape(), get(settingsBase, "", nil))
}

// Update applies a partial update.
func (r *SettingsRepository) Update(ctx context.Context, patch dto.SettingsPatch) (*models.SystemSettings, error) {
	return transport.Fetch[*models.SystemSettings](ctx, r.client, r.Shape(), withBody(http.MethodPut, settingsBase, "", patch))
}

// Backups lists server-side backups.
func (r *SettingsRepository) Backups(ctx context.Context) ([]models.Backup, error) {
	return transport.Fetch[[]models.Backup](ctx, r.client, r.Shape(), get(settingsBase+"/backups", "", nil))
}

// CreateBackup asks the backend to take a backup.
func (r *SettingsRepository) CreateBackup(ctx context.Context) (*models.Backup, error) {
	return transport.Fetch[*models.Backup](ctx, r.client, r.Shape(), transport.Request{Method: http.MethodPost, Path: settingsBase + "/backups"})
}

// DownloadBackup returns the raw backup archive.
func (r *SettingsRepository) DownloadBackup(ctx context.Context, id string) ([]byte, error) {
	return r.client.Do(ctx, get(resourcePath(settingsBase+"/backups", id, "download"), settingsBase+"/backups/:id/download", nil))
}

// Restore uploads a backup archive to restore from.
func (r *SettingsRepository) Restore(ctx context.Context, archive dto.Attachment) error {
	return send(ctx, r.client, r.Shape(), upload(settingsBase+"/restore", "", "backup", archive, nil))
}
