package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/shared"
)

const exportURLExpiry = 24 * time.Hour

type objectStore interface {
	Enabled() bool
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type exportSnapshot struct {
	ExportedAt time.Time                   `json:"exportedAt"`
	Users      []*dto.UserActivityResponse `json:"users"`
}

// ExportService snapshots user activity as JSON into object storage.
type ExportService struct {
	appContext.DefaultService

	admin   *AdminService
	objects objectStore
	now     func() time.Time
}

const EXPORT_SVC = "export_svc"

func (svc ExportService) Id() string {
	return EXPORT_SVC
}

func (svc *ExportService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *ExportService) Start() error {
	svc.admin = svc.Service(ADMIN_SVC).(*AdminService)
	svc.objects = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

func NewExportService(admin *AdminService, objects objectStore) *ExportService {
	return &ExportService{admin: admin, objects: objects, now: time.Now}
}

// Export writes one user, or every user when req.UserID is empty.
func (svc *ExportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if svc.objects == nil || !svc.objects.Enabled() {
		return nil, shared.NewAppError(http.StatusServiceUnavailable, "Export storage is not configured", nil)
	}

	userIDs := []string{req.UserID}
	if req.UserID == "" {
		users, err := svc.admin.storage.Users().ListUsers(ctx)
		if err != nil {
			return nil, lookupError(err, "Users")
		}
		userIDs = userIDs[:0]
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}
	}

	now := svc.now().UTC()
	snapshot := exportSnapshot{ExportedAt: now, Users: make([]*dto.UserActivityResponse, 0, len(userIDs))}
	for _, id := range userIDs {
		activity, err := svc.admin.GetUserActivity(ctx, id)
		if err != nil {
			return nil, err
		}
		snapshot.Users = append(snapshot.Users, activity)
	}

	body, err := shared.Marshal(snapshot)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to encode export")
	}

	objectName := fmt.Sprintf("exports/%s.json", now.Format("20060102T150405Z"))
	if req.UserID != "" {
		objectName = fmt.Sprintf("exports/users/%s/%s.json", req.UserID, now.Format("20060102T150405Z"))
	}

	info, err := svc.objects.Upload(ctx, objectName, bytes.NewReader(body), int64(len(body)), "application/json")
	if err != nil {
		log.Error().Err(err).Str("object", objectName).Msg("Export upload failed")
		return nil, shared.NewAppError(http.StatusBadGateway, "Failed to upload export", err)
	}

	url, err := svc.objects.PresignedURL(ctx, objectName, exportURLExpiry)
	if err != nil {
		return nil, shared.NewAppError(http.StatusBadGateway, "Failed to sign export URL", err)
	}

	log.Info().Str("object", objectName).Int("users", len(snapshot.Users)).Int64("size", info.Size).Msg("Export uploaded")
	return &dto.ExportResponse{
		ObjectName: objectName,
		URL:        url,
		Users:      len(snapshot.Users),
		Size:       info.Size,
		ExpiresAt:  now.Add(exportURLExpiry),
	}, nil
}
