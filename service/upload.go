package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"bitwise74/zeropass/model"
	"bitwise74/zeropass/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUploadFailed means the blob store rejected the write. No
// metadata row exists when it fires.
var ErrUploadFailed = errors.New("upload failed")

// Uploads runs the store-a-file sequence: admit against the quota,
// write the blob, then record metadata. Steps run strictly in that
// order within a request.
type Uploads struct {
	DB    *gorm.DB
	Blobs storage.BlobStore
	Quota *Quota
}

func NewUploads(db *gorm.DB, blobs storage.BlobStore, quota *Quota) *Uploads {
	return &Uploads{DB: db, Blobs: blobs, Quota: quota}
}

// Upload stores body under a fresh locator and records the file row.
// A quota rejection or blob failure leaves no partial state behind.
// The caller has already been authenticated.
func (u *Uploads) Upload(ctx context.Context, userID, name, contentType string, body io.Reader, size int64) (*model.File, error) {
	if err := u.Quota.Admit(userID, size); err != nil {
		return nil, err
	}

	locator, err := storage.NewLocator(name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate locator, %w", err)
	}

	now := time.Now()

	if err := u.Blobs.Put(ctx, locator, body, size, contentType); err != nil {
		zap.L().Error("Blob write failed", zap.String("locator", locator), zap.Error(err))
		return nil, ErrUploadFailed
	}

	zap.L().Debug("Blob written", zap.String("locator", locator), zap.Duration("took", time.Since(now)))

	f := &model.File{
		UserID:    userID,
		Name:      name,
		Locator:   locator,
		Size:      size,
		CreatedAt: time.Now().Unix(),
	}

	if err := u.DB.Create(f).Error; err != nil {
		// Best effort, the row is the source of truth so an orphaned
		// blob only wastes space
		if derr := u.Blobs.Delete(context.Background(), locator); derr != nil {
			zap.L().Error("Failed to clean up blob after db error", zap.String("locator", locator), zap.Error(derr))
		}

		return nil, fmt.Errorf("failed to save file record, %w", err)
	}

	return f, nil
}

// List returns every file owned by userID, newest first.
func (u *Uploads) List(ctx context.Context, userID string) ([]model.File, error) {
	// Non-nil so an empty result serializes as [] and not null
	files := []model.File{}

	err := u.DB.
		WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up files, %w", err)
	}

	return files, nil
}
