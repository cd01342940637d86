package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/utils"
	"gorm.io/gorm"
)

type CvFileRepository interface {
	Create(ctx context.Context, cv *models.CvFile) error
	// Update writes cv back only if its version is unchanged in the store,
	// bumping the version on success. Returns utils.ErrConflict when the row
	// moved on under us.
	Update(ctx context.Context, cv *models.CvFile) error
	FindByID(ctx context.Context, id string) (*models.CvFile, error)
	FindByIDAndOwner(ctx context.Context, id, owner string) (*models.CvFile, error)
	FindByIDAndOwnerAndStatus(ctx context.Context, id, owner string, status models.CvProcessingStatus) (*models.CvFile, error)
	FindByOwner(ctx context.Context, owner string) ([]models.CvFile, error)
	FindFirstByOwnerAndStatus(ctx context.Context, owner string, status models.CvProcessingStatus) (*models.CvFile, error)
	FindAll(ctx context.Context) ([]models.CvFile, error)
}

type cvFileRepo struct {
	db *gorm.DB
}

func NewCvFileRepo(db *gorm.DB) CvFileRepository {
	return &cvFileRepo{db: db}
}

func (r *cvFileRepo) Create(ctx context.Context, cv *models.CvFile) error {
	if cv.Version == 0 {
		cv.Version = 1
	}
	now := time.Now().UTC()
	if cv.UploadedAt.IsZero() {
		cv.UploadedAt = now
	}
	cv.UpdatedAt = now
	return r.db.WithContext(ctx).Create(cv).Error
}

func (r *cvFileRepo) Update(ctx context.Context, cv *models.CvFile) error {
	prev := cv.Version
	cv.Version = prev + 1
	cv.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.CvFile{}).
		Where("id = ? AND version = ?", cv.ID, prev).
		Select("*").Omit("id", "uploaded_at").
		Updates(cv)
	if res.Error != nil {
		cv.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		cv.Version = prev
		return utils.ErrConflict
	}
	return nil
}

func (r *cvFileRepo) FindByID(ctx context.Context, id string) (*models.CvFile, error) {
	var row models.CvFile
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *cvFileRepo) FindByIDAndOwner(ctx context.Context, id, owner string) (*models.CvFile, error) {
	var row models.CvFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_username = ?", id, owner).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *cvFileRepo) FindByIDAndOwnerAndStatus(ctx context.Context, id, owner string, status models.CvProcessingStatus) (*models.CvFile, error) {
	var row models.CvFile
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_username = ? AND status = ?", id, owner, status).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *cvFileRepo) FindByOwner(ctx context.Context, owner string) ([]models.CvFile, error) {
	var rows []models.CvFile
	err := r.db.WithContext(ctx).
		Where("owner_username = ?", owner).
		Order("uploaded_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *cvFileRepo) FindFirstByOwnerAndStatus(ctx context.Context, owner string, status models.CvProcessingStatus) (*models.CvFile, error) {
	var row models.CvFile
	err := r.db.WithContext(ctx).
		Where("owner_username = ? AND status = ?", owner, status).
		Order("uploaded_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *cvFileRepo) FindAll(ctx context.Context) ([]models.CvFile, error) {
	var rows []models.CvFile
	err := r.db.WithContext(ctx).Order("uploaded_at DESC").Find(&rows).Error
	return rows, err
}
