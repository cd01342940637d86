package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/utils"
	"gorm.io/gorm"
)

type JobRepository interface {
	Create(ctx context.Context, j *models.Job) error
	Update(ctx context.Context, j *models.Job) error
	FindByID(ctx context.Context, id string) (*models.Job, error)
	FindByIDAndOwner(ctx context.Context, id, owner string) (*models.Job, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Job, error)
	FindByOwner(ctx context.Context, owner string) ([]models.Job, error)
	FindByStatus(ctx context.Context, status models.JobStatus) ([]models.Job, error)
	FindByOwnerAndStatus(ctx context.Context, owner string, status models.JobStatus) ([]models.Job, error)
	FindAll(ctx context.Context) ([]models.Job, error)
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, j *models.Job) error {
	if j.Version == 0 {
		j.Version = 1
	}
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *jobRepo) Update(ctx context.Context, j *models.Job) error {
	prev := j.Version
	j.Version = prev + 1
	j.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ? AND version = ?", j.ID, prev).
		Select("*").Omit("id", "created_at").
		Updates(j)
	if res.Error != nil {
		j.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		j.Version = prev
		return utils.ErrConflict
	}
	return nil
}

func (r *jobRepo) FindByID(ctx context.Context, id string) (*models.Job, error) {
	var row models.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *jobRepo) FindByIDAndOwner(ctx context.Context, id, owner string) (*models.Job, error) {
	var row models.Job
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_username = ?", id, owner).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *jobRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Job
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *jobRepo) FindByOwner(ctx context.Context, owner string) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("owner_username = ?", owner).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *jobRepo) FindByStatus(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *jobRepo) FindByOwnerAndStatus(ctx context.Context, owner string, status models.JobStatus) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("owner_username = ? AND status = ?", owner, status).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *jobRepo) FindAll(ctx context.Context) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}
