package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/utils"
	"gorm.io/gorm"
)

type CandidateProfileRepository interface {
	Create(ctx context.Context, p *models.CandidateProfile) error
	Update(ctx context.Context, p *models.CandidateProfile) error
	FindByOwner(ctx context.Context, owner string) (*models.CandidateProfile, error)
}

type candidateProfileRepo struct {
	db *gorm.DB
}

func NewCandidateProfileRepo(db *gorm.DB) CandidateProfileRepository {
	return &candidateProfileRepo{db: db}
}

func (r *candidateProfileRepo) Create(ctx context.Context, p *models.CandidateProfile) error {
	if p.Version == 0 {
		p.Version = 1
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *candidateProfileRepo) Update(ctx context.Context, p *models.CandidateProfile) error {
	prev := p.Version
	p.Version = prev + 1
	p.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.CandidateProfile{}).
		Where("id = ? AND version = ?", p.ID, prev).
		Select("*").Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		p.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		p.Version = prev
		return utils.ErrConflict
	}
	return nil
}

func (r *candidateProfileRepo) FindByOwner(ctx context.Context, owner string) (*models.CandidateProfile, error) {
	var row models.CandidateProfile
	err := r.db.WithContext(ctx).
		Where("owner_username = ?", owner).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
