package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/utils"
	"gorm.io/gorm"
)

type CompanyProfileRepository interface {
	Create(ctx context.Context, p *models.CompanyProfile) error
	Update(ctx context.Context, p *models.CompanyProfile) error
	FindByOwner(ctx context.Context, owner string) (*models.CompanyProfile, error)
}

type companyProfileRepo struct {
	db *gorm.DB
}

func NewCompanyProfileRepo(db *gorm.DB) CompanyProfileRepository {
	return &companyProfileRepo{db: db}
}

func (r *companyProfileRepo) Create(ctx context.Context, p *models.CompanyProfile) error {
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

func (r *companyProfileRepo) Update(ctx context.Context, p *models.CompanyProfile) error {
	prev := p.Version
	p.Version = prev + 1
	p.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.CompanyProfile{}).
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

func (r *companyProfileRepo) FindByOwner(ctx context.Context, owner string) (*models.CompanyProfile, error) {
	var row models.CompanyProfile
	err := r.db.WithContext(ctx).
		Where("owner_username = ?", owner).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
