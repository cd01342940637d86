package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/utils"
	"gorm.io/gorm"
)

type SwipeRepository interface {
	Create(ctx context.Context, s *models.JobSwipe) error
	// UpdateAction changes the recorded action for an existing swipe.
	// created_at keeps the first-swipe time.
	UpdateAction(ctx context.Context, s *models.JobSwipe) error
	FindByCandidateAndJob(ctx context.Context, candidate, jobID string) (*models.JobSwipe, error)
	FindByCandidate(ctx context.Context, candidate string) ([]models.JobSwipe, error)
	FindByCandidateAndAction(ctx context.Context, candidate string, action models.SwipeAction) ([]models.JobSwipe, error)
	FindByJobIDsAndAction(ctx context.Context, jobIDs []string, action models.SwipeAction) ([]models.JobSwipe, error)
}

type swipeRepo struct {
	db *gorm.DB
}

func NewSwipeRepo(db *gorm.DB) SwipeRepository {
	return &swipeRepo{db: db}
}

func (r *swipeRepo) Create(ctx context.Context, s *models.JobSwipe) error {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *swipeRepo) UpdateAction(ctx context.Context, s *models.JobSwipe) error {
	prev := s.Version
	s.Version = prev + 1

	res := r.db.WithContext(ctx).
		Model(&models.JobSwipe{}).
		Where("id = ? AND version = ?", s.ID, prev).
		Updates(map[string]any{"action": s.Action, "version": s.Version})
	if res.Error != nil {
		s.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		s.Version = prev
		return utils.ErrConflict
	}
	return nil
}

func (r *swipeRepo) FindByCandidateAndJob(ctx context.Context, candidate, jobID string) (*models.JobSwipe, error) {
	var row models.JobSwipe
	err := r.db.WithContext(ctx).
		Where("candidate_username = ? AND job_id = ?", candidate, jobID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *swipeRepo) FindByCandidate(ctx context.Context, candidate string) ([]models.JobSwipe, error) {
	var rows []models.JobSwipe
	err := r.db.WithContext(ctx).
		Where("candidate_username = ?", candidate).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *swipeRepo) FindByCandidateAndAction(ctx context.Context, candidate string, action models.SwipeAction) ([]models.JobSwipe, error) {
	var rows []models.JobSwipe
	err := r.db.WithContext(ctx).
		Where("candidate_username = ? AND action = ?", candidate, action).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *swipeRepo) FindByJobIDsAndAction(ctx context.Context, jobIDs []string, action models.SwipeAction) ([]models.JobSwipe, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}
	var rows []models.JobSwipe
	err := r.db.WithContext(ctx).
		Where("job_id IN ? AND action = ?", jobIDs, action).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
