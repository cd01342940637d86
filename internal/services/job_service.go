package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/cache"
	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/providers/ai"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/utils"
)

// JobDTO is the job shape returned to clients: the raw embedding never leaves
// the backend, only the fact that one exists.
type JobDTO struct {
	ID            string     `json:"id"`
	OwnerUsername string     `json:"owner_username"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Location      string     `json:"location,omitempty"`
	Lat           *float64   `json:"lat,omitempty"`
	Lon           *float64   `json:"lon,omitempty"`
	ContractType  string     `json:"contract_type,omitempty"`
	Seniority     string     `json:"seniority,omitempty"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
	ApplyURL      string     `json:"apply_url,omitempty"`

	Embedded           bool       `json:"embedded"`
	EmbeddingModel     string     `json:"embedding_model,omitempty"`
	EmbeddingUpdatedAt *time.Time `json:"embedding_updated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToJobDTO(j *models.Job) *JobDTO {
	return &JobDTO{
		ID:                 j.ID,
		OwnerUsername:      j.OwnerUsername,
		Title:              j.Title,
		Description:        j.Description,
		Location:           j.Location,
		Lat:                j.Lat,
		Lon:                j.Lon,
		ContractType:       j.ContractType,
		Seniority:          j.Seniority,
		Status:             string(j.Status),
		PublishedAt:        j.PublishedAt,
		ArchivedAt:         j.ArchivedAt,
		ApplyURL:           j.ApplyURL,
		Embedded:           j.HasEmbedding(),
		EmbeddingModel:     j.EmbeddingModel,
		EmbeddingUpdatedAt: j.EmbeddingUpdatedAt,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}
}

type JobCreateInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	ContractType string   `json:"contract_type"`
	Seniority    string   `json:"seniority"`
	Status       string   `json:"status"`
	ApplyURL     string   `json:"apply_url"`
}

type JobService interface {
	Create(ctx context.Context, ident auth.Identity, in JobCreateInput) (*JobDTO, error)
	ListPublished(ctx context.Context) ([]JobDTO, error)
	ListMine(ctx context.Context, ident auth.Identity) ([]JobDTO, error)
	GetByID(ctx context.Context, ident auth.Identity, id string) (*JobDTO, error)
	GetMineByID(ctx context.Context, ident auth.Identity, id string) (*JobDTO, error)
	UpdateStatus(ctx context.Context, ident auth.Identity, id, status string) (*JobDTO, error)
}

type jobService struct {
	jobs     pgrepo.JobRepository
	embedder ai.Embedder
	cache    cache.Cache // optional
	log      *logrus.Logger
}

func NewJobService(jobs pgrepo.JobRepository, embedder ai.Embedder, c cache.Cache, log *logrus.Logger) JobService {
	if log == nil {
		log = logrus.New()
	}
	return &jobService{jobs: jobs, embedder: embedder, cache: c, log: log}
}

func (s *jobService) Create(ctx context.Context, ident auth.Identity, in JobCreateInput) (*JobDTO, error) {
	const op = "JobService.Create"

	title := trim(in.Title)
	if title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title è obbligatorio", nil)
	}

	status := models.JobPublished
	if trim(in.Status) != "" {
		parsed, ok := models.ParseJobStatus(in.Status)
		if !ok {
			return nil, utils.E(utils.CodeInvalidArgument, op, "status non valido (DRAFT, PUBLISHED, ARCHIVED)", nil)
		}
		status = parsed
	}

	job := &models.Job{
		ID:            uuid.NewString(),
		OwnerUsername: ident.Username,
		Title:         title,
		Description:   trim(in.Description),
		Location:      trim(in.Location),
		Lat:           in.Lat,
		Lon:           in.Lon,
		ContractType:  trim(in.ContractType),
		Seniority:     trim(in.Seniority),
		Status:        status,
		ApplyURL:      trim(in.ApplyURL),
	}

	now := time.Now().UTC()
	if status == models.JobPublished {
		job.PublishedAt = &now
	}
	if status == models.JobArchived {
		job.ArchivedAt = &now
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist job", err)
	}

	// Publishing triggers the embedding, best-effort: the job goes live even
	// when the AI service is down.
	if job.Status == models.JobPublished {
		if s.ensureEmbedded(ctx, job) {
			if err := s.jobs.Update(ctx, job); err != nil {
				s.log.WithError(err).WithField("job_id", job.ID).Warn("job embedding not persisted")
			}
		}
		s.invalidateFeed(ctx)
	}

	return ToJobDTO(job), nil
}

func (s *jobService) ListPublished(ctx context.Context) ([]JobDTO, error) {
	const op = "JobService.ListPublished"

	rows, err := s.jobs.FindByStatus(ctx, models.JobPublished)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	return toJobDTOs(rows), nil
}

func (s *jobService) ListMine(ctx context.Context, ident auth.Identity) ([]JobDTO, error) {
	const op = "JobService.ListMine"

	var (
		rows []models.Job
		err  error
	)
	if ident.CanAccessAll() {
		rows, err = s.jobs.FindAll(ctx)
	} else {
		rows, err = s.jobs.FindByOwner(ctx, ident.Username)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	return toJobDTOs(rows), nil
}

func (s *jobService) GetByID(ctx context.Context, ident auth.Identity, id string) (*JobDTO, error) {
	const op = "JobService.GetByID"

	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Job non trovato", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}

	if !ident.CanAccessAll() {
		isOwner := ident.Username != "" && ident.Username == job.OwnerUsername
		// non-owners only ever see published jobs; unpublished ones read as
		// absent, not forbidden
		if !isOwner && job.Status != models.JobPublished {
			return nil, utils.E(utils.CodeNotFound, op, "Job non trovato", nil)
		}
	}

	return ToJobDTO(job), nil
}

func (s *jobService) GetMineByID(ctx context.Context, ident auth.Identity, id string) (*JobDTO, error) {
	const op = "JobService.GetMineByID"

	job, err := s.loadForOwnerOrAdmin(ctx, ident, id, op)
	if err != nil {
		return nil, err
	}
	return ToJobDTO(job), nil
}

func (s *jobService) UpdateStatus(ctx context.Context, ident auth.Identity, id, status string) (*JobDTO, error) {
	const op = "JobService.UpdateStatus"

	if trim(status) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "status mancante", nil)
	}
	newStatus, ok := models.ParseJobStatus(status)
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "status non valido (DRAFT, PUBLISHED, ARCHIVED)", nil)
	}

	job, err := s.loadForOwnerOrAdmin(ctx, ident, id, op)
	if err != nil {
		return nil, err
	}

	if job.Status == newStatus {
		return ToJobDTO(job), nil
	}

	wasVisible := job.Status == models.JobPublished
	job.Status = newStatus

	now := time.Now().UTC()
	if newStatus == models.JobPublished && job.PublishedAt == nil {
		job.PublishedAt = &now
	}
	if newStatus == models.JobArchived {
		job.ArchivedAt = &now
	}

	if newStatus == models.JobPublished {
		s.ensureEmbedded(ctx, job)
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "job modificato da un'altra richiesta", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update job", err)
	}

	if wasVisible || newStatus == models.JobPublished {
		s.invalidateFeed(ctx)
	}

	return ToJobDTO(job), nil
}

func (s *jobService) loadForOwnerOrAdmin(ctx context.Context, ident auth.Identity, id, op string) (*models.Job, error) {
	var (
		job *models.Job
		err error
	)
	if ident.CanAccessAll() {
		job, err = s.jobs.FindByID(ctx, id)
	} else {
		job, err = s.jobs.FindByIDAndOwner(ctx, id, ident.Username)
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Job non trovato", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	return job, nil
}

// ensureEmbedded computes the job embedding if none is stored yet. Embeddings
// are immutable once present. Returns true when the job was mutated.
func (s *jobService) ensureEmbedded(ctx context.Context, job *models.Job) bool {
	if s.embedder == nil || job.HasEmbedding() {
		return false
	}

	resp, err := s.embedder.EmbedText(ctx, job.EmbeddingText())
	if err != nil {
		s.log.WithError(err).WithField("job_id", job.ID).Warn("job embedding failed")
		return false
	}
	if len(resp.Embedding) == 0 {
		return false
	}

	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	now := time.Now().UTC()
	job.Embedding = pgvector.NewVector(vec)
	job.EmbeddingModel = resp.ModelUsed
	job.EmbeddingUpdatedAt = &now
	return true
}

func (s *jobService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.KeyPublishedJobs); err != nil {
		s.log.WithError(err).Warn("feed cache invalidation failed")
	}
}

func toJobDTOs(rows []models.Job) []JobDTO {
	out := make([]JobDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToJobDTO(&rows[i]))
	}
	return out
}
