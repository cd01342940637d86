package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/models"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/utils"
)

type CandidateProfileUpsert struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Location  string   `json:"location"`
	Skills    []string `json:"skills"`
}

type CandidateProfileService interface {
	GetMe(ctx context.Context, ident auth.Identity) (*models.CandidateProfile, error)
	UpsertMe(ctx context.Context, ident auth.Identity, in CandidateProfileUpsert) (*models.CandidateProfile, error)

	// SetActiveCv points the candidate at a freshly analyzed CV and mirrors
	// the extracted skills onto the profile, creating it if needed.
	SetActiveCv(ctx context.Context, owner, cvID string, skills []string) error
}

type candidateProfileService struct {
	profiles pgrepo.CandidateProfileRepository
}

func NewCandidateProfileService(profiles pgrepo.CandidateProfileRepository) CandidateProfileService {
	return &candidateProfileService{profiles: profiles}
}

func (s *candidateProfileService) GetMe(ctx context.Context, ident auth.Identity) (*models.CandidateProfile, error) {
	const op = "CandidateProfileService.GetMe"

	profile, err := s.profiles.FindByOwner(ctx, ident.Username)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Profilo candidato non trovato", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
	}
	return profile, nil
}

func (s *candidateProfileService) UpsertMe(ctx context.Context, ident auth.Identity, in CandidateProfileUpsert) (*models.CandidateProfile, error) {
	const op = "CandidateProfileService.UpsertMe"

	profile, created, err := s.loadOrNew(ctx, ident.Username)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
	}

	profile.FirstName = trim(in.FirstName)
	profile.LastName = trim(in.LastName)
	profile.Email = trim(in.Email)
	profile.Phone = trim(in.Phone)
	profile.Location = trim(in.Location)
	if in.Skills != nil {
		profile.Skills = in.Skills
	}

	if err := s.persist(ctx, profile, created); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "profilo modificato da un'altra richiesta", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to save profile", err)
	}
	return profile, nil
}

func (s *candidateProfileService) SetActiveCv(ctx context.Context, owner, cvID string, skills []string) error {
	profile, created, err := s.loadOrNew(ctx, owner)
	if err != nil {
		return err
	}

	profile.ActiveCvFileID = &cvID
	if len(skills) > 0 {
		profile.Skills = skills
	}
	return s.persist(ctx, profile, created)
}

func (s *candidateProfileService) loadOrNew(ctx context.Context, owner string) (*models.CandidateProfile, bool, error) {
	profile, err := s.profiles.FindByOwner(ctx, owner)
	if err == nil {
		return profile, false, nil
	}
	if errors.Is(err, utils.ErrNotFound) {
		return &models.CandidateProfile{ID: uuid.NewString(), OwnerUsername: owner}, true, nil
	}
	return nil, false, err
}

func (s *candidateProfileService) persist(ctx context.Context, profile *models.CandidateProfile, created bool) error {
	if created {
		return s.profiles.Create(ctx, profile)
	}
	return s.profiles.Update(ctx, profile)
}
