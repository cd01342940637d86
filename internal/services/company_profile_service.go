package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/models"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/utils"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type CompanyProfileUpsert struct {
	CompanyName  string `json:"company_name"`
	Website      string `json:"website"`
	Industry     string `json:"industry"`
	Location     string `json:"location"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

type CompanyProfileService interface {
	GetMe(ctx context.Context, ident auth.Identity) (*models.CompanyProfile, error)
	UpsertMe(ctx context.Context, ident auth.Identity, in CompanyProfileUpsert) (*models.CompanyProfile, error)
}

type companyProfileService struct {
	profiles pgrepo.CompanyProfileRepository
}

func NewCompanyProfileService(profiles pgrepo.CompanyProfileRepository) CompanyProfileService {
	return &companyProfileService{profiles: profiles}
}

func (s *companyProfileService) GetMe(ctx context.Context, ident auth.Identity) (*models.CompanyProfile, error) {
	const op = "CompanyProfileService.GetMe"

	profile, err := s.profiles.FindByOwner(ctx, ident.Username)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Profilo azienda non trovato", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
	}
	return profile, nil
}

func (s *companyProfileService) UpsertMe(ctx context.Context, ident auth.Identity, in CompanyProfileUpsert) (*models.CompanyProfile, error) {
	const op = "CompanyProfileService.UpsertMe"

	name := trim(in.CompanyName)
	if name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "companyName è obbligatorio", nil)
	}
	email := trim(in.ContactEmail)
	if email != "" && !emailRe.MatchString(email) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "contactEmail non valida", nil)
	}

	profile, err := s.profiles.FindByOwner(ctx, ident.Username)
	created := false
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
		}
		profile = &models.CompanyProfile{ID: uuid.NewString(), OwnerUsername: ident.Username}
		created = true
	}

	profile.CompanyName = name
	profile.Website = trim(in.Website)
	profile.Industry = trim(in.Industry)
	profile.Location = trim(in.Location)
	profile.ContactName = trim(in.ContactName)
	profile.ContactEmail = email
	profile.ContactPhone = trim(in.ContactPhone)

	if created {
		err = s.profiles.Create(ctx, profile)
	} else {
		err = s.profiles.Update(ctx, profile)
	}
	if err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "profilo modificato da un'altra richiesta", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to save profile", err)
	}
	return profile, nil
}
