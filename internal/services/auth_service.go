package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/models"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/utils"
)

type LoginResult struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*LoginResult, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type authService struct {
	users       pgrepo.UserRepository
	jwtSecret   string
	tokenTTL    time.Duration
	devUsername string
	devPassword string
}

func NewAuthService(users pgrepo.UserRepository, jwtSecret string, tokenTTL time.Duration, devUsername, devPassword string) AuthService {
	return &authService{
		users:       users,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		devUsername: devUsername,
		devPassword: devPassword,
	}
}

func (s *authService) Register(ctx context.Context, username, password, role string) (*LoginResult, error) {
	const op = "AuthService.Register"

	username = trim(username)
	if username == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "username e password sono obbligatori", nil)
	}
	role = trim(role)
	// only the two public roles are self-assignable
	if role != auth.RoleCandidate && role != auth.RoleCompany {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role non valido (CANDIDATE, COMPANY)", nil)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "username già in uso", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist user", err)
	}

	return s.issue(username, []string{role}, op)
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	const op = "AuthService.Login"

	username = trim(username)
	if username == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "username e password sono obbligatori", nil)
	}

	if s.isDevUser(username, password) {
		return s.issue(username, []string{auth.RoleAdmin, auth.RoleDev}, op)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "credenziali non valide", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if utils.CheckPassword(user.PasswordHash, password) != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "credenziali non valide", nil)
	}

	return s.issue(username, []string{user.Role}, op)
}

func (s *authService) isDevUser(username, password string) bool {
	if s.devUsername == "" || s.devPassword == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.devUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.devPassword)) == 1
	return userOK && passOK
}

func (s *authService) issue(username string, roles []string, op string) (*LoginResult, error) {
	token, err := auth.SignToken(s.jwtSecret, username, roles, s.tokenTTL)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return &LoginResult{Token: token, Username: username, Roles: roles}, nil
}
