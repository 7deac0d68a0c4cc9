package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	repo "github.com/oksasatya/go-event-platform/internal/domain/repository"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
	"github.com/oksasatya/go-event-platform/pkg/metrics"
)

// AvatarStore persists an uploaded image and returns its public URL.
type AvatarStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// AuthService is the credential store and token issuer.
type AuthService struct {
	Repo    repo.UserRepository
	JWT     *helpers.JWTManager
	Avatars AvatarStore
	Logger  *logrus.Logger
}

func NewAuthService(r repo.UserRepository, jwt *helpers.JWTManager, avatars AvatarStore, logger *logrus.Logger) *AuthService {
	return &AuthService{Repo: r, JWT: jwt, Avatars: avatars, Logger: logger}
}

// Token is the bearer credential handed back by /token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

// Register creates an active user. Email and username must both be unused.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if err := s.ensureFree(ctx, in.Email, in.Username, 0); err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Email:          in.Email,
		Username:       in.Username,
		FullName:       strings.TrimSpace(in.FullName),
		HashedPassword: hash,
		IsActive:       true,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	return u, nil
}

// ensureFree checks that email and username are not taken by anyone but self.
func (s *AuthService) ensureFree(ctx context.Context, email, username string, self entity.UserID) error {
	if email != "" {
		u, err := s.Repo.GetByEmail(ctx, email)
		switch {
		case err == nil && u.ID != self:
			return ErrEmailTaken
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return err
		}
	}
	if username != "" {
		u, err := s.Repo.GetByUsername(ctx, username)
		switch {
		case err == nil && u.ID != self:
			return ErrUsernameTaken
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return err
		}
	}
	return nil
}

// Authenticate resolves login as a username, then as an email. Unknown
// login and wrong password both return (nil, nil).
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*entity.User, error) {
	login = strings.TrimSpace(login)
	u, err := s.Repo.GetByUsername(ctx, login)
	if errors.Is(err, repo.ErrNotFound) {
		u, err = s.Repo.GetByEmail(ctx, login)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.HashedPassword, password) {
		return nil, nil
	}
	return u, nil
}

// IssueToken signs an access token whose subject is the user's email.
func (s *AuthService) IssueToken(u *entity.User) (Token, error) {
	access, exp, err := s.JWT.GenerateAccessToken(u.Email)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return Token{}, err
	}
	metrics.TokensIssued.Inc()
	return Token{AccessToken: access, TokenType: "bearer", ExpiresAt: exp}, nil
}

// Login authenticates and issues a token in one step.
func (s *AuthService) Login(ctx context.Context, login, password string) (Token, error) {
	u, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return Token{}, err
	}
	if u == nil {
		s.Logger.WithField("login", login).Warn("failed login attempt")
		return Token{}, ErrInvalidCredentials
	}
	return s.IssueToken(u)
}

// VerifyToken returns the token subject or ErrInvalidToken.
func (s *AuthService) VerifyToken(token string) (string, error) {
	sub, err := s.JWT.VerifyToken(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// WhoAmI resolves a bearer token to an existing, active user.
func (s *AuthService) WhoAmI(ctx context.Context, token string) (*entity.User, error) {
	email, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

// Resolve is WhoAmI reduced to the identity other services see.
func (s *AuthService) Resolve(ctx context.Context, token string) (entity.Identity, error) {
	u, err := s.WhoAmI(ctx, token)
	if err != nil {
		return entity.Identity{}, err
	}
	return u.Identity(), nil
}

// UpdateProfileInput holds optional changes; nil leaves a field as is.
type UpdateProfileInput struct {
	Email    *string
	Username *string
	FullName *string
	Password *string
}

func (s *AuthService) UpdateProfile(ctx context.Context, id entity.UserID, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	var email, username string
	if in.Email != nil && *in.Email != u.Email {
		email = strings.TrimSpace(*in.Email)
	}
	if in.Username != nil && *in.Username != u.Username {
		username = strings.TrimSpace(*in.Username)
	}
	if err := s.ensureFree(ctx, email, username, u.ID); err != nil {
		return nil, err
	}
	if email != "" {
		u.Email = email
	}
	if username != "" {
		u.Username = username
	}
	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.HashedPassword = hash
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) ListUsers(ctx context.Context, skip, limit int) ([]entity.User, error) {
	if err := CheckPage(skip, limit); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx, skip, limit)
}

func (s *AuthService) GetUser(ctx context.Context, id entity.UserID) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UploadAvatar stores the image under avatars/<user id>/ and records its URL.
func (s *AuthService) UploadAvatar(ctx context.Context, id entity.UserID, r io.Reader, filename, contentType string) (*entity.User, error) {
	if s.Avatars == nil {
		return nil, ErrAvatarStorageDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid("file", "must be an image")
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(path.Ext(filename))
	objectPath := path.Join("avatars", strconv.FormatInt(int64(u.ID), 10), uuid.NewString()+ext)
	url, err := s.Avatars.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("avatar upload failed")
		return nil, err
	}
	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
