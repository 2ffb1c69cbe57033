package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"portal-service/internal/jwt"
	"portal-service/internal/model"
	"portal-service/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrTokenInvalid         = errors.New("token is invalid or expired")
	ErrEmailNotVerified     = errors.New("email address has not been verified")
	ErrUnknownCollege       = errors.New("unknown college")
	ErrEmailDomainForbidden = errors.New("registration requires an institution email address")
)

// collegeDomains is the institution email allow-list: only addresses on a
// college's domain may register under that college.
var collegeDomains = map[string]string{
	"engineering": "eng.university.edu",
	"science":     "sci.university.edu",
	"arts":        "arts.university.edu",
	"business":    "biz.university.edu",
	"medicine":    "med.university.edu",
}

type AuthService interface {
	RegisterUser(ctx context.Context, email, password, name, college string) (*model.User, string, error)
	VerifyEmail(ctx context.Context, verificationToken string) error
	LoginUser(ctx context.Context, email, password string) (accessToken string, refreshToken string, err error)
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error)
	LogoutUser(ctx context.Context, refreshTokenString string) error
}

type authService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
}

func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// RegisterUser creates a student account and returns the email verification
// token that would be mailed to the institution address.
func (s *authService) RegisterUser(ctx context.Context, email, password, name, college string) (*model.User, string, error) {
	domain, ok := collegeDomains[college]
	if !ok {
		return nil, "", ErrUnknownCollege
	}
	if !strings.HasSuffix(strings.ToLower(email), "@"+domain) {
		return nil, "", ErrEmailDomainForbidden
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		College:      college,
		Role:         model.RoleStudent,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	user.ID = newID

	verificationToken, err := jwt.GenerateVerificationToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, verificationToken, nil
}

func (s *authService) VerifyEmail(ctx context.Context, verificationToken string) error {
	claims, err := jwt.ValidateToken(verificationToken)
	if err != nil {
		return ErrTokenInvalid
	}
	if purpose, _ := claims["purpose"].(string); purpose != "email_verification" {
		return ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ErrTokenInvalid
	}

	return s.userRepo.MarkEmailVerified(ctx, userID)
}

func (s *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return "", "", ErrEmailNotVerified
	}

	accessToken, refreshToken, err := jwt.GenerateTokens(user)
	if err != nil {
		return "", "", err
	}

	hash := sha256.Sum256([]byte(refreshToken))
	tokenHash := hex.EncodeToString(hash[:])

	refreshTokenModel := &model.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(time.Hour * 24 * 30),
	}

	if err := s.tokenRepo.Create(ctx, refreshTokenModel); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *authService) GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *authService) RefreshToken(ctx context.Context, refreshTokenString string) (string, error) {
	claims, err := jwt.ValidateToken(refreshTokenString)

	if err != nil {
		return "", ErrTokenInvalid
	}

	hash := sha256.Sum256([]byte(refreshTokenString))
	tokenHash := hex.EncodeToString(hash[:])

	_, err = s.tokenRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return "", ErrTokenInvalid
	}

	userID, _ := uuid.Parse(claims["sub"].(string))
	user, err := s.userRepo.FindByID(ctx, userID)

	if err != nil {
		return "", ErrTokenInvalid
	}

	newAccessToken, _, err := jwt.GenerateTokens(user)

	if err != nil {
		return "", err
	}

	return newAccessToken, nil
}

func (s *authService) LogoutUser(ctx context.Context, refreshTokenString string) error {
	hash := sha256.Sum256([]byte(refreshTokenString))
	tokenHash := hex.EncodeToString(hash[:])

	return s.tokenRepo.Delete(ctx, tokenHash)
}
