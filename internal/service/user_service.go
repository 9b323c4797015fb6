package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for request validation
type CreateUserRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Mobile         string `json:"mobile" binding:"required"`
	Password       string `json:"password" binding:"required,min=6"`
	Role           string `json:"role" binding:"required"`
	ManagerRank    string `json:"managerRank"`
	WalletPIN      string `json:"walletPin"`
	ReferredByCode string `json:"referredByCode"`
}

type UpdateUserRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email" binding:"omitempty,email"`
	Mobile         string `json:"mobile"`
	Role           string `json:"role"`
	ManagerRank    string `json:"managerRank"`
	WalletPIN      string `json:"walletPin"`
	ReferredByCode string `json:"referredByCode"`
}

type LoginRequest struct {
	// Identifier is the account email or mobile number.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse returns an account without its credential fields.
type UserResponse struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Email                 string  `json:"email"`
	Mobile                string  `json:"mobile"`
	Role                  string  `json:"role"`
	ManagerRank           *string `json:"managerRank,omitempty"`
	ReferralCode          string  `json:"referralCode"`
	ReferredBy            string  `json:"referredBy,omitempty"`
	TotalReferralEarnings string  `json:"totalReferralEarnings"`
	CreatedAt             string  `json:"createdAt"`
}

// UserService defines the business logic for staff and investor accounts.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, role string, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

var pinPattern = regexp.MustCompile(`^\d{4}$`)

func mapUserToResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:                    user.ID.String(),
		Name:                  user.Name,
		Email:                 user.Email,
		Mobile:                user.Mobile,
		Role:                  user.Role,
		ManagerRank:           user.ManagerRank,
		ReferralCode:          user.ReferralCode,
		TotalReferralEarnings: user.TotalReferralEarnings.StringFixed(2),
		CreatedAt:             user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if user.ReferredBy != nil {
		resp.ReferredBy = user.ReferredBy.String()
	}
	return resp
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}
	if req.WalletPIN != "" && !pinPattern.MatchString(req.WalletPIN) {
		return nil, fmt.Errorf("%w: wallet PIN must be 4 digits", ErrValidation)
	}
	var managerRank *string
	if req.Role == model.RoleManager {
		rank := req.ManagerRank
		if rank == "" {
			rank = model.RankAssociate
		}
		if rank != model.RankAssociate && rank != model.RankSenior && rank != model.RankDirector {
			return nil, fmt.Errorf("%w: unknown manager rank %q", ErrValidation, rank)
		}
		managerRank = &rank
	}

	if _, err := s.repo.GetByEmail(ctx, strings.ToLower(req.Email)); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrValidation)
	}
	if _, err := s.repo.GetByMobile(ctx, req.Mobile); err == nil {
		return nil, fmt.Errorf("%w: mobile already registered", ErrValidation)
	}

	var referredBy *uuid.UUID
	if req.ReferredByCode != "" {
		sponsor, err := s.repo.GetByReferralCode(ctx, req.ReferredByCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: unknown referral code", ErrValidation)
			}
			return nil, err
		}
		referredBy = &sponsor.ID
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Mobile:       req.Mobile,
		Password:     string(hashed),
		Role:         req.Role,
		ManagerRank:  managerRank,
		WalletPIN:    req.WalletPIN,
		ReferralCode: generateReferralCode(),
		ReferredBy:   referredBy,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return mapUserToResponse(user), nil
}

// generateReferralCode derives a short shareable code from a fresh UUID.
func generateReferralCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "REF-" + raw[:8]
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(req.Identifier))
	if err != nil {
		user, err = s.repo.GetByMobile(ctx, req.Identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"name": user.Name,
	})
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{Token: signed, User: *mapUserToResponse(user)}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapUserLookup(err, "user")
	}
	return mapUserToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, role string, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if role != "" && !model.ValidRole(role) {
		return nil, 0, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	users, total, err := s.repo.List(ctx, role, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapUserLookup(err, "user")
	}

	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
		}
		user.Role = req.Role
	}
	if req.ManagerRank != "" {
		if req.ManagerRank != model.RankAssociate && req.ManagerRank != model.RankSenior && req.ManagerRank != model.RankDirector {
			return nil, fmt.Errorf("%w: unknown manager rank %q", ErrValidation, req.ManagerRank)
		}
		rank := req.ManagerRank
		user.ManagerRank = &rank
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" && !strings.EqualFold(req.Email, user.Email) {
		if _, err := s.repo.GetByEmail(ctx, strings.ToLower(req.Email)); err == nil {
			return nil, fmt.Errorf("%w: email already registered", ErrValidation)
		}
		user.Email = strings.ToLower(req.Email)
	}
	if req.Mobile != "" && req.Mobile != user.Mobile {
		if _, err := s.repo.GetByMobile(ctx, req.Mobile); err == nil {
			return nil, fmt.Errorf("%w: mobile already registered", ErrValidation)
		}
		user.Mobile = req.Mobile
	}
	if req.WalletPIN != "" {
		if !pinPattern.MatchString(req.WalletPIN) {
			return nil, fmt.Errorf("%w: wallet PIN must be 4 digits", ErrValidation)
		}
		user.WalletPIN = req.WalletPIN
	}
	if req.ReferredByCode != "" {
		sponsor, err := s.repo.GetByReferralCode(ctx, req.ReferredByCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: unknown referral code", ErrValidation)
			}
			return nil, err
		}
		if err := s.checkSponsorCycle(ctx, user.ID, sponsor); err != nil {
			return nil, err
		}
		user.ReferredBy = &sponsor.ID
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return mapUserToResponse(user), nil
}

// checkSponsorCycle rejects a sponsor assignment that would make the
// user their own ancestor. The walk is bounded by the cascade depth,
// matching what the payout engine would ever traverse.
func (s *userService) checkSponsorCycle(ctx context.Context, userID uuid.UUID, sponsor *model.User) error {
	if sponsor.ID == userID {
		return fmt.Errorf("%w: account cannot refer itself", ErrValidation)
	}
	current := sponsor
	for level := 0; level < maxCascadeDepth && current.ReferredBy != nil; level++ {
		if *current.ReferredBy == userID {
			return fmt.Errorf("%w: referral assignment would create a cycle", ErrValidation)
		}
		next, err := s.repo.GetByID(ctx, *current.ReferredBy)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		current = next
	}
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", ErrValidation)
	}
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return wrapUserLookup(err, "user")
	}
	return s.repo.Delete(ctx, userID)
}
