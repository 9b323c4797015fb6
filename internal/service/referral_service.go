package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxCascadeDepth caps the upline walk. Ancestors beyond this depth
// never receive commission.
const maxCascadeDepth = 6

// --- DTOs ---

type NetworkLevelStats struct {
	Level   int    `json:"level"`
	Percent string `json:"percent"`
	Members int    `json:"members"`
	Earned  string `json:"earned"`
}

type NetworkStatsResponse struct {
	ReferralCode    string              `json:"referralCode"`
	TotalEarnings   string              `json:"totalEarnings"`
	DirectReferrals int                 `json:"directReferrals"`
	Levels          []NetworkLevelStats `json:"levels"`
}

type TeamMemberResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Level int    `json:"level"`
}

type ReferralIncomeResponse struct {
	ID           string `json:"id"`
	FromUserName string `json:"fromUserName"`
	FromUserRole string `json:"fromUserRole"`
	Action       string `json:"action"`
	Level        int    `json:"level"`
	Amount       string `json:"amount"`
	CreatedAt    string `json:"createdAt"`
}

// --- Interface ---

// ReferralService walks the sponsorship chain and pays out the
// commission pool withheld from worker earnings.
type ReferralService interface {
	// Distribute splits pool across the source user's uplines according
	// to the per-level percent table. Each level's credit is atomic on
	// its own; a failure stops the walk but keeps levels already paid.
	Distribute(ctx context.Context, sourceUserID uuid.UUID, pool decimal.Decimal, action string) error
	NetworkStats(ctx context.Context, userID uuid.UUID) (*NetworkStatsResponse, error)
	Team(ctx context.Context, userID uuid.UUID) ([]TeamMemberResponse, error)
	IncomeLog(ctx context.Context, userID uuid.UUID, page, limit int) ([]ReferralIncomeResponse, int64, error)
}

type referralService struct {
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	logRepo    repository.ReferralLogRepository
	settings   SettingsService
	txManager  repository.TransactionManager
}

func NewReferralService(
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	logRepo repository.ReferralLogRepository,
	settings SettingsService,
	txManager repository.TransactionManager,
) ReferralService {
	return &referralService{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		logRepo:    logRepo,
		settings:   settings,
		txManager:  txManager,
	}
}

// --- Implementation ---

func (s *referralService) Distribute(ctx context.Context, sourceUserID uuid.UUID, pool decimal.Decimal, action string) error {
	if !pool.IsPositive() {
		return nil
	}

	source, err := s.userRepo.GetByID(ctx, sourceUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: payout source account", ErrNotFound)
		}
		return fmt.Errorf("failed to load payout source: %w", err)
	}

	levels, err := s.settings.ReferralLevels(ctx)
	if err != nil {
		return err
	}

	hundred := decimal.NewFromInt(100)
	visited := map[uuid.UUID]bool{source.ID: true}
	uplineID := source.ReferredBy

	for level := 1; level <= maxCascadeDepth && uplineID != nil; level++ {
		upline, err := s.userRepo.GetByID(ctx, *uplineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling sponsor reference terminates the walk.
				return nil
			}
			return fmt.Errorf("failed to load upline at level %d: %w", level, err)
		}
		if visited[upline.ID] {
			// Sponsorship cycle: stop instead of looping.
			return nil
		}
		visited[upline.ID] = true

		commission := pool.Mul(levels[level]).Div(hundred)
		if commission.IsPositive() {
			err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
				if err := s.walletRepo.Append(txCtx, &model.WalletTransaction{
					UserID:      upline.ID,
					Type:        model.TxTypeCredit,
					Amount:      commission,
					Description: fmt.Sprintf("Level %d referral income from %s (%s)", level, source.Name, action),
				}); err != nil {
					return err
				}
				if err := s.logRepo.Create(txCtx, &model.ReferralIncomeLog{
					RecipientID:  upline.ID,
					FromUserName: source.Name,
					FromUserRole: source.Role,
					Action:       action,
					Level:        level,
					Amount:       commission,
				}); err != nil {
					return err
				}
				upline.TotalReferralEarnings = upline.TotalReferralEarnings.Add(commission)
				return s.userRepo.Update(txCtx, upline)
			})
			if err != nil {
				return fmt.Errorf("failed to credit level %d commission: %w", level, err)
			}
		}

		uplineID = upline.ReferredBy
	}

	return nil
}

func (s *referralService) NetworkStats(ctx context.Context, userID uuid.UUID) (*NetworkStatsResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}

	levels, err := s.settings.ReferralLevels(ctx)
	if err != nil {
		return nil, err
	}

	stats := &NetworkStatsResponse{
		ReferralCode:  user.ReferralCode,
		TotalEarnings: user.TotalReferralEarnings.StringFixed(2),
		Levels:        make([]NetworkLevelStats, 0, maxCascadeDepth),
	}

	frontier := []uuid.UUID{userID}
	visited := map[uuid.UUID]bool{userID: true}

	for level := 1; level <= maxCascadeDepth; level++ {
		var next []uuid.UUID
		for _, id := range frontier {
			downlines, err := s.userRepo.ListByReferrer(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to walk downline at level %d: %w", level, err)
			}
			for _, member := range downlines {
				if visited[member.ID] {
					continue
				}
				visited[member.ID] = true
				next = append(next, member.ID)
			}
		}

		earned, err := s.logRepo.SumByRecipientLevel(ctx, userID, level)
		if err != nil {
			return nil, err
		}
		stats.Levels = append(stats.Levels, NetworkLevelStats{
			Level:   level,
			Percent: levels[level].String(),
			Members: len(next),
			Earned:  earned.StringFixed(2),
		})
		if level == 1 {
			stats.DirectReferrals = len(next)
		}
		frontier = next
	}

	return stats, nil
}

func (s *referralService) Team(ctx context.Context, userID uuid.UUID) ([]TeamMemberResponse, error) {
	team := make([]TeamMemberResponse, 0)
	frontier := []uuid.UUID{userID}
	visited := map[uuid.UUID]bool{userID: true}

	for level := 1; level <= maxCascadeDepth && len(frontier) > 0; level++ {
		var next []uuid.UUID
		for _, id := range frontier {
			downlines, err := s.userRepo.ListByReferrer(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to walk downline at level %d: %w", level, err)
			}
			for _, member := range downlines {
				if visited[member.ID] {
					continue
				}
				visited[member.ID] = true
				next = append(next, member.ID)
				team = append(team, TeamMemberResponse{
					ID:    member.ID.String(),
					Name:  member.Name,
					Role:  member.Role,
					Level: level,
				})
			}
		}
		frontier = next
	}

	return team, nil
}

func (s *referralService) IncomeLog(ctx context.Context, userID uuid.UUID, page, limit int) ([]ReferralIncomeResponse, int64, error) {
	logs, total, err := s.logRepo.ListByRecipient(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ReferralIncomeResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, ReferralIncomeResponse{
			ID:           log.ID.String(),
			FromUserName: log.FromUserName,
			FromUserRole: log.FromUserRole,
			Action:       log.Action,
			Level:        log.Level,
			Amount:       log.Amount.StringFixed(2),
			CreatedAt:    log.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return responses, total, nil
}
