package service_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database,
// seeded with the default rate table, referral levels and admin account.
type testEnv struct {
	db *gorm.DB

	userRepo   repository.UserRepository
	orderRepo  repository.OrderRepository
	walletRepo repository.WalletRepository
	investRepo repository.InvestmentRepository

	users       service.UserService
	customers   service.CustomerService
	orders      service.OrderService
	wallet      service.WalletService
	referrals   service.ReferralService
	investments service.InvestmentService
	settings    service.SettingsService
	dashboard   service.DashboardService
}

type noopNotifier struct{}

func (noopNotifier) NotifyRole(context.Context, string, string, string, string)     {}
func (noopNotifier) NotifyUser(context.Context, uuid.UUID, string, string, string) {}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))

	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	logRepo := repository.NewReferralLogRepository(db)
	investRepo := repository.NewInvestmentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	settings := service.NewSettingsService(settingsRepo)
	referrals := service.NewReferralService(userRepo, walletRepo, logRepo, settings, txManager)
	wallet := service.NewWalletService(walletRepo, userRepo, settings, referrals, txManager)

	return &testEnv{
		db:          db,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		walletRepo:  walletRepo,
		investRepo:  investRepo,
		users:       service.NewUserService(userRepo),
		customers:   service.NewCustomerService(customerRepo),
		orders:      service.NewOrderService(orderRepo, customerRepo, userRepo, wallet, settings, noopNotifier{}, txManager),
		wallet:      wallet,
		referrals:   referrals,
		investments: service.NewInvestmentService(investRepo, wallet, txManager),
		settings:    settings,
		dashboard:   service.NewDashboardService(repository.NewDashboardRepository(db)),
	}
}

var accountSeq int64

// createUser inserts an account directly, bypassing the service layer,
// so tests can set up referral chains without bcrypt overhead.
func (e *testEnv) createUser(t *testing.T, name, role string, referredBy *uuid.UUID) *model.User {
	t.Helper()
	n := atomic.AddInt64(&accountSeq, 1)
	user := &model.User{
		Name:         name,
		Email:        fmt.Sprintf("user%d@test.local", n),
		Mobile:       fmt.Sprintf("98%08d", n),
		Password:     "not-a-real-hash",
		Role:         role,
		ReferralCode: fmt.Sprintf("REF-T%06d", n),
		ReferredBy:   referredBy,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createCustomer(t *testing.T, name string) *model.Customer {
	t.Helper()
	n := atomic.AddInt64(&accountSeq, 1)
	customer := &model.Customer{
		Code:   fmt.Sprintf("CUST-T%06d", n),
		Name:   name,
		Mobile: fmt.Sprintf("97%08d", n),
	}
	require.NoError(t, e.db.Create(customer).Error)
	return customer
}

func (e *testEnv) balance(t *testing.T, userID uuid.UUID) decimal.Decimal {
	t.Helper()
	balance, err := e.walletRepo.BalanceOf(context.Background(), userID)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) house(t *testing.T) *model.User {
	t.Helper()
	house, err := e.userRepo.FirstByRole(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	return house
}

func actorOf(user *model.User) service.Actor {
	return service.Actor{ID: user.ID, Name: user.Name, Role: user.Role}
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Equal(t, want, got.StringFixed(2))
}
