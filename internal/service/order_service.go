package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"backend/internal/model"
	"backend/internal/payout"
	"backend/internal/repository"
	"backend/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type BookingItem struct {
	ItemType      string `json:"itemType" binding:"required"`
	Quantity      int    `json:"quantity"`
	FabricMeters  string `json:"fabricMeters"`
	TotalAmount   string `json:"totalAmount" binding:"required"`
	AdvanceAmount string `json:"advanceAmount"`
	TrialDate     string `json:"trialDate"`
	DeliveryDate  string `json:"deliveryDate"`
	Priority      string `json:"priority"`
	Notes         string `json:"notes"`
}

type BookingRequest struct {
	CustomerID string        `json:"customerId" binding:"required"`
	Items      []BookingItem `json:"items" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	Description string `json:"description"`
}

type ForceStatusRequest struct {
	Status      string `json:"status" binding:"required"`
	Description string `json:"description"`
}

type AddOrderLogRequest struct {
	Description string `json:"description" binding:"required"`
}

type UpdatePriorityRequest struct {
	Priority string `json:"priority" binding:"required,oneof=High Medium Low"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type SettlePaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type CashHandoverRequest struct {
	PIN string `json:"pin" binding:"required,len=4"`
}

type MaterialActionRequest struct {
	Action            string `json:"action" binding:"required,oneof=MATERIAL_ENTRY MATERIAL_ISSUE"`
	Description       string `json:"description"`
	RelatedBillNumber string `json:"relatedBillNumber"`
}

type OrderHistoryResponse struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	UpdatedBy   string `json:"updatedBy"`
	Forced      bool   `json:"forced"`
	CreatedAt   string `json:"createdAt"`
}

type OrderResponse struct {
	ID                 string                 `json:"id"`
	BillNumber         string                 `json:"billNumber"`
	CustomerID         string                 `json:"customerId"`
	CustomerName       string                 `json:"customerName"`
	GarmentType        string                 `json:"garmentType"`
	Status             string                 `json:"status"`
	IsNewCustomer      bool                   `json:"isNewCustomer"`
	FabricMeters       string                 `json:"fabricMeters"`
	Priority           string                 `json:"priority"`
	ShowroomName       string                 `json:"showroomName,omitempty"`
	AssignedWorkerName string                 `json:"assignedWorkerName,omitempty"`
	TotalAmount        string                 `json:"totalAmount"`
	AdvanceAmount      string                 `json:"advanceAmount"`
	PendingAmount      string                 `json:"pendingAmount"`
	PaymentStatus      string                 `json:"paymentStatus"`
	TrialDate          string                 `json:"trialDate,omitempty"`
	DeliveryDate       string                 `json:"deliveryDate,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
	OrderDate          string                 `json:"orderDate"`
	History            []OrderHistoryResponse `json:"history,omitempty"`
}

// --- Interface ---

// OrderService owns the order lifecycle: booking (with composite
// splitting), the production state machine, payment settlement, and the
// PIN-verified cash handover at delivery.
type OrderService interface {
	BookOrders(ctx context.Context, actor Actor, req BookingRequest) ([]OrderResponse, error)
	GetOrder(ctx context.Context, billNumber string) (*OrderResponse, error)
	ListOrders(ctx context.Context, filter repository.OrderListFilter) ([]OrderResponse, int64, error)

	UpdateStatus(ctx context.Context, actor Actor, billNumber string, req UpdateStatusRequest) (*OrderResponse, error)
	ForceStatus(ctx context.Context, actor Actor, billNumber string, req ForceStatusRequest) (*OrderResponse, error)
	AddOrderLog(ctx context.Context, actor Actor, billNumber string, req AddOrderLogRequest) error
	UpdatePriority(ctx context.Context, billNumber string, req UpdatePriorityRequest) error
	UpdateNotes(ctx context.Context, billNumber string, req UpdateNotesRequest) error

	SettlePayment(ctx context.Context, actor Actor, billNumber string, req SettlePaymentRequest) (*OrderResponse, error)
	VerifyCashHandover(ctx context.Context, actor Actor, billNumber string, req CashHandoverRequest) (*OrderResponse, error)
	RecordMaterialAction(ctx context.Context, actor Actor, req MaterialActionRequest) error

	DeleteOrder(ctx context.Context, billNumber string) error
}

type orderService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	userRepo     repository.UserRepository
	wallet       WalletService
	settings     SettingsService
	notifier     Notifier
	txManager    repository.TransactionManager

	bills billLocks
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	userRepo repository.UserRepository,
	wallet WalletService,
	settings SettingsService,
	notifier Notifier,
	txManager repository.TransactionManager,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		wallet:       wallet,
		settings:     settings,
		notifier:     notifier,
		txManager:    txManager,
		bills:        billLocks{locks: make(map[string]*sync.Mutex)},
	}
}

// billLocks serializes mutations per bill number so concurrent status
// updates on the same order cannot interleave.
type billLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (b *billLocks) lock(bill string) func() {
	b.mu.Lock()
	l, ok := b.locks[bill]
	if !ok {
		l = &sync.Mutex{}
		b.locks[bill] = l
	}
	b.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// --- Booking ---

func (s *orderService) BookOrders(ctx context.Context, actor Actor, req BookingRequest) ([]OrderResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer id", ErrValidation)
	}
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	existing, err := s.orderRepo.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count customer orders: %w", err)
	}
	isNewCustomer := existing == 0

	var created []model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, item := range req.Items {
			orders, err := s.bookItem(txCtx, actor, customer, item, isNewCustomer)
			if err != nil {
				return err
			}
			created = append(created, orders...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, order := range created {
		s.notifier.NotifyRole(ctx, model.RoleMeasurement, "New Order",
			fmt.Sprintf("%s (%s) booked for %s", order.BillNumber, order.GarmentType, order.CustomerName),
			order.BillNumber)
	}

	responses := make([]OrderResponse, 0, len(created))
	for i := range created {
		responses = append(responses, toOrderResponse(&created[i]))
	}
	return responses, nil
}

// bookItem splits one booked catalogue item into its physical
// sub-orders. Price, advance and fabric are divided evenly across the
// pieces, with the last piece absorbing the rounding remainder so the
// sums stay exact.
func (s *orderService) bookItem(ctx context.Context, actor Actor, customer *model.Customer, item BookingItem, isNewCustomer bool) ([]model.Order, error) {
	total, err := parseAmount(item.TotalAmount)
	if err != nil {
		return nil, err
	}
	advance := decimal.Zero
	if item.AdvanceAmount != "" {
		advance, err = decimal.NewFromString(item.AdvanceAmount)
		if err != nil || advance.IsNegative() {
			return nil, fmt.Errorf("%w: invalid advance amount", ErrValidation)
		}
	}
	if advance.GreaterThan(total) {
		return nil, fmt.Errorf("%w: advance exceeds total amount", ErrValidation)
	}
	fabric := decimal.Zero
	if item.FabricMeters != "" {
		fabric, err = decimal.NewFromString(item.FabricMeters)
		if err != nil || fabric.IsNegative() {
			return nil, fmt.Errorf("%w: invalid fabric meters", ErrValidation)
		}
	}
	trialDate, err := parseDate(item.TrialDate)
	if err != nil {
		return nil, err
	}
	deliveryDate, err := parseDate(item.DeliveryDate)
	if err != nil {
		return nil, err
	}
	priority := item.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}

	subs := workflow.Split(item.ItemType)
	pieces := quantity * len(subs)

	totalShares := splitEvenly(total, pieces)
	advanceShares := splitAdvance(advance, totalShares)
	fabricShares := splitEvenly(fabric, pieces)

	base, err := s.generateBillNumber(ctx)
	if err != nil {
		return nil, err
	}

	var orders []model.Order
	piece := 0
	for copyIdx := 0; copyIdx < quantity; copyIdx++ {
		for _, sub := range subs {
			bill := fmt.Sprintf("%s-%s-%c", base, sub.Suffix, 'A'+copyIdx%26)
			pieceTotal := totalShares[piece]
			pieceAdvance := advanceShares[piece]
			pending := pieceTotal.Sub(pieceAdvance)
			paymentStatus := model.PaymentPartial
			if pending.IsZero() {
				paymentStatus = model.PaymentPaid
			}

			order := model.Order{
				BillNumber:    bill,
				CustomerID:    customer.ID,
				CustomerName:  customer.Name,
				GarmentType:   sub.Type,
				Status:        model.StatusPending,
				IsNewCustomer: isNewCustomer,
				FabricMeters:  fabricShares[piece],
				Priority:      priority,
				SalesStaffID:  &actor.ID,
				ShowroomName:  actor.Name,
				TotalAmount:   pieceTotal,
				AdvanceAmount: pieceAdvance,
				PendingAmount: pending,
				PaymentStatus: paymentStatus,
				TrialDate:     trialDate,
				DeliveryDate:  deliveryDate,
				HandoverPIN:   generatePIN(),
				Notes:         item.Notes,
				OrderDate:     time.Now(),
			}
			if err := s.orderRepo.Create(ctx, &order); err != nil {
				return nil, fmt.Errorf("failed to create order %s: %w", bill, err)
			}
			if err := s.orderRepo.AppendHistory(ctx, &model.OrderHistoryEntry{
				OrderID:     order.ID,
				Status:      model.StatusPending,
				Description: fmt.Sprintf("Order booked at %s", actor.Name),
				UpdatedBy:   actor.Name,
			}); err != nil {
				return nil, err
			}
			orders = append(orders, order)
			piece++
		}
	}
	return orders, nil
}

// generateBillNumber continues the year's sequence from the highest
// number ever issued, deleted orders included, so a number is never
// handed out twice.
func (s *orderService) generateBillNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("ORD-%d-", time.Now().Year())
	last, err := s.orderRepo.LastBillNumber(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to generate bill number: %w", err)
	}
	seq := 0
	if last != "" {
		digits := strings.TrimPrefix(last, prefix)
		if i := strings.IndexByte(digits, '-'); i >= 0 {
			digits = digits[:i]
		}
		seq, err = strconv.Atoi(digits)
		if err != nil {
			return "", fmt.Errorf("failed to generate bill number: malformed %q", last)
		}
	}
	return fmt.Sprintf("%s%05d", prefix, seq+1), nil
}

// splitEvenly divides amount into n two-decimal shares whose sum is
// exactly amount; the last share absorbs the rounding remainder.
func splitEvenly(amount decimal.Decimal, n int) []decimal.Decimal {
	shares := make([]decimal.Decimal, n)
	if n == 1 {
		shares[0] = amount
		return shares
	}
	share := amount.Div(decimal.NewFromInt(int64(n))).Round(2)
	rest := amount
	for i := 0; i < n-1; i++ {
		shares[i] = share
		rest = rest.Sub(share)
	}
	shares[n-1] = rest
	return shares
}

// splitAdvance divides the advance against the already-rounded total
// shares so no piece carries more advance than its own price. Excess
// from a capped share moves to pieces that still have room; the caller
// guarantees advance <= sum(totalShares), so nothing is left over.
func splitAdvance(advance decimal.Decimal, totalShares []decimal.Decimal) []decimal.Decimal {
	shares := splitEvenly(advance, len(totalShares))
	carry := decimal.Zero
	for i := range shares {
		if shares[i].GreaterThan(totalShares[i]) {
			carry = carry.Add(shares[i].Sub(totalShares[i]))
			shares[i] = totalShares[i]
		}
	}
	for i := range shares {
		if !carry.IsPositive() {
			break
		}
		if room := totalShares[i].Sub(shares[i]); room.IsPositive() {
			take := decimal.Min(room, carry)
			shares[i] = shares[i].Add(take)
			carry = carry.Sub(take)
		}
	}
	return shares
}

func generatePIN() string {
	return fmt.Sprintf("%04d", rand.IntN(10000))
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, raw)
	}
	return &t, nil
}

// --- Queries ---

func (s *orderService) GetOrder(ctx context.Context, billNumber string) (*OrderResponse, error) {
	order, err := s.loadOrder(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderListFilter) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, toOrderResponse(&orders[i]))
	}
	return responses, total, nil
}

func (s *orderService) loadOrder(ctx context.Context, billNumber string) (*model.Order, error) {
	order, err := s.orderRepo.GetByBillNumber(ctx, billNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, billNumber)
		}
		return nil, fmt.Errorf("failed to load order %s: %w", billNumber, err)
	}
	return order, nil
}

// --- State machine ---

func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, billNumber string, req UpdateStatusRequest) (*OrderResponse, error) {
	unlock := s.bills.lock(billNumber)
	defer unlock()

	order, err := s.loadOrder(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	if !workflow.ValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	if order.Status == model.StatusDelivered {
		return nil, fmt.Errorf("%w: order %s is already delivered", ErrInvalidTransition, billNumber)
	}
	if !workflow.Allowed(actor.Role, order.Status) {
		return nil, fmt.Errorf("%w: role %s cannot act on a %s order", ErrUnauthorized, actor.Role, order.Status)
	}
	next, ok := workflow.Next(order.Status, order.GarmentType)
	if !ok || req.Status != next {
		return nil, fmt.Errorf("%w: %s order moves to %s, not %s", ErrInvalidTransition, order.Status, next, req.Status)
	}
	if req.Status == model.StatusDelivered && order.PendingAmount.IsPositive() {
		return nil, fmt.Errorf("%w: %s pending on order %s, use cash handover",
			ErrInvalidTransition, order.PendingAmount.StringFixed(2), billNumber)
	}

	completedStage := order.Status
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Moved to %s", req.Status)
	}

	// The worker's credit commits or rolls back with the status change;
	// only the referral cascade runs after the transaction.
	var cascadePool decimal.Decimal
	var cascadeDesc string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order.Status = req.Status
		order.AssignedWorkerID = &actor.ID
		order.AssignedWorkerName = actor.Name
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		if err := s.orderRepo.AppendHistory(txCtx, &model.OrderHistoryEntry{
			OrderID:     order.ID,
			Status:      req.Status,
			Description: description,
			UpdatedBy:   actor.Name,
		}); err != nil {
			return err
		}
		// Taking up a PENDING order is not completed work; every later
		// transition pays the worker for the stage just finished.
		if completedStage != model.StatusPending {
			pool, desc, err := s.payForStage(txCtx, actor, order, completedStage)
			if err != nil {
				return err
			}
			cascadePool, cascadeDesc = pool, desc
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", billNumber, err)
	}

	if cascadePool.IsPositive() {
		if err := s.wallet.CascadePool(ctx, actor.ID, cascadePool, cascadeDesc); err != nil {
			return nil, fmt.Errorf("payout credited but cascade failed: %w", err)
		}
	}

	if role, ok := departmentFor(order.Status); ok {
		s.notifier.NotifyRole(ctx, role, "Order Ready for Work",
			fmt.Sprintf("%s (%s) is now in %s", order.BillNumber, order.GarmentType, order.Status),
			order.BillNumber)
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

// payForStage posts the piece-rate payout for a finished stage inside
// the ambient transaction and returns the withheld referral pool for
// the caller to cascade after commit. The delivery return bonus is
// credited gross: it is not subject to the referral deduction.
func (s *orderService) payForStage(ctx context.Context, actor Actor, order *model.Order, stage string) (decimal.Decimal, string, error) {
	table, err := s.settings.RateTable(ctx)
	if err != nil {
		return decimal.Zero, "", err
	}
	rate := payout.Rate(actor.Role, order.GarmentType, order.IsNewCustomer, table)
	if !rate.IsPositive() {
		return decimal.Zero, "", nil
	}
	description := fmt.Sprintf("%s work on %s (%s)", stage, order.BillNumber, order.GarmentType)
	if stage == model.StatusReady {
		return decimal.Zero, "", s.wallet.Credit(ctx, actor.ID, rate,
			fmt.Sprintf("Return to showroom bonus for %s", order.BillNumber), order.BillNumber)
	}
	_, pool, err := s.wallet.PayoutNet(ctx, actor.ID, rate, description, order.BillNumber)
	if err != nil {
		return decimal.Zero, "", err
	}
	return pool, description, nil
}

// departmentFor maps a production stage to the role that works it next.
func departmentFor(status string) (string, bool) {
	switch status {
	case model.StatusPending, model.StatusMeasurement:
		return model.RoleMeasurement, true
	case model.StatusCutting:
		return model.RoleCutting, true
	case model.StatusStitching:
		return model.RoleStitching, true
	case model.StatusKajButton:
		return model.RoleKajButton, true
	case model.StatusFinishing:
		return model.RoleFinishing, true
	case model.StatusReady:
		return model.RoleDelivery, true
	default:
		return "", false
	}
}

func (s *orderService) ForceStatus(ctx context.Context, actor Actor, billNumber string, req ForceStatusRequest) (*OrderResponse, error) {
	if actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("%w: only admin may force-set a status", ErrUnauthorized)
	}
	if !workflow.ValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}

	unlock := s.bills.lock(billNumber)
	defer unlock()

	order, err := s.loadOrder(ctx, billNumber)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Status force-set from %s to %s", order.Status, req.Status)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order.Status = req.Status
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		return s.orderRepo.AppendHistory(txCtx, &model.OrderHistoryEntry{
			OrderID:     order.ID,
			Status:      req.Status,
			Description: description,
			UpdatedBy:   actor.Name,
			Forced:      true,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to force status on %s: %w", billNumber, err)
	}

	if role, ok := departmentFor(order.Status); ok {
		s.notifier.NotifyRole(ctx, role, "Order Reassigned",
			fmt.Sprintf("%s was moved to %s by admin", order.BillNumber, order.Status),
			order.BillNumber)
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderService) AddOrderLog(ctx context.Context, actor Actor, billNumber string, req AddOrderLogRequest) error {
	order, err := s.loadOrder(ctx, billNumber)
	if err != nil {
		return err
	}
	return s.orderRepo.AppendHistory(ctx, &model.OrderHistoryEntry{
		OrderID:     order.ID,
		Status:      order.Status,
		Description: req.Description,
		UpdatedBy:   actor.Name,
	})
}

func (s *orderService) UpdatePriority(ctx context.Context, billNumber string, req UpdatePriorityRequest) error {
	unlock := s.bills.lock(billNumber)
	defer unlock()

	order, err := s.loadOrder(ctx, billNumber)
	if err != nil {
		return err
	}
	order.Priority = req.Priority
	return s.orderRepo.Update(ctx, order)
}

func (s *orderService) UpdateNotes(ctx context.Context, billNumber string, req UpdateNotesRequest) error {
	unlock := s.bills.lock(billNumber)
	defer unlock()

	order, err := s.loadOrder(ctx, billNumber)
	if err != nil {
		return err
	}
	order.Notes = req.Notes
	return s.orderRepo.Update(ctx, order)
}

// --- Money ---

func (s *orderService) SettlePayment(ctx context.Context, actor Actor, billNumber string, req SettlePaymentRequest) (*OrderResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	unlock := s.bills.lock(billNumber)
	defer unlock()

	order, err := s.loadOrder(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(order.PendingAmount) {
		return nil, fmt.Errorf("%w: payment %s exceeds pending %s",
			ErrValidation, amount.StringFixed(2), order.PendingAmount.StringFixed(2))
	}

	house, err := s.userRepo.FirstByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, wrapUserLookup(err, "house account")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order.AdvanceAmount = order.AdvanceAmount.Add(amount)
		order.PendingAmount = order.PendingAmount.Sub(amount)
		if order.PendingAmount.IsZero() {
			order.PaymentStatus = model.PaymentPaid
		}
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		if err := s.orderRepo.AppendHistory(txCtx, &model.OrderHistoryEntry{
			OrderID:     order.ID,
			Status:      order.Status,
			Description: fmt.Sprintf("Payment of %s collected by %s", amount.StringFixed(2), actor.Name),
			UpdatedBy:   actor.Name,
		}); err != nil {
			return err
		}
		return s.wallet.Credit(txCtx, house.ID, amount,
			fmt.Sprintf("Payment collected for %s", order.BillNumber), order.BillNumber)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle payment on %s: %w", billNumber, err)
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

// VerifyCashHandover settles the remaining dues of a READY order when
// the delivery worker hands the collected cash to the showroom. The PIN
// is the order's single-use handover PIN, falling back to the sales
// staff's wallet PIN. A mismatch changes nothing.
func (s *orderService) VerifyCashHandover(ctx context.Context, actor Actor, billNumber string, req CashHandoverRequest) (*OrderResponse, error) {
	unlock := s.bills.lock(billNumber)
	defer unlock()

	order, err := s.loadOrder(ctx, billNumber)
	if err != nil {
		return nil, err
	}
	if order.Status != model.StatusReady {
		return nil, fmt.Errorf("%w: order %s is %s, handover needs READY", ErrInvalidTransition, billNumber, order.Status)
	}
	if !order.PendingAmount.IsPositive() {
		return nil, fmt.Errorf("%w: no pending dues on order %s", ErrValidation, billNumber)
	}

	var showroom *model.User
	if order.SalesStaffID != nil {
		showroom, err = s.userRepo.GetByID(ctx, *order.SalesStaffID)
	} else {
		showroom, err = s.userRepo.FirstByRole(ctx, model.RoleShowroom)
	}
	if err != nil {
		return nil, wrapUserLookup(err, "showroom account")
	}

	correctPIN := order.HandoverPIN
	if correctPIN == "" {
		correctPIN = showroom.WalletPIN
	}
	if correctPIN == "" || req.PIN != correctPIN {
		return nil, fmt.Errorf("%w: handover PIN mismatch", ErrUnauthorized)
	}

	house, err := s.userRepo.FirstByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, wrapUserLookup(err, "house account")
	}

	amount := order.PendingAmount
	table, err := s.settings.RateTable(ctx)
	if err != nil {
		return nil, err
	}
	returnBonus := payout.Rate(actor.Role, order.GarmentType, order.IsNewCustomer, table)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.wallet.PostPair(txCtx, showroom.ID, house.ID, amount,
			fmt.Sprintf("Cash handover for %s", order.BillNumber),
			fmt.Sprintf("Cash received for %s", order.BillNumber),
			order.BillNumber); err != nil {
			return err
		}

		order.AdvanceAmount = order.AdvanceAmount.Add(amount)
		order.PendingAmount = decimal.Zero
		order.PaymentStatus = model.PaymentPaid
		order.Status = model.StatusDelivered
		order.HandoverPIN = "" // single use
		order.AssignedWorkerID = &actor.ID
		order.AssignedWorkerName = actor.Name
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		if err := s.orderRepo.AppendHistory(txCtx, &model.OrderHistoryEntry{
			OrderID:     order.ID,
			Status:      model.StatusDelivered,
			Description: fmt.Sprintf("Delivered; %s collected and handed over by %s", amount.StringFixed(2), actor.Name),
			UpdatedBy:   actor.Name,
		}); err != nil {
			return err
		}

		if returnBonus.IsPositive() {
			return s.wallet.Credit(txCtx, actor.ID, returnBonus,
				fmt.Sprintf("Return to showroom bonus for %s", order.BillNumber), order.BillNumber)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete handover on %s: %w", billNumber, err)
	}

	if order.SalesStaffID != nil {
		s.notifier.NotifyUser(ctx, *order.SalesStaffID, "Order Delivered",
			fmt.Sprintf("%s delivered, %s settled", order.BillNumber, amount.StringFixed(2)),
			order.BillNumber)
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderService) RecordMaterialAction(ctx context.Context, actor Actor, req MaterialActionRequest) error {
	if actor.Role != model.RoleMaterial && actor.Role != model.RoleAdmin {
		return fmt.Errorf("%w: role %s cannot record material actions", ErrUnauthorized, actor.Role)
	}
	table, err := s.settings.RateTable(ctx)
	if err != nil {
		return err
	}
	rate := payout.MaterialRate(req.Action, table)
	if !rate.IsPositive() {
		return nil
	}
	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Material incentive (%s)", req.Action)
	}
	_, err = s.wallet.ProcessWorkerPayout(ctx, actor.ID, rate, description, req.RelatedBillNumber)
	return err
}

func (s *orderService) DeleteOrder(ctx context.Context, billNumber string) error {
	if _, err := s.loadOrder(ctx, billNumber); err != nil {
		return err
	}
	return s.orderRepo.Delete(ctx, billNumber)
}

// --- Mapping ---

func toOrderResponse(order *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:                 order.ID.String(),
		BillNumber:         order.BillNumber,
		CustomerID:         order.CustomerID.String(),
		CustomerName:       order.CustomerName,
		GarmentType:        order.GarmentType,
		Status:             order.Status,
		IsNewCustomer:      order.IsNewCustomer,
		FabricMeters:       order.FabricMeters.StringFixed(2),
		Priority:           order.Priority,
		ShowroomName:       order.ShowroomName,
		AssignedWorkerName: order.AssignedWorkerName,
		TotalAmount:        order.TotalAmount.StringFixed(2),
		AdvanceAmount:      order.AdvanceAmount.StringFixed(2),
		PendingAmount:      order.PendingAmount.StringFixed(2),
		PaymentStatus:      order.PaymentStatus,
		Notes:              order.Notes,
		OrderDate:          order.OrderDate.Format("2006-01-02"),
	}
	if order.TrialDate != nil {
		resp.TrialDate = order.TrialDate.Format("2006-01-02")
	}
	if order.DeliveryDate != nil {
		resp.DeliveryDate = order.DeliveryDate.Format("2006-01-02")
	}
	for _, entry := range order.History {
		resp.History = append(resp.History, OrderHistoryResponse{
			Status:      entry.Status,
			Description: entry.Description,
			UpdatedBy:   entry.UpdatedBy,
			Forced:      entry.Forced,
			CreatedAt:   entry.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return resp
}
