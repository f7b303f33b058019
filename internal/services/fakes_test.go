package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelo/internal/models"
	"travelo/internal/utils"
	"travelo/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// memBookingRepo keeps bookings in a map and honors the CAS contract the
// reconciliation engine depends on.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (r *memBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *memBookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.NotFoundError{Resource: "booking"}
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) GetByCode(ctx context.Context, code string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Code == code {
			cp := *b
			return &cp, nil
		}
	}
	return nil, models.NotFoundError{Resource: "booking"}
}

func (r *memBookingRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return models.NotFoundError{Resource: "booking"}
	}
	if reason, ok := updates["cancellation_reason"].(string); ok {
		b.CancellationReason = reason
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (r *memBookingRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return models.NotFoundError{Resource: "booking"}
	}
	delete(r.bookings, id)
	return nil
}

func (r *memBookingRepo) CompareAndSwapStatus(ctx context.Context, id primitive.ObjectID, expected, next models.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return models.NotFoundError{Resource: "booking"}
	}
	if b.Status != expected {
		return models.StaleStatusError{ID: id.Hex(), Expected: string(expected)}
	}
	b.Status = next
	b.UpdatedAt = time.Now()
	return nil
}

func (r *memBookingRepo) SetPointsRefunded(ctx context.Context, id primitive.ObjectID, refunded bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return models.NotFoundError{Resource: "booking"}
	}
	b.TravelPointsRefunded = refunded
	return nil
}

func (r *memBookingRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memBookingRepo) GetByPartnerID(ctx context.Context, partnerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return nil, 0, nil
}

func (r *memBookingRepo) GetByStatus(ctx context.Context, bookingType models.BookingType, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return nil, 0, nil
}

type memPartnerRepo struct {
	mu       sync.Mutex
	partners map[primitive.ObjectID]*models.Partner
}

func newMemPartnerRepo() *memPartnerRepo {
	return &memPartnerRepo{partners: make(map[primitive.ObjectID]*models.Partner)}
}

func (r *memPartnerRepo) Create(ctx context.Context, partner *models.Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if partner.ID.IsZero() {
		partner.ID = primitive.NewObjectID()
	}
	cp := *partner
	r.partners[partner.ID] = &cp
	return nil
}

func (r *memPartnerRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Partner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[id]
	if !ok {
		return nil, models.NotFoundError{Resource: "partner"}
	}
	cp := *p
	return &cp, nil
}

func (r *memPartnerRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *memPartnerRepo) AdjustMetrics(ctx context.Context, id primitive.ObjectID, countDelta int64, revenueDelta models.Cents) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.partners[id]
	if !ok {
		return models.NotFoundError{Resource: "partner"}
	}
	p.BookingTimes += countDelta
	p.Revenue += revenueDelta
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.NotFoundError{Resource: "user"}
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.NotFoundError{Resource: "user"}
}

func (r *memUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *memUserRepo) AdjustPoints(ctx context.Context, id primitive.ObjectID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.NotFoundError{Resource: "user"}
	}
	if delta < 0 && u.TravelPoints+delta < 0 {
		return models.InsufficientPointsError{UserID: id.Hex(), Requested: -delta}
	}
	u.TravelPoints += delta
	return nil
}

type memVoucherRepo struct {
	mu       sync.Mutex
	vouchers map[primitive.ObjectID]*models.Voucher
}

func newMemVoucherRepo() *memVoucherRepo {
	return &memVoucherRepo{vouchers: make(map[primitive.ObjectID]*models.Voucher)}
}

func (r *memVoucherRepo) Create(ctx context.Context, voucher *models.Voucher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if voucher.ID.IsZero() {
		voucher.ID = primitive.NewObjectID()
	}
	cp := *voucher
	r.vouchers[voucher.ID] = &cp
	return nil
}

func (r *memVoucherRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouchers[id]
	if !ok {
		return nil, models.NotFoundError{Resource: "voucher"}
	}
	cp := *v
	return &cp, nil
}

func (r *memVoucherRepo) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vouchers {
		if v.Code == code {
			cp := *v
			return &cp, nil
		}
	}
	return nil, models.NotFoundError{Resource: "voucher"}
}

func (r *memVoucherRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *memVoucherRepo) Redeem(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouchers[id]
	if !ok {
		return models.NotFoundError{Resource: "voucher"}
	}
	v.UsedCount++
	if v.MaxUsage > 0 && v.UsedCount >= v.MaxUsage {
		v.Active = false
	}
	return nil
}

func (r *memVoucherRepo) Unredeem(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouchers[id]
	if !ok {
		return models.NotFoundError{Resource: "voucher"}
	}
	if v.UsedCount > 0 {
		v.UsedCount--
	}
	if v.MaxUsage == 0 || v.UsedCount < v.MaxUsage {
		v.Active = true
	}
	return nil
}

// memCache implements just enough of CacheService for the reconcile lock.
type memCache struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newMemCache() *memCache {
	return &memCache{keys: make(map[string]struct{})}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	return models.NotFoundError{Resource: "cache key"}
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = struct{}{}
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.keys, k)
	}
	return nil
}

func (c *memCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.keys[key]
	return ok, nil
}

func (c *memCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[key]; ok {
		return false, nil
	}
	c.keys[key] = struct{}{}
	return true, nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }

type memRentalRepo struct {
	mu      sync.Mutex
	rentals map[primitive.ObjectID]*models.Rental
}

func newMemRentalRepo() *memRentalRepo {
	return &memRentalRepo{rentals: make(map[primitive.ObjectID]*models.Rental)}
}

func (r *memRentalRepo) Create(ctx context.Context, rental *models.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rental.ID.IsZero() {
		rental.ID = primitive.NewObjectID()
	}
	rental.CreatedAt = time.Now()
	rental.UpdatedAt = rental.CreatedAt
	cp := *rental
	r.rentals[rental.ID] = &cp
	return nil
}

func (r *memRentalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental, ok := r.rentals[id]
	if !ok {
		return nil, models.NotFoundError{Resource: "rental"}
	}
	cp := *rental
	return &cp, nil
}

func (r *memRentalRepo) GetByCode(ctx context.Context, code string) (*models.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rental := range r.rentals {
		if rental.Code == code {
			cp := *rental
			return &cp, nil
		}
	}
	return nil, models.NotFoundError{Resource: "rental"}
}

func (r *memRentalRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental, ok := r.rentals[id]
	if !ok {
		return models.NotFoundError{Resource: "rental"}
	}
	r.applyUpdates(rental, updates)
	rental.UpdatedAt = time.Now()
	return nil
}

func (r *memRentalRepo) CompareAndSwapStatus(ctx context.Context, id primitive.ObjectID, expected, next models.RentalStatus, set map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental, ok := r.rentals[id]
	if !ok {
		return models.NotFoundError{Resource: "rental"}
	}
	if rental.Status != expected {
		return models.StaleStatusError{ID: id.Hex(), Expected: string(expected)}
	}
	rental.Status = next
	r.applyUpdates(rental, set)
	rental.UpdatedAt = time.Now()
	return nil
}

func (r *memRentalRepo) applyUpdates(rental *models.Rental, updates map[string]interface{}) {
	for k, v := range updates {
		switch k {
		case "payment_method":
			rental.PaymentMethod = v.(models.PaymentMethod)
		case "payment_id":
			id := v.(primitive.ObjectID)
			rental.PaymentID = &id
		case "escrow_reference":
			rental.EscrowReference = v.(string)
		case "delivery_proof":
			rental.DeliveryProof = v.(*models.HandoffProof)
		case "pickup_proof":
			rental.PickupProof = v.(*models.HandoffProof)
		case "return_request":
			rental.ReturnRequest = v.(*models.HandoffProof)
		case "return_confirmation":
			rental.ReturnConfirmation = v.(*models.HandoffProof)
		case "overtime_fee":
			rental.OvertimeFee = v.(models.Cents)
		case "overtime_fee_accepted":
			rental.OvertimeFeeAccepted = v.(bool)
		case "cancellation_reason":
			rental.CancellationReason = v.(string)
		case "cancelled_at":
			t := v.(time.Time)
			rental.CancelledAt = &t
		case "completed_at":
			t := v.(time.Time)
			rental.CompletedAt = &t
		}
	}
}

func (r *memRentalRepo) GetByRenterID(ctx context.Context, renterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return nil, 0, nil
}

func (r *memRentalRepo) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return nil, 0, nil
}

type memVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (r *memVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleStatusAvailable
	}
	cp := *vehicle
	r.vehicles[vehicle.ID] = &cp
	return nil
}

func (r *memVehicleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, models.NotFoundError{Resource: "vehicle"}
	}
	cp := *v
	return &cp, nil
}

func (r *memVehicleRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *memVehicleRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status models.VehicleStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return models.NotFoundError{Resource: "vehicle"}
	}
	v.Status = status
	return nil
}

func (r *memVehicleRepo) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error) {
	return nil, 0, nil
}

// walletCall records one WalletService invocation for assertion.
type walletCall struct {
	op        string
	userID    primitive.ObjectID
	amount    models.Cents
	reference string
}

type fakeWallet struct {
	mu    sync.Mutex
	calls []walletCall
	refs  map[string]struct{}
	err   error
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{refs: make(map[string]struct{})}
}

func (w *fakeWallet) record(op string, userID primitive.ObjectID, amount models.Cents, reference string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if _, ok := w.refs[reference]; ok {
		return models.ConflictError{Resource: "wallet transaction", Msg: "duplicate reference " + reference}
	}
	w.refs[reference] = struct{}{}
	w.calls = append(w.calls, walletCall{op: op, userID: userID, amount: amount, reference: reference})
	return nil
}

func (w *fakeWallet) callsFor(op string) []walletCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []walletCall
	for _, c := range w.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (w *fakeWallet) GetWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID}, nil
}

func (w *fakeWallet) Deposit(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference, description string) error {
	return w.record("deposit", userID, amount, reference)
}

func (w *fakeWallet) LockFunds(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	return w.record("lock", userID, amount, reference)
}

func (w *fakeWallet) ReleaseLock(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	return w.record("release", userID, amount, reference)
}

func (w *fakeWallet) Capture(ctx context.Context, payerID, payeeID, rentalID primitive.ObjectID, amount models.Cents, reference string) error {
	return w.record("capture", payerID, amount, reference)
}

func (w *fakeWallet) RecoverEscrowedPayouts(ctx context.Context) error { return nil }

func (w *fakeWallet) GetTransaction(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.refs[reference]; !ok {
		return nil, models.NotFoundError{Resource: "wallet transaction"}
	}
	return &models.WalletTransaction{Reference: reference}, nil
}
