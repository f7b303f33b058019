package services

import (
	"context"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelo/internal/models"
)

// memWalletRepo models the wallet collection plus its ledger, including the
// unique index on transaction references.
type memWalletRepo struct {
	mu      sync.Mutex
	wallets map[primitive.ObjectID]*models.Wallet
	ledger  map[string]models.Cents
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{
		wallets: make(map[primitive.ObjectID]*models.Wallet),
		ledger:  make(map[string]models.Cents),
	}
}

func (r *memWalletRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return nil, models.NotFoundError{Resource: "wallet"}
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) EnsureWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		w = &models.Wallet{ID: primitive.NewObjectID(), UserID: userID, Currency: "USD", IsActive: true}
		r.wallets[userID] = w
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) writeLedger(reference string, amount models.Cents) error {
	if _, ok := r.ledger[reference]; ok {
		return models.ConflictError{Resource: "wallet transaction", Msg: "duplicate reference " + reference}
	}
	r.ledger[reference] = amount
	return nil
}

func (r *memWalletRepo) Deposit(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return models.NotFoundError{Resource: "wallet"}
	}
	if err := r.writeLedger(reference, amount); err != nil {
		return err
	}
	w.Balance += amount
	return nil
}

func (r *memWalletRepo) LockFunds(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return models.NotFoundError{Resource: "wallet"}
	}
	if w.Balance < amount {
		return models.InsufficientFundsError{UserID: userID.Hex(), Amount: amount}
	}
	if err := r.writeLedger(reference, amount); err != nil {
		return err
	}
	w.Balance -= amount
	w.Locked += amount
	return nil
}

func (r *memWalletRepo) ReleaseLock(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return models.NotFoundError{Resource: "wallet"}
	}
	if w.Locked < amount {
		return models.InsufficientFundsError{UserID: userID.Hex(), Amount: amount}
	}
	if err := r.writeLedger(reference, amount); err != nil {
		return err
	}
	w.Locked -= amount
	w.Balance += amount
	return nil
}

func (r *memWalletRepo) CaptureLocked(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return models.NotFoundError{Resource: "wallet"}
	}
	if err := r.writeLedger(reference, amount); err != nil {
		return err
	}
	if w.Locked < amount {
		delete(r.ledger, reference)
		return models.InsufficientFundsError{UserID: userID.Hex(), Amount: amount}
	}
	w.Locked -= amount
	return nil
}

func (r *memWalletRepo) GetTransactionByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	amount, ok := r.ledger[reference]
	if !ok {
		return nil, models.NotFoundError{Resource: "wallet transaction"}
	}
	return &models.WalletTransaction{Reference: reference, Amount: amount}, nil
}

type memPayoutRepo struct {
	mu      sync.Mutex
	payouts map[primitive.ObjectID]*models.Payout
}

func newMemPayoutRepo() *memPayoutRepo {
	return &memPayoutRepo{payouts: make(map[primitive.ObjectID]*models.Payout)}
}

func (r *memPayoutRepo) Create(ctx context.Context, payout *models.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payouts {
		if p.RentalID == payout.RentalID {
			return models.ConflictError{Resource: "payout", Msg: "payout already exists for rental"}
		}
	}
	if payout.ID.IsZero() {
		payout.ID = primitive.NewObjectID()
	}
	cp := *payout
	r.payouts[payout.ID] = &cp
	return nil
}

func (r *memPayoutRepo) GetByRentalID(ctx context.Context, rentalID primitive.ObjectID) (*models.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payouts {
		if p.RentalID == rentalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.NotFoundError{Resource: "payout"}
}

func (r *memPayoutRepo) MarkCaptured(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payouts[id]
	if !ok {
		return models.NotFoundError{Resource: "payout"}
	}
	p.Status = models.PayoutStatusCaptured
	return nil
}

func (r *memPayoutRepo) GetEscrowed(ctx context.Context) ([]*models.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payout
	for _, p := range r.payouts {
		if p.Status == models.PayoutStatusEscrowed {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type walletFixture struct {
	wallets *memWalletRepo
	payouts *memPayoutRepo
	svc     WalletService

	renterID primitive.ObjectID
	ownerID  primitive.ObjectID
	rentalID primitive.ObjectID
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()
	f := &walletFixture{
		wallets:  newMemWalletRepo(),
		payouts:  newMemPayoutRepo(),
		renterID: primitive.NewObjectID(),
		ownerID:  primitive.NewObjectID(),
		rentalID: primitive.NewObjectID(),
	}
	f.svc = NewWalletService(f.wallets, f.payouts, newTestLogger(t))
	return f
}

func (f *walletFixture) wallet(t *testing.T, userID primitive.ObjectID) *models.Wallet {
	t.Helper()
	w, err := f.svc.GetWallet(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestDepositAndLock(t *testing.T) {
	f := newWalletFixture(t)
	ctx := context.Background()

	if err := f.svc.Deposit(ctx, f.renterID, 20000, "order_1_deposit", "rental payment"); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := f.svc.LockFunds(ctx, f.renterID, 20000, "RNT-X_escrow"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	w := f.wallet(t, f.renterID)
	if w.Balance != 0 || w.Locked != 20000 {
		t.Fatalf("wallet = (balance %s, locked %s), want (0.00, 200.00)", w.Balance, w.Locked)
	}

	// more than the spendable balance cannot be locked
	err := f.svc.LockFunds(ctx, f.renterID, 1, "RNT-X_more")
	if !models.IsInsufficientFunds(err) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}

	// a replayed deposit bounces off the ledger
	err = f.svc.Deposit(ctx, f.renterID, 20000, "order_1_deposit", "rental payment")
	if !models.IsDuplicateReference(err) {
		t.Fatalf("expected duplicate reference conflict, got %v", err)
	}
	if w := f.wallet(t, f.renterID); w.Balance != 0 {
		t.Fatalf("balance after replay = %s, want 0.00", w.Balance)
	}

	if err := f.svc.Deposit(ctx, f.renterID, -5, "neg", ""); err == nil {
		t.Error("negative deposit should be rejected")
	}
}

func TestCaptureMovesEscrowToOwner(t *testing.T) {
	f := newWalletFixture(t)
	ctx := context.Background()

	if err := f.svc.Deposit(ctx, f.renterID, 20000, "order_1_deposit", ""); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.LockFunds(ctx, f.renterID, 20000, "RNT-X_escrow"); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Capture(ctx, f.renterID, f.ownerID, f.rentalID, 20000, "RNT-X"); err != nil {
		t.Fatalf("capture: %v", err)
	}

	renter := f.wallet(t, f.renterID)
	if renter.Balance != 0 || renter.Locked != 0 {
		t.Errorf("renter wallet = (%s, %s), want empty", renter.Balance, renter.Locked)
	}
	owner := f.wallet(t, f.ownerID)
	if owner.Balance != 20000 {
		t.Errorf("owner balance = %s, want 200.00", owner.Balance)
	}

	payout, err := f.payouts.GetByRentalID(ctx, f.rentalID)
	if err != nil {
		t.Fatal(err)
	}
	if payout.Status != models.PayoutStatusCaptured {
		t.Errorf("payout status = %s, want captured", payout.Status)
	}

	// replaying the capture changes nothing
	if err := f.svc.Capture(ctx, f.renterID, f.ownerID, f.rentalID, 20000, "RNT-X"); err != nil {
		t.Fatalf("capture replay: %v", err)
	}
	if owner := f.wallet(t, f.ownerID); owner.Balance != 20000 {
		t.Errorf("owner balance after replay = %s, want 200.00", owner.Balance)
	}
}

// escrowedPayout models a crash during Capture: the renter's funds are
// deposited and locked, the ESCROWED payout record exists, but the settle
// may have stopped at any point after that.
func (f *walletFixture) escrowedPayout(t *testing.T, amount models.Cents, reference string) *models.Payout {
	t.Helper()
	ctx := context.Background()
	if err := f.svc.Deposit(ctx, f.renterID, amount, reference+"_deposit", ""); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.LockFunds(ctx, f.renterID, amount, reference+"_escrow"); err != nil {
		t.Fatal(err)
	}
	payout := &models.Payout{
		RentalID:  f.rentalID,
		PayerID:   f.renterID,
		OwnerID:   f.ownerID,
		Amount:    amount,
		Status:    models.PayoutStatusEscrowed,
		Reference: reference,
	}
	if err := f.payouts.Create(ctx, payout); err != nil {
		t.Fatal(err)
	}
	return payout
}

// A crash right after payout creation leaves the renter's funds locked and
// neither ledger leg written. The startup sweep must burn the locked funds
// before crediting the owner, or the payout amount is minted.
func TestRecoverEscrowedPayouts(t *testing.T) {
	f := newWalletFixture(t)
	ctx := context.Background()

	f.escrowedPayout(t, 15000, "RNT-CRASH")

	if err := f.svc.RecoverEscrowedPayouts(ctx); err != nil {
		t.Fatalf("recover: %v", err)
	}

	renter := f.wallet(t, f.renterID)
	if renter.Balance != 0 || renter.Locked != 0 {
		t.Errorf("renter wallet = (%s, %s), want empty", renter.Balance, renter.Locked)
	}
	owner := f.wallet(t, f.ownerID)
	if owner.Balance != 15000 {
		t.Errorf("owner balance = %s, want 150.00", owner.Balance)
	}
	// 150.00 went in, so 150.00 is all the wallets may hold afterwards
	if total := renter.Balance + renter.Locked + owner.Balance + owner.Locked; total != 15000 {
		t.Errorf("wallet total = %d cents, want 15000", total)
	}
	got, err := f.payouts.GetByRentalID(ctx, f.rentalID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.PayoutStatusCaptured {
		t.Errorf("payout status = %s, want captured", got.Status)
	}

	// running the sweep again finds nothing to do
	if err := f.svc.RecoverEscrowedPayouts(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if owner := f.wallet(t, f.ownerID); owner.Balance != 15000 {
		t.Errorf("owner balance after second sweep = %s, want 150.00", owner.Balance)
	}
}

// A crash between the capture leg and the deposit leg: the "_capture" entry
// is already in the ledger, so the sweep's replay bounces off it and only the
// deposit leg lands.
func TestRecoverEscrowedPayoutsAfterCaptureLeg(t *testing.T) {
	f := newWalletFixture(t)
	ctx := context.Background()

	f.escrowedPayout(t, 15000, "RNT-CRASH")
	if err := f.wallets.CaptureLocked(ctx, f.renterID, 15000, "RNT-CRASH_capture"); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.RecoverEscrowedPayouts(ctx); err != nil {
		t.Fatalf("recover: %v", err)
	}

	renter := f.wallet(t, f.renterID)
	if renter.Balance != 0 || renter.Locked != 0 {
		t.Errorf("renter wallet = (%s, %s), want empty", renter.Balance, renter.Locked)
	}
	if owner := f.wallet(t, f.ownerID); owner.Balance != 15000 {
		t.Errorf("owner balance = %s, want 150.00", owner.Balance)
	}
	got, err := f.payouts.GetByRentalID(ctx, f.rentalID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.PayoutStatusCaptured {
		t.Errorf("payout status = %s, want captured", got.Status)
	}
}

func TestGetTransactionByReference(t *testing.T) {
	f := newWalletFixture(t)
	ctx := context.Background()

	if err := f.svc.Deposit(ctx, f.renterID, 20000, "order_9_deposit", "rental payment"); err != nil {
		t.Fatal(err)
	}

	txn, err := f.svc.GetTransaction(ctx, "order_9_deposit")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if txn.Reference != "order_9_deposit" || txn.Amount != 20000 {
		t.Errorf("transaction = %+v, want reference order_9_deposit with 200.00", txn)
	}

	if _, err := f.svc.GetTransaction(ctx, "no_such_reference"); !models.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestReleaseLockRefundsRenter(t *testing.T) {
	f := newWalletFixture(t)
	ctx := context.Background()

	if err := f.svc.Deposit(ctx, f.renterID, 20000, "order_1_deposit", ""); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.LockFunds(ctx, f.renterID, 20000, "RNT-X_escrow"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.ReleaseLock(ctx, f.renterID, 20000, "RNT-X_refund"); err != nil {
		t.Fatalf("release: %v", err)
	}

	w := f.wallet(t, f.renterID)
	if w.Balance != 20000 || w.Locked != 0 {
		t.Fatalf("wallet = (%s, %s), want (200.00, 0.00)", w.Balance, w.Locked)
	}
}
