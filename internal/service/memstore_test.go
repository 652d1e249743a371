package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/creator-ledger/internal/domain"
	"github.com/GlebRadaev/creator-ledger/internal/pg"
)

var errReadOnlyTx = errors.New("cannot write in a read-only transaction")

type memTables struct {
	balances  map[uuid.UUID]domain.CreatorBalance
	purchases map[string]domain.Purchase
	requests  map[uuid.UUID]domain.PayoutRequest
	payouts   map[uuid.UUID]domain.Payout
	audit     map[int64]domain.AuditEntry
}

func balancesOf(t *memTables) map[uuid.UUID]domain.CreatorBalance { return t.balances }
func purchasesOf(t *memTables) map[string]domain.Purchase { return t.purchases }
func requestsOf(t *memTables) map[uuid.UUID]domain.PayoutRequest { return t.requests }
func payoutsOf(t *memTables) map[uuid.UUID]domain.Payout { return t.payouts }
func auditOf(t *memTables) map[int64]domain.AuditEntry { return t.audit }

func balanceKey(id uuid.UUID) string { return "balance/" + id.String() }
func purchaseKey(id string) string { return "purchase/" + id }
func requestKey(id uuid.UUID) string { return "request/" + id.String() }
func payoutKey(id uuid.UUID) string { return "payout/" + id.String() }
func liveKey(requestID uuid.UUID) string { return "live-payout/" + requestID.String() }
func auditKey(id int64) string { return "audit/" + strconv.FormatInt(id, 10) }

// memStore keeps the ledger tables in memory and models the row level behavior the
// SQL repositories rely on. A write locks its row until the writing transaction ends,
// so concurrent conditional updates queue and re-check their guard against the
// committed row. Reads never block: they see committed rows plus the reader's own
// writes, or a fixed snapshot in a REPEATABLE READ transaction. Every conditional
// update checks the same guard as its SQL counterpart and returns nil when it fails.
type memStore struct {
	mu     sync.Mutex
	cond   *sync.Cond
	live   memTables
	owners map[string]*memTxState
	auditN int64

	// beforePayoutList, when set, runs at the start of every ListPayouts call.
	beforePayoutList func()
}

func newMemStore() *memStore {
	s := &memStore{
		live: memTables{
			balances:  map[uuid.UUID]domain.CreatorBalance{},
			purchases: map[string]domain.Purchase{},
			requests:  map[uuid.UUID]domain.PayoutRequest{},
			payouts:   map[uuid.UUID]domain.Payout{},
			audit:     map[int64]domain.AuditEntry{},
		},
		owners: map[string]*memTxState{},
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// memTxState is one open transaction: the rows it locked, the committed image of
// every row it wrote and, for REPEATABLE READ, the snapshot it reads from.
type memTxState struct {
	readOnly bool
	held     map[string]struct{}
	before   map[string]rowImage
	snap     *memTables
}

type rowImage struct {
	value   any
	present bool
	restore func()
}

type memTxKey struct{}

func txState(ctx context.Context) *memTxState {
	tx, _ := ctx.Value(memTxKey{}).(*memTxState)
	return tx
}

// memTx runs transactions against a memStore and undoes their writes when fn fails.
type memTx struct {
	store *memStore
}

func (m *memTx) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	return m.BeginTx(ctx, pgx.TxOptions{}, fn)
}

func (m *memTx) BeginTx(ctx context.Context, opts pgx.TxOptions, fn pg.TransactionalFn) (err error) {
	if txState(ctx) != nil {
		return fn(ctx)
	}
	tx := &memTxState{
		readOnly: opts.AccessMode == pgx.ReadOnly,
		held:     map[string]struct{}{},
		before:   map[string]rowImage{},
	}
	if opts.IsoLevel == pgx.RepeatableRead || opts.IsoLevel == pgx.Serializable {
		tx.snap = m.store.snapshot()
	}

	defer func() {
		if p := recover(); p != nil {
			m.store.finish(tx, true)
			panic(p)
		}
		m.store.finish(tx, err != nil)
	}()
	return fn(context.WithValue(ctx, memTxKey{}, tx))
}

var _ pg.TXManager = (*memTx)(nil)

func (s *memStore) finish(tx *memTxState, rollback bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rollback {
		for _, img := range tx.before {
			img.restore()
		}
	}
	for key := range tx.held {
		delete(s.owners, key)
	}
	s.cond.Broadcast()
}

// writeLock takes s.mu and waits until no other transaction holds key. Inside a
// transaction the lock is kept until it ends. The caller unlocks s.mu.
func (s *memStore) writeLock(ctx context.Context, key string) (*memTxState, error) {
	tx := txState(ctx)
	s.mu.Lock()
	if tx != nil && tx.readOnly {
		s.mu.Unlock()
		return nil, errReadOnlyTx
	}
	for {
		owner, ok := s.owners[key]
		if !ok || owner == tx {
			break
		}
		s.cond.Wait()
	}
	if tx != nil {
		s.owners[key] = tx
		tx.held[key] = struct{}{}
	}
	return tx, nil
}

// written saves the committed image of table[id] the first time tx changes it.
// Callers hold s.mu and the row lock.
func written[K comparable, V any](tx *memTxState, key string, table map[K]V, id K) {
	if tx == nil {
		return
	}
	if _, ok := tx.before[key]; ok {
		return
	}
	prev, present := table[id]
	tx.before[key] = rowImage{value: prev, present: present, restore: func() {
		if present {
			table[id] = prev
		} else {
			delete(table, id)
		}
	}}
}

// committed returns the last committed version of a row. Callers hold s.mu.
func committed[K comparable, V any](s *memStore, pick func(*memTables) map[K]V, key string, id K) (V, bool) {
	if owner, ok := s.owners[key]; ok {
		if img, ok := owner.before[key]; ok {
			if !img.present {
				var zero V
				return zero, false
			}
			return img.value.(V), true
		}
	}
	v, ok := pick(&s.live)[id]
	return v, ok
}

// visible returns a row as tx sees it. Callers hold s.mu.
func visible[K comparable, V any](s *memStore, tx *memTxState, pick func(*memTables) map[K]V, key string, id K) (V, bool) {
	if tx != nil {
		if _, own := tx.before[key]; own {
			v, ok := pick(&s.live)[id]
			return v, ok
		}
		if tx.snap != nil {
			v, ok := pick(tx.snap)[id]
			return v, ok
		}
	}
	return committed(s, pick, key, id)
}

// rows lists every row of a table visible to tx. Callers hold s.mu.
func rows[K comparable, V any](s *memStore, tx *memTxState, pick func(*memTables) map[K]V, keyOf func(K) string) []V {
	ids := make(map[K]struct{}, len(pick(&s.live)))
	for id := range pick(&s.live) {
		ids[id] = struct{}{}
	}
	if tx != nil && tx.snap != nil {
		for id := range pick(tx.snap) {
			ids[id] = struct{}{}
		}
	}
	out := make([]V, 0, len(ids))
	for id := range ids {
		if v, ok := visible(s, tx, pick, keyOf(id), id); ok {
			out = append(out, v)
		}
	}
	return out
}

func snapshotOf[K comparable, V any](s *memStore, pick func(*memTables) map[K]V, keyOf func(K) string) map[K]V {
	out := make(map[K]V, len(pick(&s.live)))
	for id := range pick(&s.live) {
		if v, ok := committed(s, pick, keyOf(id), id); ok {
			out[id] = v
		}
	}
	return out
}

func (s *memStore) snapshot() *memTables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memTables{
		balances:  snapshotOf(s, balancesOf, balanceKey),
		purchases: snapshotOf(s, purchasesOf, purchaseKey),
		requests:  snapshotOf(s, requestsOf, requestKey),
		payouts:   snapshotOf(s, payoutsOf, payoutKey),
		audit:     snapshotOf(s, auditOf, auditKey),
	}
}

// expireHolds moves every hold end into the past, as if the hold period elapsed.
func (s *memStore) expireHolds() {
	s.mu.Lock()
	defer s.mu.Unlock()
	past := time.Now().Add(-time.Second)
	for id, p := range s.live.purchases {
		if p.EarningsPendingUntil != nil {
			p.EarningsPendingUntil = &past
			s.live.purchases[id] = p
		}
	}
}

// balances

func (s *memStore) GetBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := visible(s, txState(ctx), balancesOf, balanceKey(creatorID), creatorID)
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *memStore) CreateBalance(ctx context.Context, creatorID uuid.UUID) (*domain.CreatorBalance, error) {
	key := balanceKey(creatorID)
	tx, err := s.writeLock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	b, ok := s.live.balances[creatorID]
	if !ok {
		now := time.Now()
		b = domain.CreatorBalance{
			CreatorID:    creatorID,
			PayoutStatus: domain.CreatorActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		written(tx, key, s.live.balances, creatorID)
		s.live.balances[creatorID] = b
	}
	return &b, nil
}

func (s *memStore) ListBalances(ctx context.Context) ([]domain.CreatorBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rows(s, txState(ctx), balancesOf, balanceKey), nil
}

func (s *memStore) updateBalance(ctx context.Context, creatorID uuid.UUID, guard func(domain.CreatorBalance) bool,
	apply func(*domain.CreatorBalance)) (*domain.CreatorBalance, error) {
	key := balanceKey(creatorID)
	tx, err := s.writeLock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	b, ok := s.live.balances[creatorID]
	if !ok || !guard(b) {
		return nil, nil
	}
	written(tx, key, s.live.balances, creatorID)
	apply(&b)
	b.UpdatedAt = time.Now()
	s.live.balances[creatorID] = b
	return &b, nil
}

func always(domain.CreatorBalance) bool { return true }

func (s *memStore) CreditPending(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error) {
	return s.updateBalance(ctx, creatorID, always, func(b *domain.CreatorBalance) {
		b.PendingBalance = b.PendingBalance.Add(amount)
		b.LifetimeEarnings = b.LifetimeEarnings.Add(amount)
	})
}

func (s *memStore) ReleasePending(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error) {
	return s.updateBalance(ctx, creatorID,
		func(b domain.CreatorBalance) bool { return b.PendingBalance.GreaterThanOrEqual(amount) },
		func(b *domain.CreatorBalance) {
			b.PendingBalance = b.PendingBalance.Sub(amount)
			b.AvailableBalance = b.AvailableBalance.Add(amount)
		})
}

func (s *memStore) ReserveAvailable(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error) {
	return s.updateBalance(ctx, creatorID,
		func(b domain.CreatorBalance) bool { return b.AvailableBalance.GreaterThanOrEqual(amount) },
		func(b *domain.CreatorBalance) { b.AvailableBalance = b.AvailableBalance.Sub(amount) })
}

func (s *memStore) RestoreAvailable(ctx context.Context, creatorID uuid.UUID, amount decimal.Decimal) (*domain.CreatorBalance, error) {
	return s.updateBalance(ctx, creatorID, always,
		func(b *domain.CreatorBalance) { b.AvailableBalance = b.AvailableBalance.Add(amount) })
}

func (s *memStore) SetPayoutStatus(ctx context.Context, creatorID uuid.UUID, status domain.CreatorPayoutStatus) (*domain.CreatorBalance, error) {
	return s.updateBalance(ctx, creatorID, always, func(b *domain.CreatorBalance) { b.PayoutStatus = status })
}

func (s *memStore) ReplaceBalance(ctx context.Context, expected, next domain.CreatorBalance) (*domain.CreatorBalance, error) {
	return s.updateBalance(ctx, expected.CreatorID,
		func(b domain.CreatorBalance) bool {
			return b.LifetimeEarnings.Equal(expected.LifetimeEarnings) &&
				b.PendingBalance.Equal(expected.PendingBalance) &&
				b.AvailableBalance.Equal(expected.AvailableBalance)
		},
		func(b *domain.CreatorBalance) {
			b.LifetimeEarnings = next.LifetimeEarnings
			b.PendingBalance = next.PendingBalance
			b.AvailableBalance = next.AvailableBalance
		})
}

// purchases

func (s *memStore) InsertPurchase(ctx context.Context, p *domain.Purchase) error {
	key := purchaseKey(p.ID)
	tx, err := s.writeLock(ctx, key)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	if _, ok := visible(s, tx, balancesOf, balanceKey(p.CreatorID), p.CreatorID); !ok {
		return domain.ErrUnknownCreator
	}
	if _, ok := s.live.purchases[p.ID]; ok {
		return nil
	}
	stored := *p
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	written(tx, key, s.live.purchases, p.ID)
	s.live.purchases[p.ID] = stored
	return nil
}

func (s *memStore) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := visible(s, txState(ctx), purchasesOf, purchaseKey(id), id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memStore) updatePurchase(ctx context.Context, id string, guard func(domain.Purchase) bool,
	apply func(*domain.Purchase)) (*domain.Purchase, error) {
	key := purchaseKey(id)
	tx, err := s.writeLock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	p, ok := s.live.purchases[id]
	if !ok || !guard(p) {
		return nil, nil
	}
	written(tx, key, s.live.purchases, id)
	apply(&p)
	p.UpdatedAt = time.Now()
	s.live.purchases[id] = p
	return &p, nil
}

func (s *memStore) MarkAccrued(ctx context.Context, id string, amount decimal.Decimal, pendingUntil time.Time) (*domain.Purchase, error) {
	return s.updatePurchase(ctx, id,
		func(p domain.Purchase) bool { return !p.Accrued() && p.Status == domain.PurchaseCompleted },
		func(p *domain.Purchase) {
			p.EarningsAccruedAmount = decimal.NewNullDecimal(amount)
			p.EarningsPendingUntil = &pendingUntil
			p.EarningsReleased = false
		})
}

func (s *memStore) MarkReleased(ctx context.Context, id string) (*domain.Purchase, error) {
	return s.updatePurchase(ctx, id,
		func(p domain.Purchase) bool {
			return !p.EarningsReleased && p.Accrued() && p.Status == domain.PurchaseCompleted
		},
		func(p *domain.Purchase) { p.EarningsReleased = true })
}

func (s *memStore) FindMatured(ctx context.Context, now time.Time, after domain.ReleaseCursor, limit int) ([]domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Purchase
	for _, p := range rows(s, txState(ctx), purchasesOf, purchaseKey) {
		if p.Status != domain.PurchaseCompleted || p.EarningsReleased || !p.Accrued() || p.EarningsPendingUntil.After(now) {
			continue
		}
		until := *p.EarningsPendingUntil
		if until.Before(after.PendingUntil) || (until.Equal(after.PendingUntil) && p.ID <= after.ID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarningsPendingUntil.Equal(*out[j].EarningsPendingUntil) {
			return out[i].EarningsPendingUntil.Before(*out[j].EarningsPendingUntil)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) AccrualTotals(ctx context.Context) ([]domain.AccrualTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byCreator := map[uuid.UUID]*domain.AccrualTotals{}
	for _, p := range rows(s, txState(ctx), purchasesOf, purchaseKey) {
		if !p.Accrued() {
			continue
		}
		t, ok := byCreator[p.CreatorID]
		if !ok {
			t = &domain.AccrualTotals{CreatorID: p.CreatorID}
			byCreator[p.CreatorID] = t
		}
		addAccrual(t, p)
	}
	out := make([]domain.AccrualTotals, 0, len(byCreator))
	for _, t := range byCreator {
		out = append(out, *t)
	}
	return out, nil
}

func (s *memStore) CreatorAccrualTotals(ctx context.Context, creatorID uuid.UUID) (*domain.AccrualTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &domain.AccrualTotals{CreatorID: creatorID}
	for _, p := range rows(s, txState(ctx), purchasesOf, purchaseKey) {
		if p.CreatorID == creatorID && p.Accrued() {
			addAccrual(t, p)
		}
	}
	return t, nil
}

func addAccrual(t *domain.AccrualTotals, p domain.Purchase) {
	t.Accrued = t.Accrued.Add(p.EarningsAccruedAmount.Decimal)
	if !p.EarningsReleased {
		t.Unreleased = t.Unreleased.Add(p.EarningsAccruedAmount.Decimal)
	}
}

// payout requests

func (s *memStore) CreateRequest(ctx context.Context, req *domain.PayoutRequest) (*domain.PayoutRequest, error) {
	key := requestKey(req.ID)
	tx, err := s.writeLock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	stored := *req
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	written(tx, key, s.live.requests, req.ID)
	s.live.requests[req.ID] = stored
	return &stored, nil
}

func (s *memStore) GetRequest(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := visible(s, txState(ctx), requestsOf, requestKey(id), id)
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// LockRequest is SELECT ... FOR UPDATE: it waits for other writers of the row and
// holds the row until the transaction ends.
func (s *memStore) LockRequest(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	if _, err := s.writeLock(ctx, requestKey(id)); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	r, ok := s.live.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *memStore) ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PayoutRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PayoutRequest
	for _, r := range rows(s, txState(ctx), requestsOf, requestKey) {
		if filter.CreatorID != nil && r.CreatorID != *filter.CreatorID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func containsStatus[S comparable](statuses []S, status S) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s *memStore) updateRequest(ctx context.Context, id uuid.UUID, guard func(domain.PayoutRequest) bool,
	apply func(*domain.PayoutRequest)) (*domain.PayoutRequest, error) {
	key := requestKey(id)
	tx, err := s.writeLock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	r, ok := s.live.requests[id]
	if !ok || !guard(r) {
		return nil, nil
	}
	written(tx, key, s.live.requests, id)
	apply(&r)
	r.UpdatedAt = time.Now()
	s.live.requests[id] = r
	return &r, nil
}

func (s *memStore) TransitionRequest(ctx context.Context, id uuid.UUID, t domain.RequestTransition) (*domain.PayoutRequest, error) {
	return s.updateRequest(ctx, id,
		func(r domain.PayoutRequest) bool { return containsStatus(t.From, r.Status) && r.PayoutID == nil },
		func(r *domain.PayoutRequest) {
			r.Status = t.To
			if t.Reason != "" {
				r.Reason = t.Reason
			}
			r.EscrowHeld = r.EscrowHeld && !t.ReleaseEscrow
		})
}

func (s *memStore) AttachPayout(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error) {
	return s.updateRequest(ctx, id,
		func(r domain.PayoutRequest) bool { return r.Status == domain.RequestApproved && r.PayoutID == nil },
		func(r *domain.PayoutRequest) {
			r.Status = domain.RequestProcessing
			r.PayoutID = &payoutID
			r.EscrowHeld = true
		})
}

func linkedTo(payoutID uuid.UUID) func(domain.PayoutRequest) bool {
	return func(r domain.PayoutRequest) bool {
		return r.Status == domain.RequestProcessing && r.PayoutID != nil && *r.PayoutID == payoutID
	}
}

func (s *memStore) DetachPayout(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error) {
	return s.updateRequest(ctx, id, linkedTo(payoutID), func(r *domain.PayoutRequest) {
		r.Status = domain.RequestApproved
		r.PayoutID = nil
		r.EscrowHeld = false
	})
}

func (s *memStore) CompleteRequest(ctx context.Context, id, payoutID uuid.UUID) (*domain.PayoutRequest, error) {
	return s.updateRequest(ctx, id, linkedTo(payoutID), func(r *domain.PayoutRequest) {
		r.Status = domain.RequestCompleted
	})
}

// payouts

// CreatePayout enforces one live payout per request the way the partial unique index
// does: a second inserter for the same request waits for the first to finish.
func (s *memStore) CreatePayout(ctx context.Context, p *domain.Payout) (*domain.Payout, error) {
	tx, err := s.writeLock(ctx, liveKey(p.RequestID))
	if err != nil {
		return nil, err
	}
	s.mu.Unlock()

	key := payoutKey(p.ID)
	if _, err := s.writeLock(ctx, key); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	for _, existing := range rows(s, tx, payoutsOf, payoutKey) {
		if existing.RequestID == p.RequestID && existing.Status != domain.PayoutFailed {
			return nil, domain.ErrDuplicatePayout
		}
	}
	stored := *p
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	written(tx, key, s.live.payouts, p.ID)
	s.live.payouts[p.ID] = stored
	return &stored, nil
}

func (s *memStore) GetPayout(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := visible(s, txState(ctx), payoutsOf, payoutKey(id), id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memStore) ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]domain.Payout, error) {
	if s.beforePayoutList != nil {
		s.beforePayoutList()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Payout
	for _, p := range rows(s, txState(ctx), payoutsOf, payoutKey) {
		if filter.CreatorID != nil && p.CreatorID != *filter.CreatorID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, p.Status) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memStore) TransitionPayout(ctx context.Context, id uuid.UUID, t domain.PayoutTransition) (*domain.Payout, error) {
	key := payoutKey(id)
	tx, err := s.writeLock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	p, ok := s.live.payouts[id]
	if !ok || !containsStatus(t.From, p.Status) {
		return nil, nil
	}
	written(tx, key, s.live.payouts, id)
	p.Status = t.To
	if t.ProviderReference != nil {
		p.ProviderReference = t.ProviderReference
	}
	if t.FailureReason != nil {
		p.FailureReason = t.FailureReason
	}
	if t.ProcessedAt != nil {
		p.ProcessedAt = t.ProcessedAt
	}
	p.UpdatedAt = time.Now()
	s.live.payouts[id] = p
	return &p, nil
}

// audit

func (s *memStore) Record(ctx context.Context, e *domain.AuditEntry) error {
	s.mu.Lock()
	s.auditN++
	id := s.auditN
	s.mu.Unlock()

	key := auditKey(id)
	tx, err := s.writeLock(ctx, key)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()
	entry := *e
	entry.ID = id
	entry.CreatedAt = time.Now()
	written(tx, key, s.live.audit, id)
	s.live.audit[id] = entry
	return nil
}

func (s *memStore) History(ctx context.Context, entityType, entityID string) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range rows(s, txState(ctx), auditOf, auditKey) {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
