package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dairylink/dairylink-api/internal/models"
	"github.com/dairylink/dairylink-api/internal/repository"
	"gorm.io/gorm"
)

// fakeStore is a shared in-memory backing store for the fake repositories.
// Unique indexes that matter to the engine (one approval per collection, one
// payment per farmer+period, one application per deduction+due date) are
// enforced the same way the database would: with ErrDuplicateKey.
type fakeStore struct {
	nextID uint

	users             map[uint]*models.User
	collections       map[uint]*models.Collection
	approvals         map[uint]*models.Approval
	credits           map[uint]*models.CreditTransaction
	consumptions      map[uint]*models.CreditConsumption
	deductions        map[uint]*models.Deduction
	applications      map[uint]*models.DeductionApplication
	payments          map[uint]*models.Payment
	collectorPayments map[uint]*models.CollectorPayment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:             make(map[uint]*models.User),
		collections:       make(map[uint]*models.Collection),
		approvals:         make(map[uint]*models.Approval),
		credits:           make(map[uint]*models.CreditTransaction),
		consumptions:      make(map[uint]*models.CreditConsumption),
		deductions:        make(map[uint]*models.Deduction),
		applications:      make(map[uint]*models.DeductionApplication),
		payments:          make(map[uint]*models.Payment),
		collectorPayments: make(map[uint]*models.CollectorPayment),
	}
}

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

// newTestEnv wires fake repositories over one store plus a pass-through
// transaction manager.
func newTestEnv() (*fakeStore, *repository.Repositories, repository.TxManager) {
	store := newFakeStore()
	repos := &repository.Repositories{
		User:             &fakeUserRepo{store: store},
		Collection:       &fakeCollectionRepo{store: store},
		Approval:         &fakeApprovalRepo{store: store},
		Credit:           &fakeCreditRepo{store: store},
		Deduction:        &fakeDeductionRepo{store: store},
		Payment:          &fakePaymentRepo{store: store},
		CollectorPayment: &fakeCollectorPaymentRepo{store: store},
	}
	return store, repos, &fakeTxManager{repos: repos}
}

type fakeTxManager struct {
	repos *repository.Repositories
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return fn(m.repos)
}

func (s *fakeStore) addUser(role string) *models.User {
	u := &models.User{ID: s.id(), Role: role, Status: models.StatusActive, FullName: fmt.Sprintf("user %d", s.nextID)}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addCollection(farmerID, collectorID uint, liters, rate float64, date time.Time) *models.Collection {
	c := &models.Collection{
		ID:             s.id(),
		FarmerID:       farmerID,
		CollectorID:    collectorID,
		Liters:         liters,
		RatePerLiter:   rate,
		TotalAmount:    liters * rate,
		CollectionDate: date,
		Status:         models.CollectionStatusRecorded,
		FeeStatus:      models.FeeStatusPending,
	}
	s.collections[c.ID] = c
	return c
}

func (s *fakeStore) addApprovedCredit(farmerID uint, amount float64, approvedAt time.Time) *models.CreditTransaction {
	t := &models.CreditTransaction{
		ID:               s.id(),
		FarmerID:         farmerID,
		RequestedAmount:  amount,
		Amount:           amount,
		Status:           models.CreditStatusApproved,
		SettlementStatus: models.CreditSettlementPending,
		ApprovedAt:       &approvedAt,
	}
	s.credits[t.ID] = t
	return t
}

func (s *fakeStore) addDeduction(farmerID uint, amount float64, frequency string, due time.Time) *models.Deduction {
	d := &models.Deduction{
		ID:          s.id(),
		FarmerID:    farmerID,
		Description: "test deduction",
		Amount:      amount,
		Frequency:   frequency,
		NextDueDate: due,
		Active:      true,
	}
	s.deductions[d.ID] = d
	return d
}

// --- user repo ---

type fakeUserRepo struct {
	repository.UserRepository
	store *fakeStore
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

// --- collection repo ---

type fakeCollectionRepo struct {
	repository.CollectionRepository
	store *fakeStore
}

func (r *fakeCollectionRepo) FindByID(ctx context.Context, id uint) (*models.Collection, error) {
	c, ok := r.store.collections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCollectionRepo) Create(ctx context.Context, c *models.Collection) error {
	c.ID = r.store.id()
	if c.FeeStatus == "" {
		// Emulate the gorm `default:pending` column default applied by Postgres.
		c.FeeStatus = models.FeeStatusPending
	}
	copied := *c
	r.store.collections[c.ID] = &copied
	return nil
}

func (r *fakeCollectionRepo) Update(ctx context.Context, c *models.Collection) error {
	copied := *c
	r.store.collections[c.ID] = &copied
	return nil
}

func (r *fakeCollectionRepo) FindUnapprovedForBatch(ctx context.Context, collectorID uint, date time.Time, lock bool) ([]models.Collection, error) {
	var out []models.Collection
	for _, c := range sortedCollections(r.store) {
		if c.CollectorID == collectorID && sameDate(c.CollectionDate, date) && !c.Approved {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCollectionRepo) FindSettleableForFarmerPeriod(ctx context.Context, farmerID uint, start, end time.Time, lock bool) ([]models.Collection, error) {
	var out []models.Collection
	for _, c := range sortedCollections(r.store) {
		if c.FarmerID == farmerID && c.Approved &&
			(c.Status == models.CollectionStatusCollected || c.Status == models.CollectionStatusVerified) &&
			!c.CollectionDate.Before(start) && c.CollectionDate.Before(end) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCollectionRepo) FindByPaymentID(ctx context.Context, paymentID uint, lock bool) ([]models.Collection, error) {
	var out []models.Collection
	for _, c := range sortedCollections(r.store) {
		if c.PaymentID != nil && *c.PaymentID == paymentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func sortedCollections(s *fakeStore) []*models.Collection {
	out := make([]*models.Collection, 0, len(s.collections))
	for _, c := range s.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

// --- approval repo ---

type fakeApprovalRepo struct {
	repository.ApprovalRepository
	store *fakeStore
}

func (r *fakeApprovalRepo) Create(ctx context.Context, a *models.Approval) error {
	for _, existing := range r.store.approvals {
		if existing.CollectionID == a.CollectionID {
			return repository.ErrDuplicateKey
		}
	}
	a.ID = r.store.id()
	copied := *a
	r.store.approvals[a.ID] = &copied
	return nil
}

func (r *fakeApprovalRepo) FindByCollectionIDs(ctx context.Context, ids []uint) ([]models.Approval, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Approval
	for _, a := range r.sorted() {
		if want[a.CollectionID] {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) FindForCollectorWindow(ctx context.Context, collectorID uint, start, end time.Time, lock bool) ([]models.Approval, error) {
	var out []models.Approval
	for _, a := range r.sorted() {
		if a.CollectorID == collectorID && !a.CollectionDate.Before(start) && a.CollectionDate.Before(end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) MarkPenaltiesPaid(ctx context.Context, ids []uint) error {
	for _, id := range ids {
		if a, ok := r.store.approvals[id]; ok {
			a.PenaltyStatus = models.PenaltyStatusPaid
		}
	}
	return nil
}

func (r *fakeApprovalRepo) sorted() []*models.Approval {
	out := make([]*models.Approval, 0, len(r.store.approvals))
	for _, a := range r.store.approvals {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- credit repo ---

type fakeCreditRepo struct {
	repository.CreditRepository
	store *fakeStore
}

func (r *fakeCreditRepo) FindByID(ctx context.Context, id uint) (*models.CreditTransaction, error) {
	t, ok := r.store.credits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeCreditRepo) Create(ctx context.Context, t *models.CreditTransaction) error {
	t.ID = r.store.id()
	if t.Status == "" {
		t.Status = models.CreditStatusPending
	}
	if t.SettlementStatus == "" {
		t.SettlementStatus = models.CreditSettlementPending
	}
	copied := *t
	r.store.credits[t.ID] = &copied
	return nil
}

func (r *fakeCreditRepo) Update(ctx context.Context, t *models.CreditTransaction) error {
	copied := *t
	r.store.credits[t.ID] = &copied
	return nil
}

func (r *fakeCreditRepo) FindByFarmer(ctx context.Context, farmerID uint) ([]models.CreditTransaction, error) {
	var out []models.CreditTransaction
	for _, t := range r.sorted() {
		if t.FarmerID == farmerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeCreditRepo) FindConsumable(ctx context.Context, farmerID uint, lock bool) ([]models.CreditTransaction, error) {
	var out []models.CreditTransaction
	for _, t := range r.sorted() {
		if t.FarmerID == farmerID && t.Consumable() {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].ApprovedAt, out[j].ApprovedAt
		if ai != nil && aj != nil && !ai.Equal(*aj) {
			return ai.Before(*aj)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeCreditRepo) AvailableCredit(ctx context.Context, farmerID uint) (float64, error) {
	total := 0.0
	for _, t := range r.store.credits {
		if t.FarmerID == farmerID && t.Status == models.CreditStatusApproved && t.SettlementStatus == models.CreditSettlementPending {
			total += t.Remaining()
		}
	}
	return total, nil
}

func (r *fakeCreditRepo) CreateConsumption(ctx context.Context, c *models.CreditConsumption) error {
	c.ID = r.store.id()
	copied := *c
	r.store.consumptions[c.ID] = &copied
	return nil
}

func (r *fakeCreditRepo) FindConsumptionsByPayment(ctx context.Context, paymentID uint) ([]models.CreditConsumption, error) {
	var out []models.CreditConsumption
	ids := make([]uint, 0, len(r.store.consumptions))
	for id := range r.store.consumptions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if c := r.store.consumptions[id]; c.PaymentID == paymentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCreditRepo) DeleteConsumptionsByPayment(ctx context.Context, paymentID uint) error {
	for id, c := range r.store.consumptions {
		if c.PaymentID == paymentID {
			delete(r.store.consumptions, id)
		}
	}
	return nil
}

func (r *fakeCreditRepo) sorted() []*models.CreditTransaction {
	out := make([]*models.CreditTransaction, 0, len(r.store.credits))
	for _, t := range r.store.credits {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- deduction repo ---

type fakeDeductionRepo struct {
	repository.DeductionRepository
	store *fakeStore
}

func (r *fakeDeductionRepo) FindByID(ctx context.Context, id uint) (*models.Deduction, error) {
	d, ok := r.store.deductions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDeductionRepo) Create(ctx context.Context, d *models.Deduction) error {
	d.ID = r.store.id()
	copied := *d
	r.store.deductions[d.ID] = &copied
	return nil
}

func (r *fakeDeductionRepo) Update(ctx context.Context, d *models.Deduction) error {
	copied := *d
	r.store.deductions[d.ID] = &copied
	return nil
}

func (r *fakeDeductionRepo) FindByFarmer(ctx context.Context, farmerID uint) ([]models.Deduction, error) {
	var out []models.Deduction
	for _, d := range r.store.deductions {
		if d.FarmerID == farmerID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDeductionRepo) FindDue(ctx context.Context, asOf time.Time, lock bool) ([]models.Deduction, error) {
	var out []models.Deduction
	for _, d := range r.store.deductions {
		if d.IsDue(asOf) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDeductionRepo) CreateApplication(ctx context.Context, a *models.DeductionApplication) error {
	for _, existing := range r.store.applications {
		if existing.DeductionID == a.DeductionID && sameDate(existing.DueDate, a.DueDate) {
			return repository.ErrDuplicateKey
		}
	}
	a.ID = r.store.id()
	copied := *a
	r.store.applications[a.ID] = &copied
	return nil
}

func (r *fakeDeductionRepo) SumApplicationsForFarmer(ctx context.Context, farmerID uint, start, end time.Time) (float64, error) {
	total := 0.0
	for _, a := range r.store.applications {
		if a.FarmerID == farmerID && !a.AppliedAt.Before(start) && a.AppliedAt.Before(end) {
			total += a.Amount
		}
	}
	return total, nil
}

func (r *fakeDeductionRepo) FindApplicationsForFarmer(ctx context.Context, farmerID uint, start, end time.Time) ([]models.DeductionApplication, error) {
	var out []models.DeductionApplication
	for _, a := range r.store.applications {
		if a.FarmerID == farmerID && !a.AppliedAt.Before(start) && a.AppliedAt.Before(end) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- payment repo ---

type fakePaymentRepo struct {
	repository.PaymentRepository
	store *fakeStore
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, id uint, lock bool) (*models.Payment, error) {
	p, ok := r.store.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) FindByFarmerAndPeriod(ctx context.Context, farmerID uint, period string, lock bool) (*models.Payment, error) {
	for _, p := range r.store.payments {
		if p.FarmerID == farmerID && p.Period == period {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	for _, existing := range r.store.payments {
		if existing.FarmerID == p.FarmerID && existing.Period == p.Period {
			return repository.ErrDuplicateKey
		}
	}
	p.ID = r.store.id()
	if p.GUID == "" {
		p.GUID = fmt.Sprintf("guid-%d", p.ID)
	}
	copied := *p
	r.store.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, p *models.Payment) error {
	copied := *p
	r.store.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) FindByPeriod(ctx context.Context, period string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range r.store.payments {
		if p.Period == period {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- collector payment repo ---

type fakeCollectorPaymentRepo struct {
	repository.CollectorPaymentRepository
	store *fakeStore
}

func (r *fakeCollectorPaymentRepo) FindByID(ctx context.Context, id uint, lock bool) (*models.CollectorPayment, error) {
	p, ok := r.store.collectorPayments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeCollectorPaymentRepo) FindByWindow(ctx context.Context, collectorID uint, start, end time.Time, lock bool) (*models.CollectorPayment, error) {
	for _, p := range r.store.collectorPayments {
		if p.CollectorID == collectorID && sameDate(p.PeriodStart, start) && sameDate(p.PeriodEnd, end) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCollectorPaymentRepo) Create(ctx context.Context, p *models.CollectorPayment) error {
	for _, existing := range r.store.collectorPayments {
		if existing.CollectorID == p.CollectorID && sameDate(existing.PeriodStart, p.PeriodStart) && sameDate(existing.PeriodEnd, p.PeriodEnd) {
			return repository.ErrDuplicateKey
		}
	}
	p.ID = r.store.id()
	if p.GUID == "" {
		p.GUID = fmt.Sprintf("guid-%d", p.ID)
	}
	copied := *p
	r.store.collectorPayments[p.ID] = &copied
	return nil
}

func (r *fakeCollectorPaymentRepo) Update(ctx context.Context, p *models.CollectorPayment) error {
	copied := *p
	r.store.collectorPayments[p.ID] = &copied
	return nil
}
