package sales_invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain"
	"pharmabill/internal/domain/posting"
	"pharmabill/internal/domain/pricing"
	"pharmabill/internal/domain/registers/stock"
	"pharmabill/pkg/numerator"
)

type immediateTx struct{}

func (immediateTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// emptyStockRepo holds no records, so every sale line resolves to a
// warning and posting never touches inventory.
type emptyStockRepo struct{}

func (emptyStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	return nil
}

func (emptyStockRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	return nil
}

func (emptyStockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	return nil, nil
}

func (emptyStockRepo) GetRecord(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	return entity.StockRecord{}, errors.New("record not found")
}

func (emptyStockRepo) GetRecordForUpdate(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	return entity.StockRecord{}, errors.New("record not found")
}

func (emptyStockRepo) InsertRecord(ctx context.Context, rec entity.StockRecord) error { return nil }

func (emptyStockRepo) UpdateRecord(ctx context.Context, rec entity.StockRecord) error { return nil }

func (emptyStockRepo) AddQuantity(ctx context.Context, itemCode, batch string, delta types.Quantity) (types.Quantity, error) {
	return 0, errors.New("record not found")
}

func (emptyStockRepo) ListRecords(ctx context.Context, filter stock.RecordFilter) ([]entity.StockRecord, error) {
	return nil, nil
}

func (emptyStockRepo) GetMovementHistory(ctx context.Context, itemCode string, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	return nil, nil
}

func (emptyStockRepo) GetExpiring(ctx context.Context, cutoff time.Time) ([]entity.StockRecord, error) {
	return nil, nil
}

func (emptyStockRepo) GetBelowReorder(ctx context.Context) ([]entity.StockRecord, error) {
	return nil, nil
}

// memoryInvoiceRepo persists invoices with the same optimistic-lock
// discipline as the document repo: an UPDATE matches only while the
// document's version equals the stored row's.
type memoryInvoiceRepo struct {
	docs     map[id.ID]SalesInvoice
	versions map[id.ID]int
	creates  int
	updates  int
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{
		docs:     make(map[id.ID]SalesInvoice),
		versions: make(map[id.ID]int),
	}
}

func (r *memoryInvoiceRepo) Create(ctx context.Context, doc *SalesInvoice) error {
	if _, ok := r.docs[doc.ID]; ok {
		return errors.New("duplicate key")
	}
	r.creates++
	r.docs[doc.ID] = *doc
	r.versions[doc.ID] = doc.Version
	return nil
}

func (r *memoryInvoiceRepo) GetByID(ctx context.Context, docID id.ID) (*SalesInvoice, error) {
	stored, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("doc_sales_invoices", docID.String())
	}
	stored.Version = r.versions[docID]
	return &stored, nil
}

func (r *memoryInvoiceRepo) GetByNumber(ctx context.Context, number string) (*SalesInvoice, error) {
	for docID, doc := range r.docs {
		if doc.Number == number {
			return r.GetByID(ctx, docID)
		}
	}
	return nil, apperror.NewNotFound("doc_sales_invoices", number)
}

func (r *memoryInvoiceRepo) Update(ctx context.Context, doc *SalesInvoice) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewConcurrentModification("doc_sales_invoices", doc.ID)
	}
	if r.versions[doc.ID] != doc.Version {
		return apperror.NewConcurrentModification("doc_sales_invoices", doc.ID)
	}
	r.updates++
	r.docs[doc.ID] = *doc
	r.versions[doc.ID] = doc.Version + 1
	return nil
}

func (r *memoryInvoiceRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(r.docs, docID)
	return nil
}

func (r *memoryInvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]SalesInvoiceLine, error) {
	stored, ok := r.docs[docID]
	if !ok {
		return nil, nil
	}
	return stored.Lines, nil
}

func (r *memoryInvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []SalesInvoiceLine) error {
	return nil
}

func (r *memoryInvoiceRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesInvoice], error) {
	return domain.ListResult[*SalesInvoice]{}, nil
}

func (r *memoryInvoiceRepo) GetForUpdate(ctx context.Context, docID id.ID) (*SalesInvoice, error) {
	return r.GetByID(ctx, docID)
}

func testService(repo Repository) *Service {
	engine := posting.NewEngine(stock.NewService(emptyStockRepo{}), posting.OpenPolicy{}, immediateTx{})
	return NewService(repo, engine, &numerator.MockGenerator{}, immediateTx{}, nil, nil)
}

func testInvoice() *SalesInvoice {
	doc := NewSalesInvoice("Walk-in")
	doc.AddLine(pricing.LineInput{
		ItemCode: "ITM-00001",
		ItemName: "Dolo 650",
		Batch:    "B1",
		Quantity: 2,
		Rate:     types.NewMoney(30),
		MRP:      types.NewMoney(35),
	}, "3004")
	return doc
}

func TestPostAndSave_NewInvoiceIsCreated(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := testService(repo)
	doc := testInvoice()

	result, err := svc.PostAndSave(context.Background(), doc)

	require.NoError(t, err)
	assert.True(t, doc.Posted)
	assert.Equal(t, 1, repo.creates, "a never-saved invoice takes the insert path")
	assert.Equal(t, 0, repo.updates)
	assert.NotEmpty(t, doc.Number)
	require.Len(t, result.Outcomes, 1)
}

func TestPostAndSave_SavedDraftIsUpdated(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := testService(repo)
	doc := testInvoice()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, doc))

	draft, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)

	_, err = svc.PostAndSave(ctx, draft)

	require.NoError(t, err)
	assert.True(t, draft.Posted)
	assert.Equal(t, 1, repo.creates, "the saved draft must not be inserted twice")
	assert.Equal(t, 1, repo.updates)
}

func TestPostThenUnpost_RoundTripsThroughStoredVersions(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := testService(repo)
	doc := testInvoice()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, doc))

	result, err := svc.Post(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)

	posted, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, posted.Posted)

	require.NoError(t, svc.Unpost(ctx, doc.ID))

	unposted, err := svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, unposted.Posted)
}
