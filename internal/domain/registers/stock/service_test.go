package stock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/pricing"
)

var errRecordNotFound = errors.New("record not found")

type memoryRepo struct {
	records   map[string]entity.StockRecord
	movements []entity.StockMovement
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[string]entity.StockRecord)}
}

func key(itemCode, batch string) string { return itemCode + "|" + batch }

func (r *memoryRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memoryRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := r.movements[:0]
	for _, m := range r.movements {
		if m.RecorderID == recorderID && m.RecorderVersion < beforeVersion {
			continue
		}
		kept = append(kept, m)
	}
	r.movements = kept
	return nil
}

func (r *memoryRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetRecord(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	if rec, ok := r.records[key(itemCode, batch)]; ok {
		return rec, nil
	}
	return entity.StockRecord{}, errRecordNotFound
}

func (r *memoryRepo) GetRecordForUpdate(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	return r.GetRecord(ctx, itemCode, batch)
}

func (r *memoryRepo) InsertRecord(ctx context.Context, rec entity.StockRecord) error {
	// Mirrors the unique (item_code, batch) index.
	if _, ok := r.records[key(rec.ItemCode, rec.Batch)]; ok {
		return errors.New("duplicate stock key")
	}
	r.records[key(rec.ItemCode, rec.Batch)] = rec
	return nil
}

func (r *memoryRepo) UpdateRecord(ctx context.Context, rec entity.StockRecord) error {
	r.records[key(rec.ItemCode, rec.Batch)] = rec
	return nil
}

func (r *memoryRepo) AddQuantity(ctx context.Context, itemCode, batch string, delta types.Quantity) (types.Quantity, error) {
	rec, ok := r.records[key(itemCode, batch)]
	if !ok {
		return 0, errRecordNotFound
	}
	rec.Quantity += delta
	r.records[key(itemCode, batch)] = rec
	return rec.Quantity, nil
}

func (r *memoryRepo) ListRecords(ctx context.Context, filter RecordFilter) ([]entity.StockRecord, error) {
	var out []entity.StockRecord
	for _, rec := range r.records {
		if filter.ItemCode != "" && rec.ItemCode != filter.ItemCode {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *memoryRepo) GetMovementHistory(ctx context.Context, itemCode string, filter MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.ItemCode == itemCode {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetExpiring(ctx context.Context, cutoff time.Time) ([]entity.StockRecord, error) {
	var out []entity.StockRecord
	for _, rec := range r.records {
		if rec.ExpiryDate != nil && rec.ExpiryDate.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryRepo) GetBelowReorder(ctx context.Context) ([]entity.StockRecord, error) {
	var out []entity.StockRecord
	for _, rec := range r.records {
		if rec.Quantity <= types.Quantity(rec.ReorderLevel) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func seeded(rec entity.StockRecord) *memoryRepo {
	repo := newMemoryRepo()
	repo.records[key(rec.ItemCode, rec.Batch)] = rec
	return repo
}

func testRecorder() Recorder {
	return Recorder{ID: id.New(), Type: "SalesInvoice", Version: 1, Period: time.Now().UTC()}
}

func TestApplyDeltas_SaleDecrementsStock(t *testing.T) {
	repo := seeded(entity.StockRecord{ItemCode: "A1", Batch: "B1", Quantity: 100})
	svc := NewService(repo)
	ctx := context.Background()

	outcomes, err := svc.ApplyDeltas(ctx, testRecorder(), []Delta{
		{ItemCode: "A1", Batch: "B1", QuantityChange: -5, LineNo: 1},
	})

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeApplied, outcomes[0].Status)
	assert.Equal(t, types.Quantity(95), outcomes[0].NewStock)
	assert.Len(t, repo.movements, 1)
	assert.Equal(t, entity.RecordTypeExpense, repo.movements[0].RecordType)
	assert.Equal(t, types.Quantity(5), repo.movements[0].Quantity)
}

func TestApplyDeltas_SaleMayGoNegative(t *testing.T) {
	repo := seeded(entity.StockRecord{ItemCode: "A1", Batch: "B1", Quantity: 2})
	svc := NewService(repo)

	outcomes, err := svc.ApplyDeltas(context.Background(), testRecorder(), []Delta{
		{ItemCode: "A1", Batch: "B1", QuantityChange: -5, LineNo: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, types.Quantity(-3), outcomes[0].NewStock,
		"a stock-count discrepancy must never block a sale")
}

func TestApplyDeltas_UnresolvedLineIsReportedNotWritten(t *testing.T) {
	repo := seeded(entity.StockRecord{ItemCode: "A1", Batch: "B1", Quantity: 10})
	svc := NewService(repo)

	outcomes, err := svc.ApplyDeltas(context.Background(), testRecorder(), []Delta{
		{ItemCode: "A1", Batch: "B1", QuantityChange: -2, LineNo: 1},
		{ItemCode: "GHOST", Batch: "NOPE", QuantityChange: -1, Unresolved: true, LineNo: 2},
	})

	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, OutcomeApplied, outcomes[0].Status)
	assert.Equal(t, OutcomeUnresolved, outcomes[1].Status)
	assert.Len(t, repo.movements, 1, "no movement for the unresolved line")
}

func TestApplyDeltas_PurchaseCreate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	expiry := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	outcomes, err := svc.ApplyDeltas(context.Background(), testRecorder(), []Delta{{
		ItemCode:       "A1",
		Batch:          "B1",
		QuantityChange: 12,
		MergePolicy:    MergeCreate,
		LineNo:         1,
		Descriptive: Descriptive{
			ItemName:      "Dolo 650",
			MRP:           types.NewMoney(50),
			PurchasePrice: types.NewMoney(40),
			CGSTRate:      types.NewMoney(6),
			SGSTRate:      types.NewMoney(6),
			HSNCode:       "3004",
			Manufacturer:  "Micro Labs",
			PackSize:      "15",
			ExpiryDate:    &expiry,
		},
	}})

	require.NoError(t, err)
	assert.Equal(t, types.Quantity(12), outcomes[0].NewStock)

	rec, err := repo.GetRecord(context.Background(), "A1", "B1")
	require.NoError(t, err)
	assert.Equal(t, DefaultCategory, rec.Category)
	assert.Equal(t, DefaultReorderLevel, rec.ReorderLevel)
	assert.Equal(t, "Dolo 650", rec.ItemName)
	assert.Equal(t, "50", rec.MRP.String())
}

func TestApplyDeltas_NameMismatchCreateReportsConflict(t *testing.T) {
	repo := seeded(entity.StockRecord{
		ItemCode: "A1",
		Batch:    "B1",
		Quantity: 20,
		ItemName: "Crocin Advance",
	})
	svc := NewService(repo)
	ctx := context.Background()

	// Same key, different product: the ledger refuses to increment and
	// emits a create, which must not clobber the occupied key.
	lines := []PurchaseLine{{
		LineInput: pricing.LineInput{
			ItemCode: "A1",
			ItemName: "Dolo 650",
			Batch:    "B1",
			Quantity: 10,
			Rate:     types.NewMoney(40),
			MRP:      types.NewMoney(50),
		},
	}}
	deltas := ReconcilePurchase(lines, svc.Snapshot(ctx))
	require.Len(t, deltas, 1)
	require.Equal(t, MergeCreate, deltas[0].MergePolicy)

	outcomes, err := svc.ApplyDeltas(ctx, testRecorder(), deltas)

	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, OutcomeConflict, outcomes[0].Status)
	assert.Empty(t, repo.movements, "no movement for the conflicted line")

	rec, err := repo.GetRecord(ctx, "A1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Crocin Advance", rec.ItemName)
	assert.Equal(t, types.Quantity(20), rec.Quantity)
}

func TestApplyDeltas_PurchaseIncrementOverwriteSet(t *testing.T) {
	oldExpiry := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := seeded(entity.StockRecord{
		ItemCode:     "A1",
		Batch:        "B1",
		Quantity:     30,
		ItemName:     "Dolo 650",
		MRP:          types.NewMoney(45),
		CGSTRate:     types.NewMoney(2.5),
		SGSTRate:     types.NewMoney(2.5),
		ExpiryDate:   &oldExpiry,
		Category:     "Analgesic",
		ReorderLevel: 25,
		Supplier:     "MedPlus Distributors",
	})
	svc := NewService(repo)

	newExpiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.ApplyDeltas(context.Background(), testRecorder(), []Delta{{
		ItemCode:       "A1",
		Batch:          "B1",
		QuantityChange: 10,
		MergePolicy:    MergeIncrement,
		LineNo:         1,
		Descriptive: Descriptive{
			ItemName:      "Dolo 650",
			MRP:           types.NewMoney(52),
			PurchasePrice: types.NewMoney(41),
			CGSTRate:      types.NewMoney(6),
			SGSTRate:      types.NewMoney(6),
			HSNCode:       "3004",
			Manufacturer:  "Micro Labs",
			PackSize:      "15",
			ExpiryDate:    &newExpiry,
		},
	}})
	require.NoError(t, err)

	rec, err := repo.GetRecord(context.Background(), "A1", "B1")
	require.NoError(t, err)

	// Overwritten from the newest line
	assert.Equal(t, types.Quantity(40), rec.Quantity)
	assert.Equal(t, "52", rec.MRP.String())
	assert.Equal(t, "41", rec.PurchasePrice.String())
	assert.Equal(t, "6", rec.CGSTRate.String())
	assert.Equal(t, newExpiry, *rec.ExpiryDate)
	assert.Equal(t, "3004", rec.HSNCode)

	// Preserved historical fields
	assert.Equal(t, "Analgesic", rec.Category)
	assert.Equal(t, 25, rec.ReorderLevel)
	assert.Equal(t, "MedPlus Distributors", rec.Supplier)
}

func TestReverse_RestoresQuantities(t *testing.T) {
	repo := seeded(entity.StockRecord{ItemCode: "A1", Batch: "B1", Quantity: 100})
	svc := NewService(repo)
	ctx := context.Background()

	rec := testRecorder()
	_, err := svc.ApplyDeltas(ctx, rec, []Delta{
		{ItemCode: "A1", Batch: "B1", QuantityChange: -5, LineNo: 1},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reverse(ctx, rec.ID, rec.Version+1))

	got, err := repo.GetRecord(ctx, "A1", "B1")
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(100), got.Quantity)
	assert.Empty(t, repo.movements)
}

func TestSnapshotLookup(t *testing.T) {
	repo := seeded(entity.StockRecord{ItemCode: "A1", Batch: "B1", Quantity: 7})
	svc := NewService(repo)

	lookup := svc.Snapshot(context.Background())

	rec, found := lookup.Lookup("A1", "B1")
	require.True(t, found)
	assert.Equal(t, types.Quantity(7), rec.Quantity)

	_, found = lookup.Lookup("A1", "OTHER")
	assert.False(t, found)
}
