package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/registers/stock"
	"pharmabill/pkg/numerator"
)

var errNotFound = errors.New("record not found")

// memoryRepo is an in-memory stock.Repository for import tests.
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
	return nil
}

func (r *memoryRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	return nil, nil
}

func (r *memoryRepo) GetRecord(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	if rec, ok := r.records[key(itemCode, batch)]; ok {
		return rec, nil
	}
	return entity.StockRecord{}, errNotFound
}

func (r *memoryRepo) GetRecordForUpdate(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	return r.GetRecord(ctx, itemCode, batch)
}

func (r *memoryRepo) InsertRecord(ctx context.Context, rec entity.StockRecord) error {
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
		return 0, errNotFound
	}
	rec.Quantity += delta
	r.records[key(itemCode, batch)] = rec
	return rec.Quantity, nil
}

func (r *memoryRepo) ListRecords(ctx context.Context, filter stock.RecordFilter) ([]entity.StockRecord, error) {
	return nil, nil
}

func (r *memoryRepo) GetMovementHistory(ctx context.Context, itemCode string, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	return nil, nil
}

func (r *memoryRepo) GetExpiring(ctx context.Context, cutoff time.Time) ([]entity.StockRecord, error) {
	return nil, nil
}

func (r *memoryRepo) GetBelowReorder(ctx context.Context) ([]entity.StockRecord, error) {
	return nil, nil
}

// nopTx runs the function without a real transaction.
type nopTx struct{}

func (nopTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func seqGenerator() *numerator.MockGenerator {
	n := 0
	return &numerator.MockGenerator{
		GetNextNumberFunc: func(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error) {
			n++
			return fmt.Sprintf("ITM-2026-%05d", n), nil
		},
	}
}

func sheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var defaultHeader = []any{"Item Name", "Batch No", "Expiry", "Qty", "MRP", "Purchase Price", "CGST %", "SGST %", "HSN", "Manufacturer", "Pack Size"}

func TestImport_CreatesRecords(t *testing.T) {
	repo := newMemoryRepo()
	imp := New(stock.NewService(repo), nopTx{}, seqGenerator(), 0)

	buf := sheet(t, [][]any{
		defaultHeader,
		{"Paracetamol 500mg", "B001", "06/2027", 50, 25.50, 18.00, 6, 6, "3004", "Cipla", "10x10"},
		{"Cough Syrup 100ml", "C001", "12/2026", 20, 80, 60, 2.5, 2.5, "3004", "Dabur", "100ml"},
	})

	report, err := imp.ImportReader(context.Background(), buf, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Zero(t, report.Failed)
	require.Len(t, repo.records, 2)

	rec, err := repo.GetRecord(context.Background(), "ITM-2026-00001", "B001")
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(50), rec.Quantity)
	assert.Equal(t, "25.5", rec.MRP.String())
	assert.Equal(t, "18", rec.PurchasePrice.String())
	assert.Equal(t, "General", rec.Category)
	require.NotNil(t, rec.ExpiryDate)
	// month-only expiry lands on the last day of the month
	assert.Equal(t, time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), *rec.ExpiryDate)
}

func TestImport_MergesDuplicateRows(t *testing.T) {
	repo := newMemoryRepo()
	imp := New(stock.NewService(repo), nopTx{}, seqGenerator(), 0)

	buf := sheet(t, [][]any{
		{"Item Name", "Batch", "Qty", "MRP"},
		{"Paracetamol 500mg", "B001", 30, 25.50},
		{"paracetamol 500mg", "B001", 20, 25.50},
	})

	report, err := imp.ImportReader(context.Background(), buf, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Merged)
	require.Len(t, repo.records, 1)
	for _, rec := range repo.records {
		assert.Equal(t, types.Quantity(50), rec.Quantity)
	}
}

func TestImport_IncrementsExistingRecord(t *testing.T) {
	repo := newMemoryRepo()
	repo.records[key("PARA500", "B001")] = entity.StockRecord{
		ItemCode: "PARA500", Batch: "B001", ItemName: "Paracetamol 500mg",
		Quantity: 10, Category: "Analgesic", Supplier: "MedPlus",
	}
	imp := New(stock.NewService(repo), nopTx{}, seqGenerator(), 0)

	buf := sheet(t, [][]any{
		{"Code", "Item Name", "Batch", "Qty", "MRP"},
		{"PARA500", "Paracetamol 500mg", "B001", 40, 26.00},
	})

	report, err := imp.ImportReader(context.Background(), buf, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Incremented)
	rec := repo.records[key("PARA500", "B001")]
	assert.Equal(t, types.Quantity(50), rec.Quantity)
	assert.Equal(t, "26", rec.MRP.String())
	// historical fields survive the increment
	assert.Equal(t, "Analgesic", rec.Category)
	assert.Equal(t, "MedPlus", rec.Supplier)
}

func TestImport_SkipsBadRows(t *testing.T) {
	repo := newMemoryRepo()
	imp := New(stock.NewService(repo), nopTx{}, seqGenerator(), 0)

	buf := sheet(t, [][]any{
		{"Item Name", "Batch", "Qty"},
		{"", "B001", 10},
		{"Aspirin 75mg", "B002", "garbage"},
		{"Aspirin 75mg", "B003", 5},
	})

	report, err := imp.ImportReader(context.Background(), buf, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Created)
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	repo := newMemoryRepo()
	imp := New(stock.NewService(repo), nopTx{}, seqGenerator(), 0)

	buf := sheet(t, [][]any{
		{"Item Name", "Batch", "Qty", "MRP"},
		{"Paracetamol 500mg", "B001", 50, 25.50},
	})

	report, err := imp.ImportReader(context.Background(), buf, true)
	require.NoError(t, err)

	assert.Empty(t, repo.records)
	assert.Empty(t, repo.movements)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, ActionDryRun, report.Rows[0].Action)
}

func TestImport_RequiresNameAndQuantityColumns(t *testing.T) {
	repo := newMemoryRepo()
	imp := New(stock.NewService(repo), nopTx{}, seqGenerator(), 0)

	buf := sheet(t, [][]any{
		{"Foo", "Bar"},
		{"x", "y"},
	})

	_, err := imp.ImportReader(context.Background(), buf, false)
	require.Error(t, err)
}
