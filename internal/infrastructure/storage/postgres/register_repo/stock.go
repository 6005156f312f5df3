// Package register_repo provides PostgreSQL implementations for register repositories.
// TxManager is obtained from context, so the same repo instance works inside
// and outside transactions.
package register_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/internal/domain/registers/stock"
	"pharmabill/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "reg_stock_movements"
	stockRecordsTable   = "reg_stock_records"
)

var movementColumns = []string{
	"line_id", "recorder_id", "recorder_type", "recorder_version",
	"period", "record_type",
	"item_code", "batch", "quantity", "created_at",
}

var recordColumns = []string{
	"item_code", "batch", "quantity",
	"item_name", "mrp", "selling_price", "purchase_price",
	"cgst_rate", "sgst_rate", "hsn_code", "manufacturer", "pack_size", "expiry_date",
	"category", "reorder_level", "supplier",
	"last_movement_at", "updated_at",
}

// StockRepo implements stock.Repository over the movement and record tables.
type StockRepo struct {
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo() *StockRepo {
	return &StockRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *StockRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// CreateMovements batch inserts movements.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	txm := r.getTxManager(ctx)
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.ItemCode, m.Batch, m.Quantity, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert (slower). Prefer calling CreateMovements within tx.
	q := r.builder.Insert(stockMovementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
			m.Period, m.RecordType,
			m.ItemCode, m.Batch, m.Quantity, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// DeleteMovementsByRecorder removes movements for a document version.
func (r *StockRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	q := r.builder.Delete(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Lt{"recorder_version": beforeVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetRecord returns the inventory record for (itemCode, batch).
func (r *StockRepo) GetRecord(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	var rec entity.StockRecord

	q := r.builder.Select(recordColumns...).
		From(stockRecordsTable).
		Where(squirrel.Eq{"item_code": itemCode, "batch": batch}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return rec, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return rec, apperror.NewNotFound("stock record", itemCode+"/"+batch)
		}
		return rec, fmt.Errorf("get record: %w", err)
	}

	return rec, nil
}

// GetRecordForUpdate returns the record with a row lock.
func (r *StockRepo) GetRecordForUpdate(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	var rec entity.StockRecord

	q := r.builder.Select(recordColumns...).
		From(stockRecordsTable).
		Where(squirrel.Eq{"item_code": itemCode, "batch": batch}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return rec, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return rec, apperror.NewNotFound("stock record", itemCode+"/"+batch)
		}
		return rec, fmt.Errorf("get record for update: %w", err)
	}

	return rec, nil
}

// InsertRecord creates a new (itemCode, batch) record.
func (r *StockRepo) InsertRecord(ctx context.Context, rec entity.StockRecord) error {
	q := r.builder.Insert(stockRecordsTable).
		Columns(recordColumns...).
		Values(
			rec.ItemCode, rec.Batch, rec.Quantity,
			rec.ItemName, rec.MRP, rec.SellingPrice, rec.PurchasePrice,
			rec.CGSTRate, rec.SGSTRate, rec.HSNCode, rec.Manufacturer, rec.PackSize, rec.ExpiryDate,
			rec.Category, rec.ReorderLevel, rec.Supplier,
			rec.LastMovementAt, rec.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	return nil
}

// UpdateRecord overwrites quantity and descriptive fields of a record.
func (r *StockRepo) UpdateRecord(ctx context.Context, rec entity.StockRecord) error {
	q := r.builder.Update(stockRecordsTable).
		Set("quantity", rec.Quantity).
		Set("item_name", rec.ItemName).
		Set("mrp", rec.MRP).
		Set("selling_price", rec.SellingPrice).
		Set("purchase_price", rec.PurchasePrice).
		Set("cgst_rate", rec.CGSTRate).
		Set("sgst_rate", rec.SGSTRate).
		Set("hsn_code", rec.HSNCode).
		Set("manufacturer", rec.Manufacturer).
		Set("pack_size", rec.PackSize).
		Set("expiry_date", rec.ExpiryDate).
		Set("category", rec.Category).
		Set("reorder_level", rec.ReorderLevel).
		Set("supplier", rec.Supplier).
		Set("last_movement_at", rec.LastMovementAt).
		Set("updated_at", rec.UpdatedAt).
		Where(squirrel.Eq{"item_code": rec.ItemCode, "batch": rec.Batch})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stock record", rec.ItemCode+"/"+rec.Batch)
	}

	return nil
}

// AddQuantity applies a signed quantity change and returns the new stock.
func (r *StockRepo) AddQuantity(ctx context.Context, itemCode, batch string, delta types.Quantity) (types.Quantity, error) {
	sql := `
		UPDATE reg_stock_records
		SET quantity = quantity + $1,
		    last_movement_at = NOW(),
		    updated_at = NOW()
		WHERE item_code = $2 AND batch = $3
		RETURNING quantity
	`

	var newStock int64
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, delta, itemCode, batch).Scan(&newStock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("stock record", itemCode+"/"+batch)
		}
		return 0, fmt.Errorf("add quantity: %w", err)
	}

	return types.Quantity(newStock), nil
}

// ListRecords returns records matching a filter.
func (r *StockRepo) ListRecords(ctx context.Context, filter stock.RecordFilter) ([]entity.StockRecord, error) {
	q := r.builder.Select(recordColumns...).
		From(stockRecordsTable)

	if filter.ItemCode != "" {
		q = q.Where(squirrel.Eq{"item_code": filter.ItemCode})
	}

	if filter.NamePrefix != "" {
		q = q.Where(squirrel.ILike{"item_name": filter.NamePrefix + "%"})
	}

	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	q = q.OrderBy("item_name", "batch")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []entity.StockRecord
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}

	return records, nil
}

// GetMovementHistory returns movement history for an item.
func (r *StockRepo) GetMovementHistory(ctx context.Context, itemCode string, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"item_code": itemCode})

	if filter.Batch != "" {
		q = q.Where(squirrel.Eq{"batch": filter.Batch})
	}

	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// GetExpiring returns records whose expiry date falls before the cutoff.
func (r *StockRepo) GetExpiring(ctx context.Context, cutoff time.Time) ([]entity.StockRecord, error) {
	q := r.builder.Select(recordColumns...).
		From(stockRecordsTable).
		Where(squirrel.NotEq{"expiry_date": nil}).
		Where(squirrel.LtOrEq{"expiry_date": cutoff}).
		Where(squirrel.Gt{"quantity": int64(0)}).
		OrderBy("expiry_date")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []entity.StockRecord
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select expiring: %w", err)
	}

	return records, nil
}

// GetBelowReorder returns records at or below their reorder level.
func (r *StockRepo) GetBelowReorder(ctx context.Context) ([]entity.StockRecord, error) {
	q := r.builder.Select(recordColumns...).
		From(stockRecordsTable).
		Where(squirrel.Expr("quantity <= reorder_level")).
		Where(squirrel.Gt{"reorder_level": 0}).
		OrderBy("item_name", "batch")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []entity.StockRecord
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select below reorder: %w", err)
	}

	return records, nil
}

// Ensure interface compliance.
var _ stock.Repository = (*StockRepo)(nil)
