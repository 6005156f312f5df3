package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/entity"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/types"
	"pharmabill/pkg/logger"
)

// Defaults for fields a purchase line does not carry.
const (
	DefaultCategory     = "General"
	DefaultReorderLevel = 10
)

// OutcomeStatus classifies how one delta met the store.
type OutcomeStatus string

const (
	// OutcomeApplied - the delta was applied to an inventory record.
	OutcomeApplied OutcomeStatus = "applied"
	// OutcomeUnresolved - a sales delta had no matching record; nothing
	// was written and the caller surfaces a per-line warning.
	OutcomeUnresolved OutcomeStatus = "unresolved"
	// OutcomeConflict - a create delta landed on an (item, batch) key that
	// already belongs to a different product. Nothing was written; the
	// operator has to resolve the key clash.
	OutcomeConflict OutcomeStatus = "conflict"
)

// errKeyOccupied reports a create delta meeting an occupied (item, batch)
// key. ApplyDeltas turns it into a per-line outcome.
var errKeyOccupied = errors.New("stock key occupied by a different item")

// Outcome is the per-line result of applying deltas. The full list is
// always returned so the host decides best-effort vs all-or-nothing; no
// partial failure is hidden inside a loop.
type Outcome struct {
	LineNo   int            `json:"lineNo"`
	ItemCode string         `json:"itemCode"`
	Batch    string         `json:"batch"`
	Status   OutcomeStatus  `json:"status"`
	NewStock types.Quantity `json:"newStock"`
}

// Recorder identifies the posting document for movement bookkeeping.
type Recorder struct {
	ID      id.ID
	Type    string
	Version int
	Period  time.Time
}

// Service applies reconciliation deltas to the stock register.
// Transactions are managed by the caller (posting engine).
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Snapshot returns the lookup capability over the current store, bound to
// ctx. The ledger's reconcile functions consume it without doing I/O of
// their own beyond this capability.
func (s *Service) Snapshot(ctx context.Context) Lookup {
	return LookupFunc(func(itemCode, batch string) (entity.StockRecord, bool) {
		rec, err := s.repo.GetRecord(ctx, itemCode, batch)
		if err != nil {
			return entity.StockRecord{}, false
		}
		return rec, true
	})
}

// ApplyDeltas records movements and updates (item, batch) records for a
// posted document. Business-level misses (unresolved sales lines) become
// outcomes, not errors; infrastructure errors abort the whole call so the
// surrounding transaction rolls back atomically.
func (s *Service) ApplyDeltas(ctx context.Context, rec Recorder, deltas []Delta) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(deltas))
	movements := make([]entity.StockMovement, 0, len(deltas))

	for _, d := range deltas {
		if d.QuantityChange.IsZero() {
			continue
		}

		if d.Unresolved {
			outcomes = append(outcomes, Outcome{
				LineNo:   d.LineNo,
				ItemCode: d.ItemCode,
				Batch:    d.Batch,
				Status:   OutcomeUnresolved,
			})
			continue
		}

		newStock, err := s.applyOne(ctx, d)
		if errors.Is(err, errKeyOccupied) {
			outcomes = append(outcomes, Outcome{
				LineNo:   d.LineNo,
				ItemCode: d.ItemCode,
				Batch:    d.Batch,
				Status:   OutcomeConflict,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("apply delta line %d (%s/%s): %w", d.LineNo, d.ItemCode, d.Batch, err)
		}

		recordType := entity.RecordTypeReceipt
		qty := d.QuantityChange
		if qty.IsNegative() {
			recordType = entity.RecordTypeExpense
			qty = qty.Neg()
		}
		movements = append(movements, entity.NewStockMovement(
			rec.ID, rec.Type, rec.Version, rec.Period, recordType,
			d.ItemCode, d.Batch, qty,
		))

		outcomes = append(outcomes, Outcome{
			LineNo:   d.LineNo,
			ItemCode: d.ItemCode,
			Batch:    d.Batch,
			Status:   OutcomeApplied,
			NewStock: newStock,
		})
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return nil, fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "applied stock deltas",
		"recorder_id", rec.ID,
		"recorder_type", rec.Type,
		"applied", len(movements),
		"total", len(deltas),
	)

	return outcomes, nil
}

func (s *Service) applyOne(ctx context.Context, d Delta) (types.Quantity, error) {
	switch d.MergePolicy {
	case MergeCreate:
		// The ledger emits a create for a name mismatch on an existing key
		// as well; inserting would violate the (item, batch) uniqueness.
		// The lock guards against a concurrent create of the same key.
		if _, err := s.repo.GetRecordForUpdate(ctx, d.ItemCode, d.Batch); err == nil {
			return 0, errKeyOccupied
		}
		now := time.Now().UTC()
		category := d.Descriptive.Category
		if category == "" {
			category = DefaultCategory
		}
		record := entity.StockRecord{
			ItemCode:       d.ItemCode,
			Batch:          d.Batch,
			Quantity:       d.QuantityChange,
			ItemName:       d.Descriptive.ItemName,
			MRP:            d.Descriptive.MRP,
			SellingPrice:   d.Descriptive.MRP,
			PurchasePrice:  d.Descriptive.PurchasePrice,
			CGSTRate:       d.Descriptive.CGSTRate,
			SGSTRate:       d.Descriptive.SGSTRate,
			HSNCode:        d.Descriptive.HSNCode,
			Manufacturer:   d.Descriptive.Manufacturer,
			PackSize:       d.Descriptive.PackSize,
			ExpiryDate:     d.Descriptive.ExpiryDate,
			Category:       category,
			Supplier:       d.Descriptive.Supplier,
			ReorderLevel:   DefaultReorderLevel,
			LastMovementAt: now,
			UpdatedAt:      now,
		}
		if err := s.repo.InsertRecord(ctx, record); err != nil {
			return 0, err
		}
		return record.Quantity, nil

	case MergeIncrement:
		existing, err := s.repo.GetRecordForUpdate(ctx, d.ItemCode, d.Batch)
		if err != nil {
			return 0, err
		}
		merged := mergeDescriptive(existing, d.Descriptive)
		merged.Quantity = existing.Quantity + d.QuantityChange
		merged.LastMovementAt = time.Now().UTC()
		merged.UpdatedAt = merged.LastMovementAt
		if err := s.repo.UpdateRecord(ctx, merged); err != nil {
			return 0, err
		}
		return merged.Quantity, nil

	default:
		// Sales delta: signed quantity change against an existing record.
		return s.repo.AddQuantity(ctx, d.ItemCode, d.Batch, d.QuantityChange)
	}
}

// mergeDescriptive overwrites exactly the purchase-authoritative field set
// and preserves historical fields, substituting defaults where the
// existing record never had a value.
func mergeDescriptive(existing entity.StockRecord, desc Descriptive) entity.StockRecord {
	out := existing

	out.MRP = desc.MRP
	out.PurchasePrice = desc.PurchasePrice
	out.CGSTRate = desc.CGSTRate
	out.SGSTRate = desc.SGSTRate
	if desc.ItemName != "" {
		out.ItemName = desc.ItemName
	}
	if desc.HSNCode != "" {
		out.HSNCode = desc.HSNCode
	}
	if desc.Manufacturer != "" {
		out.Manufacturer = desc.Manufacturer
	}
	if desc.PackSize != "" {
		out.PackSize = desc.PackSize
	}
	if desc.ExpiryDate != nil {
		out.ExpiryDate = desc.ExpiryDate
	}

	if out.Category == "" {
		out.Category = DefaultCategory
	}
	if out.ReorderLevel == 0 {
		out.ReorderLevel = DefaultReorderLevel
	}

	return out
}

// Reverse removes a document's movements and rolls their quantity effect
// back out of the records. Used during unposting.
func (s *Service) Reverse(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	movements, err := s.repo.GetMovementsByRecorder(ctx, recorderID)
	if err != nil {
		return fmt.Errorf("get movements: %w", err)
	}

	for _, m := range movements {
		if m.RecorderVersion >= beforeVersion {
			continue
		}
		if _, err := s.repo.AddQuantity(ctx, m.ItemCode, m.Batch, m.SignedQuantity().Neg()); err != nil {
			return fmt.Errorf("reverse quantity for %s/%s: %w", m.ItemCode, m.Batch, err)
		}
	}

	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed stock movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// GetRecord returns one inventory record.
func (s *Service) GetRecord(ctx context.Context, itemCode, batch string) (entity.StockRecord, error) {
	rec, err := s.repo.GetRecord(ctx, itemCode, batch)
	if err != nil {
		return entity.StockRecord{}, apperror.NewNotFound("stock record", itemCode+"/"+batch).WithCause(err)
	}
	return rec, nil
}

// ListRecords returns inventory records matching the filter.
func (s *Service) ListRecords(ctx context.Context, filter RecordFilter) ([]entity.StockRecord, error) {
	return s.repo.ListRecords(ctx, filter)
}

// ItemAvailability returns total stock for an item across batches.
func (s *Service) ItemAvailability(ctx context.Context, itemCode string) (types.Quantity, error) {
	records, err := s.repo.ListRecords(ctx, RecordFilter{ItemCode: itemCode})
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	var total types.Quantity
	for _, r := range records {
		total += r.Quantity
	}
	return total, nil
}

// Expiring returns records whose batch expires within the given window.
func (s *Service) Expiring(ctx context.Context, within time.Duration) ([]entity.StockRecord, error) {
	return s.repo.GetExpiring(ctx, time.Now().UTC().Add(within))
}

// BelowReorder returns records at or below their reorder level.
func (s *Service) BelowReorder(ctx context.Context) ([]entity.StockRecord, error) {
	return s.repo.GetBelowReorder(ctx)
}

// MovementHistory returns the movement trail for one item.
func (s *Service) MovementHistory(ctx context.Context, itemCode string, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.GetMovementHistory(ctx, itemCode, filter)
}
