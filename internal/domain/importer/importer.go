// Package importer loads opening stock from spreadsheets.
//
// Pharmacies switching over bring their inventory as an xlsx export
// from the previous software or from a distributor. The importer parses
// the first sheet, merges duplicate rows, reconciles against the stock
// register and applies the result in page-sized transactions with a
// per-row report. A bad row never sinks the file.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"pharmabill/internal/core/id"
	"pharmabill/internal/core/tx"
	"pharmabill/internal/domain/pricing"
	"pharmabill/internal/domain/registers/stock"
	"pharmabill/pkg/logger"
	"pharmabill/pkg/numerator"
)

// DefaultPageSize is the number of rows applied per transaction.
const DefaultPageSize = 200

// RowAction classifies what happened to one sheet row.
type RowAction string

const (
	ActionCreated     RowAction = "created"
	ActionIncremented RowAction = "incremented"
	ActionMerged      RowAction = "merged"  // folded into an earlier row of the same batch
	ActionSkipped     RowAction = "skipped" // empty or non-importable row
	ActionFailed      RowAction = "failed"
	ActionDryRun      RowAction = "dry-run"
)

// RowReport is the per-row outcome.
type RowReport struct {
	RowNo    int       `json:"rowNo"`
	Action   RowAction `json:"action"`
	ItemCode string    `json:"itemCode,omitempty"`
	ItemName string    `json:"itemName,omitempty"`
	Batch    string    `json:"batch,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Report summarizes an import run.
type Report struct {
	Rows        []RowReport `json:"rows"`
	Created     int         `json:"created"`
	Incremented int         `json:"incremented"`
	Merged      int         `json:"merged"`
	Skipped     int         `json:"skipped"`
	Failed      int         `json:"failed"`
}

func (r *Report) add(rr RowReport) {
	r.Rows = append(r.Rows, rr)
	switch rr.Action {
	case ActionCreated:
		r.Created++
	case ActionIncremented:
		r.Incremented++
	case ActionMerged:
		r.Merged++
	case ActionSkipped:
		r.Skipped++
	case ActionFailed:
		r.Failed++
	}
}

// Importer applies spreadsheet stock into the register.
type Importer struct {
	stockSvc  *stock.Service
	txManager tx.Manager
	numerator numerator.Generator
	pageSize  int
}

// New creates an importer. pageSize <= 0 uses DefaultPageSize.
func New(stockSvc *stock.Service, txManager tx.Manager, gen numerator.Generator, pageSize int) *Importer {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Importer{
		stockSvc:  stockSvc,
		txManager: txManager,
		numerator: gen,
		pageSize:  pageSize,
	}
}

// ImportFile imports the spreadsheet at path.
func (imp *Importer) ImportFile(ctx context.Context, path string, dryRun bool) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()
	return imp.importSheet(ctx, f, dryRun)
}

// ImportReader imports a spreadsheet from a stream (HTTP upload).
func (imp *Importer) ImportReader(ctx context.Context, r io.Reader, dryRun bool) (*Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()
	return imp.importSheet(ctx, f, dryRun)
}

func (imp *Importer) importSheet(ctx context.Context, f *excelize.File, dryRun bool) (*Report, error) {
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	fields := mapHeader(rows[0])
	if !hasField(fields, "name") || !hasField(fields, "quantity") {
		return nil, fmt.Errorf("sheet %q: could not locate item name and quantity columns", sheet)
	}

	report := &Report{}
	parsed := imp.collectRows(rows, fields, report)

	if err := imp.assignItemCodes(ctx, parsed); err != nil {
		return nil, err
	}

	for start := 0; start < len(parsed); start += imp.pageSize {
		end := start + imp.pageSize
		if end > len(parsed) {
			end = len(parsed)
		}
		if err := imp.applyPage(ctx, parsed[start:end], dryRun, report); err != nil {
			return report, err
		}
	}

	logger.Info(ctx, "stock import finished",
		"sheet", sheet,
		"created", report.Created,
		"incremented", report.Incremented,
		"merged", report.Merged,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"dry_run", dryRun,
	)

	return report, nil
}

// collectRows parses data rows and folds in-batch duplicates: rows with
// the same item identity and batch merge their quantities into the
// first occurrence.
func (imp *Importer) collectRows(rows [][]string, fields map[int]string, report *Report) []Row {
	var parsed []Row
	seen := make(map[string]int) // identity -> index into parsed

	for i, cells := range rows[1:] {
		rowNo := i + 2 // 1-based, after header

		row := parseRow(rowNo, cells, fields)
		if row.ItemName == "" && row.ItemCode == "" {
			if !isBlank(cells) {
				report.add(RowReport{RowNo: rowNo, Action: ActionSkipped, Message: "missing item name"})
			}
			continue
		}
		if row.Quantity <= 0 {
			report.add(RowReport{
				RowNo: rowNo, Action: ActionSkipped,
				ItemName: row.ItemName, Batch: row.Batch,
				Message: "missing or non-positive quantity",
			})
			continue
		}

		key := rowIdentity(row)
		if idx, dup := seen[key]; dup {
			parsed[idx].Quantity += row.Quantity
			report.add(RowReport{
				RowNo: rowNo, Action: ActionMerged,
				ItemName: row.ItemName, Batch: row.Batch,
				Message: fmt.Sprintf("merged into row %d", parsed[idx].RowNo),
			})
			continue
		}

		seen[key] = len(parsed)
		parsed = append(parsed, row)
	}

	return parsed
}

func (imp *Importer) assignItemCodes(ctx context.Context, rows []Row) error {
	for i := range rows {
		if rows[i].ItemCode != "" {
			continue
		}
		code, err := imp.numerator.GetNextNumber(ctx,
			numerator.DefaultConfig("ITM"),
			&numerator.Options{Strategy: numerator.StrategyCached},
			time.Now())
		if err != nil {
			return fmt.Errorf("generate item code: %w", err)
		}
		rows[i].ItemCode = code
	}
	return nil
}

// applyPage reconciles and applies one page of rows in a single
// transaction. Dry runs reconcile against the live store but skip the
// write, so the report still says created vs incremented.
func (imp *Importer) applyPage(ctx context.Context, page []Row, dryRun bool, report *Report) error {
	lines := make([]stock.PurchaseLine, 0, len(page))
	for _, row := range page {
		lines = append(lines, row.purchaseLine())
	}

	if dryRun {
		deltas := stock.ReconcilePurchase(lines, imp.stockSvc.Snapshot(ctx))
		for i, d := range deltas {
			report.add(RowReport{
				RowNo:    page[i].RowNo,
				Action:   ActionDryRun,
				ItemCode: d.ItemCode,
				ItemName: page[i].ItemName,
				Batch:    d.Batch,
				Message:  fmt.Sprintf("would %s %d units", d.MergePolicy, d.QuantityChange.Int64()),
			})
		}
		return nil
	}

	recorder := stock.Recorder{
		ID:      id.New(),
		Type:    "StockImport",
		Version: 1,
		Period:  time.Now().UTC(),
	}

	return imp.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		deltas := stock.ReconcilePurchase(lines, imp.stockSvc.Snapshot(ctx))
		outcomes, err := imp.stockSvc.ApplyDeltas(ctx, recorder, deltas)
		if err != nil {
			return fmt.Errorf("apply page starting at row %d: %w", page[0].RowNo, err)
		}

		for i, d := range deltas {
			action := ActionCreated
			if d.MergePolicy == stock.MergeIncrement {
				action = ActionIncremented
			}
			rr := RowReport{
				RowNo:    page[i].RowNo,
				Action:   action,
				ItemCode: d.ItemCode,
				ItemName: page[i].ItemName,
				Batch:    d.Batch,
			}
			if i < len(outcomes) {
				if outcomes[i].Status == stock.OutcomeConflict {
					rr.Action = ActionFailed
					rr.Message = "batch already belongs to a different item"
				} else {
					rr.Message = fmt.Sprintf("stock now %d", outcomes[i].NewStock.Int64())
				}
			}
			report.add(rr)
		}
		return nil
	})
}

// purchaseLine maps a sheet row onto the reconciliation input. Rate
// falls back to MRP when the sheet has no purchase price, so a created
// record never carries a zero price next to a real MRP.
func (r Row) purchaseLine() stock.PurchaseLine {
	rate := r.Rate
	if rate.IsZero() {
		rate = r.MRP
	}
	return stock.PurchaseLine{
		LineInput: pricing.LineInput{
			ItemCode:    r.ItemCode,
			ItemName:    r.ItemName,
			Batch:       r.Batch,
			Quantity:    r.Quantity,
			Rate:        rate,
			MRP:         r.MRP,
			CGSTPercent: r.CGST,
			SGSTPercent: r.SGST,
		},
		HSNCode:      r.HSNCode,
		Manufacturer: r.Manufacturer,
		PackSize:     r.PackSize,
		ExpiryDate:   r.Expiry,
		Category:     r.Category,
		Supplier:     r.Supplier,
	}
}

func rowIdentity(r Row) string {
	name := strings.ToLower(strings.TrimSpace(r.ItemName))
	code := strings.ToLower(strings.TrimSpace(r.ItemCode))
	batch := strings.ToLower(strings.TrimSpace(r.Batch))
	if code != "" {
		return code + "|" + batch
	}
	return name + "|" + batch
}

func hasField(fields map[int]string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
