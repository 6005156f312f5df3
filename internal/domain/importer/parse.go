package importer

import (
	"strconv"
	"strings"
	"time"

	"pharmabill/internal/core/types"
)

// columns maps normalized header aliases to row fields. Sheets come
// from whatever the distributor or the previous software exported, so
// the matching is deliberately loose.
var headerAliases = map[string]string{
	"item code": "code", "code": "code", "sku": "code",

	"item name": "name", "name": "name", "item": "name",
	"product": "name", "product name": "name", "medicine": "name",

	"batch": "batch", "batch no": "batch", "batch number": "batch",

	"expiry": "expiry", "expiry date": "expiry", "exp": "expiry", "exp date": "expiry",

	"quantity": "quantity", "qty": "quantity", "stock": "quantity",

	"mrp": "mrp",

	"rate": "rate", "purchase price": "rate", "purchase rate": "rate", "cost": "rate",

	"cgst": "cgst", "sgst": "sgst", "gst": "gst",

	"hsn": "hsn", "hsn code": "hsn",

	"manufacturer": "manufacturer", "company": "manufacturer", "mfr": "manufacturer",

	"pack": "pack", "pack size": "pack", "packing": "pack",

	"category": "category",

	"supplier": "supplier",
}

// Row is one parsed spreadsheet row.
type Row struct {
	RowNo int

	ItemCode string
	ItemName string
	Batch    string

	Quantity types.Quantity
	MRP      types.Money
	Rate     types.Money
	CGST     types.Money
	SGST     types.Money

	HSNCode      string
	Manufacturer string
	PackSize     string
	Category     string
	Supplier     string
	Expiry       *time.Time
}

// mapHeader resolves a header row into columnIndex -> field name.
// Unknown columns are ignored.
func mapHeader(header []string) map[int]string {
	fields := make(map[int]string, len(header))
	for i, h := range header {
		if field, ok := headerAliases[normalizeHeader(h)]; ok {
			fields[i] = field
		}
	}
	return fields
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "%", "")
	h = strings.ReplaceAll(h, ".", "")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

// parseRow builds a Row from one sheet row. Numeric garbage clamps to
// zero, matching what the pricing engine would do with the same value.
func parseRow(rowNo int, cells []string, fields map[int]string) Row {
	row := Row{RowNo: rowNo}

	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	for i, field := range fields {
		v := cell(i)
		if v == "" {
			continue
		}
		switch field {
		case "code":
			row.ItemCode = v
		case "name":
			row.ItemName = v
		case "batch":
			row.Batch = v
		case "expiry":
			row.Expiry = parseExpiry(v)
		case "quantity":
			row.Quantity = parseQuantity(v)
		case "mrp":
			row.MRP = parseMoney(v)
		case "rate":
			row.Rate = parseMoney(v)
		case "cgst":
			row.CGST = parsePercent(v)
		case "sgst":
			row.SGST = parsePercent(v)
		case "gst":
			// combined rate column: split evenly into CGST/SGST
			half := parsePercent(v).Div(types.NewMoney(2))
			row.CGST = half
			row.SGST = half
		case "hsn":
			row.HSNCode = v
		case "manufacturer":
			row.Manufacturer = v
		case "pack":
			row.PackSize = v
		case "category":
			row.Category = v
		case "supplier":
			row.Supplier = v
		}
	}

	return row
}

func parseMoney(s string) types.Money {
	s = strings.TrimSpace(strings.TrimPrefix(s, "₹"))
	s = strings.ReplaceAll(s, ",", "")
	m, err := types.NewMoneyFromString(s)
	if err != nil || m.IsNegative() {
		return types.Zero()
	}
	return m
}

func parsePercent(s string) types.Money {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return types.Zero()
	}
	return types.ClampPercent(f)
}

func parseQuantity(s string) types.Quantity {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	// whole packs; a fractional cell truncates
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return types.ClampQuantity(int64(f))
}

// expiry formats seen in the wild. Month-only formats resolve to the
// last day of the month (a batch is sellable through its expiry month).
var expiryLayouts = []struct {
	layout    string
	monthOnly bool
}{
	{"01/2006", true},
	{"1/2006", true},
	{"01-2006", true},
	{"Jan-06", true},
	{"Jan 2006", true},
	{"02/01/2006", false},
	{"2/1/2006", false},
	{"2006-01-02", false},
}

func parseExpiry(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, l := range expiryLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		if l.monthOnly {
			t = t.AddDate(0, 1, -1)
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &t
	}
	return nil
}
