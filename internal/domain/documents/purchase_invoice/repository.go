package purchase_invoice

import (
	"context"
	"time"

	"pharmabill/internal/core/id"
	"pharmabill/internal/domain"
)

// Repository defines operations for purchase invoice documents.
type Repository interface {
	Create(ctx context.Context, doc *PurchaseInvoice) error
	GetByID(ctx context.Context, docID id.ID) (*PurchaseInvoice, error)
	GetByNumber(ctx context.Context, number string) (*PurchaseInvoice, error)
	Update(ctx context.Context, doc *PurchaseInvoice) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]PurchaseInvoiceLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []PurchaseInvoiceLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseInvoice], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*PurchaseInvoice, error)
}

// ListFilter for filtering purchase invoices.
type ListFilter struct {
	domain.ListFilter

	SupplierID        *id.ID
	SupplierDocNumber *string
	Posted            *bool
	DateFrom          *time.Time
	DateTo            *time.Time
}
