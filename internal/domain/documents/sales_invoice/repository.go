package sales_invoice

import (
	"context"
	"time"

	"pharmabill/internal/core/id"
	"pharmabill/internal/domain"
)

// Repository defines operations for sales invoice documents.
type Repository interface {
	Create(ctx context.Context, doc *SalesInvoice) error
	GetByID(ctx context.Context, docID id.ID) (*SalesInvoice, error)
	GetByNumber(ctx context.Context, number string) (*SalesInvoice, error)
	Update(ctx context.Context, doc *SalesInvoice) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]SalesInvoiceLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []SalesInvoiceLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesInvoice], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*SalesInvoice, error)
}

// ListFilter for filtering sales invoices.
type ListFilter struct {
	domain.ListFilter

	CustomerID  *id.ID
	DoctorName  *string
	PaymentMode *string
	Posted      *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}
