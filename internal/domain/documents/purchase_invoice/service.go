package purchase_invoice

import (
	"context"
	"fmt"
	"time"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/tx"
	"pharmabill/internal/domain"
	"pharmabill/internal/domain/audit"
	"pharmabill/internal/domain/posting"
	"pharmabill/pkg/logger"
	"pharmabill/pkg/numerator"
)

// Service provides business operations for purchase invoices.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
}

// NewService creates a purchase invoice service.
func NewService(
	repo Repository,
	postingEngine *posting.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
	}
}

// Create saves a new purchase invoice as a draft. Lines without an item
// code get one synthesized, so every batch lands on a stable stock key.
func (s *Service) Create(ctx context.Context, doc *PurchaseInvoice) error {
	doc.Recalculate()
	audit.EnrichCreatedBy(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}
	if err := s.assignItemCodes(ctx, doc); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase invoice created",
		"id", doc.ID,
		"number", doc.Number,
		"supplier", doc.SupplierID,
		"grandTotal", doc.GrandTotal,
	)
	return nil
}

// GetByID retrieves a purchase invoice with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseInvoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates a draft purchase invoice.
func (s *Service) Update(ctx context.Context, doc *PurchaseInvoice) error {
	if err := doc.CanModify(); err != nil {
		return err
	}

	doc.Recalculate()
	audit.EnrichUpdatedBy(ctx, &doc.UpdatedBy)

	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.assignItemCodes(ctx, doc); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a draft purchase invoice.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if doc.Posted {
		return doc.CanModify()
	}

	return s.repo.Delete(ctx, docID)
}

// Post records the invoice's stock effect: quantities rise and batch
// pricing is refreshed from the supplier bill.
func (s *Service) Post(ctx context.Context, docID id.ID) (*posting.Result, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	return s.postingEngine.Post(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// Unpost reverses the invoice's stock effect.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// PostAndSave saves and posts an invoice atomically.
func (s *Service) PostAndSave(ctx context.Context, doc *PurchaseInvoice) (*posting.Result, error) {
	doc.Recalculate()

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.assignNumber(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.assignItemCodes(ctx, doc); err != nil {
		return nil, err
	}

	// Decide create-vs-update before posting: the version field alone
	// cannot distinguish a never-saved invoice from a saved draft.
	isNew, err := s.isNew(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	return s.postingEngine.Post(ctx, doc, func(ctx context.Context) error {
		if isNew {
			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
			return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
}

func (s *Service) isNew(ctx context.Context, docID id.ID) (bool, error) {
	_, err := s.repo.GetByID(ctx, docID)
	if err == nil {
		return false, nil
	}
	if apperror.IsNotFound(err) {
		return true, nil
	}
	return false, err
}

// List retrieves purchase invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseInvoice], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) assignNumber(ctx context.Context, doc *PurchaseInvoice) error {
	if doc.Number != "" {
		return nil
	}

	cfg := numerator.DefaultConfig(NumeratorPrefix)
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

// assignItemCodes synthesizes codes for billable lines entered without
// one. The code is assigned once and reused on subsequent saves.
func (s *Service) assignItemCodes(ctx context.Context, doc *PurchaseInvoice) error {
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.ItemCode != "" || line.ItemName == "" {
			continue
		}

		cfg := numerator.DefaultConfig(ItemCodePrefix)
		code, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
		if err != nil {
			return fmt.Errorf("generate item code: %w", err)
		}
		line.ItemCode = code
	}
	return nil
}
