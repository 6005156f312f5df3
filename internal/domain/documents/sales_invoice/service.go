package sales_invoice

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
	"pharmabill/internal/domain/rules"
	"pharmabill/pkg/logger"
	"pharmabill/pkg/numerator"
)

// Service provides business operations for sales invoices.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
	rules         *rules.Engine
	schedules     rules.ScheduleLookup
}

// NewService creates a sales invoice service. The rule engine and
// schedule lookup are optional; nil disables rule checking.
func NewService(
	repo Repository,
	postingEngine *posting.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
	ruleEngine *rules.Engine,
	schedules rules.ScheduleLookup,
) *Service {
	return &Service{
		repo:          repo,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
		rules:         ruleEngine,
		schedules:     schedules,
	}
}

// Create saves a new sales invoice as a draft. Line amounts and totals
// are recalculated server-side before validation.
func (s *Service) Create(ctx context.Context, doc *SalesInvoice) error {
	doc.Recalculate()
	audit.EnrichCreatedBy(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.assignNumber(ctx, doc); err != nil {
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

	logger.Info(ctx, "sales invoice created",
		"id", doc.ID,
		"number", doc.Number,
		"grandTotal", doc.GrandTotal,
	)
	return nil
}

// GetByID retrieves a sales invoice with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*SalesInvoice, error) {
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

// Update updates a draft sales invoice. Posted invoices must be
// unposted first.
func (s *Service) Update(ctx context.Context, doc *SalesInvoice) error {
	if err := doc.CanModify(); err != nil {
		return err
	}

	doc.Recalculate()
	audit.EnrichUpdatedBy(ctx, &doc.UpdatedBy)

	if err := doc.Validate(ctx); err != nil {
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

// Delete soft-deletes a draft sales invoice.
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

// Post records the invoice's stock effect. Rule violations with block
// severity fail the post; warn violations ride the result.
func (s *Service) Post(ctx context.Context, docID id.ID) (*posting.Result, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	return s.post(ctx, doc, func(ctx context.Context) error {
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

// PostAndSave saves and posts an invoice atomically. This is the
// counter workflow: one call from "bill ready" to "stock adjusted".
func (s *Service) PostAndSave(ctx context.Context, doc *SalesInvoice) (*posting.Result, error) {
	doc.Recalculate()

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.assignNumber(ctx, doc); err != nil {
		return nil, err
	}

	// Decide create-vs-update before posting: the version field alone
	// cannot distinguish a never-saved invoice from a saved draft.
	isNew, err := s.isNew(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	return s.post(ctx, doc, func(ctx context.Context) error {
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

// List retrieves sales invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SalesInvoice], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) post(ctx context.Context, doc *SalesInvoice, updateDoc func(ctx context.Context) error) (*posting.Result, error) {
	violations := s.checkRules(ctx, doc)
	if rules.HasBlocking(violations) {
		for _, v := range violations {
			if v.Severity == rules.SeverityBlock {
				return nil, apperror.NewRuleViolation(v.Rule, v.Message).
					WithDetail("document_id", doc.ID.String())
			}
		}
	}

	result, err := s.postingEngine.Post(ctx, doc, updateDoc)
	if err != nil {
		return nil, err
	}

	for _, v := range violations {
		result.Warnings = append(result.Warnings, fmt.Sprintf("rule %s: %s", v.Rule, v.Message))
	}

	return result, nil
}

func (s *Service) checkRules(ctx context.Context, doc *SalesInvoice) []rules.Violation {
	if s.rules == nil {
		return nil
	}

	act := rules.Activation{
		DocumentType: doc.GetDocumentType(),
		CustomerName: doc.CustomerName,
		CustomerID:   doc.CustomerRef(),
		DoctorName:   doc.DoctorName,
		PaymentMode:  string(doc.PaymentMode),
		GrandTotal:   doc.GrandTotal.InexactFloat64(),
	}

	for _, line := range doc.BillableLines() {
		facts := rules.LineFacts{
			ItemCode:        line.ItemCode,
			ItemName:        line.ItemName,
			Batch:           line.Batch,
			HSNCode:         line.HSNCode,
			Quantity:        line.Quantity.Int64(),
			Rate:            line.Rate.InexactFloat64(),
			MRP:             line.MRP.InexactFloat64(),
			DiscountPercent: line.DiscountPercent.InexactFloat64(),
		}
		if s.schedules != nil && line.ItemCode != "" {
			facts.Schedule = s.schedules(ctx, line.ItemCode)
		}
		act.Lines = append(act.Lines, facts)
	}

	return s.rules.Check(ctx, act)
}

func (s *Service) assignNumber(ctx context.Context, doc *SalesInvoice) error {
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
