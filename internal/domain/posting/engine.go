// Package posting provides the document posting engine.
//
// Posting turns a saved invoice into register facts: the document's lines
// are reconciled into stock deltas, the deltas are applied to the stock
// register, and the document is marked posted - all inside one
// transaction. Unposting reverses the register effect.
package posting

import (
	"context"
	"fmt"
	"time"

	"pharmabill/internal/core/apperror"
	"pharmabill/internal/core/id"
	"pharmabill/internal/core/tx"
	"pharmabill/internal/domain/registers/stock"
	"pharmabill/pkg/logger"
)

// Postable is implemented by documents that can be posted to registers.
// entity.Document provides defaults for everything except
// GetDocumentType and GenerateDeltas.
type Postable interface {
	GetID() id.ID
	GetDocumentType() string
	GetDate() time.Time
	GetPostedVersion() int
	IsPosted() bool
	CanPost(ctx context.Context) error
	MarkPosted()
	MarkUnposted()

	// GenerateDeltas reconciles the document's lines against a stock
	// snapshot into signed deltas. Pure apart from the lookup capability.
	GenerateDeltas(ctx context.Context, lookup stock.Lookup) ([]stock.Delta, error)
}

// Result reports what a post did, line by line. Unresolved lines are
// warnings, not failures: the document still posts for resolved lines.
type Result struct {
	Outcomes []stock.Outcome `json:"outcomes"`
	Warnings []string        `json:"warnings,omitempty"`
}

// EventSink receives document lifecycle events inside the posting
// transaction, so the event and the register writes commit or roll back
// together. Backed by the transactional outbox.
type EventSink interface {
	DocumentPosted(ctx context.Context, doc Postable, result *Result) error
	DocumentUnposted(ctx context.Context, doc Postable) error
}

// Engine coordinates document posting against the stock register.
type Engine struct {
	stockSvc  *stock.Service
	policy    Policy
	txManager tx.Manager
	events    []EventSink
}

// NewEngine creates a posting engine.
func NewEngine(stockSvc *stock.Service, policy Policy, txManager tx.Manager) *Engine {
	if policy == nil {
		policy = OpenPolicy{}
	}
	return &Engine{
		stockSvc:  stockSvc,
		policy:    policy,
		txManager: txManager,
	}
}

// WithEvents attaches event sinks. All sinks run inside the posting
// transaction in registration order.
func (e *Engine) WithEvents(sinks ...EventSink) *Engine {
	e.events = append(e.events, sinks...)
	return e
}

// Post records the document's stock effect and marks it posted.
// Re-posting an already posted document first reverses the previous
// version's movements, so the register always reflects exactly one
// posting iteration. updateDoc persists the document inside the same
// transaction.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) (*Result, error) {
	if err := doc.CanPost(ctx); err != nil {
		return nil, err
	}
	if err := e.policy.CanPost(ctx, doc.GetDate()); err != nil {
		return nil, err
	}

	result := &Result{}

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if doc.IsPosted() {
			if err := e.stockSvc.Reverse(ctx, doc.GetID(), doc.GetPostedVersion()+1); err != nil {
				return fmt.Errorf("reverse previous posting: %w", err)
			}
		}

		deltas, err := doc.GenerateDeltas(ctx, e.stockSvc.Snapshot(ctx))
		if err != nil {
			return fmt.Errorf("generate deltas: %w", err)
		}

		doc.MarkPosted()

		outcomes, err := e.stockSvc.ApplyDeltas(ctx, stock.Recorder{
			ID:      doc.GetID(),
			Type:    doc.GetDocumentType(),
			Version: doc.GetPostedVersion(),
			Period:  doc.GetDate(),
		}, deltas)
		if err != nil {
			return fmt.Errorf("apply deltas: %w", err)
		}
		result.Outcomes = outcomes

		if err := updateDoc(ctx); err != nil {
			return err
		}

		for _, sink := range e.events {
			if err := sink.DocumentPosted(ctx, doc, result); err != nil {
				return fmt.Errorf("publish posted event: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, o := range result.Outcomes {
		switch o.Status {
		case stock.OutcomeUnresolved:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("line %d: no stock record for %s/%s; quantity not adjusted", o.LineNo, o.ItemCode, o.Batch))
		case stock.OutcomeConflict:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("line %d: %s/%s already belongs to a different item; quantity not adjusted", o.LineNo, o.ItemCode, o.Batch))
		}
	}

	logger.Info(ctx, "document posted",
		"id", doc.GetID(),
		"type", doc.GetDocumentType(),
		"version", doc.GetPostedVersion(),
		"warnings", len(result.Warnings),
	)

	return result, nil
}

// Unpost reverses the document's register effect and clears the posted flag.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "Document is not posted").
			WithDetail("document_id", doc.GetID().String())
	}
	if err := e.policy.CanUnpost(ctx, doc.GetDate()); err != nil {
		return err
	}

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.stockSvc.Reverse(ctx, doc.GetID(), doc.GetPostedVersion()+1); err != nil {
			return fmt.Errorf("reverse movements: %w", err)
		}
		doc.MarkUnposted()

		if err := updateDoc(ctx); err != nil {
			return err
		}

		for _, sink := range e.events {
			if err := sink.DocumentUnposted(ctx, doc); err != nil {
				return fmt.Errorf("publish unposted event: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document unposted",
		"id", doc.GetID(),
		"type", doc.GetDocumentType(),
	)

	return nil
}
