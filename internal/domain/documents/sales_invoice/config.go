package sales_invoice

import "pharmabill/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Sales invoices are tax documents, so numbers must be strictly gapless.
	NumeratorStrategy = numerator.StrategyStrict

	// NumeratorPrefix is the document number prefix.
	NumeratorPrefix = "SI"
)
