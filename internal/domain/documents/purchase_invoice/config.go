package purchase_invoice

import "pharmabill/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Purchase entry tolerates gaps; cached numbering keeps it cheap.
	NumeratorStrategy = numerator.StrategyCached

	// NumeratorPrefix is the document number prefix.
	NumeratorPrefix = "PI"

	// ItemCodePrefix numbers the item codes synthesized for catalog-less
	// lines during purchase entry.
	ItemCodePrefix = "ITM"
)
