package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultRules())
	require.NoError(t, err)
	return e
}

func TestEngine_CompileRejectsNonBool(t *testing.T) {
	_, err := NewEngine([]Rule{{
		Name:       "bad",
		Expression: `grandTotal + 1.0`,
		Severity:   SeverityWarn,
	}})
	require.Error(t, err)
}

func TestEngine_CompileRejectsBadSyntax(t *testing.T) {
	_, err := NewEngine([]Rule{{
		Name:       "broken",
		Expression: `lines.all(l,`,
		Severity:   SeverityBlock,
	}})
	require.Error(t, err)
}

func TestEngine_DiscountCapWarns(t *testing.T) {
	e := defaultEngine(t)

	violations := e.Check(context.Background(), Activation{
		DoctorName: "Dr. Rao",
		Lines: []LineFacts{
			{ItemName: "Paracetamol", Quantity: 2, DiscountPercent: 30},
		},
	})

	require.Len(t, violations, 1)
	assert.Equal(t, "discount-cap", violations[0].Rule)
	assert.Equal(t, SeverityWarn, violations[0].Severity)
	assert.False(t, HasBlocking(violations))
}

func TestEngine_ScheduleNeedsDoctor(t *testing.T) {
	e := defaultEngine(t)

	violations := e.Check(context.Background(), Activation{
		Lines: []LineFacts{
			{ItemName: "Alprazolam", Schedule: "H1", Quantity: 1},
		},
	})

	require.Len(t, violations, 1)
	assert.Equal(t, "schedule-needs-doctor", violations[0].Rule)
	assert.True(t, HasBlocking(violations))

	// Same invoice with a doctor passes
	violations = e.Check(context.Background(), Activation{
		DoctorName: "Dr. Rao",
		Lines: []LineFacts{
			{ItemName: "Alprazolam", Schedule: "H1", Quantity: 1},
		},
	})
	assert.Empty(t, violations)
}

func TestEngine_CreditNeedsCustomer(t *testing.T) {
	e := defaultEngine(t)

	violations := e.Check(context.Background(), Activation{
		PaymentMode: "credit",
	})
	require.Len(t, violations, 1)
	assert.Equal(t, "credit-needs-customer", violations[0].Rule)

	violations = e.Check(context.Background(), Activation{
		PaymentMode: "credit",
		CustomerID:  "0194b2f3-1111-7000-8000-000000000001",
	})
	assert.Empty(t, violations)
}

func TestEngine_NilEngineChecksNothing(t *testing.T) {
	var e *Engine
	assert.Empty(t, e.Check(context.Background(), Activation{}))
}
