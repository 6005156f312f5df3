package item

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmabill/internal/core/types"
)

func TestItem_Defaults(t *testing.T) {
	it := NewItem("ITM-2026-00001", "Paracetamol 500mg")

	assert.Equal(t, "General", it.Category)
	assert.Equal(t, types.Quantity(10), it.ReorderLevel)
	assert.False(t, it.IsScheduled())
}

func TestItem_ValidateSchedule(t *testing.T) {
	it := NewItem("ITM-2026-00002", "Alprazolam 0.5mg")
	it.Schedule = ScheduleH1

	require.NoError(t, it.Validate(context.Background()))
	assert.True(t, it.IsScheduled())

	it.Schedule = Schedule("Z")
	assert.Error(t, it.Validate(context.Background()))
}

func TestItem_ValidateNegativeRates(t *testing.T) {
	it := NewItem("ITM-2026-00003", "Cough Syrup 100ml")
	it.DefaultCGST = types.NewMoney(-6)

	assert.Error(t, it.Validate(context.Background()))
}
