package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

func TestPartLines_TotalYNormalize(t *testing.T) {
	lines := entity.PartLines{
		{PartID: "P1", Quantity: 2, UnitCost: decimal.RequireFromString("100.50")},
		{PartID: "P2", Quantity: 1, UnitCost: decimal.NewFromInt(99)},
		{PartID: "P1", Quantity: 1, UnitCost: decimal.NewFromInt(1)},
	}
	norm := lines.Normalize()
	require.Len(t, norm, 2)
	assert.Equal(t, "P1", norm[0].PartID)
	assert.Equal(t, 3, norm[0].Quantity)
	assert.True(t, norm[0].UnitCost.Equal(decimal.RequireFromString("100.50")))

	assert.True(t, norm.Total().Equal(decimal.RequireFromString("400.50")), "total: %s", norm.Total())
}

func TestPartLines_Validate(t *testing.T) {
	assert.NoError(t, entity.PartLines{{PartID: "P1", Quantity: 1}}.Validate())
	assert.Error(t, entity.PartLines{{PartID: "", Quantity: 1}}.Validate())
	assert.Error(t, entity.PartLines{{PartID: "P1", Quantity: 0}}.Validate())
	assert.Error(t, entity.PartLines{{PartID: "P1", Quantity: 1, UnitCost: decimal.NewFromInt(-1)}}.Validate())
}

func TestPartLines_ContratoJSON(t *testing.T) {
	lines := entity.PartLines{{PartID: "P1", Quantity: 2, UnitCost: decimal.RequireFromString("150.00")}}
	raw, err := lines.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"part_id":"P1","quantity":2,"unit_cost":"150"}]`, string(raw))

	back, err := entity.DecodePartLines(raw)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.True(t, back[0].UnitCost.Equal(decimal.NewFromInt(150)))

	// unit_cost numérico también se acepta al leer
	back, err = entity.DecodePartLines([]byte(`[{"part_id":"P9","quantity":1,"unit_cost":12.5}]`))
	require.NoError(t, err)
	assert.True(t, back[0].UnitCost.Equal(decimal.RequireFromString("12.5")))

	var empty entity.PartLines
	raw, err = empty.Encode()
	require.NoError(t, err)
	assert.Nil(t, raw)

	back, err = entity.DecodePartLines([]byte("null"))
	require.NoError(t, err)
	assert.Nil(t, back)

	_, err = entity.DecodePartLines([]byte("{"))
	assert.Error(t, err)
}

func TestDebtStatusFor(t *testing.T) {
	orig := decimal.NewFromInt(300)
	assert.Equal(t, entity.DebtPending, entity.DebtStatusFor(orig, orig))
	assert.Equal(t, entity.DebtPendingPayment, entity.DebtStatusFor(orig, decimal.NewFromInt(100)))
	assert.Equal(t, entity.DebtPaid, entity.DebtStatusFor(orig, decimal.Zero))
}
