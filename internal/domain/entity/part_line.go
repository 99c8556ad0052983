package entity

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PartLine un repuesto cotizado o consumido: id, cantidad y costo unitario.
type PartLine struct {
	PartID   string          `json:"part_id"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// PartLines lista ordenada de repuestos. Se persiste como arreglo JSON:
//
//	[{"part_id":"P-1","quantity":2,"unit_cost":"150.00"}]
//
// unit_cost viaja como string decimal; nil se persiste como null.
type PartLines []PartLine

// Validate exige part_id, cantidad positiva y costo no negativo en cada línea.
func (l PartLines) Validate() error {
	for i, p := range l {
		if p.PartID == "" {
			return fmt.Errorf("línea %d: part_id requerido", i)
		}
		if p.Quantity <= 0 {
			return fmt.Errorf("línea %d: quantity debe ser positiva", i)
		}
		if p.UnitCost.IsNegative() {
			return fmt.Errorf("línea %d: unit_cost negativo", i)
		}
	}
	return nil
}

// Total suma quantity * unit_cost.
func (l PartLines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range l {
		total = total.Add(p.UnitCost.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// Normalize fusiona líneas repetidas del mismo repuesto conservando el orden de aparición.
// El costo unitario de la primera aparición gana.
func (l PartLines) Normalize() PartLines {
	if len(l) == 0 {
		return nil
	}
	out := make(PartLines, 0, len(l))
	idx := make(map[string]int, len(l))
	for _, p := range l {
		if i, ok := idx[p.PartID]; ok {
			out[i].Quantity += p.Quantity
			continue
		}
		idx[p.PartID] = len(out)
		out = append(out, p)
	}
	return out
}

// Clone copia la lista (las entidades no comparten slices).
func (l PartLines) Clone() PartLines {
	if l == nil {
		return nil
	}
	out := make(PartLines, len(l))
	copy(out, l)
	return out
}

// Encode serializa a JSON; nil -> null.
func (l PartLines) Encode() ([]byte, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal([]PartLine(l))
}

// DecodePartLines interpreta el JSON persistido. Vacío o null -> nil.
func DecodePartLines(raw []byte) (PartLines, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var l PartLines
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decode part lines: %w", err)
	}
	return l, nil
}
