package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// DemoCatalog repuestos de ejemplo para arrancar en modo memoria sin archivo de semilla.
func DemoCatalog() []entity.SparePart {
	return []entity.SparePart{
		{ID: "LECTOR-BANDA", PartNumber: "LB-100", Name: "Lector de banda magnética", DefaultCost: decimal.NewFromInt(150)},
		{ID: "LECTOR-CHIP", PartNumber: "LC-200", Name: "Lector de chip EMV", DefaultCost: decimal.NewFromInt(220)},
		{ID: "TECLADO", PartNumber: "TK-300", Name: "Teclado", DefaultCost: decimal.NewFromInt(80)},
		{ID: "PANTALLA", PartNumber: "PT-400", Name: "Pantalla LCD", DefaultCost: decimal.NewFromInt(260)},
		{ID: "BATERIA", PartNumber: "BT-500", Name: "Batería", DefaultCost: decimal.NewFromInt(95)},
	}
}

type partRecord struct {
	ID          string          `json:"id"`
	PartNumber  string          `json:"part_number"`
	Name        string          `json:"name"`
	DefaultCost decimal.Decimal `json:"default_cost"`
}

// LoadCatalog lee un arreglo JSON de repuestos:
// [{"id":"P","part_number":"P-1","name":"...","default_cost":"150"}].
func LoadCatalog(path string) ([]entity.SparePart, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	var recs []partRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("catálogo %s: %w", path, err)
	}
	out := make([]entity.SparePart, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return nil, fmt.Errorf("catálogo %s: repuesto %d sin id", path, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("catálogo %s: id repetido %q", path, id)
		}
		if r.DefaultCost.IsNegative() {
			return nil, fmt.Errorf("catálogo %s: costo negativo en %q", path, id)
		}
		seen[id] = struct{}{}
		out = append(out, entity.SparePart{ID: id, PartNumber: r.PartNumber, Name: r.Name, DefaultCost: r.DefaultCost})
	}
	return out, nil
}

// SeedCatalog registra todos los repuestos de parts.
func (s *Store) SeedCatalog(parts []entity.SparePart) {
	for _, p := range parts {
		s.SeedPart(p)
	}
}
