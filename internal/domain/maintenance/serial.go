package maintenance

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

var upper = cases.Upper(language.Und)

// NormalizeSerial deja el número de serie en forma canónica: sin espacios, ancho normal
// (los lectores de código a veces envían caracteres full-width) y en mayúsculas.
func NormalizeSerial(raw string) (string, error) {
	s := width.Fold.String(strings.TrimSpace(raw))
	s = strings.Join(strings.Fields(s), "")
	s = upper.String(s)
	if s == "" {
		return "", domain.Validation("SERIAL_REQUIRED", "número de serie requerido")
	}
	return s, nil
}

// NormalizeSerials normaliza y exige que no haya repetidos.
func NormalizeSerials(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, domain.Validation("SERIALS_REQUIRED", "se requiere al menos un número de serie")
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		s, err := NormalizeSerial(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[s]; dup {
			return nil, domain.Validation("DUPLICATE_SERIAL", "número de serie repetido: "+s)
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
