// Package inventory contiene las reglas puras del libro de inventario: normalización de
// códigos de ubicación, tipos de evento, timestamps y el cálculo de cantidades por evento.
package inventory

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/backoffice-api/internal/domain"
)

// LocationCode código "pasillo-rack" ya normalizado.
type LocationCode struct {
	Row  string
	Rack string
}

// String formato canónico "A1-R02".
func (l LocationCode) String() string {
	return l.Row + "-" + l.Rack
}

// NormalizeLocation unifica guiones (ASCII, en/em dash, signo menos, variantes de ancho completo),
// recorta espacios y pasa a mayúsculas. No valida el formato.
func NormalizeLocation(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.Map(func(r rune) rune {
		if r == '\u2212' || unicode.Is(unicode.Pd, r) {
			return '-'
		}
		return r
	}, s)
	// Caser guarda estado: uno por llamada.
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// ParseLocationCode normaliza y separa el código en exactamente dos partes no vacías.
// Cualquier otro formato se reporta como ErrLocationNotFound.
func ParseLocationCode(raw string) (LocationCode, error) {
	s := NormalizeLocation(raw)
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return LocationCode{}, fmt.Errorf("%w: %q debe tener formato 'Pasillo-Rack' (ej. A1-R02)", domain.ErrLocationNotFound, raw)
	}
	row, rack := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if row == "" || rack == "" {
		return LocationCode{}, fmt.Errorf("%w: %q debe tener formato 'Pasillo-Rack' (ej. A1-R02)", domain.ErrLocationNotFound, raw)
	}
	return LocationCode{Row: row, Rack: rack}, nil
}

// FoldName clave de comparación insensible a mayúsculas para nombres de ítems.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
