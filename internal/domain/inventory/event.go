package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// EventTimestampLayout formato día/mes/año que envían los lectores IoT ("13/09/2025 17:33:23").
const EventTimestampLayout = "2/1/2006 15:04:05"

// Formatos ISO-8601 aceptados además de RFC 3339.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// NormalizeEventKind acepta variantes legibles ("Item Added") y devuelve el tipo canónico.
func NormalizeEventKind(raw string) (entity.EventKind, error) {
	k := entity.EventKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_"))
	switch k {
	case entity.EventItemAdded, entity.EventItemRemoved:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q debe ser %s o %s", domain.ErrInvalidEvent, raw, entity.EventItemAdded, entity.EventItemRemoved)
}

// ParseEventTimestamp interpreta el timestamp del evento. Vacío -> now.
// Los valores sin zona horaria se interpretan en loc.
func ParseEventTimestamp(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return now, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(EventTimestampLayout, s, loc); err == nil {
		return t, nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q debe estar en formato 'DD/MM/YYYY HH:MM:SS' o ISO 8601", domain.ErrInvalidTimestamp, raw)
}

// ValidateQuantity nil -> 1; la cantidad debe ser un entero positivo.
func ValidateQuantity(q *int) (int, error) {
	if q == nil {
		return 1, nil
	}
	if *q < 1 {
		return 0, fmt.Errorf("%w: %d debe ser mayor o igual a 1", domain.ErrInvalidQuantity, *q)
	}
	return *q, nil
}
