package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Las variantes específicas envuelven a la categoría general para que la capa HTTP
// pueda distinguir el código exacto y, si no lo conoce, caer en la categoría.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrInternal     = errors.New("error interno")

	ErrLocationNotFound = fmt.Errorf("%w: ubicación", ErrNotFound)
	ErrItemNotFound     = fmt.Errorf("%w: ítem", ErrNotFound)

	ErrInvalidEvent     = fmt.Errorf("%w: evento", ErrInvalidInput)
	ErrInvalidTimestamp = fmt.Errorf("%w: timestamp", ErrInvalidInput)
	ErrInvalidQuantity  = fmt.Errorf("%w: cantidad", ErrInvalidInput)
	ErrAmbiguousItem    = fmt.Errorf("%w: nombre de ítem ambiguo", ErrInvalidInput)
	ErrInvalidRole      = fmt.Errorf("%w: rol", ErrInvalidInput)
)

// ForbiddenError es la denegación estructurada que devuelve la compuerta de autorización.
// errors.Is(err, ErrForbidden) es verdadero para cualquier *ForbiddenError.
type ForbiddenError struct {
	Kind          string // page | action
	Key           string
	RequiredLevel int
	ActorLevel    int
	Configured    bool // false si se aplicó la política por defecto
	Unreachable   bool // ningún rol alcanza el nivel exigido
}

func (e *ForbiddenError) Error() string {
	switch {
	case e.Unreachable && !e.Configured:
		return fmt.Sprintf("acceso denegado: %s %q no está configurada", e.Kind, e.Key)
	case e.Unreachable:
		return fmt.Sprintf("acceso denegado: %s %q no admite ningún rol", e.Kind, e.Key)
	}
	return fmt.Sprintf("acceso denegado: %s %q requiere nivel de rol %d", e.Kind, e.Key, e.RequiredLevel)
}

// Is permite errors.Is(err, domain.ErrForbidden).
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}
