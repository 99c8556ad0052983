package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica un error de dominio. Es estable: el colaborador HTTP lo usa para decidir
// el status y la traducción del mensaje.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindDuplicateReceipt  Kind = "DUPLICATE_RECEIPT"
	KindConflict          Kind = "CONFLICT"
	KindInfrastructure    Kind = "INFRASTRUCTURE"
)

// Error es el error de dominio: Kind (taxonomía), Code (detalle estable) y Message legible.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind, así errors.Is(err, ErrNotFound) funciona con cualquier NotFound.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput      = &Error{Kind: KindValidation, Code: "VALIDATION", Message: "entrada inválida"}
	ErrNotFound          = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "recurso no encontrado"}
	ErrForbidden         = &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: "acceso denegado"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Code: "INVALID_TRANSITION", Message: "transición no permitida"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	ErrDuplicateReceipt  = &Error{Kind: KindDuplicateReceipt, Code: "DUPLICATE_RECEIPT", Message: "el número de recibo ya existe"}
	ErrConflict          = &Error{Kind: KindConflict, Code: "CONFLICT", Message: "conflicto con el estado actual"}
	ErrInfrastructure    = &Error{Kind: KindInfrastructure, Code: "INFRASTRUCTURE", Message: "error de infraestructura"}
)

// Validation crea un error de validación con código propio.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// NotFound crea un NOT_FOUND para un recurso concreto.
func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf("%s %q no encontrado", resource, id)}
}

// Forbidden crea un FORBIDDEN con el motivo.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

// Conflict crea un CONFLICT con código propio (APPROVAL_PENDING, ORDER_ALREADY_RECEIVED, ...).
func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// InvalidTransition describe una acción no permitida desde un estado.
func InvalidTransition(from, action string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("la acción %s no está permitida desde el estado %s", action, from),
	}
}

// InsufficientStock describe el faltante de un repuesto en una sucursal.
func InsufficientStock(branchID, partID string, available, requested int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Code:    "INSUFFICIENT_STOCK",
		Message: fmt.Sprintf("stock insuficiente del repuesto %s en %s: disponible %d, requerido %d", partID, branchID, available, requested),
	}
}

// DuplicateReceipt indica que el recibo ya fue registrado.
func DuplicateReceipt(receipt string) *Error {
	return &Error{Kind: KindDuplicateReceipt, Code: "DUPLICATE_RECEIPT", Message: fmt.Sprintf("el recibo %q ya fue registrado", receipt)}
}

// Infrastructure envuelve un fallo de BD/conexión.
func Infrastructure(err error) *Error {
	return &Error{Kind: KindInfrastructure, Code: "INFRASTRUCTURE", Message: "error de infraestructura", Err: err}
}

// KindOf devuelve el Kind de cualquier error; lo desconocido es INFRASTRUCTURE.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// CodeOf devuelve el Code de un error de dominio o INFRASTRUCTURE.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return string(KindInfrastructure)
}
