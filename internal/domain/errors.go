package domain

import "errors"

// Errores de dominio (sin dependencias externas). El núcleo devuelve siempre
// uno de estos centinelas; la capa HTTP los traduce a códigos de estado.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidState       = errors.New("transición no permitida desde el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrOverReceipt        = errors.New("cantidad recibida excede lo pendiente de la orden")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
)
