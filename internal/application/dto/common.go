package dto

// PageResponse página devuelta en listados de ingredientes, proveedores y
// órdenes. Total se omite cuando el adaptador no calcula conteo global.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo uniforme de error HTTP: un código estable para el
// cliente (VALIDATION, NOT_FOUND, OVER_RECEIPT...) y un mensaje legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
