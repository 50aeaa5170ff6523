package dto

// MaquinaFilter drives the machine picker. Q searches numero_interno,
// numero_serie, modelo, ubicacion and marca at once.
type MaquinaFilter struct {
	Q string `form:"q"`
}

type MaquinaResponse struct {
	ID            string `json:"id"`
	NumeroInterno string `json:"numero_interno"`
	NumeroSerie   string `json:"numero_serie"`
	Modelo        string `json:"modelo"`
	Marca         string `json:"marca"`
	Ubicacion     string `json:"ubicacion"`
}
