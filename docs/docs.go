// Package docs registra la especificación OpenAPI de la API en swag.
// El mismo swagger.json lo sirve la UI en /docs.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var docTemplate string

// SwaggerInfo metadatos de la API; main puede ajustar Host según la configuración.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Mantenimiento API",
	Description:      "Ciclo de mantenimiento de datáfonos entre sucursales.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
