// Package docs documentación OpenAPI de la API, registrada en swag.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var docTemplate string

// SwaggerInfo metadatos de la especificación.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SurBlend API",
	Description:      "Formulación de mezclas de fertilizante y cotización.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

// JSON devuelve el documento ya renderizado.
func JSON() []byte {
	return []byte(SwaggerInfo.ReadDoc())
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
