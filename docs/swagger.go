package docs

import "github.com/swaggo/swag"

// @title           BusyBoard API
// @version         1.0
// @description     API for kanban-style task boards with owners, invited members, and cards

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Users
// @tag.description Registration, sign-in, and account settings

// @tag.name Boards
// @tag.description Board management, detail, and export

// @tag.name Membership
// @tag.description Inviting, removing, and leaving boards

// @tag.name Cards
// @tag.description Card management and the status lanes

var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Title:            "BusyBoard API",
	Description:      "API for kanban-style task boards with owners, invited members, and cards",
	InfoInstanceName: "swagger",
	SwaggerTemplate: `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}"
}`,
}

func init() {
	swag.Register(swag.Name, swaggerInfo)
}

// Register swagger info
func SwaggerInfo() *swag.Spec {
	return swaggerInfo
}
