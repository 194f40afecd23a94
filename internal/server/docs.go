package server

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"
)

// openAPIDoc describes every route registered in SetupRoutes. Keep it in step
// when adding or changing a route.
//
//go:embed openapi.json
var openAPIDoc string

type apiDoc struct{}

func (apiDoc) ReadDoc() string { return openAPIDoc }

func init() {
	swag.Register(swag.Name, apiDoc{})
}

// OpenAPISpec handles GET /openapi.json
func (s *Server) OpenAPISpec(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.SendString(openAPIDoc)
}
