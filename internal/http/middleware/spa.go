package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

const placeholderPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8" /><title>crmapi</title></head>
<body><p>The web client has not been built yet. The API is served under /api.</p></body>
</html>`

// SPA serves a single page application exported to dir. GET requests outside
// /api that match no file get index.html, or a placeholder page when the
// export has none.
func SPA(dir string) fiber.Handler {
	skip := func(c *fiber.Ctx) bool {
		return c.Method() != fiber.MethodGet || strings.HasPrefix(c.Path(), "/api")
	}
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		return func(c *fiber.Ctx) error {
			if skip(c) {
				return c.Next()
			}
			return c.Type("html").SendString(placeholderPage)
		}
	}
	return filesystem.New(filesystem.Config{
		Next:         skip,
		Root:         http.Dir(dir),
		Index:        "index.html",
		NotFoundFile: "index.html",
	})
}
