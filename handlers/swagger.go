package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the site API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>medbill-site API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Admin paths live under /api/admin and need a bearer token.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "medbill-site", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } }
  },
  "paths": {
    "/api/bookings": {
      "post": {
        "summary": "Book an appointment",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name","email","phone","appointmentDate"],"properties":{"name":{"type":"string"},"email":{"type":"string"},"phone":{"type":"string"},"serviceId":{"type":"string"},"serviceName":{"type":"string"},"appointmentDate":{"type":"string","format":"date"},"appointmentTime":{"type":"string"},"message":{"type":"string"}}}}}},
        "responses": { "200": { "description": "booking created" }, "400": { "description": "validation failed" }, "429": { "description": "rate limited" } }
      }
    },
    "/api/resumes/upload": {
      "post": {
        "summary": "Upload a resume file (pdf, doc, docx)",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"file":{"type":"string","format":"binary"}}}}}},
        "responses": { "200": { "description": "file stored, url returned" }, "400": { "description": "no file" }, "413": { "description": "file too large" }, "415": { "description": "unsupported file type" } }
      }
    },
    "/api/resumes": {
      "post": { "summary": "Submit a job application", "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["careerId","fullName","email","resumeFileUrl"],"properties":{"careerId":{"type":"string"},"fullName":{"type":"string"},"email":{"type":"string"},"phone":{"type":"string"},"coverLetter":{"type":"string"},"resumeFileUrl":{"type":"string"}}}}}}, "responses": { "200": { "description": "application stored" }, "400": { "description": "validation failed" }, "404": { "description": "career not found" } } }
    },
    "/api/contacts": { "post": { "summary": "Send a contact message", "responses": { "200": { "description": "message stored" } } } },
    "/api/pages/{slug}": { "get": { "summary": "Published page by slug", "responses": { "200": { "description": "page" }, "404": { "description": "not found" } } } },
    "/api/blogs": { "get": { "summary": "Published blog posts, newest first", "responses": { "200": { "description": "paginated posts" } } } },
    "/api/blogs/{slug}": { "get": { "summary": "Published blog post by slug", "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } } },
    "/api/services": { "get": { "summary": "Services in display order", "responses": { "200": { "description": "services" } } } },
    "/api/careers": { "get": { "summary": "Open positions", "responses": { "200": { "description": "careers" } } } },
    "/api/sliders": { "get": { "summary": "Active home page sliders", "responses": { "200": { "description": "sliders" } } } },
    "/api/settings": { "get": { "summary": "Site settings as a key/value map", "responses": { "200": { "description": "settings" } } } },
    "/api/admin/auth/login": {
      "post": {
        "summary": "Admin login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/api/admin/auth/refresh": {
      "post": { "summary": "Rotate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new tokens" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/admin/auth/logout": {
      "post": { "summary": "Logout, revoke access token and refresh session", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/admin/bookings": { "get": { "security": [{"bearer": []}], "summary": "List bookings", "responses": { "200": { "description": "paginated bookings" }, "401": { "description": "access denied" } } } },
    "/api/admin/bookings/{id}": {
      "get": { "security": [{"bearer": []}], "summary": "Get booking", "responses": { "200": { "description": "booking" }, "404": { "description": "not found" } } },
      "put": { "security": [{"bearer": []}], "summary": "Update booking status or notes", "responses": { "200": { "description": "updated booking" }, "404": { "description": "not found" } } },
      "delete": { "security": [{"bearer": []}], "summary": "Delete booking", "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/admin/resumes": { "get": { "security": [{"bearer": []}], "summary": "List applications", "responses": { "200": { "description": "applications" } } } },
    "/api/admin/contacts": { "get": { "security": [{"bearer": []}], "summary": "List contact messages", "responses": { "200": { "description": "messages" } } } },
    "/api/admin/media": { "post": { "security": [{"bearer": []}], "summary": "Upload a media asset", "responses": { "200": { "description": "asset" }, "413": { "description": "file too large" }, "415": { "description": "unsupported file type" } } } },
    "/api/admin/auth/me": { "get": { "security": [{"bearer": []}], "summary": "Current admin", "responses": { "200": { "description": "identity" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
