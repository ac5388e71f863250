package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API docs:
// - GET /swagger/index.html  -> Swagger UI page loading the document below
// - GET /swagger/doc.json    -> OpenAPI JSON
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
    <title>portfolio-api - Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "portfolio-api", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "AssetRef": { "type": "object", "nullable": true, "properties": { "publicId": {"type":"string"}, "url": {"type":"string"}, "downloadUrl": {"type":"string"} } },
      "Home": { "type": "object", "required": ["greetingMessage","mainMessage","subMessage"], "properties": { "greetingMessage": {"type":"string","maxLength":100}, "mainMessage": {"type":"string","maxLength":200}, "subMessage": {"type":"string","maxLength":300} } },
      "About": { "type": "object", "properties": { "title": {"type":"string","maxLength":100}, "description": {"type":"string","maxLength":500}, "resume": {"$ref":"#/components/schemas/AssetRef"}, "profilePic": {"$ref":"#/components/schemas/AssetRef"} } },
      "ServiceSection": { "type": "object", "properties": { "id": {"type":"integer","minimum":0,"maximum":2}, "title": {"type":"string","maxLength":100}, "description": {"type":"string","maxLength":500}, "bgImg": {"$ref":"#/components/schemas/AssetRef"} } },
      "Error": { "type": "object", "properties": { "error": {"type":"string"}, "field": {"type":"string"} } },
      "Upload": { "type": "object", "properties": { "file": {"type":"string","format":"binary"} } }
    }
  },
  "paths": {
    "/api/home": {
      "get": { "summary": "Get home copy", "responses": { "200": { "description": "home" }, "404": { "description": "not created yet" } } },
      "put": { "summary": "Replace home copy", "security": [{"bearer":[]}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Home"} } } }, "responses": { "200": { "description": "updated home" }, "400": { "description": "missing or too long field" } } }
    },
    "/api/about": {
      "get": { "summary": "Get about", "responses": { "200": { "description": "about" }, "404": { "description": "not created yet" } } },
      "put": { "summary": "Update about text", "security": [{"bearer":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"description":{"type":"string"}}} } } }, "responses": { "200": { "description": "updated about" } } }
    },
    "/api/about/resume": {
      "put": { "summary": "Replace resume", "security": [{"bearer":[]}], "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/Upload"} } } }, "responses": { "200": { "description": "message and about" }, "400": { "description": "no file" }, "413": { "description": "file too large" } } }
    },
    "/api/about/resume/download": {
      "get": { "summary": "Download resume", "responses": { "302": { "description": "redirect to a short-lived download link" }, "404": { "description": "no resume" } } }
    },
    "/api/about/profile-pic": {
      "put": { "summary": "Replace profile picture", "security": [{"bearer":[]}], "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/Upload"} } } }, "responses": { "200": { "description": "message and about" }, "400": { "description": "no file or not an image" } } }
    },
    "/api/service": {
      "get": { "summary": "List the three service sections", "responses": { "200": { "description": "array of 3 sections" } } },
      "put": { "summary": "Update section text", "security": [{"bearer":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"array","maxItems":3,"items":{"type":"object","properties":{"id":{"type":"integer"},"title":{"type":"string"},"description":{"type":"string"}}}} } } }, "responses": { "200": { "description": "all sections written" }, "207": { "description": "some sections failed; per-id results" }, "400": { "description": "invalid array, nothing written" } } }
    },
    "/api/service/{id}/background": {
      "put": { "summary": "Replace a section background", "security": [{"bearer":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"integer"}}], "requestBody": { "content": { "multipart/form-data": { "schema": {"$ref":"#/components/schemas/Upload"} } } }, "responses": { "200": { "description": "updated section" }, "400": { "description": "no file, bad id or not an image" } } }
    },
    "/api/auth/login": {
      "post": { "summary": "Admin login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}} } } }, "responses": { "200": { "description": "token, refreshToken, expiresIn" }, "401": { "description": "bad credentials" }, "503": { "description": "login not configured" } } }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}} } } }, "responses": { "200": { "description": "new tokens" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Logout and revoke tokens", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}} } } }, "responses": { "200": { "description": "logged out" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
