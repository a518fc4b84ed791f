// Package docs registers the Swagger document served by the UI route.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler
// annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Email Triage API",
    "description": "Ingests email threads, classifies intent, and manages suggestions, decisions and reply drafts.",
    "version": "1.0"
  },
  "basePath": "/api/v1",
  "paths": {}
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
