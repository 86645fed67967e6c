package api

import (
	"github.com/starford/scribe/internal/docservice"
)

// InputRequest is the request body for typing into a document.
type InputRequest struct {
	Chars string `json:"chars" example:"# Title" validate:"required"`
}

// CommandRequest is the request body for running a key command.
type CommandRequest struct {
	Command string `json:"command" example:"bold" validate:"required"`
}

// SelectionRequest is the request body for replacing the selection.
type SelectionRequest = docservice.SelectionView

// DocumentView is the full document response type (aliased from the domain layer).
type DocumentView = docservice.View

// DocumentListItem is a lightweight item in a list response (aliased from the domain layer).
type DocumentListItem = docservice.ListItem

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []DocumentListItem `json:"documents" validate:"required"`
	Total     int                `json:"total" example:"3" validate:"required"`
}

// InputResponse is returned after typing. Claimed reports whether a
// shorthand trigger consumed any of the input.
type InputResponse struct {
	DocumentView
	Claimed bool `json:"claimed"`
}

// SaveResponse is returned after a successful save.
type SaveResponse struct {
	ID       string `json:"id" example:"notes" validate:"required"`
	Checksum string `json:"checksum" example:"abc123..." validate:"required"`
}

// TextResponse carries the plain text of a document.
type TextResponse struct {
	ID   string `json:"id" example:"notes" validate:"required"`
	Text string `json:"text" example:"Title\nbody" validate:"required"`
}

// ShorthandEntry describes one autoformat trigger (aliased from the domain layer).
type ShorthandEntry = docservice.ShorthandRule

// ShorthandResponse lists the triggers and accepted commands.
type ShorthandResponse struct {
	Triggers []ShorthandEntry `json:"triggers" validate:"required"`
	Commands []string         `json:"commands" validate:"required"`
}
