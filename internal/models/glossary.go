package models

import "time"

// GlossaryResponse is the top-level response for the glossary endpoint.
type GlossaryResponse struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Categories  []GlossaryCategory `json:"categories"`
}

// GlossaryCategory groups related glossary terms.
type GlossaryCategory struct {
	Name  string         `json:"name"`
	Terms []GlossaryTerm `json:"terms"`
}

// GlossaryTerm defines a single term of the setup vocabulary.
type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Example    string `json:"example,omitempty"`
}
