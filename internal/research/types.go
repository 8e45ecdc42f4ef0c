// Package research implements the analyst report generator: a roster
// of AI analyst personas is created for a topic, each analyst runs an
// interview sub-workflow against an "expert" model in parallel, and a
// fan-in aggregator assembles the sections into a final report with a
// rendered PDF.
package research

import (
	"fmt"

	"github.com/officina-ai/officina/internal/llm"
)

// Analyst is one generated persona. Each analyst owns a theme of the
// research topic and conducts one interview.
type Analyst struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// Persona renders the analyst for prompt conditioning.
func (a Analyst) Persona() string {
	return fmt.Sprintf("Name: %s\nRole: %s\nAffiliation: %s\nDescription: %s\n",
		a.Name, a.Role, a.Affiliation, a.Description)
}

// roster is the structured-output target for analyst generation.
type roster struct {
	Analysts []Analyst `json:"analysts"`
}

// InterviewState is the private state of one interview branch. Branches
// never share state; the join barrier reads only the final Section.
type InterviewState struct {
	Analyst Analyst `json:"analyst"`

	// RosterIndex is the analyst's position in the generated roster.
	// It is the deterministic sort key for report assembly.
	RosterIndex int `json:"roster_index"`

	MaxTurns int           `json:"max_turns"`
	Messages []llm.Message `json:"messages"`

	// Context accumulates retrieved source blocks; append-only.
	Context []string `json:"context"`

	Transcript string `json:"transcript,omitempty"`
	Section    string `json:"section,omitempty"`
}

// ReportState is the top-level generator state.
type ReportState struct {
	Topic       string    `json:"topic"`
	MaxAnalysts int       `json:"max_analysts"`
	Analysts    []Analyst `json:"analysts"`

	// Feedback is the editorial feedback on the roster; anything other
	// than "approve" routes back to roster generation.
	Feedback string `json:"feedback,omitempty"`

	Sections     []string `json:"sections"`
	Introduction string   `json:"introduction,omitempty"`
	Content      string   `json:"content,omitempty"`
	Conclusion   string   `json:"conclusion,omitempty"`
	FinalReport  string   `json:"final_report,omitempty"`
}
