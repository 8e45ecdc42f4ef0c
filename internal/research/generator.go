package research

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/officina-ai/officina/internal/llm"
	"github.com/officina-ai/officina/internal/prompt"
	"github.com/officina-ai/officina/pkg/workflow"
)

// FeedbackFunc reviews a generated roster. Returning "approve" accepts
// it; any other string is editorial feedback for regeneration.
type FeedbackFunc func(analysts []Analyst) string

// maxFeedbackRounds bounds the regenerate loop so non-approving
// feedback cannot spin forever.
const maxFeedbackRounds = 3

var analystsSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"analysts": {
			"type": "array",
			"description": "Comprehensive list of analysts with their roles and affiliations.",
			"items": {
				"type": "object",
				"properties": {
					"name":        {"type": "string", "description": "Name of the analyst."},
					"affiliation": {"type": "string", "description": "Primary affiliation of the analyst."},
					"role":        {"type": "string", "description": "Role of the analyst in the context of the topic."},
					"description": {"type": "string", "description": "Description of the analyst focus, concerns, and motives."}
				},
				"required": ["name", "affiliation", "role", "description"],
				"additionalProperties": false
			}
		}
	},
	"required": ["analysts"],
	"additionalProperties": false
}`)

// Generator runs the full report workflow. Construct once and reuse;
// all state lives in the per-run ReportState and branch InterviewStates.
type Generator struct {
	llm            llm.Client
	web            Searcher
	knowledge      Searcher
	maxTurns       int
	maxConcurrency int
	feedback       FeedbackFunc
	interview      *workflow.CompiledGraph[InterviewState]
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithMaxTurns bounds expert answers per interview.
func WithMaxTurns(n int) GeneratorOption {
	return func(g *Generator) { g.maxTurns = n }
}

// WithMaxConcurrency bounds parallel interview branches.
func WithMaxConcurrency(n int) GeneratorOption {
	return func(g *Generator) { g.maxConcurrency = n }
}

// WithFeedback installs a roster review step. Without one every roster
// is approved immediately.
func WithFeedback(fn FeedbackFunc) GeneratorOption {
	return func(g *Generator) { g.feedback = fn }
}

// NewGenerator builds the generator and compiles the interview graph.
func NewGenerator(client llm.Client, web, knowledge Searcher, opts ...GeneratorOption) (*Generator, error) {
	g := &Generator{
		llm:            client,
		web:            web,
		knowledge:      knowledge,
		maxTurns:       2,
		maxConcurrency: 4,
	}
	for _, opt := range opts {
		opt(g)
	}

	compiled, err := g.buildInterviewGraph()
	if err != nil {
		return nil, fmt.Errorf("compile interview graph: %w", err)
	}
	g.interview = compiled
	return g, nil
}

// CreateAnalysts generates the roster with a structured completion.
func (g *Generator) CreateAnalysts(ctx workflow.Context, topic string, maxAnalysts int, feedback string) ([]Analyst, error) {
	system := prompt.Expand(analystInstructions, map[string]any{
		"topic":        topic,
		"feedback":     feedback,
		"max_analysts": maxAnalysts,
	})

	out, err := llm.Structured[roster](ctx, g.llm, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.System(system),
			llm.User("Generate the set of analysts."),
		},
		ResponseSchema: analystsSchema,
		SchemaName:     "perspectives",
	})
	if err != nil {
		return nil, fmt.Errorf("create analysts: %w", err)
	}
	if len(out.Analysts) > maxAnalysts {
		out.Analysts = out.Analysts[:maxAnalysts]
	}
	return out.Analysts, nil
}

// Generate runs the whole workflow: roster (with feedback rounds),
// parallel interviews, and fan-in aggregation. The returned state
// carries the final report text; rendering to disk is Finalize's job.
func (g *Generator) Generate(ctx workflow.Context, topic string, maxAnalysts int) (ReportState, error) {
	state := ReportState{Topic: topic, MaxAnalysts: maxAnalysts}

	feedback := ""
	for round := 0; ; round++ {
		analysts, err := g.CreateAnalysts(ctx, topic, maxAnalysts, feedback)
		if err != nil {
			return state, err
		}
		state.Analysts = analysts

		if g.feedback == nil {
			break
		}
		verdict := strings.ToLower(strings.TrimSpace(g.feedback(analysts)))
		if verdict == "approve" || verdict == "" || round >= maxFeedbackRounds-1 {
			break
		}
		feedback = verdict
		state.Feedback = verdict
	}

	sections, err := g.conductInterviews(ctx, state)
	if err != nil {
		return state, err
	}
	state.Sections = sections

	if err := g.aggregate(ctx, &state); err != nil {
		return state, err
	}
	return state, nil
}

// conductInterviews fans out one isolated interview branch per analyst
// and collects sections in roster order, so report assembly is
// deterministic regardless of branch completion order.
func (g *Generator) conductInterviews(ctx workflow.Context, state ReportState) ([]string, error) {
	opening := fmt.Sprintf("I would like detailed information about %s.", state.Topic)

	branches := make([]workflow.Branch[InterviewState], len(state.Analysts))
	for i, analyst := range state.Analysts {
		branches[i] = workflow.Branch[InterviewState]{
			ID: fmt.Sprintf("interview-%d", i),
			State: InterviewState{
				Analyst:     analyst,
				RosterIndex: i,
				MaxTurns:    g.maxTurns,
				Messages:    []llm.Message{llm.User(opening)},
			},
		}
	}

	results, err := workflow.FanOut(ctx, g.interview, branches,
		workflow.WithMaxConcurrency(g.maxConcurrency))
	if err != nil {
		return nil, fmt.Errorf("conduct interviews: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].State.RosterIndex < results[j].State.RosterIndex
	})
	sections := make([]string, len(results))
	for i, r := range results {
		sections[i] = r.State.Section
	}
	return sections, nil
}

// aggregate is the fan-in step: body, introduction and conclusion from
// the same section set, then final assembly.
func (g *Generator) aggregate(ctx workflow.Context, state *ReportState) error {
	joined := strings.Join(state.Sections, "\n\n")

	body, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.System(prompt.Expand(reportWriterInstructions, map[string]any{
				"topic":   state.Topic,
				"context": joined,
			})),
			llm.User("Write a report based upon these memos."),
		},
	})
	if err != nil {
		return fmt.Errorf("write report body: %w", err)
	}
	state.Content = body.Content

	intro, err := g.writeBookend(ctx, state.Topic, joined, "Write the report introduction")
	if err != nil {
		return fmt.Errorf("write introduction: %w", err)
	}
	state.Introduction = intro

	conclusion, err := g.writeBookend(ctx, state.Topic, joined, "Write the report conclusion")
	if err != nil {
		return fmt.Errorf("write conclusion: %w", err)
	}
	state.Conclusion = conclusion

	state.FinalReport = assembleReport(state.Introduction, state.Content, state.Conclusion)
	return nil
}

func (g *Generator) writeBookend(ctx workflow.Context, topic, sections, instruction string) (string, error) {
	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.System(prompt.Expand(introConclusionInstructions, map[string]any{
				"topic":    topic,
				"sections": sections,
			})),
			llm.User(instruction),
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// assembleReport strips the body's leading "## Insights" header, splits
// off a trailing "## Sources" block and concatenates introduction,
// body, conclusion and sources.
func assembleReport(introduction, content, conclusion string) string {
	content = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(content), "## Insights"))

	sources := ""
	if idx := strings.Index(content, "\n## Sources\n"); idx >= 0 {
		sources = content[idx+len("\n## Sources\n"):]
		content = content[:idx]
	}

	report := introduction + "\n\n---\n\n" + content + "\n\n---\n\n" + conclusion
	if sources != "" {
		report += "\n\n## Sources\n" + sources
	}
	return report
}
