package research

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/officina-ai/officina/internal/llm"
	"github.com/officina-ai/officina/internal/prompt"
	"github.com/officina-ai/officina/pkg/workflow"
)

// Interview sub-graph node identifiers.
const (
	nodeAskQuestion     = "ask_question"
	nodeSearchWeb       = "search_web"
	nodeSearchKnowledge = "search_knowledge"
	nodeAnswerQuestion  = "answer_question"
	nodeSaveInterview   = "save_interview"
	nodeWriteSection    = "write_section"
)

// expertName attributes answer messages; the turn counter counts them.
const expertName = "expert"

// searchQuery is the structured-output target for query writing.
type searchQuery struct {
	SearchQuery string `json:"search_query"`
}

var searchQuerySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"search_query": {"type": "string", "description": "Search query for retrieval."}
	},
	"required": ["search_query"],
	"additionalProperties": false
}`)

// buildInterviewGraph wires the per-analyst interview loop:
// ask_question -> search_web -> search_knowledge -> answer_question,
// looping back to ask_question until the turn budget or the sentinel
// ends it, then save_interview -> write_section.
func (g *Generator) buildInterviewGraph() (*workflow.CompiledGraph[InterviewState], error) {
	graph := workflow.NewGraph[InterviewState]().
		AddNode(nodeAskQuestion, g.askQuestion).
		AddNode(nodeSearchWeb, g.searchWeb).
		AddNode(nodeSearchKnowledge, g.searchKnowledge).
		AddNode(nodeAnswerQuestion, g.answerQuestion).
		AddNode(nodeSaveInterview, saveInterview).
		AddNode(nodeWriteSection, g.writeSection).
		SetEntry(nodeAskQuestion).
		AddEdge(nodeAskQuestion, nodeSearchWeb).
		AddEdge(nodeSearchWeb, nodeSearchKnowledge).
		AddEdge(nodeSearchKnowledge, nodeAnswerQuestion).
		AddConditionalEdge(nodeAnswerQuestion, routeInterview).
		AddEdge(nodeSaveInterview, nodeWriteSection).
		AddEdge(nodeWriteSection, workflow.END)

	return graph.Compile()
}

// askQuestion generates the analyst's next question.
func (g *Generator) askQuestion(ctx workflow.Context, state InterviewState) (InterviewState, error) {
	system := prompt.Expand(questionInstructions, map[string]any{
		"goals": state.Analyst.Persona(),
	})

	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Messages: append([]llm.Message{llm.System(system)}, state.Messages...),
	})
	if err != nil {
		return state, fmt.Errorf("generate question: %w", err)
	}

	state.Messages = append(state.Messages, llm.Assistant(resp.Content))
	return state, nil
}

// writeSearchQuery derives a search query from the conversation so far.
func (g *Generator) writeSearchQuery(ctx workflow.Context, state InterviewState) (string, error) {
	q, err := llm.Structured[searchQuery](ctx, g.llm, llm.CompletionRequest{
		Messages:       append([]llm.Message{llm.System(searchInstructions)}, state.Messages...),
		ResponseSchema: searchQuerySchema,
		SchemaName:     "search_query",
	})
	if err != nil {
		return "", fmt.Errorf("write search query: %w", err)
	}
	return q.SearchQuery, nil
}

// searchWeb retrieves web documents for the current question and
// appends them to the context block list.
func (g *Generator) searchWeb(ctx workflow.Context, state InterviewState) (InterviewState, error) {
	query, err := g.writeSearchQuery(ctx, state)
	if err != nil {
		return state, err
	}

	docs, err := g.web.Search(ctx, query)
	if err != nil {
		return state, fmt.Errorf("web search: %w", err)
	}
	if len(docs) > 0 {
		state.Context = append(state.Context, formatDocs(docs))
	}
	return state, nil
}

// searchKnowledge retrieves encyclopedia documents for the current
// question. Runs after searchWeb on every loop iteration; both sources
// feed the same context.
func (g *Generator) searchKnowledge(ctx workflow.Context, state InterviewState) (InterviewState, error) {
	query, err := g.writeSearchQuery(ctx, state)
	if err != nil {
		return state, err
	}

	docs, err := g.knowledge.Search(ctx, query)
	if err != nil {
		return state, fmt.Errorf("knowledge search: %w", err)
	}
	if len(docs) > 0 {
		state.Context = append(state.Context, formatDocs(docs))
	}
	return state, nil
}

// answerQuestion answers as the expert using the accumulated context.
func (g *Generator) answerQuestion(ctx workflow.Context, state InterviewState) (InterviewState, error) {
	system := prompt.Expand(answerInstructions, map[string]any{
		"goals":   state.Analyst.Persona(),
		"context": strings.Join(state.Context, "\n\n"),
	})

	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Messages: append([]llm.Message{llm.System(system)}, state.Messages...),
	})
	if err != nil {
		return state, fmt.Errorf("generate answer: %w", err)
	}

	answer := llm.Assistant(resp.Content)
	answer.Name = expertName
	state.Messages = append(state.Messages, answer)
	return state, nil
}

// routeInterview decides between another question round and wrapping
// up. The interview ends when the expert has answered MaxTurns times,
// or earlier when the preceding question contains the sentinel phrase.
func routeInterview(_ workflow.Context, state InterviewState) string {
	answers := 0
	for _, m := range state.Messages {
		if m.Role == llm.RoleAssistant && m.Name == expertName {
			answers++
		}
	}
	if answers >= state.MaxTurns {
		return nodeSaveInterview
	}

	if n := len(state.Messages); n >= 2 && strings.Contains(state.Messages[n-2].Content, sentinel) {
		return nodeSaveInterview
	}
	return nodeAskQuestion
}

// saveInterview serializes the conversation into a transcript.
func saveInterview(_ workflow.Context, state InterviewState) (InterviewState, error) {
	var sb strings.Builder
	for _, m := range state.Messages {
		name := string(m.Role)
		if m.Name != "" {
			name = m.Name
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}
	state.Transcript = sb.String()
	return state, nil
}

// writeSection produces the analyst's report section, the branch's only
// externally visible output.
func (g *Generator) writeSection(ctx workflow.Context, state InterviewState) (InterviewState, error) {
	system := prompt.Expand(sectionWriterInstructions, map[string]any{
		"focus": state.Analyst.Description,
	})
	source := strings.Join(state.Context, "\n\n")
	if source == "" {
		source = state.Transcript
	}

	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.System(system),
			llm.User("Use this source to write your section: " + source),
		},
	})
	if err != nil {
		return state, fmt.Errorf("write section: %w", err)
	}
	state.Section = resp.Content
	return state, nil
}
