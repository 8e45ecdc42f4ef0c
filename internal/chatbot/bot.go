package chatbot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/officina-ai/officina/internal/llm"
	"github.com/officina-ai/officina/internal/prompt"
	"github.com/officina-ai/officina/internal/retrieval"
	"github.com/officina-ai/officina/pkg/workflow"
)

// Node identifiers of the turn graph.
const (
	nodeDetectType    = "detect_type"
	nodeGeneralAnswer = "general_answer"
	nodeLinkLookup    = "link_lookup"
	nodePromotion     = "promotion"
	nodeWorkshop      = "workshop"
	nodeAskPermission = "ask_permission"
	nodeGetWorkshops  = "get_workshops"
	nodeTerminate     = "terminate"
)

// Bot runs one support conversation turn through the classifier and
// action-node graph. All dependencies are passed in at construction;
// Bot holds no global state and is safe for concurrent turns across
// different sessions.
type Bot struct {
	llm           llm.Client
	index         *retrieval.Index
	locator       Locator
	promotionTopK int
	graph         *workflow.CompiledGraph[State]
}

// Option configures a Bot.
type Option func(*Bot)

// WithPromotionTopK sets how many documents the promotion node
// retrieves before deduplication.
func WithPromotionTopK(k int) Option {
	return func(b *Bot) { b.promotionTopK = k }
}

// New builds the turn graph. The index may be empty but not nil.
func New(client llm.Client, index *retrieval.Index, locator Locator, opts ...Option) (*Bot, error) {
	b := &Bot{
		llm:           client,
		index:         index,
		locator:       locator,
		promotionTopK: 4,
	}
	for _, opt := range opts {
		opt(b)
	}

	g := workflow.NewGraph[State]().
		AddNode(nodeDetectType, b.detectType).
		AddNode(nodeGeneralAnswer, b.generalAnswer).
		AddNode(nodeLinkLookup, b.linkLookup).
		AddNode(nodePromotion, b.promotion).
		AddNode(nodeWorkshop, b.workshopCheck).
		AddNode(nodeAskPermission, b.askPermission).
		AddNode(nodeGetWorkshops, b.getWorkshops).
		AddNode(nodeTerminate, b.terminate).
		SetEntry(nodeDetectType).
		AddConditionalEdge(nodeDetectType, routeClassification).
		AddConditionalEdge(nodeWorkshop, routeLocation).
		AddEdge(nodeGeneralAnswer, nodeLinkLookup).
		AddEdge(nodeLinkLookup, workflow.END).
		AddEdge(nodePromotion, workflow.END).
		AddEdge(nodeAskPermission, workflow.END).
		AddEdge(nodeGetWorkshops, workflow.END).
		AddEdge(nodeTerminate, workflow.END)

	compiled, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile chatbot graph: %w", err)
	}
	b.graph = compiled
	return b, nil
}

// Turn processes one user message. The returned state always carries a
// user-visible reply: internal failures degrade to a fallback message
// in the conversation, with the cause returned for logging. Message
// history only ever grows.
func (b *Bot) Turn(ctx workflow.Context, state State, userText string) (State, error) {
	state = state.append(Message{Role: "user", Text: userText})
	state.Classification = ""

	out, err := b.graph.Run(ctx, state)
	if err != nil {
		state = state.append(Message{Role: "assistant", Text: fallbackMessage, Complete: true})
		return state, err
	}

	if n := len(out.Messages); n > 0 {
		out.Messages[n-1].Complete = true
	}
	return out, nil
}

// routeClassification maps the normalized classifier label onto the
// next node. Labels outside the enum always fall back to terminate.
func routeClassification(_ workflow.Context, state State) string {
	switch strings.ToLower(strings.TrimSpace(state.Classification)) {
	case "general":
		return nodeGeneralAnswer
	case "promotion":
		return nodePromotion
	case "workshop":
		return nodeWorkshop
	default:
		return nodeTerminate
	}
}

// routeLocation picks the workshop branch from the side-channel flag
// set by workshopCheck.
func routeLocation(_ workflow.Context, state State) string {
	if state.Location == LocationProvided {
		return nodeGetWorkshops
	}
	return nodeAskPermission
}

// detectType classifies the latest user message. The raw label is
// stored as-is; normalization happens in the router.
func (b *Bot) detectType(ctx workflow.Context, state State) (State, error) {
	resp, err := b.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.System(classifyPrompt),
			llm.User(state.lastUserText()),
		},
	})
	if err != nil {
		return state, fmt.Errorf("classify message: %w", err)
	}
	state.Classification = resp.Content
	return state, nil
}

// generalAnswer completes over the full conversation history.
func (b *Bot) generalAnswer(ctx workflow.Context, state State) (State, error) {
	messages := append([]llm.Message{llm.System(systemMessage)}, state.history()...)
	resp, err := b.llm.Complete(ctx, llm.CompletionRequest{Messages: messages})
	if err != nil {
		return state, fmt.Errorf("general answer: %w", err)
	}
	return state.append(Message{Role: "assistant", Text: resp.Content}), nil
}

// linkLookup retrieves the single best matching page for the latest
// user message. No results means pass-through: the state is returned
// unchanged rather than treated as an error.
func (b *Bot) linkLookup(ctx workflow.Context, state State) (State, error) {
	results, err := b.index.Query(ctx, state.lastUserText(), 1)
	if err != nil {
		return state, fmt.Errorf("link lookup: %w", err)
	}
	if len(results) == 0 {
		return state, nil
	}
	return state.append(Message{
		Role:   "assistant",
		Text:   results[0].Document.URL,
		IsLink: true,
	}), nil
}

// promotion retrieves promotion pages, summarizes them from the
// retrieved context only, and emits one link message per unique URL.
func (b *Bot) promotion(ctx workflow.Context, state State) (State, error) {
	question := state.lastUserText()

	results, err := b.index.Query(ctx, question, b.promotionTopK)
	if err != nil {
		return state, fmt.Errorf("promotion lookup: %w", err)
	}

	var docs strings.Builder
	seen := make(map[string]bool, len(results))
	var links []string
	for _, r := range results {
		docs.WriteString(r.Document.Text)
		docs.WriteString("\n\n")
		if !seen[r.Document.URL] {
			seen[r.Document.URL] = true
			links = append(links, r.Document.URL)
		}
	}

	resp, err := b.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.System(prompt.Expand(promotionPrompt, map[string]any{
				"question":  question,
				"documents": docs.String(),
			})),
		},
	})
	if err != nil {
		return state, fmt.Errorf("promotion summary: %w", err)
	}

	state = state.append(Message{Role: "assistant", Text: resp.Content})
	for _, u := range links {
		state = state.append(Message{Role: "assistant", Text: u, IsLink: true})
	}
	return state, nil
}

// workshopCheck decides whether the history already contains the
// user's location. Once provided, the flag persists across turns and
// the model is not consulted again.
func (b *Bot) workshopCheck(ctx workflow.Context, state State) (State, error) {
	if state.Location == LocationProvided {
		return state, nil
	}

	resp, err := b.llm.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.System(prompt.Expand(workshopCheckPrompt, map[string]any{
				"messages": renderHistory(state.Messages),
			})),
		},
	})
	if err != nil {
		return state, fmt.Errorf("workshop location check: %w", err)
	}

	if strings.Contains(strings.ToLower(resp.Content), "get_workshops") {
		state.Location = LocationProvided
	} else {
		state.Location = LocationAsked
	}
	return state, nil
}

// askPermission emits the fixed location request.
func (b *Bot) askPermission(_ workflow.Context, state State) (State, error) {
	return state.append(Message{
		Role:               "assistant",
		Text:               permissionMessage,
		GeolocationRequest: true,
	}), nil
}

// coordinates is the structured-extraction target for getWorkshops.
type coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var coordinatesSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"latitude":  {"type": "number", "description": "latitude of the user's location"},
		"longitude": {"type": "number", "description": "longitude of the user's location"}
	},
	"required": ["latitude", "longitude"],
	"additionalProperties": false
}`)

// getWorkshops extracts coordinates from the history, pages through the
// locator API and formats the results. A locator failure becomes the
// literal failure message in the conversation, not an error.
func (b *Bot) getWorkshops(ctx workflow.Context, state State) (State, error) {
	loc, err := llm.Structured[coordinates](ctx, b.llm, llm.CompletionRequest{
		Messages: []llm.Message{
			llm.System(prompt.Expand(locationPrompt, map[string]any{
				"messages": renderHistory(state.Messages),
			})),
		},
		ResponseSchema: coordinatesSchema,
		SchemaName:     "coordinates",
	})
	if err != nil {
		return state, fmt.Errorf("extract location: %w", err)
	}
	state.Latitude, state.Longitude = loc.Latitude, loc.Longitude

	workshops, err := b.locator.Nearby(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		ctx.Logger().Warn("workshop locator failed", "error", err)
		return state.append(Message{Role: "assistant", Text: locatorFailureMessage}), nil
	}

	data, err := json.Marshal(workshops)
	if err != nil {
		return state, fmt.Errorf("encode workshops: %w", err)
	}
	resp, err := b.llm.Complete(ctx, llm.CompletionRequest{
		Messages: append([]llm.Message{
			llm.System(prompt.Expand(displayWorkshopsPrompt, map[string]any{
				"workshops": string(data),
			})),
		}, state.history()...),
	})
	if err != nil {
		return state, fmt.Errorf("format workshops: %w", err)
	}
	return state.append(Message{Role: "assistant", Text: resp.Content}), nil
}

// terminate answers off-topic or unclassifiable messages. The system
// prompt steers the reply back to supported topics.
func (b *Bot) terminate(ctx workflow.Context, state State) (State, error) {
	messages := append([]llm.Message{llm.System(systemMessage)}, state.history()...)
	resp, err := b.llm.Complete(ctx, llm.CompletionRequest{Messages: messages})
	if err != nil {
		return state, fmt.Errorf("terminate answer: %w", err)
	}
	return state.append(Message{Role: "assistant", Text: resp.Content}), nil
}

// renderHistory flattens messages into the "role: text" form the
// location prompts expect.
func renderHistory(messages []Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
