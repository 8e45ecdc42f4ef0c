package chatbot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officina-ai/officina/internal/llm"
	"github.com/officina-ai/officina/internal/retrieval"
	"github.com/officina-ai/officina/pkg/workflow"
)

// flatEmbedder gives every text the same vector so ranking is
// irrelevant and queries always succeed.
type flatEmbedder struct{}

func (flatEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

// stubLocator returns canned workshops or a canned error.
type stubLocator struct {
	workshops []Workshop
	err       error
	calls     int
}

func (s *stubLocator) Nearby(context.Context, float64, float64) ([]Workshop, error) {
	s.calls++
	return s.workshops, s.err
}

func emptyIndex(t *testing.T) *retrieval.Index {
	t.Helper()
	ix, err := retrieval.Build(context.Background(), flatEmbedder{}, nil)
	require.NoError(t, err)
	return ix
}

func indexWith(t *testing.T, docs ...retrieval.Document) *retrieval.Index {
	t.Helper()
	ix, err := retrieval.Build(context.Background(), flatEmbedder{}, docs)
	require.NoError(t, err)
	return ix
}

func newTestBot(t *testing.T, client llm.Client, index *retrieval.Index, locator Locator) *Bot {
	t.Helper()
	bot, err := New(client, index, locator, WithPromotionTopK(3))
	require.NoError(t, err)
	return bot
}

func turnCtx() workflow.Context {
	return workflow.NewContext(context.Background())
}

func TestTurn_OutOfEnumLabelTerminates(t *testing.T) {
	for _, label := range []string{"banana", "yes", "LLM?", "", "  unknown  "} {
		client := llm.NewScripted(label, "polite refusal")
		bot := newTestBot(t, client, emptyIndex(t), &stubLocator{})

		state, err := bot.Turn(turnCtx(), State{}, "tell me a joke")
		require.NoError(t, err, "label %q", label)

		require.Len(t, state.Messages, 2, "label %q", label)
		assert.Equal(t, "polite refusal", state.Messages[1].Text)
		assert.True(t, state.Messages[1].Complete)
	}
}

func TestTurn_NormalizedLabelRoutesGeneral(t *testing.T) {
	// Classifier output is messy; the router trims and lowercases.
	client := llm.NewScripted("  General \n", "use winter tyres")
	bot := newTestBot(t, client, emptyIndex(t), &stubLocator{})

	state, err := bot.Turn(turnCtx(), State{}, "which tyres for winter?")
	require.NoError(t, err)

	require.Len(t, state.Messages, 2)
	assert.Equal(t, "user", state.Messages[0].Role)
	assert.Equal(t, "use winter tyres", state.Messages[1].Text)
}

func TestTurn_LinkLookupEmptyIndexPassesThrough(t *testing.T) {
	client := llm.NewScripted("general", "answer text")
	bot := newTestBot(t, client, emptyIndex(t), &stubLocator{})

	state, err := bot.Turn(turnCtx(), State{}, "question")
	require.NoError(t, err)

	// Only the user message and the answer: no link message appended.
	require.Len(t, state.Messages, 2)
	for _, m := range state.Messages {
		assert.False(t, m.IsLink)
	}
}

func TestTurn_LinkLookupEmitsLink(t *testing.T) {
	ix := indexWith(t, retrieval.Document{URL: "https://aposto.it/brakes", Text: "brakes"})
	client := llm.NewScripted("general", "answer text")
	bot := newTestBot(t, client, ix, &stubLocator{})

	state, err := bot.Turn(turnCtx(), State{}, "brake question")
	require.NoError(t, err)

	require.Len(t, state.Messages, 3)
	last := state.Messages[2]
	assert.True(t, last.IsLink)
	assert.Equal(t, "https://aposto.it/brakes", last.Text)
	assert.True(t, last.Complete)
}

func TestTurn_PromotionDeduplicatesLinks(t *testing.T) {
	ix := indexWith(t,
		retrieval.Document{URL: "https://aposto.it/promo", Text: "promo chunk 1"},
		retrieval.Document{URL: "https://aposto.it/promo", Text: "promo chunk 2"},
		retrieval.Document{URL: "https://aposto.it/other", Text: "other promo"},
	)
	client := llm.NewScripted("promotion", "active promotions summary")
	bot := newTestBot(t, client, ix, &stubLocator{})

	state, err := bot.Turn(turnCtx(), State{}, "any promotions?")
	require.NoError(t, err)

	var links []string
	for _, m := range state.Messages {
		if m.IsLink {
			links = append(links, m.Text)
		}
	}
	assert.ElementsMatch(t, []string{"https://aposto.it/promo", "https://aposto.it/other"}, links)
	assert.Equal(t, "active promotions summary", state.Messages[1].Text)
}

func TestTurn_WorkshopWithoutLocationAsksPermission(t *testing.T) {
	client := llm.NewScripted("workshop", "ask_permission")
	bot := newTestBot(t, client, emptyIndex(t), &stubLocator{})

	state, err := bot.Turn(turnCtx(), State{}, "nearest workshop?")
	require.NoError(t, err)

	require.Len(t, state.Messages, 2)
	assert.True(t, state.Messages[1].GeolocationRequest)
	assert.Equal(t, LocationAsked, state.Location)
}

func TestTurn_WorkshopWithLocationListsWorkshops(t *testing.T) {
	locator := &stubLocator{workshops: []Workshop{
		{CompanyName: "Officina Rossi", City: "Milano", Distance: 2.4},
	}}
	// classify, location check, structured extraction, display formatting.
	client := llm.NewScripted(
		"workshop",
		"get_workshops",
		`{"latitude": 45.46, "longitude": 9.19}`,
		"<p>Officina Rossi</p>",
	)
	bot := newTestBot(t, client, emptyIndex(t), locator)

	state, err := bot.Turn(turnCtx(), State{}, "latitude 45.46 longitude 9.19")
	require.NoError(t, err)

	assert.Equal(t, 1, locator.calls)
	assert.Equal(t, LocationProvided, state.Location)
	assert.InDelta(t, 45.46, state.Latitude, 1e-9)
	assert.Equal(t, "<p>Officina Rossi</p>", state.Messages[len(state.Messages)-1].Text)
}

func TestTurn_ProvidedLocationPersistsAcrossTurns(t *testing.T) {
	locator := &stubLocator{}
	client := llm.NewScripted(
		"workshop",
		`{"latitude": 1, "longitude": 2}`,
		"list",
	)
	bot := newTestBot(t, client, emptyIndex(t), locator)

	// Location already provided: the check node must not consult the
	// model, so the second scripted response is the extraction result.
	state := State{Location: LocationProvided}
	state, err := bot.Turn(turnCtx(), state, "show them again")
	require.NoError(t, err)

	assert.Equal(t, 1, locator.calls)
	assert.Equal(t, "list", state.Messages[len(state.Messages)-1].Text)
}

func TestTurn_LocatorFailureEmitsLiteralMessage(t *testing.T) {
	locator := &stubLocator{err: errors.New("status 500")}
	client := llm.NewScripted(
		"workshop",
		"get_workshops",
		`{"latitude": 45.0, "longitude": 9.0}`,
	)
	bot := newTestBot(t, client, emptyIndex(t), locator)

	state, err := bot.Turn(turnCtx(), State{}, "nearest workshop, I am at 45,9")
	require.NoError(t, err)

	assert.Equal(t, 1, locator.calls)
	last := state.Messages[len(state.Messages)-1]
	assert.Equal(t, "API call failed", last.Text)
}

func TestTurn_HistoryAppendOnly(t *testing.T) {
	client := llm.NewScripted("general", "reply")
	bot := newTestBot(t, client, emptyIndex(t), &stubLocator{})

	var state State
	prev := 0
	for i := 0; i < 4; i++ {
		var err error
		state, err = bot.Turn(turnCtx(), state, "message")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(state.Messages), prev)
		prev = len(state.Messages)
	}
}

func TestTurn_ClassifierFailureDegrades(t *testing.T) {
	client := llm.NewScripted().FailWith(errors.New("backend down"))
	bot := newTestBot(t, client, emptyIndex(t), &stubLocator{})

	state, err := bot.Turn(turnCtx(), State{}, "hello")

	require.Error(t, err)
	last := state.Messages[len(state.Messages)-1]
	assert.Equal(t, fallbackMessage, last.Text)
	assert.True(t, last.Complete)
}

func TestTurn_ClassificationResetEachTurn(t *testing.T) {
	client := llm.NewScripted("banana", "refusal")
	bot := newTestBot(t, client, emptyIndex(t), &stubLocator{})

	state := State{Classification: "general"}
	state, err := bot.Turn(turnCtx(), state, "off topic")
	require.NoError(t, err)
	assert.Equal(t, "banana", state.Classification)
}
