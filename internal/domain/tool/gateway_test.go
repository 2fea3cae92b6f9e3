package tool

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuentinCody/pharos-mcp-server/internal/domain/graphql"
	"github.com/QuentinCody/pharos-mcp-server/internal/infra/eventbus"
)

// stubExecutor returns a canned outcome and records what it was called with.
type stubExecutor struct {
	outcome   *graphql.Outcome
	gotQuery  string
	gotVars   map[string]any
	callCount int
}

func (s *stubExecutor) Execute(ctx context.Context, query string, variables map[string]any) *graphql.Outcome {
	s.callCount++
	s.gotQuery = query
	s.gotVars = variables
	return s.outcome
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// resultText extracts the single text content block from a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil {
		t.Fatal("gateway returned nil result; absence of a result is a bug")
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected exactly one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected *mcp.TextContent, got %T", res.Content[0])
	}
	return tc.Text
}

func TestHandle_Success_PrettyPrintsBodyVerbatim(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"data": map[string]any{
			"target": map[string]any{"name": "Amyloid-beta precursor protein", "tdl": "Tclin"},
		},
	}
	exec := &stubExecutor{outcome: &graphql.Outcome{Kind: graphql.OutcomeSuccess, Payload: payload}}
	g := NewGateway(exec, nil, discardLogger())

	res, _, err := g.Handle(context.Background(), nil, QueryParams{
		Query: `{ target(q: { uniprot: "P05067" }) { name tdl } }`,
	})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	text := resultText(t, res)
	var parsed any
	if unmarshalErr := json.Unmarshal([]byte(text), &parsed); unmarshalErr != nil {
		t.Fatalf("result text is not JSON: %v", unmarshalErr)
	}
	if !reflect.DeepEqual(parsed, payload) {
		t.Errorf("result text parsed = %#v; want the upstream body verbatim", parsed)
	}
	// Pretty-printed, not compact.
	if !strings.Contains(text, "\n  ") {
		t.Errorf("expected indented JSON, got %q", text)
	}
}

func TestHandle_PassesQueryAndVariablesUntouched(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{outcome: &graphql.Outcome{Kind: graphql.OutcomeSuccess, Payload: map[string]any{}}}
	g := NewGateway(exec, nil, discardLogger())

	query := "  query Q($id: String!) { target(q: { uniprot: $id }) { name } }  "
	vars := map[string]any{"id": "P05067", "nested": map[string]any{"k": []any{1.0, "two", nil}}}
	if _, _, err := g.Handle(context.Background(), nil, QueryParams{Query: query, Variables: vars}); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	// The gateway must not rewrite or trim the query.
	if exec.gotQuery != query {
		t.Errorf("query was rewritten: %q", exec.gotQuery)
	}
	if !reflect.DeepEqual(exec.gotVars, vars) {
		t.Errorf("variables were not passed opaquely: %#v", exec.gotVars)
	}
}

func TestHandle_FailureOutcome_RenderedAsDataNotError(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{outcome: &graphql.Outcome{
		Kind:    graphql.OutcomeTransportFailure,
		Message: "dial tcp: connection refused",
	}}
	g := NewGateway(exec, nil, discardLogger())

	res, _, err := g.Handle(context.Background(), nil, QueryParams{Query: "{ __typename }"})
	if err != nil {
		t.Fatalf("failures must be data, not errors; got %v", err)
	}

	text := resultText(t, res)
	if !strings.Contains(text, "connection refused") {
		t.Errorf("expected failure message in envelope, got %s", text)
	}
	if !strings.Contains(text, `"clientError": true`) {
		t.Errorf("expected clientError extension in envelope, got %s", text)
	}
}

func TestHandle_EmptyQuery_EnvelopeErrorWithoutExecuting(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{outcome: &graphql.Outcome{Kind: graphql.OutcomeSuccess}}
	g := NewGateway(exec, nil, discardLogger())

	res, _, err := g.Handle(context.Background(), nil, QueryParams{Query: "   "})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if exec.callCount != 0 {
		t.Errorf("executor must not be called for an empty query, called %d times", exec.callCount)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "non-empty") {
		t.Errorf("expected a non-empty-query message, got %s", text)
	}
}

func TestHandle_PublishesInvocationEventWithTruncatedPreviews(t *testing.T) {
	t.Parallel()

	bus := eventbus.New()
	ch := bus.Subscribe(eventbus.TopicToolInvoked)

	exec := &stubExecutor{outcome: &graphql.Outcome{
		Kind:       graphql.OutcomeHTTPError,
		StatusCode: 502,
		Message:    "Pharos API HTTP error: status 502",
	}}
	g := NewGateway(exec, bus, discardLogger())

	longQuery := strings.Repeat("q", 1000)
	longValue := strings.Repeat("v", 1000)
	if _, _, err := g.Handle(context.Background(), nil, QueryParams{
		Query:     longQuery,
		Variables: map[string]any{"v": longValue},
	}); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	select {
	case raw := <-ch:
		evt, ok := raw.Payload.(InvocationEvent)
		if !ok {
			t.Fatalf("expected InvocationEvent payload, got %T", raw.Payload)
		}
		if evt.Tool != NamePharosGraphQLQuery {
			t.Errorf("event tool = %q", evt.Tool)
		}
		if len(evt.QueryPreview) != QueryPreviewLimit {
			t.Errorf("query preview length = %d; want %d", len(evt.QueryPreview), QueryPreviewLimit)
		}
		if len(evt.VariablesPreview) != VariablesPreviewLimit {
			t.Errorf("variables preview length = %d; want %d", len(evt.VariablesPreview), VariablesPreviewLimit)
		}
		if evt.Outcome != graphql.OutcomeHTTPError {
			t.Errorf("event outcome = %q", evt.Outcome)
		}
		if evt.StatusCode != 502 {
			t.Errorf("event status = %d", evt.StatusCode)
		}
	case <-time.After(time.Second):
		t.Fatal("no invocation event published")
	}
}

func TestHandle_NilBus_StillReturnsResult(t *testing.T) {
	t.Parallel()

	exec := &stubExecutor{outcome: &graphql.Outcome{Kind: graphql.OutcomeSuccess, Payload: map[string]any{"data": nil}}}
	g := NewGateway(exec, nil, discardLogger())

	res, _, err := g.Handle(context.Background(), nil, QueryParams{Query: "{ __typename }"})
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if resultText(t, res) == "" {
		t.Error("expected non-empty envelope text")
	}
}

func TestDefinition_DeclaresTool(t *testing.T) {
	t.Parallel()

	g := NewGateway(&stubExecutor{}, nil, discardLogger())
	def := g.Definition()

	if def.Name != NamePharosGraphQLQuery {
		t.Errorf("tool name = %q; want %q", def.Name, NamePharosGraphQLQuery)
	}
	for _, example := range []string{"target", "disease", "ligand", "__schema"} {
		if !strings.Contains(def.Description, example) {
			t.Errorf("description should mention %q example", example)
		}
	}
}
