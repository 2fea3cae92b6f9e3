// Package tool defines the externally visible MCP capability:
// pharos_graphql_query. The gateway adapts a tool invocation into a query
// executor call and always answers with a single text content block holding
// the pretty-printed JSON envelope — errors included. Nothing is thrown
// across the tool boundary.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/QuentinCody/pharos-mcp-server/internal/domain/graphql"
	"github.com/QuentinCody/pharos-mcp-server/internal/infra/eventbus"
)

// NamePharosGraphQLQuery is the one tool this server exposes.
const NamePharosGraphQLQuery = "pharos_graphql_query"

// Diagnostic preview limits. Purely observational; they bound log size and
// never affect the response.
const (
	QueryPreviewLimit     = 200
	VariablesPreviewLimit = 150
)

const description = `Execute an arbitrary GraphQL query against the Pharos API ` +
	`(https://pharos-api.ncats.io/graphql), the NIH knowledge base for drug targets, ` +
	`diseases, and ligands.

Example queries:
- Target by UniProt ID: { target(q: { uniprot: "P05067" }) { name tdl fam description } }
- Disease by name: { disease(name: "Alzheimer disease") { name doDescription targetCounts { name value } } }
- Ligand by identifier: { ligand(ligid: "aspirin") { name smiles description } }
- Schema introspection: { __schema { queryType { fields { name description } } } }

The response is always a JSON document: either the API's own {data, errors} body, ` +
	`or {"errors":[{"message", "extensions"}]} when the request itself failed.`

// QueryParams is the tool input contract: a required query string and an
// optional opaque variables object passed through without interpretation.
type QueryParams struct {
	Query     string         `json:"query" jsonschema:"The GraphQL query document to execute, as a string. Not validated locally; the Pharos API decides validity."`
	Variables map[string]any `json:"variables,omitempty" jsonschema:"Optional GraphQL variables as a JSON object. Passed through to the API untouched."`
}

// Executor is the query execution dependency. Satisfied by *graphql.Client.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any) *graphql.Outcome
}

// InvocationEvent is published on the event bus after each invocation.
// Consumers (the invocation log) are strictly observational.
type InvocationEvent struct {
	Tool             string
	QueryPreview     string
	VariablesPreview string
	Outcome          graphql.OutcomeKind
	StatusCode       int
	Duration         time.Duration
	At               time.Time
}

// Gateway wires the tool contract to the executor. bus may be nil if no
// consumer is configured; logger may be nil.
type Gateway struct {
	executor Executor
	bus      eventbus.EventBus
	logger   *slog.Logger
}

// NewGateway creates a Gateway around executor.
func NewGateway(executor Executor, bus eventbus.EventBus, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{executor: executor, bus: bus, logger: logger}
}

// Definition returns the MCP tool declaration. The input schema is inferred
// from QueryParams by the SDK.
func (g *Gateway) Definition() *mcp.Tool {
	return &mcp.Tool{
		Name:        NamePharosGraphQLQuery,
		Description: description,
	}
}

// Handle runs one invocation. It never returns a non-nil error: every
// upstream outcome, success or failure, is rendered into the text envelope
// so the calling assistant always has JSON to read.
func (g *Gateway) Handle(ctx context.Context, req *mcp.CallToolRequest, params QueryParams) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	queryPreview := graphql.Truncate(params.Query, QueryPreviewLimit)
	variablesPreview := previewVariables(params.Variables)

	// Diagnostic record before delegating — observational only.
	g.logger.Info("tool invocation",
		"tool", NamePharosGraphQLQuery,
		"query", queryPreview,
		"variables", variablesPreview)

	var outcome *graphql.Outcome
	if strings.TrimSpace(params.Query) == "" {
		outcome = &graphql.Outcome{
			Kind:    graphql.OutcomeTransportFailure,
			Message: "query must be a non-empty string",
		}
	} else {
		outcome = g.executor.Execute(ctx, params.Query, params.Variables)
	}

	g.publish(InvocationEvent{
		Tool:             NamePharosGraphQLQuery,
		QueryPreview:     queryPreview,
		VariablesPreview: variablesPreview,
		Outcome:          outcome.Kind,
		StatusCode:       outcome.StatusCode,
		Duration:         time.Since(start),
		At:               start,
	})

	return textResult(outcome.Envelope()), nil, nil
}

// textResult renders v as pretty-printed JSON inside a single text content
// block. Absence of a result would be a bug, so a marshal failure still
// produces an envelope-shaped error text.
func textResult(v any) *mcp.CallToolResult {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		text = []byte(fmt.Sprintf(
			`{"errors":[{"message":%q,"extensions":{"clientError":true}}]}`,
			"encode response envelope: "+err.Error()))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
	}
}

// previewVariables renders a truncated single-line view of the variable map.
func previewVariables(variables map[string]any) string {
	if len(variables) == 0 {
		return ""
	}
	raw, err := json.Marshal(variables)
	if err != nil {
		return fmt.Sprintf("<unencodable: %v>", err)
	}
	return graphql.Truncate(string(raw), VariablesPreviewLimit)
}

func (g *Gateway) publish(evt InvocationEvent) {
	if g.bus == nil {
		return
	}
	g.bus.Publish(eventbus.TopicToolInvoked, evt)
}
