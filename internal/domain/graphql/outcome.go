package graphql

// OutcomeKind identifies which terminal state an upstream call reached.
// Exactly one kind is produced per call.
type OutcomeKind string

const (
	// OutcomeSuccess: HTTP 2xx with a JSON-parseable body. The body is
	// carried verbatim, including any GraphQL-level `errors` array the
	// upstream embedded in it — this layer never reclassifies those.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeHTTPError: JSON-parseable body but a non-2xx status.
	OutcomeHTTPError OutcomeKind = "http_error"
	// OutcomeNonJSON: the body could not be parsed as JSON, regardless of
	// HTTP status.
	OutcomeNonJSON OutcomeKind = "non_json_response"
	// OutcomeTransportFailure: the call never completed (DNS, connection,
	// timeout, or any other client-side failure).
	OutcomeTransportFailure OutcomeKind = "transport_failure"
)

// Truncation limits. These bound log and payload size, not correctness.
const (
	// RawTextLimit caps the non-JSON body capture returned to the caller.
	RawTextLimit = 1000
	// DiagBodyLimit caps the non-JSON body preview in diagnostic logs.
	DiagBodyLimit = 500
)

// Outcome is the closed four-way classification of a single upstream call.
// Failures are data here: Execute never returns a Go error, so every call
// site handles all four kinds through the one envelope shape.
type Outcome struct {
	Kind OutcomeKind

	// Payload holds the parsed JSON body for OutcomeSuccess and
	// OutcomeHTTPError (best-effort for the latter; nil when the error
	// body was empty).
	Payload any

	// StatusCode is set for OutcomeHTTPError and OutcomeNonJSON.
	StatusCode int

	// RawText is the truncated unparseable body for OutcomeNonJSON.
	RawText string

	// Message is the human-readable cause for OutcomeTransportFailure.
	Message string
}

// envelopeError is one entry of the uniform error envelope:
// {"errors":[{"message", "extensions":{...}}]}.
type envelopeError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
}

type errorEnvelope struct {
	Errors []envelopeError `json:"errors"`
}

// Envelope renders the outcome into the one shape the calling layer parses
// regardless of failure mode: the upstream body verbatim for success, or
// {"errors":[{message, extensions}]} for the three failure kinds.
func (o *Outcome) Envelope() any {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Payload
	case OutcomeHTTPError:
		return errorEnvelope{Errors: []envelopeError{{
			Message: o.Message,
			Extensions: map[string]any{
				"statusCode": o.StatusCode,
				"response":   o.Payload,
			},
		}}}
	case OutcomeNonJSON:
		return errorEnvelope{Errors: []envelopeError{{
			Message: o.Message,
			Extensions: map[string]any{
				"statusCode": o.StatusCode,
				"body":       o.RawText,
			},
		}}}
	default: // OutcomeTransportFailure
		return errorEnvelope{Errors: []envelopeError{{
			Message: o.Message,
			Extensions: map[string]any{
				"clientError": true,
			},
		}}}
	}
}

// Truncate bounds s to at most limit characters.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
