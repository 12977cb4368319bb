package dialog

// Outcome classifies how an action was resolved, for logging and for the
// transport layer's choice of reply.
type Outcome string

const (
	// OutcomeOK is a regular handled action.
	OutcomeOK Outcome = "ok"
	// OutcomeUnroutable is an action token matching no declared command.
	OutcomeUnroutable Outcome = "unroutable"
	// OutcomeStale is a non-initiating action with no stored dialogue.
	OutcomeStale Outcome = "stale"
	// OutcomeDenied is an action refused by the authorization gate.
	OutcomeDenied Outcome = "denied"
	// OutcomeInvalid is an action with out-of-range or malformed arguments.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeFailed is an internal failure converted to a user-visible reply.
	OutcomeFailed Outcome = "failed"
)

// Button is one selectable action offered to the requester.
type Button struct {
	Text string
	// Token is the callback action token; empty for inert label buttons.
	Token string
	// URL makes this an external link button instead of a callback.
	URL string
}

// Response is the renderable result of one action: a caption plus button
// rows, consumed by the transport-specific composer.
type Response struct {
	Caption string
	Rows    [][]Button
	// Photo triggers a full redraw with a poster when set.
	Photo   string
	Outcome Outcome
}

// Row builds one button row.
func Row(buttons ...Button) []Button {
	out := make([]Button, 0, len(buttons))
	for _, b := range buttons {
		if b.Text == "" {
			continue
		}
		out = append(out, b)
	}
	return out
}

// TextResponse is a caption-only reply.
func TextResponse(caption string) Response {
	return Response{Caption: caption, Outcome: OutcomeOK}
}

// StaleResponse is the neutral reply for actions without an active dialogue.
func StaleResponse() Response {
	return Response{Caption: "Nothing active here. Start a new search.", Outcome: OutcomeStale}
}
