package models

// WebhookEvent is the raw inbound notification body. The CRM wraps the true
// payload inconsistently, so it stays loosely typed until normalized.
type WebhookEvent map[string]interface{}

// Unwrap returns the innermost payload object: the CRM sometimes nests the
// real payload under "body" or "data". First envelope with at least one key
// wins; otherwise the event itself is the payload.
func (ev WebhookEvent) Unwrap() WebhookEvent {
	for _, key := range []string{"body", "data"} {
		if inner, ok := ev[key].(map[string]interface{}); ok && len(inner) > 0 {
			return WebhookEvent(inner)
		}
	}

	return ev
}

// WebhookPayload is the normalized form of a WebhookEvent. An empty
// ListEntryID means no entry id could be resolved and the event is skipped.
type WebhookPayload struct {
	ListEntryID string
	ListID      int64
}

type SkippedResponse struct {
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason"`
	ListID  int64  `json:"listId,omitempty"`
}

type SuccessResponse struct {
	OK          bool        `json:"ok"`
	ListEntryID string      `json:"listEntryId"`
	Min         interface{} `json:"min"`
	Max         interface{} `json:"max"`
	P           interface{} `json:"p"`
	EV          int         `json:"ev"`
	Persisted   interface{} `json:"persisted"`
}

// WriteFailureResponse reports a non-2xx from the CRM write endpoint. The
// webhook sender still receives HTTP 200 so it does not disable the
// subscription; the diagnostic lives in the body.
type WriteFailureResponse struct {
	OK     bool   `json:"ok"`
	Step   string `json:"step"`
	Status int    `json:"status"`
	Data   string `json:"data"`
}

type ErrorResponse struct {
	OK    bool      `json:"ok"`
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Status int         `json:"status"`
	Data   interface{} `json:"data"`
}
