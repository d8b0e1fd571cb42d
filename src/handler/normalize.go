package handler

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"

	"crm-ev-sync/src/models"
)

// formEnvelope covers the keys a form-encoded delivery can carry. Form
// bodies are always flat, so no envelope unwrapping applies.
type formEnvelope struct {
	ListEntryID    string `schema:"list_entry_id"`
	ListEntryIDAlt string `schema:"listEntryId"`
	ListID         int64  `schema:"list_id"`
}

// NormalizePayload extracts the list entry id and list id from an inbound
// webhook request. The CRM delivers the same event in several shapes: direct
// JSON, string-encoded JSON, form-encoded key/value pairs, or JSON wrapped in
// a "body" or "data" envelope. Malformed input never fails the request; the
// worst case is an empty entry id, which the caller treats as a skip.
func NormalizePayload(r *http.Request, defaultListID int64) models.WebhookPayload {
	if strings.Contains(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return normalizeForm(r, defaultListID)
	}

	outer := decodeJSONBody(r.Body)
	payload := outer.Unwrap()

	return models.WebhookPayload{
		ListEntryID: extractListEntryID(payload),
		ListID:      extractListID(payload, outer, defaultListID),
	}
}

func normalizeForm(r *http.Request, defaultListID int64) models.WebhookPayload {
	if err := r.ParseForm(); err != nil {
		log.Errorf("normalizeForm: failed to parse form: %v", err)
		return models.WebhookPayload{ListID: defaultListID}
	}

	form := new(formEnvelope)
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(form, r.Form); err != nil {
		log.Errorf("normalizeForm: failed to decode form: %v", err)
	}

	entryID := form.ListEntryID
	if entryID == "" {
		entryID = form.ListEntryIDAlt
	}

	listID := form.ListID
	if listID == 0 {
		listID = defaultListID
	}

	return models.WebhookPayload{ListEntryID: entryID, ListID: listID}
}

// decodeJSONBody parses the raw body into an event object, unwrapping one
// level of string encoding when the body is a JSON-encoded string. Any parse
// failure yields an empty event.
func decodeJSONBody(body io.Reader) models.WebhookEvent {
	raw, err := io.ReadAll(body)
	if err != nil {
		log.Errorf("decodeJSONBody: failed to read body: %v", err)
		return models.WebhookEvent{}
	}

	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return models.WebhookEvent{}
	}

	if str, ok := parsed.(string); ok {
		if err := json.Unmarshal([]byte(str), &parsed); err != nil {
			return models.WebhookEvent{}
		}
	}

	if obj, ok := parsed.(map[string]interface{}); ok {
		return models.WebhookEvent(obj)
	}

	return models.WebhookEvent{}
}

// extractListEntryID tries list_entry_id, listEntryId, then data.list_entry_id.
func extractListEntryID(payload models.WebhookEvent) string {
	candidates := []interface{}{
		payload["list_entry_id"],
		payload["listEntryId"],
	}

	if data, ok := payload["data"].(map[string]interface{}); ok {
		candidates = append(candidates, data["list_entry_id"])
	}

	for _, c := range candidates {
		if id := idString(c); id != "" {
			return id
		}
	}

	return ""
}

// extractListID tries field.list_id on the payload, list_id on the payload,
// then field.list_id on the outer envelope, falling back to the configured
// target list id.
func extractListID(payload, outer models.WebhookEvent, defaultListID int64) int64 {
	candidates := []interface{}{
		nestedListID(payload["field"]),
		payload["list_id"],
		nestedListID(outer["field"]),
	}

	for _, c := range candidates {
		if id, ok := idInt64(c); ok {
			return id
		}
	}

	return defaultListID
}

func nestedListID(field interface{}) interface{} {
	if obj, ok := field.(map[string]interface{}); ok {
		return obj["list_id"]
	}

	return nil
}

func idString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

func idInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case string:
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
