package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-ev-sync/src/models"
)

const targetListID = int64(300305)

func jsonRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/webhooks/ev", bytes.NewBuffer(raw))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestNormalizePayload(t *testing.T) {
	t.Run("direct json body", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{
			"list_entry_id": "42",
			"field":         map[string]interface{}{"list_id": 300305},
		})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, models.WebhookPayload{ListEntryID: "42", ListID: 300305}, payload)
	})

	t.Run("body envelope resolves identically to direct body", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{
			"type": "x",
			"body": map[string]interface{}{
				"list_entry_id": "42",
				"field":         map[string]interface{}{"list_id": 300305},
			},
		})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, models.WebhookPayload{ListEntryID: "42", ListID: 300305}, payload)
	})

	t.Run("data envelope", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{
			"data": map[string]interface{}{
				"list_entry_id": "7",
				"list_id":       300305,
			},
		})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, models.WebhookPayload{ListEntryID: "7", ListID: 300305}, payload)
	})

	t.Run("string-encoded json body", func(t *testing.T) {
		inner, err := json.Marshal(map[string]interface{}{
			"list_entry_id": "42",
			"field":         map[string]interface{}{"list_id": 300305},
		})
		require.NoError(t, err)

		r := jsonRequest(t, string(inner))

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, models.WebhookPayload{ListEntryID: "42", ListID: 300305}, payload)
	})

	t.Run("camelCase entry id", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{"listEntryId": "42"})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, "42", payload.ListEntryID)
		assert.Equal(t, targetListID, payload.ListID)
	})

	t.Run("entry id nested under data inside body envelope", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{
			"body": map[string]interface{}{
				"data": map[string]interface{}{"list_entry_id": "42"},
				"kind": "update",
			},
		})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, "42", payload.ListEntryID)
	})

	t.Run("numeric entry id is coerced to string", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{"list_entry_id": 42})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, "42", payload.ListEntryID)
	})

	t.Run("list id from outer envelope when payload is wrapped", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{
			"body":  map[string]interface{}{"list_entry_id": "42"},
			"field": map[string]interface{}{"list_id": 77},
		})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, models.WebhookPayload{ListEntryID: "42", ListID: 77}, payload)
	})

	t.Run("missing list id falls back to the target list", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{"list_entry_id": "42"})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, targetListID, payload.ListID)
	})

	t.Run("no entry id anywhere yields empty id", func(t *testing.T) {
		r := jsonRequest(t, map[string]interface{}{"type": "ping"})

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, "", payload.ListEntryID)
	})

	t.Run("malformed body never fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/webhooks/ev", strings.NewReader("{not json"))
		r.Header.Set("Content-Type", "application/json")

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, models.WebhookPayload{ListEntryID: "", ListID: targetListID}, payload)
	})

	t.Run("empty body never fails", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/webhooks/ev", strings.NewReader(""))

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, "", payload.ListEntryID)
	})

	t.Run("form-encoded body", func(t *testing.T) {
		form := url.Values{}
		form.Set("list_entry_id", "42")
		form.Set("list_id", "300305")

		r := httptest.NewRequest("POST", "/webhooks/ev", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, models.WebhookPayload{ListEntryID: "42", ListID: 300305}, payload)
	})

	t.Run("form-encoded body with camelCase key and no list id", func(t *testing.T) {
		form := url.Values{}
		form.Set("listEntryId", "42")
		form.Set("unrelated", "value")

		r := httptest.NewRequest("POST", "/webhooks/ev", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		payload := NormalizePayload(r, targetListID)
		assert.Equal(t, models.WebhookPayload{ListEntryID: "42", ListID: targetListID}, payload)
	})
}
