package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"crm-ev-sync/src/models"
	"crm-ev-sync/src/utils"
)

const (
	VerifyMaxAttempts = 4
	VerifyBaseDelay   = 200 * time.Millisecond
)

// APIError is a non-2xx answer from the CRM data API. The handler pulls the
// status and body out of it to shape its diagnostic response.
type APIError struct {
	Status int
	Data   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm api returned %d: %s", e.Status, e.Data)
}

// CRMClient talks to the CRM data API with a bearer token. One instance is
// shared across requests; it holds no per-request state.
type CRMClient struct {
	baseURL string
	token   string
	client  http.Client
	sleep   func(time.Duration)
}

func NewCRMClient(baseURL, token string) *CRMClient {
	return &CRMClient{
		baseURL: baseURL,
		token:   token,
		client: http.Client{
			Timeout: 30 * time.Second,
		},
		sleep: time.Sleep,
	}
}

// FetchFieldValues reads all field values for one list entry. The per-entry
// endpoint is used deliberately: bulk list reads can return null for fields
// that are populated at the entity level outside the list context.
func (c *CRMClient) FetchFieldValues(ctx context.Context, listEntryID string) (models.FieldSnapshot, error) {
	fullUrl := fmt.Sprintf("%s/list-entries/%s/fields", c.baseURL, listEntryID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("FetchFieldValues: failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.token))

	log.Tracef("fetching field values from %s", req.URL.String())

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FetchFieldValues: query failed: %w", err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("FetchFieldValues: failed to read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{Status: res.StatusCode, Data: string(body)}
	}

	var dto models.FieldListDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("FetchFieldValues: failed to unmarshal response: %w", err)
	}

	snapshot := make(models.FieldSnapshot, len(dto.Fields))
	for _, field := range dto.Fields {
		snapshot[field.ID] = field.Value.Data
	}

	return snapshot, nil
}

// PostFieldValue writes a single numeric field value. A non-2xx answer comes
// back as a failed WriteResult rather than an error so the caller can report
// it without treating the request as crashed; the error return is reserved
// for transport failures.
func (c *CRMClient) PostFieldValue(ctx context.Context, listEntryID, fieldID string, value int) (*models.WriteResult, error) {
	fullUrl := fmt.Sprintf("%s/list-entries/%s/fields/%s", c.baseURL, listEntryID, fieldID)

	payload, err := json.Marshal(models.NewNumberWrite(value))
	if err != nil {
		return nil, fmt.Errorf("PostFieldValue: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullUrl, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("PostFieldValue: failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.token))

	log.Debugf("PostFieldValue: writing %d to field %s on entry %s", value, fieldID, listEntryID)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("PostFieldValue: request failed: %w", err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("PostFieldValue: failed to read response body: %w", err)
	}

	result := &models.WriteResult{
		OK:     res.StatusCode >= 200 && res.StatusCode <= 299,
		Status: res.StatusCode,
		Data:   string(body),
	}

	if !result.OK {
		log.Errorf("PostFieldValue: write failed with status %d: %s", result.Status, result.Data)
	}

	return result, nil
}

// VerifyFieldValue re-reads a field after a write until it comes back
// non-null, backing off exponentially between attempts. The CRM read path is
// eventually consistent, so an immediate read-after-write can legitimately
// return stale data. Returns the last observation, which may still be nil
// after maxAttempts; the caller reports that rather than failing.
func (c *CRMClient) VerifyFieldValue(ctx context.Context, listEntryID, fieldID string, maxAttempts int, baseDelay time.Duration) interface{} {
	val, ok := utils.Retry(maxAttempts, utils.ExponentialBackoff(baseDelay), c.sleep, func() (interface{}, bool) {
		snapshot, err := c.FetchFieldValues(ctx, listEntryID)
		if err != nil {
			log.Warnf("VerifyFieldValue: re-read failed: %v", err)
			return nil, false
		}

		v := snapshot[fieldID]
		return v, v != nil
	})

	if !ok {
		log.Warnf("VerifyFieldValue: field %s on entry %s still null after %d attempts", fieldID, listEntryID, maxAttempts)
	}

	return val
}
