package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"crm-ev-sync/src/calc"
	"crm-ev-sync/src/config"
	"crm-ev-sync/src/models"
	"crm-ev-sync/src/services"
)

type WebhookHandler struct {
	cfg *config.Config
	crm *services.CRMClient
}

func New(cfg *config.Config, crm *services.CRMClient) *WebhookHandler {
	return &WebhookHandler{
		cfg: cfg,
		crm: crm,
	}
}

// EVSync handles one CRM change notification: normalize, filter, read the
// three input fields, compute the expected value, write it back, verify the
// write. The webhook sender treats any non-2xx as a delivery failure and may
// disable the subscription, so every outcome except a missing credential is
// answered with 200 and a JSON body describing what happened.
func (h *WebhookHandler) EVSync(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		h.processEvent(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		fmt.Fprintf(w, "evSyncHandler: unsupported method")
	}
}

func (h *WebhookHandler) processEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.WithField("request_id", uuid.NewString())

	if h.cfg.APIToken == "" {
		logger.Error("processEvent: missing CRM_API_TOKEN")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorBody{
				Status: http.StatusInternalServerError,
				Data:   "missing CRM_API_TOKEN",
			},
		})
		return
	}

	payload := NormalizePayload(r, h.cfg.TargetListID)

	if payload.ListEntryID == "" {
		logger.Info("processEvent: no list entry id, skipping")
		writeJSON(w, http.StatusOK, models.SkippedResponse{
			Skipped: true,
			Reason:  "no_list_entry_id",
		})
		return
	}

	logger = logger.WithField("list_entry_id", payload.ListEntryID)

	if payload.ListID != h.cfg.TargetListID {
		logger.Infof("processEvent: list %d is not the target list, skipping", payload.ListID)
		writeJSON(w, http.StatusOK, models.SkippedResponse{
			Skipped: true,
			Reason:  "different_list",
			ListID:  payload.ListID,
		})
		return
	}

	snapshot, err := h.crm.FetchFieldValues(r.Context(), payload.ListEntryID)
	if err != nil {
		logger.Errorf("processEvent: failed to fetch field values: %v", err)
		writeJSON(w, http.StatusOK, upstreamError(err))
		return
	}

	minVal := snapshot[h.cfg.MinFieldID]
	maxVal := snapshot[h.cfg.MaxFieldID]
	likelihood := snapshot[h.cfg.LikelihoodFieldID]

	ev := calc.ComputeEV(minVal, maxVal, likelihood)

	result, err := h.crm.PostFieldValue(r.Context(), payload.ListEntryID, h.cfg.EVFieldID, ev)
	if err != nil {
		logger.Errorf("processEvent: failed to post expected value: %v", err)
		writeJSON(w, http.StatusOK, upstreamError(err))
		return
	}

	// A failed write is not retried; only the read-verify step retries.
	if !result.OK {
		writeJSON(w, http.StatusOK, models.WriteFailureResponse{
			Step:   "post_ev",
			Status: result.Status,
			Data:   result.Data,
		})
		return
	}

	persisted := h.crm.VerifyFieldValue(r.Context(), payload.ListEntryID, h.cfg.EVFieldID, services.VerifyMaxAttempts, services.VerifyBaseDelay)

	logger.Infof("processEvent: ev=%d persisted=%v", ev, persisted)

	writeJSON(w, http.StatusOK, models.SuccessResponse{
		OK:          true,
		ListEntryID: payload.ListEntryID,
		Min:         minVal,
		Max:         maxVal,
		P:           likelihood,
		EV:          ev,
		Persisted:   persisted,
	})
}

// Health is a liveness probe.
func (h *WebhookHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// upstreamError shapes an outbound-call failure into the error response
// body, pulling the HTTP status off the error when the CRM answered at all.
func upstreamError(err error) models.ErrorResponse {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		return models.ErrorResponse{
			Error: models.ErrorBody{Status: apiErr.Status, Data: apiErr.Data},
		}
	}

	return models.ErrorResponse{
		Error: models.ErrorBody{Status: http.StatusInternalServerError, Data: err.Error()},
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("writeJSON: failed to encode response: %v", err)
	}
}
