package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/schedule"
	"github.com/raterudder/chargeadvisor/pkg/suggest"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

// maxRequestBody caps JSON request bodies at 1MB.
const maxRequestBody = 1 << 20

type validationErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	var form types.ScheduleForm
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&form); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to decode suggestion form", slog.Any("error", err))
		writeJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	// validate before touching storage so bad input fails fast
	req, err := schedule.Build(form, form.ChargingHistory)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	if req.ChargingHistory == "" {
		sessions, err := s.storage.ListChargingSessions(ctx, user.ID, defaultHistoryLimit)
		if err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to get charging history", slog.Any("error", err))
			writeJSONError(w, "failed to get charging history", http.StatusInternalServerError)
			return
		}
		req.ChargingHistory = schedule.FormatHistory(sessions)
	}

	res, err := s.sessions.Get(user.ID).Submit(ctx, s.suggester, req)
	if err != nil {
		var verr *schedule.ValidationError
		var serr *suggest.ServiceError
		switch {
		case errors.As(err, &verr):
			writeValidationError(w, err)
		case errors.Is(err, suggest.ErrInFlight):
			writeJSONError(w, suggest.UserMessage(err), http.StatusConflict)
		case errors.As(err, &serr):
			writeJSONError(w, suggest.FailureMessage, http.StatusBadGateway)
		default:
			log.Ctx(ctx).ErrorContext(ctx, "failed to submit suggestion request", slog.Any("error", err))
			writeJSONError(w, suggest.FailureMessage, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, res, http.StatusOK)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verr *schedule.ValidationError
	if !errors.As(err, &verr) {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, validationErrorResponse{
		Error: verr.Error(),
		Field: verr.Field,
		Rule:  verr.Rule,
	}, http.StatusBadRequest)
}

func (s *Server) handleLatestSuggestion(w http.ResponseWriter, r *http.Request) {
	user := s.getUser(r)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, s.sessions.Get(user.ID).Snapshot(), http.StatusOK)
}
