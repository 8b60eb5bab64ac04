package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/schedule"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type historyResponse struct {
	Sessions []types.ChargingSession `json:"sessions"`
	// ChargingHistory is the text the suggestion backend would receive.
	ChargingHistory string `json:"chargingHistory"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.getUser(r)

	limit, err := parseLimit(r)
	if err != nil {
		writeJSONError(w, "invalid limit: "+err.Error(), http.StatusBadRequest)
		return
	}

	sessions, err := s.storage.ListChargingSessions(ctx, user.ID, limit)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get charging sessions", slog.Any("error", err))
		writeJSONError(w, "failed to get charging sessions", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []types.ChargingSession{}
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	writeJSON(w, historyResponse{
		Sessions:        sessions,
		ChargingHistory: schedule.FormatHistory(sessions),
	}, http.StatusOK)
}

func parseLimit(r *http.Request) (int, error) {
	str := r.URL.Query().Get("limit")
	if str == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if limit < 1 || limit > maxHistoryLimit {
		return 0, fmt.Errorf("must be between 1 and %d", maxHistoryLimit)
	}
	return limit, nil
}
