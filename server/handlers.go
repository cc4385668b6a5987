package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"casino/domain/interfaces"
)

// Handler serves the casino HTTP API
type Handler struct {
	accounts  interfaces.AccountService
	blackjack interfaces.BlackjackService
	roulette  interfaces.RouletteService
}

// NewHandler creates a new API handler
func NewHandler(accounts interfaces.AccountService, blackjack interfaces.BlackjackService, roulette interfaces.RouletteService) *Handler {
	return &Handler{
		accounts:  accounts,
		blackjack: blackjack,
		roulette:  roulette,
	}
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// OpenAccount handles POST /account
func (h *Handler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req openAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.accounts.OpenAccount(r.Context(), userID, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(user))
}

// GetProfile handles GET /account
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := h.accounts.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(user))
}

// GetBalanceHistory handles GET /account/history
func (h *Handler) GetBalanceHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	limit, err := queryLimit(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "limit must be a number")
		return
	}

	history, err := h.accounts.GetBalanceHistory(r.Context(), userID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]balanceChangeResponse, 0, len(history))
	for _, bc := range history {
		resp = append(resp, newBalanceChangeResponse(bc))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Leaderboard handles GET /leaderboard
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "limit must be a number")
		return
	}

	entries, err := h.accounts.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]leaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, leaderboardEntryResponse{
			Rank:     e.Rank,
			UserID:   e.UserID,
			Username: e.Username,
			Balance:  e.Balance,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Deal handles POST /blackjack/deal
func (h *Handler) Deal(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req betRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.blackjack.Deal(r.Context(), userID, req.Bet)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBlackjackResponse(result))
}

// Hit handles POST /blackjack/hit
func (h *Handler) Hit(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	result, err := h.blackjack.Hit(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBlackjackResponse(result))
}

// Stand handles POST /blackjack/stand
func (h *Handler) Stand(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	result, err := h.blackjack.Stand(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBlackjackResponse(result))
}

// ActiveSession handles GET /blackjack/session
func (h *Handler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	result, err := h.blackjack.GetActiveSession(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := activeSessionResponse{}
	if result != nil {
		resp.Session = newBlackjackResponse(result)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Spin handles POST /roulette/spin
func (h *Handler) Spin(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req spinRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.roulette.Spin(r.Context(), userID, req.Bet, req.Choice)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRouletteResponse(result))
}
