package server

import (
	"time"

	"casino/domain/entities"

	"github.com/google/uuid"
)

type openAccountRequest struct {
	Username string `json:"username"`
}

type betRequest struct {
	Bet int64 `json:"bet"`
}

type spinRequest struct {
	Bet    int64  `json:"bet"`
	Choice string `json:"choice"`
}

type wagerResponse struct {
	ID          uuid.UUID `json:"id"`
	Game        string    `json:"game"`
	Bet         int64     `json:"bet"`
	Outcome     string    `json:"outcome"`
	Resolution  string    `json:"resolution"`
	Payout      int64     `json:"payout"`
	NetChange   int64     `json:"net_change"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type profileResponse struct {
	UserID           int64           `json:"user_id"`
	Username         string          `json:"username"`
	Balance          int64           `json:"balance"`
	HasActiveSession bool            `json:"has_active_session"`
	History          []wagerResponse `json:"history"`
}

type balanceChangeResponse struct {
	ID              int64          `json:"id"`
	BalanceBefore   int64          `json:"balance_before"`
	BalanceAfter    int64          `json:"balance_after"`
	ChangeAmount    int64          `json:"change_amount"`
	TransactionType string         `json:"transaction_type"`
	Description     string         `json:"description"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	RelatedID       *uuid.UUID     `json:"related_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

type leaderboardEntryResponse struct {
	Rank     int    `json:"rank"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type blackjackResponse struct {
	SessionID   uuid.UUID `json:"session_id"`
	Bet         int64     `json:"bet"`
	PlayerHand  []string  `json:"player_hand"`
	DealerHand  []string  `json:"dealer_hand"`
	PlayerValue int       `json:"player_value"`
	DealerValue int       `json:"dealer_value"`
	State       string    `json:"state"`
	Resolution  string    `json:"resolution,omitempty"`
	Outcome     string    `json:"outcome,omitempty"`
	Payout      int64     `json:"payout"`
	Balance     int64     `json:"balance"`
	LastCard    string    `json:"last_card,omitempty"`
	Message     string    `json:"message"`
}

type activeSessionResponse struct {
	Session *blackjackResponse `json:"session"`
}

type rouletteResponse struct {
	WagerID    uuid.UUID `json:"wager_id"`
	Bet        int64     `json:"bet"`
	Choice     string    `json:"choice"`
	Number     int       `json:"number"`
	Color      string    `json:"color"`
	Resolution string    `json:"resolution"`
	Outcome    string    `json:"outcome"`
	Payout     int64     `json:"payout"`
	Balance    int64     `json:"balance"`
	Message    string    `json:"message"`
}

func newWagerResponse(rec *entities.WagerRecord) wagerResponse {
	return wagerResponse{
		ID:          rec.ID,
		Game:        string(rec.Game),
		Bet:         rec.Bet,
		Outcome:     string(rec.Outcome),
		Resolution:  string(rec.Resolution),
		Payout:      rec.Payout,
		NetChange:   rec.NetChange(),
		Description: rec.Description(),
		CreatedAt:   rec.CreatedAt,
	}
}

func newProfileResponse(u *entities.User) profileResponse {
	history := make([]wagerResponse, 0, len(u.History))
	// Newest first for display
	for i := len(u.History) - 1; i >= 0; i-- {
		history = append(history, newWagerResponse(u.History[i]))
	}
	return profileResponse{
		UserID:           u.ID,
		Username:         u.Username,
		Balance:          u.Balance,
		HasActiveSession: u.HasActiveSession(),
		History:          history,
	}
}

func newBalanceChangeResponse(bc *entities.BalanceChange) balanceChangeResponse {
	return balanceChangeResponse{
		ID:              bc.ID,
		BalanceBefore:   bc.BalanceBefore,
		BalanceAfter:    bc.BalanceAfter,
		ChangeAmount:    bc.ChangeAmount,
		TransactionType: string(bc.TransactionType),
		Description:     bc.GetTransactionDescription(),
		Metadata:        bc.TransactionMetadata,
		RelatedID:       bc.RelatedID,
		CreatedAt:       bc.CreatedAt,
	}
}

func newBlackjackResponse(r *entities.BlackjackResult) *blackjackResponse {
	dealer := r.DealerHand.Strings()
	if r.HoleHidden {
		dealer = append(dealer, HiddenCard)
	}

	resp := &blackjackResponse{
		SessionID:   r.SessionID,
		Bet:         r.Bet,
		PlayerHand:  r.PlayerHand.Strings(),
		DealerHand:  dealer,
		PlayerValue: r.PlayerValue,
		DealerValue: r.DealerValue,
		State:       string(r.State),
		Resolution:  string(r.Resolution),
		Payout:      r.Payout,
		Balance:     r.Balance,
		Message:     FormatBlackjackMessage(r),
	}
	if r.Resolution != "" {
		resp.Outcome = string(r.Outcome)
	}
	if r.LastCard != nil {
		resp.LastCard = r.LastCard.String()
	}
	return resp
}

func newRouletteResponse(r *entities.RouletteResult) rouletteResponse {
	return rouletteResponse{
		WagerID:    r.WagerID,
		Bet:        r.Bet,
		Choice:     r.Choice.String(),
		Number:     r.Number,
		Color:      string(r.Color),
		Resolution: string(r.Resolution),
		Outcome:    string(r.Outcome),
		Payout:     r.Payout,
		Balance:    r.Balance,
		Message:    FormatRouletteMessage(r),
	}
}
