package wallet

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Locator resolves the store owned by a mounted session.
type Locator interface {
	Store(sessionID string) (*Store, error)
}

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	stores Locator
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(stores Locator) *Handler {
	return &Handler{stores: stores}
}

// TransactionResponse is the JSON projection of a Transaction.
type TransactionResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// ToTransactionResponse renders a transaction with a two-decimal amount.
func ToTransactionResponse(tx Transaction) TransactionResponse {
	return TransactionResponse{
		ID:     tx.ID,
		Type:   string(tx.Type),
		Amount: tx.Amount.StringFixed(2),
		Date:   tx.Date.Format(DateLayout),
		Status: string(tx.Status),
	}
}

// ToTransactionResponses renders a history preserving its order.
func ToTransactionResponses(txs []Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ToTransactionResponse(tx))
	}
	return out
}

// Balance returns the session balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	store, err := h.stores.Store(sessionID)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	snap := store.Snapshot()
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"session_id": sessionID,
		"balance":    snap.Balance.StringFixed(2),
		"timestamp":  snap.AsOf,
	})
}

// Transactions returns the session history, newest first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	store, err := h.stores.Store(c.Params("sessionId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transactions": ToTransactionResponses(store.Transactions()),
	})
}
