package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/savings-pocket/savings_pocket/internal/funding"
	"github.com/savings-pocket/savings_pocket/internal/wallet"
)

// Handler exposes session lifecycle and the combined screen view.
type Handler struct {
	registry *Registry
}

// NewHandler constructs a session handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// ViewResponse is everything the wallet screen renders.
type ViewResponse struct {
	SessionID    string                       `json:"session_id"`
	Balance      string                       `json:"balance"`
	Transactions []wallet.TransactionResponse `json:"transactions"`
	Funding      funding.SnapshotResponse     `json:"funding"`
	MountedAt    time.Time                    `json:"mounted_at"`
	AsOf         time.Time                    `json:"as_of"`
}

// Mount creates a session and returns its initial view.
func (h *Handler) Mount(c *fiber.Ctx) error {
	s, err := h.registry.Mount()
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(view(s))
}

// View returns the current screen state.
func (h *Handler) View(c *fiber.Ctx) error {
	s, err := h.registry.Get(c.Params("sessionId"))
	if err != nil {
		return notFound(err)
	}
	return c.Status(http.StatusOK).JSON(view(s))
}

// Unmount discards a session.
func (h *Handler) Unmount(c *fiber.Ctx) error {
	if err := h.registry.Unmount(c.Params("sessionId")); err != nil {
		return notFound(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func view(s *Session) ViewResponse {
	snap := s.Wallet.Snapshot()
	return ViewResponse{
		SessionID:    s.ID,
		Balance:      snap.Balance.StringFixed(2),
		Transactions: wallet.ToTransactionResponses(snap.Transactions),
		Funding:      funding.ToResponse(s.Funding.Snapshot()),
		MountedAt:    s.MountedAt,
		AsOf:         snap.AsOf,
	}
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return fiber.NewError(http.StatusInternalServerError, err.Error())
}
