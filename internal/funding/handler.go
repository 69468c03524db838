package funding

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const maxAwait = 30 * time.Second

// Locator resolves the funding machine owned by a mounted session.
type Locator interface {
	Machine(sessionID string) (*Machine, error)
}

// Handler exposes HTTP endpoints for the funding flow.
type Handler struct {
	machines Locator
}

// NewHandler constructs a funding handler.
func NewHandler(machines Locator) *Handler {
	return &Handler{machines: machines}
}

// Get returns the funding snapshot. With ?wait=<duration> it long-polls
// until an in-flight submission settles.
func (h *Handler) Get(c *fiber.Ctx) error {
	m, err := h.machines.Machine(c.Params("sessionId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}

	wait := c.Query("wait")
	if wait == "" {
		return c.Status(http.StatusOK).JSON(ToResponse(m.Snapshot()))
	}
	d, err := time.ParseDuration(wait)
	if err != nil || d < 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid wait duration")
	}
	if d > maxAwait {
		d = maxAwait
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), d)
	defer cancel()
	snap, err := m.Await(ctx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return respond(c, snap, err)
	}
	return c.Status(http.StatusOK).JSON(ToResponse(snap))
}

// Open handles the "Fund Account" action.
func (h *Handler) Open(c *fiber.Ctx) error {
	m, err := h.machines.Machine(c.Params("sessionId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	snap, err := m.Open()
	return respond(c, snap, err)
}

// Dismiss closes the amount entry.
func (h *Handler) Dismiss(c *fiber.Ctx) error {
	m, err := h.machines.Machine(c.Params("sessionId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	snap, err := m.Dismiss()
	return respond(c, snap, err)
}

// Confirm submits the entered amount to the payment gateway.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	m, err := h.machines.Machine(c.Params("sessionId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	snap, err := m.Confirm(c.UserContext(), string(req.Amount))
	if err != nil {
		return respond(c, snap, err)
	}
	return c.Status(http.StatusAccepted).JSON(ToResponse(snap))
}

// Cancel applies a widget close reported by the client.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	m, err := h.machines.Machine(c.Params("sessionId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	snap, err := m.Cancel()
	return respond(c, snap, err)
}

func respond(c *fiber.Ctx, snap Snapshot, err error) error {
	if err == nil {
		return c.Status(http.StatusOK).JSON(ToResponse(snap))
	}
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return c.Status(http.StatusUnprocessableEntity).JSON(ToResponse(snap))
	case errors.Is(err, ErrGatewayUnavailable):
		return c.Status(http.StatusBadGateway).JSON(ToResponse(snap))
	case errors.Is(err, ErrFlowInProgress), errors.Is(err, ErrAmountEntryClosed):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrMachineClosed):
		return fiber.NewError(http.StatusGone, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
