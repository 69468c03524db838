package checkout

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the callback endpoints used by the hosted widget.
type Handler struct {
	hosted *Hosted
}

// NewHandler constructs a checkout handler.
func NewHandler(hosted *Hosted) *Handler {
	return &Handler{hosted: hosted}
}

type payerResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type widgetResponse struct {
	Reference  string            `json:"reference"`
	Amount     string            `json:"amount"`
	APIKey     string            `json:"apiKey"`
	BusinessID string            `json:"businessId"`
	Currency   string            `json:"currency"`
	Payer      payerResponse     `json:"payer"`
	Color      string            `json:"color"`
	Metadata   map[string]string `json:"metadata"`
}

// Widget returns the configuration the widget should open with.
func (h *Handler) Widget(c *fiber.Ctx) error {
	w, err := h.hosted.Lookup(c.Params("reference"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	req := w.Request
	return c.Status(http.StatusOK).JSON(widgetResponse{
		Reference:  w.Reference,
		Amount:     req.Amount.StringFixed(2),
		APIKey:     w.APIKey,
		BusinessID: w.BusinessID,
		Currency:   req.Currency,
		Payer: payerResponse{
			Email:     req.Payer.Email,
			FirstName: req.Payer.FirstName,
			LastName:  req.Payer.LastName,
			Phone:     req.Payer.Phone,
		},
		Color:    req.Color,
		Metadata: req.Metadata,
	})
}

// Transaction receives the widget's onTransaction callback.
func (h *Handler) Transaction(c *fiber.Ctx) error {
	var resp TransactionResponse
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&resp); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	if err := h.hosted.Transaction(c.Params("reference"), resp); err != nil {
		return callbackError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "received"})
}

// Close receives the widget's onClose callback.
func (h *Handler) Close(c *fiber.Ctx) error {
	if err := h.hosted.Close(c.Params("reference")); err != nil {
		return callbackError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "received"})
}

func callbackError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownCheckout):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadySettled):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
