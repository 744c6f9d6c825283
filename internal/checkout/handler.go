package checkout

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/order"
)

type Handler struct {
	orchestrator *Orchestrator
}

func NewHandler(o *Orchestrator) *Handler {
	return &Handler{orchestrator: o}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
}

type checkoutRequest struct {
	Currency  string `json:"currency,omitempty"`
	InvoiceNo string `json:"invoiceNo,omitempty"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	payload := new(checkoutRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	}

	customerID, err := auth.CustomerIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	result, err := h.orchestrator.Checkout(c.Context(), customerID, payload.Currency, payload.InvoiceNo)
	if err != nil {
		var mismatch *PriceMismatchError
		var txErr *order.TxError
		switch {
		case errors.Is(err, ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.As(err, &mismatch):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":    mismatch.Error(),
				"mismatches": mismatch.Mismatches,
			})
		case errors.Is(err, ErrCheckoutInProgress):
			return c.Status(fiber.StatusLocked).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, order.ErrInvoiceConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "invoice number already exists"})
		case errors.As(err, &txErr):
			// never expose partial transaction detail; log with a
			// correlation id for operational follow-up
			correlationID := uuid.NewString()
			log.Printf("checkout transaction failed: correlation=%s customer=%d step=%s err=%v",
				correlationID, customerID, txErr.Step, txErr.Err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message":       "failed to process order",
				"correlationId": correlationID,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
