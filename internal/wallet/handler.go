package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/keber-cl/wallet-api/internal/ledger"
	"github.com/keber-cl/wallet-api/internal/money"
)

// Handler exposes the wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addRequest struct {
	Email  string          `json:"email"`
	Amount decimal.Decimal `json:"amount"`
}

type sendRequest struct {
	SenderEmail    string          `json:"sender_email"`
	RecipientEmail string          `json:"recipient_email"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note"`
}

type historyEntry struct {
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	FinalBalance decimal.Decimal `json:"final_balance"`
}

// Add credits funds to an account.
func (h *Handler) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	amount, err := money.ToMinorUnits(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Deposit(c.UserContext(), req.Email, amount)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":     "funds added",
		"new_balance": money.FromMinorUnits(res.NewBalance),
	})
}

// Send transfers funds between two accounts.
func (h *Handler) Send(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	amount, err := money.ToMinorUnits(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Transfer(c.UserContext(), req.SenderEmail, req.RecipientEmail, amount, req.Note)
	if err != nil {
		return mapLedgerError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":     "transfer completed",
		"new_balance": money.FromMinorUnits(res.SenderBalance),
	})
}

// Balance returns the account's current balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	balance, err := h.service.Balance(c.UserContext(), c.Params("email"))
	if err != nil {
		return mapLedgerError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance": money.FromMinorUnits(balance),
	})
}

// History returns the account's transaction log in insertion order.
func (h *Handler) History(c *fiber.Ctx) error {
	history, err := h.service.History(c.UserContext(), c.Params("email"))
	if err != nil {
		return mapLedgerError(err)
	}

	out := make([]historyEntry, 0, len(history))
	for _, t := range history {
		out = append(out, historyEntry{
			Type:         t.Kind,
			Amount:       money.FromMinorUnits(t.Amount),
			Description:  t.Description,
			FinalBalance: money.FromMinorUnits(t.BalanceAfter),
		})
	}

	return c.Status(http.StatusOK).JSON(out)
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, "account not found")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient funds")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
