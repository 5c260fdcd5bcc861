package account

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/keber-cl/wallet-api/internal/ledger"
	"github.com/keber-cl/wallet-api/internal/money"
)

// Handler exposes registration and login endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles account creation.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.service.Register(c.UserContext(), req.Name, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateAccount):
			return fiber.NewError(http.StatusBadRequest, "email already registered")
		case errors.Is(err, ErrMissingFields):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "registration failed")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "account registered"})
}

// Login re-authenticates the caller and returns the account profile.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acct, err := h.service.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
		}
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "login successful",
		"name":    acct.Name,
		"email":   acct.Email,
		"balance": money.FromMinorUnits(acct.Balance),
	})
}
