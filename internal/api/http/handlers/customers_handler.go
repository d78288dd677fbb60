package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// CustomersHandler serves caller lookup and customer records.
type CustomersHandler struct {
	resolver *service.CustomerResolver
	validate *validator.Validate
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(resolver *service.CustomerResolver, validate *validator.Validate) *CustomersHandler {
	return &CustomersHandler{resolver: resolver, validate: validate}
}

// Resolve GET /customers/resolve?phone=.
func (h *CustomersHandler) Resolve(c *fiber.Ctx) error {
	customer, err := h.resolver.Resolve(c.UserContext(), c.Query("phone"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// Create POST /customers, used by staff when a caller is not on file.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	var req dto.CustomerRegisterRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return err
	}
	customer, err := h.resolver.Create(c.UserContext(), customerInput(&req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": customerResponse(customer)})
}

// Me GET /customers/me.
func (h *CustomersHandler) Me(c *fiber.Ctx) error {
	customer, err := currentCustomer(c)
	if err != nil {
		return err
	}
	profile, err := h.resolver.Profile(c.UserContext(), customer.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}
