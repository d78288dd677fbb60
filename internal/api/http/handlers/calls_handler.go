package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// CallsHandler drives call screens for staff.
type CallsHandler struct {
	calls    *service.CallSessionManager
	validate *validator.Validate
}

// NewCallsHandler constructs handler.
func NewCallsHandler(calls *service.CallSessionManager, validate *validator.Validate) *CallsHandler {
	return &CallsHandler{calls: calls, validate: validate}
}

// StartSession POST /calls/sessions.
func (h *CallsHandler) StartSession(c *fiber.Ctx) error {
	staff, err := currentStaff(c)
	if err != nil {
		return err
	}
	sess, err := h.calls.Start(c.UserContext(), staff.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(sess)})
}

// EndSession POST /calls/sessions/:id/end.
func (h *CallsHandler) EndSession(c *fiber.Ctx) error {
	staff, err := currentStaff(c)
	if err != nil {
		return err
	}
	var req dto.EndCallRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return err
	}
	result, err := h.calls.End(c.UserContext(), c.Params("id"), staff.ID, service.EndCallInput{
		Phone:        req.Phone,
		CustomerID:   req.CustomerID,
		CallTypeID:   req.CallTypeID,
		CallTopicID:  req.CallTopicID,
		CallResultID: req.CallResultID,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": endCallResponse(result)})
}
