package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// ComplaintsHandler serves staff and customer complaint endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	surveys    *service.SurveyService
	validate   *validator.Validate
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, surveys *service.SurveyService, validate *validator.Validate) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, surveys: surveys, validate: validate}
}

// ListAssigned GET /staff/complaints?filter=all|active|closed.
func (h *ComplaintsHandler) ListAssigned(c *fiber.Ctx) error {
	staff, err := currentStaff(c)
	if err != nil {
		return err
	}
	filter := domain.ParseComplaintListFilter(c.Query("filter"))
	views, err := h.complaints.ListForStaff(c.UserContext(), staff.ID, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummaries(views)})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.complaints.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(view)})
}

// Actions GET /complaints/:id/actions.
func (h *ComplaintsHandler) Actions(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	actions, err := h.complaints.Actions(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionResponses(actions)})
}

// Close POST /complaints/:id/close.
func (h *ComplaintsHandler) Close(c *fiber.Ctx) error {
	staff, err := currentStaff(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	action, err := h.complaints.Close(c.UserContext(), id, staff.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionResponse(action)})
}

// ListMine GET /me/complaints?active=true|false.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	customer, err := currentCustomer(c)
	if err != nil {
		return err
	}
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		return err
	}
	views, err := h.complaints.ListForCustomer(c.UserContext(), customer.ID, active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintSummaries(views)})
}

// GetMine GET /me/complaints/:id.
func (h *ComplaintsHandler) GetMine(c *fiber.Ctx) error {
	customer, err := currentCustomer(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.complaints.GetForCustomer(c.UserContext(), customer.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(view)})
}

// CreateMine POST /me/complaints.
func (h *ComplaintsHandler) CreateMine(c *fiber.Ctx) error {
	customer, err := currentCustomer(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.CreateSelfService(c.UserContext(), customer.ID, service.SelfServiceInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		ProductCode: req.ProductCode,
	})
	if err != nil {
		return err
	}
	view, err := h.complaints.GetForCustomer(c.UserContext(), customer.ID, complaint.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintDetail(view)})
}

// SubmitSurvey POST /me/complaints/:id/survey.
func (h *ComplaintsHandler) SubmitSurvey(c *fiber.Ctx) error {
	customer, err := currentCustomer(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SurveyRequest
	if err := bindJSON(c, h.validate, &req); err != nil {
		return err
	}
	survey, err := h.surveys.Submit(c.UserContext(), customer.ID, id, req.Rating)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": surveyResponse(survey)})
}
