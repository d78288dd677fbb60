package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// DashboardHandler serves the staff home screen and lookup lists.
type DashboardHandler struct {
	dashboard *service.DashboardService
	lookups   *service.LookupService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService, lookups *service.LookupService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, lookups: lookups}
}

// StaffDashboard GET /staff/dashboard.
func (h *DashboardHandler) StaffDashboard(c *fiber.Ctx) error {
	staff, err := currentStaff(c)
	if err != nil {
		return err
	}
	dash, err := h.dashboard.ForStaff(c.UserContext(), staff.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		CallsToday:         dash.CallsToday,
		OpenComplaints:     dash.OpenComplaints,
		CriticalComplaints: complaintSummaries(dash.CriticalComplaints),
	}})
}

// Lookups GET /lookups.
func (h *DashboardHandler) Lookups(c *fiber.Ctx) error {
	lookups, err := h.lookups.CallScreen(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lookupsResponse(lookups)})
}
