package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/libraryhub/circulation/internal/core/ports"
)

// DashboardHandler serves the role-specific overview pages.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Librarian handles GET /v1/dashboard/librarian.
//
// @Summary      Inventory and loan overview for staff
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  librarianDashboardResponse
// @Router       /v1/dashboard/librarian [get]
func (h *DashboardHandler) Librarian(c echo.Context) error {
	d, err := h.service.Librarian(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLibrarianResponse(d))
}

// Student handles GET /v1/users/:id/dashboard.
//
// @Summary      A borrower's account summary
// @Tags         dashboards
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  studentDashboardResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/dashboard [get]
func (h *DashboardHandler) Student(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	d, err := h.service.Student(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentResponse(d))
}
