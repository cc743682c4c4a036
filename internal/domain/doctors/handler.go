package doctors

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/platform/auth"
	"github.com/clinicbook/clinicbook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – any authenticated user
	api.GET("/doctors", h.List)
	api.GET("/specializations", h.Specializations)
	api.GET("/doctors/:id", h.Get)
	api.GET("/doctors/:id/schedule", h.GetSchedule)

	// Profile creation and removal – admin only
	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/doctors", h.Create)
	adminGroup.DELETE("/doctors/:id", h.Delete)

	// Profile and schedule editing – admin, or the doctor themselves
	api.PUT("/doctors/:id", h.Update, auth.RequireRole("admin", "doctor"))
	api.PUT("/doctors/:id/schedule", h.UpdateSchedule, auth.RequireRole("admin", "doctor"))
}

func (h *Handler) Create(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	list, total, err := h.svc.List(c.Request().Context(), c.QueryParam("specialization"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.authorizeDoctorEdit(c, id); err != nil {
		return err
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d.ID = id
	if err := h.svc.Update(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Specializations(c echo.Context) error {
	specs, err := h.svc.Specializations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if specs == nil {
		specs = []string{}
	}
	return c.JSON(http.StatusOK, specs)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	schedule, err := h.svc.Schedule(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"doctor_id": id, "schedule": schedule})
}

func (h *Handler) UpdateSchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.authorizeDoctorEdit(c, id); err != nil {
		return err
	}
	var body struct {
		Schedule WeeklySchedule `json:"schedule"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	normalized, err := h.svc.UpdateSchedule(c.Request().Context(), id, body.Schedule)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"doctor_id": id, "schedule": normalized})
}

// authorizeDoctorEdit lets admins edit any doctor and doctors only themselves.
func (h *Handler) authorizeDoctorEdit(c echo.Context, doctorID uuid.UUID) error {
	if auth.RoleFromContext(c.Request().Context()) == "admin" {
		return nil
	}
	userID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	d, err := h.svc.Get(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	}
	if d.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "cannot edit another doctor's profile")
	}
	return nil
}
