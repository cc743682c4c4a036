package scheduling

import (
	"errors"
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
	api.GET("/doctors/:id/slots", h.Slots)

	api.POST("/appointments", h.Create, auth.RequireRole("patient"))
	api.GET("/appointments", h.List)
	api.GET("/appointments/my", h.MyAppointments, auth.RequireRole("patient"))
	api.GET("/appointments/today", h.Today, auth.RequireRole("doctor"))
	api.GET("/appointments/:id", h.Get)
	api.PUT("/appointments/:id", h.Update)
	api.DELETE("/appointments/:id", h.Cancel)
}

// httpStatusFor maps booking failures onto response codes: conflicts get 409
// so clients can offer a "pick another time" flow, lookups 404, the rest 400.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrSlotTaken):
		return http.StatusConflict
	case errors.Is(err, ErrDoctorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrBadDate),
		errors.Is(err, ErrBadTime),
		errors.Is(err, ErrPastDate),
		errors.Is(err, ErrDayUnavailable),
		errors.Is(err, ErrOutsideHours),
		errors.Is(err, ErrDuringBreak),
		errors.Is(err, ErrNotModifiable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Slots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}
	slots, err := h.svc.Slots(c.Request().Context(), doctorID, date)
	if err != nil {
		return echo.NewHTTPError(httpStatusFor(err), err.Error())
	}
	if slots == nil {
		slots = []Slot{}
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) Create(c echo.Context) error {
	patientID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.PatientID = patientID
	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(httpStatusFor(err), err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) List(c echo.Context) error {
	userID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	pg := pagination.FromContext(c)
	role := auth.RoleFromContext(c.Request().Context())
	filter := ListFilter{
		Status: c.QueryParam("status"),
		Date:   c.QueryParam("date"),
	}
	list, total, err := h.svc.ListFor(c.Request().Context(), role, userID, filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, pg.Limit, pg.Offset))
}

func (h *Handler) MyAppointments(c echo.Context) error {
	patientID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	upcoming, past, err := h.svc.MyAppointments(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"upcoming":       upcoming,
		"past":           past,
		"total_upcoming": len(upcoming),
		"total_past":     len(past),
	})
}

func (h *Handler) Today(c echo.Context) error {
	userID, err := auth.UserUUIDFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	list, err := h.svc.TodayForDoctor(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(httpStatusFor(err), err.Error())
	}
	if list == nil {
		list = []*Appointment{}
	}
	return c.JSON(http.StatusOK, map[string]any{"appointments": list, "total": len(list)})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err := h.authorizeAccess(c, a); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Update changes an appointment's status, or reschedules it when a new date
// and time are supplied. Status changes are for the doctor or admin;
// rescheduling is open to the booking patient as well.
func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err := h.authorizeAccess(c, a); err != nil {
		return err
	}

	var body struct {
		Status          string `json:"status"`
		AppointmentDate string `json:"appointment_date"`
		AppointmentTime string `json:"appointment_time"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role := auth.RoleFromContext(c.Request().Context())
	if body.Status != "" {
		if role == "patient" {
			return echo.NewHTTPError(http.StatusForbidden, "patients cannot change appointment status")
		}
		a, err = h.svc.UpdateStatus(c.Request().Context(), id, body.Status)
		if err != nil {
			return echo.NewHTTPError(httpStatusFor(err), err.Error())
		}
	}
	if body.AppointmentDate != "" || body.AppointmentTime != "" {
		a, err = h.svc.Reschedule(c.Request().Context(), id, body.AppointmentDate, body.AppointmentTime)
		if err != nil {
			return echo.NewHTTPError(httpStatusFor(err), err.Error())
		}
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err := h.authorizeAccess(c, a); err != nil {
		return err
	}
	a, err = h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(httpStatusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

// authorizeAccess admits admins, the booking patient, and the appointment's
// doctor.
func (h *Handler) authorizeAccess(c echo.Context, a *Appointment) error {
	ctx := c.Request().Context()
	role := auth.RoleFromContext(ctx)
	if role == "admin" {
		return nil
	}
	userID, err := auth.UserUUIDFromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if a.PatientID == userID {
		return nil
	}
	if role == "doctor" {
		if doc, err := h.svc.doctors.GetByUserID(ctx, userID); err == nil && doc.ID == a.DoctorID {
			return nil
		}
	}
	return echo.NewHTTPError(http.StatusForbidden, "not a participant in this appointment")
}
