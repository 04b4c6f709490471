package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/renalcare/dashboard/internal/domain/notification"
	"github.com/renalcare/dashboard/internal/domain/patient"
	"github.com/renalcare/dashboard/internal/platform/store"
	"github.com/renalcare/dashboard/internal/platform/upstream"
	"github.com/renalcare/dashboard/pkg/pagination"
)

// DirectorySource supplies the patient roster and the notification feed,
// which are not scoped to a single patient.
type DirectorySource interface {
	FetchAllPatients(ctx context.Context) ([]patient.Patient, error)
	FetchNotifications(ctx context.Context) ([]notification.Notification, error)
}

// Handler exposes the dashboard over HTTP.
type Handler struct {
	manager *Manager
	log     zerolog.Logger

	patients      *store.Store[[]patient.Patient]
	notifications *store.Store[[]notification.Notification]
}

// cloneNotifications copies the list and each recipient slice, so a snapshot
// cannot reach the cached read flags.
func cloneNotifications(in []notification.Notification) []notification.Notification {
	out := store.SliceClone(in)
	for i := range out {
		out[i].Recipients = store.SliceClone(out[i].Recipients)
	}
	return out
}

// NewHandler wires the manager and the directory-level stores.
func NewHandler(manager *Manager, dir DirectorySource, log zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		log:     log,
		patients: store.New("patients", func(ctx context.Context) ([]patient.Patient, error) {
			return dir.FetchAllPatients(ctx)
		}, store.WithClone(store.SliceClone[patient.Patient])),
		notifications: store.New("notifications", func(ctx context.Context) ([]notification.Notification, error) {
			return dir.FetchNotifications(ctx)
		}, store.WithClone(cloneNotifications)),
	}
}

// RegisterRoutes binds the dashboard routes to the given Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.ListPatients)
	g.GET("/patients/:id/profile", h.GetProfile)
	g.POST("/patients/:id/tabs/:tab", h.SelectTab)
	g.POST("/patients/:id/prediction/refresh", h.RefreshPrediction)
	g.GET("/notifications", h.ListNotifications)
	g.POST("/notifications/:id/read", h.MarkNotificationRead)
}

// httpError maps taxonomy errors onto HTTP statuses.
func httpError(err error) *echo.HTTPError {
	switch {
	case upstream.IsAuth(err):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case upstream.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, upstream.ErrNoInvestigationData):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}

// ListPatients handles GET /patients.
func (h *Handler) ListPatients(c echo.Context) error {
	list, err := h.patients.EnsureLoaded(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	p := pagination.FromContext(c)
	return c.JSON(http.StatusOK, map[string]any{
		"patients": pagination.Page(list, p),
		"total":    len(list),
		"hasMore":  p.HasMore(len(list)),
	})
}

func (h *Handler) roleFromQuery(c echo.Context) (Role, error) {
	role, err := ParseRole(c.QueryParam("role"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return role, nil
}

// GetProfile handles GET /patients/:id/profile. It loads the patient record
// and returns the current snapshot; tab categories stay unfetched until
// their tab is selected.
func (h *Handler) GetProfile(c echo.Context) error {
	role, err := h.roleFromQuery(c)
	if err != nil {
		return err
	}
	sess := h.manager.Session(c.Param("id"))
	if _, err := sess.EnsurePatient(c.Request().Context()); err != nil {
		if upstream.IsAuth(err) || upstream.IsNotFound(err) {
			return httpError(err)
		}
		// Fetch failures still produce a snapshot carrying the error.
	}
	return c.JSON(http.StatusOK, sess.Snapshot(role))
}

// SelectTab handles POST /patients/:id/tabs/:tab.
func (h *Handler) SelectTab(c echo.Context) error {
	role, err := h.roleFromQuery(c)
	if err != nil {
		return err
	}
	tab, err := ParseTab(c.Param("tab"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !AllowedForRole(tab, role) {
		return echo.NewHTTPError(http.StatusForbidden, "tab not available for role")
	}

	sess := h.manager.Session(c.Param("id"))
	if err := sess.SelectTab(c.Request().Context(), tab); err != nil {
		if upstream.IsAuth(err) {
			return httpError(err)
		}
		// Category load failures are carried inside the snapshot.
		h.log.Warn().Err(err).Str("tab", string(tab)).Msg("tab load failed")
	}
	return c.JSON(http.StatusOK, sess.Snapshot(role))
}

// RefreshPrediction handles POST /patients/:id/prediction/refresh.
func (h *Handler) RefreshPrediction(c echo.Context) error {
	role, err := h.roleFromQuery(c)
	if err != nil {
		return err
	}
	if role == RoleNurse {
		return echo.NewHTTPError(http.StatusForbidden, "predictions not available for role")
	}
	sess := h.manager.Session(c.Param("id"))
	if err := sess.RefreshPrediction(c.Request().Context()); err != nil {
		if upstream.IsAuth(err) {
			return httpError(err)
		}
		h.log.Warn().Err(err).Msg("prediction refresh failed")
	}
	return c.JSON(http.StatusOK, sess.Snapshot(role))
}

// ListNotifications handles GET /notifications. The optional recipient query
// parameter adds an unread count for that user.
func (h *Handler) ListNotifications(c echo.Context) error {
	list, err := h.notifications.EnsureLoaded(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	p := pagination.FromContext(c)
	resp := map[string]any{
		"notifications": pagination.Page(list, p),
		"total":         len(list),
		"hasMore":       p.HasMore(len(list)),
	}
	if recipient := c.QueryParam("recipient"); recipient != "" {
		resp["unread"] = notification.UnreadCount(list, recipient)
	}
	return c.JSON(http.StatusOK, resp)
}

// MarkNotificationRead handles POST /notifications/:id/read. The flag is
// flipped only in the cached list; the backend is not called.
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient is required")
	}

	id := c.Param("id")
	var updated *notification.Notification
	ok := h.notifications.Update(func(list []notification.Notification) []notification.Notification {
		for i := range list {
			if list[i].ID == id {
				list[i].MarkRead(recipient)
				n := list[i]
				updated = &n
				break
			}
		}
		return list
	})
	if !ok {
		return echo.NewHTTPError(http.StatusConflict, "notifications not loaded")
	}
	if updated == nil {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.JSON(http.StatusOK, updated)
}
