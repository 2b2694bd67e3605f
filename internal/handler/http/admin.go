// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/internal/validators"
	"github.com/MKhiriev/go-login-portal/models"
)

const adminDashboardPath = "/admin/dashboard"

// Audit view page size.
const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

type dashboardData struct {
	Users []userView       `json:"users"`
	Stats models.UserStats `json:"stats"`
}

type addUsersData struct {
	RecentUsers []userView `json:"recent_users"`
}

type addUserForm struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type auditData struct {
	Events []models.AuditEvent `json:"events"`
}

func (h *Handler) adminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dashboard, err := h.services.AdminService.Dashboard(ctx)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.adminDashboard").Msg("error loading dashboard")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.render(w, r, http.StatusOK, pageView{
		Page: "admin_dashboard",
		Data: dashboardData{Users: h.newUserViews(ctx, dashboard.Users), Stats: dashboard.Stats},
	})
}

func (h *Handler) addUsersPage(w http.ResponseWriter, r *http.Request) {
	h.renderAddUsers(w, r, http.StatusOK, addUserForm{Role: models.RoleUser.String()}, nil)
}

func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)
	actor, _ := utils.IdentityFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}

	request := models.AdminCreateUserRequest{
		FullName: r.PostForm.Get("full_name"),
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Role:     r.PostForm.Get("role"),
	}

	created, err := h.services.AdminService.CreateUser(ctx, actor, request)
	if err != nil {
		form := addUserForm{FullName: request.FullName, Username: request.Username, Email: request.Email, Role: request.Role}
		fields := fieldErrors(err)

		var notices []models.Notice
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			notices = append(notices, notice(noticeDanger, firstFieldError(fields,
				validators.FieldFullName, validators.FieldUsername, validators.FieldEmail, validators.FieldPassword, validators.FieldRole)))
		case errors.Is(err, service.ErrInvalidRole):
			notices = append(notices, notice(noticeDanger, "Invalid role value."))
		case errors.Is(err, store.ErrConflict):
			notices = append(notices, notice(noticeDanger, "Unable to create user due to duplicate data."))
		case statusFromError(err) == http.StatusInternalServerError:
			log.Err(err).Str("func", "*Handler.addUser").Msg("unexpected error occurred during user creation")
			notices = append(notices, notice(noticeDanger, msgUnexpected))
		}

		h.renderAddUsers(w, r, statusFromError(err), form, fields, notices...)
		return
	}

	h.redirect(w, r, "/admin/users/add",
		notice(noticeSuccess, fmt.Sprintf("New %s account created for %s.", created.Role, created.Username)))
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, "*Handler.updateRole", func(actor models.User, targetID int64) (models.Notice, error) {
		err := h.services.AdminService.ChangeRole(r.Context(), actor, targetID, r.PostFormValue("role"))
		return notice(noticeSuccess, "User role updated."), err
	})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, "*Handler.updateStatus", func(actor models.User, targetID int64) (models.Notice, error) {
		value := r.PostFormValue("is_active")
		if value == "" {
			value = "true"
		}
		err := h.services.AdminService.SetActive(r.Context(), actor, targetID, parseActive(value))
		return notice(noticeSuccess, "User status updated."), err
	})
}

func (h *Handler) unlockUser(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, "*Handler.unlockUser", func(actor models.User, targetID int64) (models.Notice, error) {
		err := h.services.AdminService.Unlock(r.Context(), actor, targetID)
		return notice(noticeSuccess, "User account unlocked."), err
	})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := utils.IdentityFromContext(ctx)

	targetID, err := userIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "404 - Not Found")
		return
	}

	result, err := h.services.AdminService.Delete(ctx, actor, targetID)
	if err != nil {
		h.adminFailure(w, r, "*Handler.deleteUser", err)
		return
	}

	if result.SelfDeleted {
		h.clearTokenCookie(w)
		h.redirect(w, r, "/login", notice(noticeInfo, "Your account was deleted."))
		return
	}

	h.redirect(w, r, adminDashboardPath, notice(noticeSuccess, fmt.Sprintf("User '%s' deleted.", result.Username)))
}

func (h *Handler) auditLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxAuditLimit)
		}
	}

	events, err := h.services.AdminService.AuditLog(r.Context(), limit)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.auditLog").Msg("error loading audit log")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.render(w, r, http.StatusOK, pageView{Page: "admin_audit", Data: auditData{Events: events}})
}

// adminAction runs a dashboard mutation on the {id} target and redirects
// back to the dashboard with success on success.
func (h *Handler) adminAction(w http.ResponseWriter, r *http.Request, funcName string, action func(actor models.User, targetID int64) (models.Notice, error)) {
	actor, _ := utils.IdentityFromContext(r.Context())

	targetID, err := userIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "404 - Not Found")
		return
	}

	success, err := action(actor, targetID)
	if err != nil {
		h.adminFailure(w, r, funcName, err)
		return
	}

	h.redirect(w, r, adminDashboardPath, success)
}

// adminFailure maps a rejected dashboard mutation: rule violations go back
// to the dashboard with a notice, a missing target is 404.
func (h *Handler) adminFailure(w http.ResponseWriter, r *http.Request, funcName string, err error) {
	if message, ok := adminRuleMessage(err); ok {
		h.redirect(w, r, adminDashboardPath, notice(noticeWarning, message))
		return
	}
	if errors.Is(err, service.ErrInvalidRole) {
		h.redirect(w, r, adminDashboardPath, notice(noticeDanger, "Invalid role value."))
		return
	}
	if errors.Is(err, store.ErrNoUserWasFound) {
		writeError(w, http.StatusNotFound, "404 - Not Found")
		return
	}

	logger.FromRequest(r).Err(err).Str("func", funcName).Msg("admin action failed")
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (h *Handler) renderAddUsers(w http.ResponseWriter, r *http.Request, status int, form addUserForm, errs validators.ValidationErrors, notices ...models.Notice) {
	ctx := r.Context()

	recent, err := h.services.AdminService.RecentUsers(ctx)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.renderAddUsers").Msg("error loading recent users")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.render(w, r, status, pageView{
		Page:    "admin_add_users",
		Errors:  errs,
		Notices: notices,
		Form:    form,
		Data:    addUsersData{RecentUsers: h.newUserViews(ctx, recent)},
	})
}

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

// parseActive reads the status form value; anything but an explicit
// truthy value deactivates.
func parseActive(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
