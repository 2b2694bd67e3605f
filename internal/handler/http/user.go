package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/internal/service"
	"github.com/MKhiriev/go-login-portal/internal/utils"
	"github.com/MKhiriev/go-login-portal/internal/validators"
	"github.com/MKhiriev/go-login-portal/models"
)

// multipartMemory is the part of an upload kept in memory while parsing.
const multipartMemory = 1 << 20

// multipartOverhead is the room left for form fields and boundaries on top
// of the avatar size limit.
const multipartOverhead = 64 << 10

type profileForm struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

type profileData struct {
	AvatarMaxBytes int64 `json:"avatar_max_bytes"`
}

type directoryData struct {
	Users      []userView `json:"users"`
	AdminCount int        `json:"admin_count"`
	UserCount  int        `json:"user_count"`
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.ProfileService.Home(r.Context())
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.home").Msg("error loading home stats")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.render(w, r, http.StatusOK, pageView{Page: "home", Data: stats})
}

func (h *Handler) dashboardRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/home", http.StatusFound)
}

func (h *Handler) directory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	directory, err := h.services.ProfileService.Directory(ctx)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.directory").Msg("error loading directory")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	h.render(w, r, http.StatusOK, pageView{
		Page: "directory",
		Data: directoryData{
			Users:      h.newUserViews(ctx, directory.Users),
			AdminCount: directory.AdminCount,
			UserCount:  directory.UserCount,
		},
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	user, _ := utils.IdentityFromContext(r.Context())
	h.renderProfile(w, r, http.StatusOK, profileFormOf(user), nil)
}

func (h *Handler) updateProfileDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := utils.IdentityFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}

	request := models.ProfileDetailsRequest{
		FullName: r.PostForm.Get("full_name"),
		Username: r.PostForm.Get("username"),
		Email:    r.PostForm.Get("email"),
		Bio:      r.PostForm.Get("bio"),
	}

	if _, err := h.services.ProfileService.UpdateDetails(ctx, user, request); err != nil {
		form := profileForm{FullName: request.FullName, Username: request.Username, Email: request.Email, Bio: request.Bio}
		h.profileFailure(w, r, "*Handler.updateProfileDetails", err, form)
		return
	}

	h.redirect(w, r, "/profile", notice(noticeSuccess, "Profile details updated."))
}

func (h *Handler) updateProfilePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := utils.IdentityFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}

	request := models.PasswordChangeRequest{
		CurrentPassword: r.PostForm.Get("current_password"),
		NewPassword:     r.PostForm.Get("new_password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}

	if err := h.services.ProfileService.ChangePassword(ctx, user, request); err != nil {
		h.profileFailure(w, r, "*Handler.updateProfilePassword", err, profileFormOf(user))
		return
	}

	h.redirect(w, r, "/profile", notice(noticeSuccess, "Password updated successfully."))
}

func (h *Handler) updateProfileAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)
	user, _ := utils.IdentityFromContext(ctx)

	if h.avatarMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.avatarMaxBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.profileFailure(w, r, "*Handler.updateProfileAvatar", service.ErrAvatarTooLarge, profileFormOf(user))
			return
		}
		log.Err(err).Str("func", "*Handler.updateProfileAvatar").Msg("invalid multipart form was passed")
		writeError(w, http.StatusBadRequest, ErrInvalidForm.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.renderProfile(w, r, http.StatusBadRequest, profileFormOf(user),
			validators.ValidationErrors{validators.FieldAvatar: validators.MsgAvatarRequired})
		return
	}
	defer file.Close()

	upload := models.AvatarUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}

	if _, err = h.services.ProfileService.UpdateAvatar(ctx, user, upload, file); err != nil {
		h.profileFailure(w, r, "*Handler.updateProfileAvatar", err, profileFormOf(user))
		return
	}

	h.redirect(w, r, "/profile", notice(noticeSuccess, "Profile photo updated."))
}

func (h *Handler) removeProfileAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := utils.IdentityFromContext(ctx)

	if _, err := h.services.ProfileService.RemoveAvatar(ctx, user); err != nil {
		if errors.Is(err, service.ErrNoAvatar) {
			h.redirect(w, r, "/profile", notice(noticeInfo, "No custom profile photo to remove."))
			return
		}
		h.profileFailure(w, r, "*Handler.removeProfileAvatar", err, profileFormOf(user))
		return
	}

	h.redirect(w, r, "/profile", notice(noticeSuccess, "Profile photo removed."))
}

// profileFailure renders the profile page for a rejected profile form.
func (h *Handler) profileFailure(w http.ResponseWriter, r *http.Request, funcName string, err error, form profileForm) {
	status := statusFromError(err)

	var notices []models.Notice
	switch {
	case errors.Is(err, service.ErrAvatarTooLarge):
		notices = append(notices, notice(noticeDanger,
			fmt.Sprintf("Uploaded file is too large. Maximum allowed is %s.", formatBytes(h.avatarMaxBytes))))
	case status == http.StatusInternalServerError:
		logger.FromRequest(r).Err(err).Str("func", funcName).Msg("unexpected error occurred during profile update")
		notices = append(notices, notice(noticeDanger, msgUnexpected))
	}

	h.renderProfile(w, r, status, form, fieldErrors(err), notices...)
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, status int, form profileForm, errs validators.ValidationErrors, notices ...models.Notice) {
	h.render(w, r, status, pageView{
		Page:    "profile",
		Errors:  errs,
		Notices: notices,
		Form:    form,
		Data:    profileData{AvatarMaxBytes: h.avatarMaxBytes},
	})
}

func profileFormOf(user models.User) profileForm {
	form := profileForm{Username: user.Username, Email: user.Email}
	if user.FullName != nil {
		form.FullName = *user.FullName
	}
	if user.Bio != nil {
		form.Bio = *user.Bio
	}
	return form
}

// formatBytes renders a size limit in whole megabytes when it is one.
func formatBytes(n int64) string {
	const mib = 1 << 20
	if n > 0 && n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
