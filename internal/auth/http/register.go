package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/galleria-app/galleria/internal/auth/service"
	"github.com/galleria-app/galleria/internal/auth/session"
	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// RegisterHandler serves account self-registration. It accepts both the
// rendered HTML form and JSON posts from the frontend.
type RegisterHandler struct {
	UserService   *service.UserService
	Sessions      *session.Store
	SecureCookies bool
}

func (h *RegisterHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Ensure(w, r, h.SecureCookies)
	if err != nil {
		httpx.WriteProblem(w, r, http.StatusInternalServerError, "session failure")
		return
	}
	renderPage(w, http.StatusOK, "register.html", registerPageData{CSRFToken: sess.CSRFToken})
}

func (h *RegisterHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.handleJSON(w, r)
		return
	}
	h.handleForm(w, r)
}

func (h *RegisterHandler) handleForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, ok := h.Sessions.FromRequest(r)
	if !ok {
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		httpx.WriteProblem(w, r, http.StatusBadRequest, "invalid form body")
		return
	}
	username := r.PostFormValue("username")

	_, err := h.UserService.Register(ctx, username, r.PostFormValue("password"))
	if err != nil {
		data := registerPageData{
			CSRFToken:   sess.CSRFToken,
			Username:    username,
			FieldErrors: map[string]string{},
		}

		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			for _, issue := range verr.Issues {
				data.FieldErrors[issue.Field] = issue.Message
			}
		case errors.Is(err, service.ErrUsernameTaken):
			data.FieldErrors["username"] = "username is already taken"
		default:
			slogx.FromContext(ctx).Error("registration failed", "err", err)
			data.Error = "Something went wrong, try again."
			renderPage(w, http.StatusInternalServerError, "register.html", data)
			return
		}

		renderPage(w, http.StatusBadRequest, "register.html", data)
		return
	}

	http.Redirect(w, r, "/login?registered", http.StatusFound)
}

func (h *RegisterHandler) handleJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteProblem(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.UserService.Register(ctx, body.Username, body.Password)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			fields := make([]httpx.FieldError, 0, len(verr.Issues))
			for _, issue := range verr.Issues {
				fields = append(fields, httpx.FieldError{Field: issue.Field, Message: issue.Message})
			}
			httpx.WriteValidationProblem(w, r, "registration failed", fields)
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteValidationProblem(w, r, "registration failed", []httpx.FieldError{
				{Field: "username", Message: "username is already taken"},
			})
		default:
			slogx.FromContext(ctx).Error("registration failed", "err", err)
			httpx.WriteProblem(w, r, http.StatusInternalServerError, "registration failure")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":       user.ID,
		"username": user.Username,
	})
}
