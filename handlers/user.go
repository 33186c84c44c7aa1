package handlers

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/posgate/models"
	"github.com/ray-remotestate/posgate/session"
	"github.com/ray-remotestate/posgate/upstream"
	"github.com/ray-remotestate/posgate/utils"
)

const (
	waiterLanding  = session.LandingPath
	kitchenLanding = "/kitchen/orders"
)

func landingFor(role models.Role) string {
	if role == models.RoleKitchen {
		return kitchenLanding
	}
	return waiterLanding
}

// LoginPage tells the login screen whether a session already exists.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Rehydrate(r.Context(), w, r)
	if s == nil {
		utils.WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"session":       s,
		"redirect":      landingFor(s.Role),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if !decode(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		utils.WriteProblem(w, http.StatusBadRequest, "invalid_request", "email and password required")
		return
	}

	token, err := h.api.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if !upstream.IsRejected(err) && !upstream.IsUnauthorized(err) {
			logrus.WithError(err).Warn("login could not reach the api")
			mutationFailed(w, err)
			return
		}
		logrus.WithError(err).WithField("email", req.Email).Info("login refused")
		utils.WriteProblem(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	}

	s, next := h.sessions.Login(r.Context(), w, token)
	if s != nil {
		next = landingFor(s.Role)
		logrus.WithFields(logrus.Fields{"user": s.UserID, "role": s.Role}).Info("logged in")
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout also drops the waiter's draft order.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := h.sessions.Rehydrate(r.Context(), w, r); s != nil {
		h.carts.Drop(s.UserID)
	}
	http.Redirect(w, r, h.sessions.Logout(w, r), http.StatusSeeOther)
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	s := session.Current(r.Context())
	if s == nil {
		http.Redirect(w, r, session.LoginPath, http.StatusTemporaryRedirect)
		return
	}
	http.Redirect(w, r, landingFor(s.Role), http.StatusTemporaryRedirect)
}
