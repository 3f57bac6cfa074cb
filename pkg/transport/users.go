package transport

import (
	"net/http"

	"storefront/pkg/common/domain"
)

var (
	errSignInRequired = domain.Unauthorized("not authorized, no token")
	errAdminRequired  = domain.Forbidden("not authorized as an admin")
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.services.Users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(session.User, session.Token))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.services.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(session.User, session.Token))
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	principal, err := requireSignIn(r)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.services.Users.Profile(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string       `json:"message"`
		User    userResponse `json:"user"`
	}{"Welcome to your profile!", toUserResponse(user, "")})
}

func (h *Handler) suspendUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Users.SuspendUser(r.Context(), principalFrom(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "User suspended")
}

func (h *Handler) activateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Users.ActivateUser(r.Context(), principalFrom(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "User activated")
}

func requireSignIn(r *http.Request) (domain.Principal, error) {
	principal := principalFrom(r)
	if principal.IsAnonymous() {
		return principal, errSignInRequired
	}
	return principal, nil
}

func requireAdmin(r *http.Request) error {
	principal, err := requireSignIn(r)
	if err != nil {
		return err
	}
	if !principal.IsAdmin {
		return errAdminRequired
	}
	return nil
}
