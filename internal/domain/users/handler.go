package users

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"petclinic/internal/middleware"
	"petclinic/internal/platform/respond"
	"petclinic/internal/platform/validate"
	"petclinic/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/users", func(ur chi.Router) {
		ur.Post("/", registerHandler(svc))
		ur.Get("/", listUsersHandler(svc))
		ur.Post("/login", loginHandler(svc))
		ur.Post("/logout", logoutHandler())
		ur.Post("/validate-token", validateTokenHandler(svc))

		ur.Route("/{userId}", func(one chi.Router) {
			one.Get("/", getUserHandler(svc))
			one.Delete("/", deleteUserHandler(svc))
			one.Patch("/disable", setDisabledHandler(svc, true))
			one.Patch("/enable", setDisabledHandler(svc, false))
			one.Patch("/roles", updateRolesHandler(svc))
		})
	})

	r.Route("/roles", func(rr chi.Router) {
		rr.Get("/", listRolesHandler(svc))
		rr.Post("/", createRoleHandler(svc))
	})
}

type registerRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type rolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1"`
}

type roleRequest struct {
	Name string `json:"name" validate:"required"`
}

type userResponse struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Disabled bool     `json:"disabled"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	userResponse
}

type claimsResponse struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type roleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeValid(w, r, &req) {
			return
		}
		u, err := svc.Register(r.Context(), RegisterInput{
			UserID:   req.UserID,
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeValid(w, r, &req) {
			return
		}
		login := strings.TrimSpace(req.Username)
		if login == "" {
			login = strings.TrimSpace(req.Email)
		}
		if login == "" {
			respond.Error(w, http.StatusBadRequest, "username or email is required")
			return
		}

		sess, err := svc.Login(r.Context(), login, req.Password)
		if err != nil {
			writeErr(w, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookie,
			Value:    sess.Token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		respond.JSON(w, http.StatusOK, loginResponse{
			Token:        sess.Token,
			ExpiresAt:    sess.ExpiresAt,
			userResponse: toUserResponse(sess.User),
		})
	}
}

func logoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
		})
		respond.NoContent(w)
	}
}

func validateTokenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.TokenFromRequest(r)
		if token == "" {
			respond.Error(w, http.StatusUnauthorized, "missing token")
			return
		}
		c, err := svc.ValidateToken(r.Context(), token)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toClaimsResponse(c))
	}
}

func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Get(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toUserResponse(u))
	}
}

func deleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "userId")); err != nil {
			writeErr(w, err)
			return
		}
		respond.NoContent(w)
	}
}

func setDisabledHandler(svc *Service, disabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.SetDisabled(r.Context(), chi.URLParam(r, "userId"), disabled)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toUserResponse(u))
	}
}

func updateRolesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rolesRequest
		if !decodeValid(w, r, &req) {
			return
		}
		u, err := svc.UpdateRoles(r.Context(), chi.URLParam(r, "userId"), req.Roles)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toUserResponse(u))
	}
}

func listRolesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListRoles(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]roleResponse, 0, len(items))
		for _, rl := range items {
			out = append(out, roleResponse{ID: rl.ID, Name: rl.Name})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

func createRoleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleRequest
		if !decodeValid(w, r, &req) {
			return
		}
		rl, err := svc.CreateRole(r.Context(), req.Name)
		if err != nil {
			writeErr(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, roleResponse{ID: rl.ID, Name: rl.Name})
	}
}

func toUserResponse(u User) userResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{UserID: u.ID, Username: u.Username, Email: u.Email, Roles: roles, Disabled: u.Disabled}
}

func toClaimsResponse(c auth.Claims) claimsResponse {
	return claimsResponse{UserID: c.UserID, Username: c.Username, Email: c.Email, Roles: c.Roles}
}

func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := respond.Decode(r, v); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := validate.Struct(v); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Err(w, http.StatusBadRequest, err)
	case errors.Is(err, ErrUnauthorized):
		respond.Err(w, http.StatusUnauthorized, err)
	case errors.Is(err, ErrNotFound):
		respond.Err(w, http.StatusNotFound, err)
	case errors.Is(err, ErrUnprocessable):
		respond.Err(w, http.StatusUnprocessableEntity, err)
	default:
		respond.Err(w, http.StatusInternalServerError, err)
	}
}
