package handlers

import (
	"net/http"

	"admissions/internal/core"
	middlewarex "admissions/internal/http/middleware"
	"admissions/internal/services/auth"

	"github.com/google/uuid"
)

type registerReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    text   `json:"phone"`
}

func (in registerReq) input() auth.RegisterInput {
	return auth.RegisterInput{Name: in.Name, Email: in.Email, Password: in.Password, Phone: string(in.Phone)}
}

type adminRegisterReq struct {
	registerReq
	SecretKey string `json:"secretKey" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileReq struct {
	Name  string `json:"name"`
	Phone text   `json:"phone"`
}

type passwordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func RegisterUser(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in registerReq
		if err := decode(r, "register_user", &in); err != nil {
			writeError(w, r, err)
			return
		}
		sess, err := svc.Register(r.Context(), in.input())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "User registered successfully",
			"data":    sess,
		})
	}
}

func LoginUser(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in loginReq
		if err := decode(r, "login", &in); err != nil {
			writeError(w, r, err)
			return
		}
		sess, err := svc.Login(r.Context(), in.Email, in.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Login successful", "data": sess})
	}
}

// Logout revokes the token the request was authenticated with.
func Logout(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middlewarex.Claims(r.Context())
		if !ok {
			writeError(w, r, core.Unauthorized("logout", "Not authorized to access this route"))
			return
		}
		if err := svc.Logout(r.Context(), claims); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logout successful"})
	}
}

// Profile serves both the user and the admin profile routes.
func Profile(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := callerID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		u, err := svc.Profile(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": u})
	}
}

func UpdateProfile(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := callerID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var in profileReq
		if err := decode(r, "update_profile", &in); err != nil {
			writeError(w, r, err)
			return
		}
		u, err := svc.UpdateProfile(r.Context(), id, in.Name, string(in.Phone))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Profile updated successfully", "data": u})
	}
}

func UpdatePassword(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := callerID(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var in passwordReq
		if err := decode(r, "update_password", &in); err != nil {
			writeError(w, r, err)
			return
		}
		if err := svc.UpdatePassword(r.Context(), id, in.CurrentPassword, in.NewPassword); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password updated successfully"})
	}
}

func RegisterAdmin(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in adminRegisterReq
		if err := decode(r, "register_admin", &in); err != nil {
			writeError(w, r, err)
			return
		}
		sess, err := svc.RegisterAdmin(r.Context(), in.input(), in.SecretKey)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Admin registered successfully",
			"data":    sess,
		})
	}
}

func LoginAdmin(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in loginReq
		if err := decode(r, "login_admin", &in); err != nil {
			writeError(w, r, err)
			return
		}
		sess, err := svc.LoginAdmin(r.Context(), in.Email, in.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Admin login successful", "data": sess})
	}
}

func callerID(r *http.Request) (uuid.UUID, error) {
	claims, ok := middlewarex.Claims(r.Context())
	if !ok {
		return uuid.Nil, core.Unauthorized("caller", "Not authorized to access this route")
	}
	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil, core.Unauthorized("caller", "Not authorized, token failed")
	}
	return id, nil
}
