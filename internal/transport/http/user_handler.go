package http

import (
	"net/http"

	"github.com/go-chi/render"

	apperrors "github.com/Ang3l-dev/Ang3l-Dash/internal/errors"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/middleware"
)

// UserHandler reports who is signed in.
type UserHandler struct {
	errorHandler *apperrors.ErrorHandler
}

// NewUserHandler creates a user handler.
func NewUserHandler(errorHandler *apperrors.ErrorHandler) *UserHandler {
	return &UserHandler{errorHandler: errorHandler}
}

// Me handles GET /api/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apperrors.ErrUnauthorized)
		return
	}
	render.JSON(w, r, map[string]string{"email": user.Email})
}
