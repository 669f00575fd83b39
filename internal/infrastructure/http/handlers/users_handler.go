package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/julien-rg/wheelbase-server/internal/application/auth"
	"github.com/julien-rg/wheelbase-server/internal/application/follow"
	"github.com/julien-rg/wheelbase-server/internal/application/policy"
	"github.com/julien-rg/wheelbase-server/internal/application/user"
	"github.com/julien-rg/wheelbase-server/internal/domain"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/http/middleware"
)

// UsersHandler serves the /api/users surface: registration, login,
// profile reads and updates, search and the follow graph.
type UsersHandler struct {
	register       *auth.Register
	login          *auth.Login
	changePassword *auth.ChangePassword
	users          *user.Service
	follows        *follow.Service
	engine         *policy.Engine
	validate       *validator.Validate
	log            zerolog.Logger
}

func NewUsersHandler(register *auth.Register, login *auth.Login, changePassword *auth.ChangePassword, users *user.Service, follows *follow.Service, engine *policy.Engine, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{
		register:       register,
		login:          login,
		changePassword: changePassword,
		users:          users,
		follows:        follows,
		engine:         engine,
		validate:       validator.New(),
		log:            log,
	}
}

// ProfileResponse is the JSON shape of a full profile (no password).
type ProfileResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Bio        string `json:"bio,omitempty"`
	Visibility string `json:"visibility"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// SummaryResponse is the JSON shape used in listings.
type SummaryResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Visibility string `json:"visibility"`
}

func toProfile(u *domain.User) ProfileResponse {
	return ProfileResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		AvatarURL:  u.AvatarURL,
		Bio:        u.Bio,
		Visibility: string(u.Visibility),
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.Format(time.RFC3339),
	}
}

func toSummaries(summaries []domain.Summary) []SummaryResponse {
	items := make([]SummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, SummaryResponse{
			ID:         s.ID.String(),
			Username:   s.Username,
			AvatarURL:  s.AvatarURL,
			Visibility: string(s.Visibility),
		})
	}
	return items
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username   string `json:"username" validate:"required,min=3,max=30"`
		Email      string `json:"email" validate:"required,email,max=254"`
		Password   string `json:"password" validate:"required,min=8,max=100"`
		Bio        string `json:"bio" validate:"max=255"`
		Visibility string `json:"visibility" validate:"omitempty,oneof=PUBLIC FOLLOWERS_ONLY"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Username:   body.Username,
		Email:      SanitizeEmail(body.Email),
		Password:   body.Password,
		Bio:        body.Bio,
		Visibility: domain.Visibility(body.Visibility),
	})
	if err != nil {
		AuditLog(h.log, r, "user.register", "", false, err.Error())
		middleware.RecordAuthAttempt("register", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "user.register", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("register", true)
	writeJSON(w, http.StatusCreated, toProfile(result.User))
}

// Login handles POST /api/users/login. On success the token is returned
// in the body and mirrored in an http-only cookie.
func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UsernameOrEmail string `json:"username_or_email" validate:"required,max=254"`
		Password        string `json:"password" validate:"required,min=8,max=100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		UsernameOrEmail: body.UsernameOrEmail,
		Password:        body.Password,
	})
	if err != nil {
		AuditLog(h.log, r, "user.login", "", false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "user.login", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": result.Token,
		"user":  toProfile(result.User),
	})
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	targetID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	profile, err := h.users.Get(r.Context(), actor, targetID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(profile))
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	targetID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Username   *string `json:"username" validate:"omitempty,min=3,max=30"`
		AvatarURL  *string `json:"avatar_url" validate:"omitempty,max=2048"`
		Bio        *string `json:"bio" validate:"omitempty,max=255"`
		Visibility *string `json:"visibility" validate:"omitempty,oneof=PUBLIC FOLLOWERS_ONLY"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	input := user.UpdateInput{
		Username:  body.Username,
		AvatarURL: body.AvatarURL,
		Bio:       body.Bio,
	}
	if body.Visibility != nil {
		v := domain.Visibility(*body.Visibility)
		input.Visibility = &v
	}
	actor := middleware.ActorFromContext(r.Context())
	profile, err := h.users.Update(r.Context(), actor, targetID, input)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(profile))
}

// ChangePassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	targetID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var body struct {
		OldPassword string `json:"old_password" validate:"required,max=100"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	if err := h.engine.CanMutate(r.Context(), actor, targetID); err != nil {
		writeDomainErr(w, err)
		return
	}
	err := h.changePassword.Execute(r.Context(), auth.ChangePasswordInput{
		UserID:      targetID,
		OldPassword: body.OldPassword,
		NewPassword: body.NewPassword,
	})
	if err != nil {
		AuditLog(h.log, r, "user.change_password", targetID.String(), false, err.Error())
		middleware.RecordAuthAttempt("change_password", false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "user.change_password", targetID.String(), true, "")
	middleware.RecordAuthAttempt("change_password", true)
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/users?username=<query>.
func (h *UsersHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("username")
	if query == "" {
		writeErr(w, http.StatusBadRequest, "missing required parameter: username")
		return
	}
	summaries, err := h.users.Search(r.Context(), query)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaries(summaries))
}

// Follow handles POST /api/users/follow.
func (h *UsersHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.mutateEdge(w, r, "follow", h.follows.Follow)
}

// Unfollow handles POST /api/users/unfollow.
func (h *UsersHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.mutateEdge(w, r, "unfollow", h.follows.Unfollow)
}

func (h *UsersHandler) mutateEdge(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, actorID, targetID domain.UserID) error) {
	actorID, authenticated := middleware.ActorFromContext(r.Context()).ID()
	if !authenticated {
		writeErr(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var body struct {
		FollowedID string `json:"followed_id" validate:"required,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	targetID, err := domain.ParseUserID(body.FollowedID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid followed_id")
		return
	}
	if err := fn(r.Context(), actorID, targetID); err != nil {
		AuditLog(h.log, r, "follow."+op, actorID.String(), false, err.Error())
		middleware.RecordFollowOp(op, false)
		writeDomainErr(w, err)
		return
	}
	AuditLog(h.log, r, "follow."+op, actorID.String(), true, "")
	middleware.RecordFollowOp(op, true)
	w.WriteHeader(http.StatusNoContent)
}

// Followers handles GET /api/users/{id}/followers.
func (h *UsersHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listEdge(w, r, h.follows.Followers)
}

// Following handles GET /api/users/{id}/following.
func (h *UsersHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.listEdge(w, r, h.follows.Following)
}

func (h *UsersHandler) listEdge(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID domain.UserID) ([]domain.Summary, error)) {
	targetID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	summaries, err := fn(r.Context(), targetID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaries(summaries))
}

func userIDParam(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid user id")
		return domain.UserID{}, false
	}
	return id, true
}
