package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amalgamator/amalgamator/internal/config"
	"github.com/amalgamator/amalgamator/internal/repository"
	"github.com/amalgamator/amalgamator/internal/utils"
)

// AuthHandler bundles dependencies for the credential lifecycle
// endpoints: register, login, current-user, refresh and logout.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Badges *repository.BadgeRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, b *repository.BadgeRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Badges: b}
}

// ----- DTOs -----

type registerReq struct {
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	SocialMediaLink string  `json:"socialMediaLink"`
	EducationLevel  *string `json:"educationLevel"`
	Age             *int    `json:"age"`
	Location        *string `json:"location"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates a user and returns a token pair immediately. Username,
// email, password and the external profile link are required; education
// level, age and location are optional profile attributes.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.SocialMediaLink = strings.TrimSpace(req.SocialMediaLink)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "username, email and password are required")
	}
	if req.SocialMediaLink == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "socialMediaLink is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, repository.NewUserParams{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		SocialMediaLink: req.SocialMediaLink,
		EducationLevel:  req.EducationLevel,
		Age:             req.Age,
		Location:        req.Location,
	}, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return fail(c, http.StatusConflict, kindConflict, "email already exists")
		case errors.Is(err, repository.ErrUsernameExists):
			return fail(c, http.StatusConflict, kindConflict, "username already exists")
		}
		log.Printf("auth: create user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "create user failed")
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		log.Printf("auth: load created user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "create user failed")
	}
	resp, err := h.issueTokens(ctx, u.ID, u.Username, u.Email, u.Role)
	if err != nil {
		log.Printf("auth: issue tokens failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "issue tokens failed")
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, kindUnauthorized, "invalid credentials")
		}
		log.Printf("auth: load user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "invalid credentials")
	}

	resp, err := h.issueTokens(ctx, u.ID, u.Username, u.Email, u.Role)
	if err != nil {
		log.Printf("auth: issue tokens failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// issueTokens creates an access/refresh pair and stores the refresh hash.
func (h *AuthHandler) issueTokens(ctx context.Context, uid uint64, username, email, role string) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: uid, Username: username, Email: email, Role: role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Me returns the authenticated user's full record, points balance and
// badges included. Serves GET /v1/auth/user.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "user not found")
		}
		log.Printf("auth: load user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	badges, err := h.Badges.ListByUser(ctx, uid)
	if err != nil {
		log.Printf("auth: load badges failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "query failed")
	}
	u.Badges = badges
	return c.JSON(http.StatusOK, u)
}

// Refresh validates a refresh token by hash, revokes it and issues a new
// pair (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "invalid refresh")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("auth: load user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "load user failed")
	}
	resp, err := h.issueTokens(ctx, u.ID, u.Username, u.Email, u.Role)
	if err != nil {
		log.Printf("auth: issue tokens failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "issue tokens failed")
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess validates a refresh token and returns a fresh access
// token without rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "invalid refresh")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, kindUnauthorized, "invalid refresh")
		}
		log.Printf("auth: load user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "load user failed")
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		log.Printf("auth: issue access failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "issue access failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes a session. With a refresh_token in the body that single
// session ends; with only a valid bearer token every session of the user
// is revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return fail(c, http.StatusUnauthorized, kindUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			log.Printf("auth: revoke failed: %v", err)
			return fail(c, http.StatusInternalServerError, kindInternal, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}

	// No refresh token in the body: revoke all sessions of the bearer.
	uid, err := getUserID(c)
	if err != nil || uid == 0 {
		return fail(c, http.StatusBadRequest, kindValidation, "provide Authorization header or refresh_token")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		log.Printf("auth: revoke all failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}
