package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amalgamator/amalgamator/internal/model"
	"github.com/amalgamator/amalgamator/internal/queue"
	"github.com/amalgamator/amalgamator/internal/repository"
	queue_publisher "github.com/amalgamator/amalgamator/internal/service"
)

// BadgeHandler bundles the repositories behind the badge catalog and
// award endpoints. Catalog writes and awards are admin-only, enforced by
// the role middleware on the routes.
type BadgeHandler struct {
	Badges *repository.BadgeRepo
	Users  *repository.UserRepo
}

func NewBadgeHandler(b *repository.BadgeRepo, u *repository.UserRepo) *BadgeHandler {
	if b == nil || u == nil {
		panic("nil repository passed to NewBadgeHandler")
	}
	return &BadgeHandler{Badges: b, Users: u}
}

// List handles GET /v1/badges: the full catalog, category then name.
func (h *BadgeHandler) List(c echo.Context) error {
	items, err := h.Badges.List(c.Request().Context())
	if err != nil {
		log.Printf("badge: list failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if items == nil {
		items = []*model.Badge{}
	}
	return c.JSON(http.StatusOK, items)
}

// ListByUser handles GET /v1/badges/user/:id.
func (h *BadgeHandler) ListByUser(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "user not found")
	}
	ctx := c.Request().Context()
	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "user not found")
		}
		log.Printf("badge: load user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	items, err := h.Badges.ListByUser(ctx, id)
	if err != nil {
		log.Printf("badge: list by user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if items == nil {
		items = []*model.Badge{}
	}
	return c.JSON(http.StatusOK, items)
}

type createBadgeReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Criteria    string `json:"criteria"`
	Category    string `json:"category"`
}

// Create handles POST /v1/badges (admin). A duplicate name is a conflict.
func (h *BadgeHandler) Create(c echo.Context) error {
	var req createBadgeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Description == "" || req.Icon == "" || req.Criteria == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "name, description, icon and criteria are required")
	}
	if !model.ValidBadgeCategory(req.Category) {
		return fail(c, http.StatusBadRequest, kindValidation, "category must be pioneer, veteran or contributor")
	}

	b := &model.Badge{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Criteria:    req.Criteria,
		Category:    req.Category,
	}
	if err := h.Badges.Create(c.Request().Context(), b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, kindConflict, "badge already exists")
		}
		log.Printf("badge: create failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "could not create badge")
	}
	return c.JSON(http.StatusCreated, b)
}

// Award handles POST /v1/badges/award/:badgeId/:userId (admin). Awarding
// is idempotent in the rejecting sense: a user who already holds the
// badge yields a conflict, never a duplicate row.
func (h *BadgeHandler) Award(c echo.Context) error {
	badgeID, ok := parseID(c.Param("badgeId"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "badge not found")
	}
	userID, ok := parseID(c.Param("userId"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "user not found")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Badges.GetByID(ctx, badgeID)
	if err != nil {
		if errors.Is(err, repository.ErrBadgeNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "badge not found")
		}
		log.Printf("badge: get failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "user not found")
		}
		log.Printf("badge: load user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if err := h.Badges.Award(ctx, badgeID, userID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, kindConflict, "user already has this badge")
		}
		log.Printf("badge: award failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "award failed")
	}

	ev := queue.ActivityEvent{
		Type:       queue.TypeBadgeAwarded,
		UserID:     u.ID,
		Username:   u.Username,
		BadgeID:    b.ID,
		BadgeName:  b.Name,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queue_publisher.PublishActivity(context.Background(), ev) }()

	return c.JSON(http.StatusOK, b)
}
