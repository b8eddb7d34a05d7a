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
	"github.com/amalgamator/amalgamator/internal/policy"
	"github.com/amalgamator/amalgamator/internal/queue"
	"github.com/amalgamator/amalgamator/internal/repository"
	queue_publisher "github.com/amalgamator/amalgamator/internal/service"
)

// AmalgamationHandler bundles the repositories behind the amalgamation
// endpoints. Creation additionally consults the points policy against the
// user record.
type AmalgamationHandler struct {
	Users         *repository.UserRepo
	Amalgamations *repository.AmalgamationRepo
	Contributions *repository.ContributionRepo
}

func NewAmalgamationHandler(u *repository.UserRepo, a *repository.AmalgamationRepo, c *repository.ContributionRepo) *AmalgamationHandler {
	if u == nil || a == nil || c == nil {
		panic("nil repository passed to NewAmalgamationHandler")
	}
	return &AmalgamationHandler{Users: u, Amalgamations: a, Contributions: c}
}

type termReq struct {
	Text          string   `json:"text"`
	Category      string   `json:"category"`
	HierarchyPath []string `json:"hierarchyPath"`
}

type createAmalgamationReq struct {
	Term1 termReq `json:"term1"`
	Term2 termReq `json:"term2"`
	Mode  string  `json:"mode"`
}

// Create handles POST /v1/amalgamations. The points policy runs first:
// either a full hour has passed since the caller's last creation, or one
// contribution point is spent. The policy side effects (timestamp, point)
// commit before the amalgamation insert and are not rolled back if the
// insert fails.
func (h *AmalgamationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	var req createAmalgamationReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid request body")
	}
	req.Term1.Text = strings.TrimSpace(req.Term1.Text)
	req.Term2.Text = strings.TrimSpace(req.Term2.Text)
	if req.Term1.Text == "" || req.Term2.Text == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "term1 and term2 are required")
	}
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = model.ModePlay
	}
	if !model.ValidMode(mode) {
		return fail(c, http.StatusBadRequest, kindValidation, "mode must be focus, innovator or play")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		log.Printf("amalgamation: load user failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "query failed")
	}

	now := time.Now().UTC()
	decision, err := policy.AuthorizeCreation(policy.Account{
		Points:             u.ContributionPoints,
		LastAmalgamationAt: u.LastAmalgamationAt,
	}, now)
	if err != nil {
		var rl *policy.RateLimitedError
		if errors.As(err, &rl) {
			return fail(c, http.StatusTooManyRequests, kindRateLimited, rl.Error())
		}
		log.Printf("amalgamation: policy failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "policy failed")
	}
	if decision.SpendPoint {
		// Conditional single-statement spend: a racing creation that
		// already took the point surfaces as ErrConflict here instead
		// of double-spending.
		if err := h.Users.SpendPointAndTouch(ctx, uid, now); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fail(c, http.StatusTooManyRequests, kindRateLimited,
					"contribution point no longer available; wait for the hourly window")
			}
			log.Printf("amalgamation: spend point failed: %v", err)
			return fail(c, http.StatusInternalServerError, kindInternal, "update failed")
		}
	} else {
		if err := h.Users.TouchLastAmalgamation(ctx, uid, now); err != nil {
			log.Printf("amalgamation: touch failed: %v", err)
			return fail(c, http.StatusInternalServerError, kindInternal, "update failed")
		}
	}

	a := &model.Amalgamation{
		Term1:     model.Term{Text: req.Term1.Text, Category: req.Term1.Category, HierarchyPath: req.Term1.HierarchyPath},
		Term2:     model.Term{Text: req.Term2.Text, Category: req.Term2.Category, HierarchyPath: req.Term2.HierarchyPath},
		CreatedBy: uid,
		Status:    model.StatusOpen,
		Mode:      mode,
	}
	if err := h.Amalgamations.Create(ctx, a); err != nil {
		log.Printf("amalgamation: create failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "could not create amalgamation")
	}
	a.CreatorName = u.Username
	a.Contributors = []string{u.Username}

	ev := queue.ActivityEvent{
		Type:           queue.TypeAmalgamationCreated,
		UserID:         uid,
		Username:       u.Username,
		AmalgamationID: a.ID,
		Term1:          a.Term1.Text,
		Term2:          a.Term2.Text,
		Mode:           a.Mode,
		OccurredAt:     now.Format(time.RFC3339),
	}
	go func() { _ = queue_publisher.PublishActivity(context.Background(), ev) }()

	return c.JSON(http.StatusCreated, a)
}

// List handles GET /v1/amalgamations: all pairings, newest first.
func (h *AmalgamationHandler) List(c echo.Context) error {
	items, err := h.Amalgamations.List(c.Request().Context())
	if err != nil {
		log.Printf("amalgamation: list failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if items == nil {
		items = []*model.Amalgamation{}
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/amalgamations/:id with contributors and the
// non-removed contributions attached. Malformed identifiers surface as
// not_found, same as absent records.
func (h *AmalgamationHandler) Get(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "amalgamation not found")
	}
	ctx := c.Request().Context()
	a, err := h.Amalgamations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAmalgamationNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "amalgamation not found")
		}
		log.Printf("amalgamation: get failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	contributions, err := h.Contributions.ListByAmalgamation(ctx, id)
	if err != nil {
		log.Printf("amalgamation: load contributions failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	a.Contributions = contributions
	return c.JSON(http.StatusOK, a)
}

// Random handles GET /v1/amalgamations/random: a uniformly selected
// pairing, or JSON null when the store is empty.
func (h *AmalgamationHandler) Random(c echo.Context) error {
	a, err := h.Amalgamations.Random(c.Request().Context())
	if err != nil {
		log.Printf("amalgamation: random failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if a == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, a)
}

// UpdateStatus handles PUT /v1/amalgamations/:id. Only the creator may
// change the lifecycle status; there is no enforced transition order.
func (h *AmalgamationHandler) UpdateStatus(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "amalgamation not found")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid request body")
	}
	status := strings.TrimSpace(req.Status)
	if !model.ValidStatus(status) {
		return fail(c, http.StatusBadRequest, kindValidation, "status must be open, focused or closed")
	}

	ctx := c.Request().Context()
	a, err := h.Amalgamations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAmalgamationNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "amalgamation not found")
		}
		log.Printf("amalgamation: get failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if a.CreatedBy != uid {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "user not authorized")
	}
	if err := h.Amalgamations.UpdateStatus(ctx, id, status); err != nil {
		log.Printf("amalgamation: update status failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "update failed")
	}
	a.Status = status
	return c.JSON(http.StatusOK, a)
}
