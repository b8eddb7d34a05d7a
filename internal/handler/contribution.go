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
	"github.com/amalgamator/amalgamator/internal/repository"
)

// ContributionHandler bundles the repositories behind the contribution
// endpoints. Creating and removing contributions also moves the author's
// points balance through the accrual and penalty rules.
type ContributionHandler struct {
	Users         *repository.UserRepo
	Contributions *repository.ContributionRepo
}

func NewContributionHandler(u *repository.UserRepo, c *repository.ContributionRepo) *ContributionHandler {
	if u == nil || c == nil {
		panic("nil repository passed to NewContributionHandler")
	}
	return &ContributionHandler{Users: u, Contributions: c}
}

type createContributionReq struct {
	AmalgamationID uint64 `json:"amalgamationId"`
	Text           string `json:"text"`
	Evaluation     string `json:"evaluation"`
}

// Create handles POST /v1/contributions. The insert and the owning
// pairing's tally bump share one transaction; afterwards the author's
// authoritative non-removed count decides whether a point is earned.
func (h *ContributionHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	var req createContributionReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid request body")
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.AmalgamationID == 0 {
		return fail(c, http.StatusBadRequest, kindValidation, "amalgamationId is required")
	}
	if req.Text == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "text is required")
	}
	if len(req.Text) > model.MaxContributionLen {
		return fail(c, http.StatusBadRequest, kindValidation, "text must be at most 255 characters")
	}
	if !model.ValidEvaluation(req.Evaluation) {
		return fail(c, http.StatusBadRequest, kindValidation, "evaluation must be plausible, notPlausible or irrelevant")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	contribution := &model.Contribution{
		AmalgamationID: req.AmalgamationID,
		UserID:         uid,
		Text:           req.Text,
		Evaluation:     req.Evaluation,
	}
	if err := h.Contributions.Create(ctx, contribution); err != nil {
		if errors.Is(err, repository.ErrAmalgamationNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "amalgamation not found")
		}
		log.Printf("contribution: create failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "could not create contribution")
	}

	count, err := h.Contributions.CountActiveByUser(ctx, uid)
	if err != nil {
		log.Printf("contribution: count failed: %v", err)
	} else if policy.AccruesPoint(count) {
		if err := h.Users.AddPoint(ctx, uid); err != nil {
			log.Printf("contribution: award point failed: %v", err)
		}
	}

	out, err := h.Contributions.GetByID(ctx, contribution.ID)
	if err != nil {
		log.Printf("contribution: reload failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "could not create contribution")
	}
	return c.JSON(http.StatusCreated, out)
}

// ListByAmalgamation handles GET /v1/contributions/amalgamation/:id:
// the pairing's non-removed contributions, newest first.
func (h *ContributionHandler) ListByAmalgamation(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "amalgamation not found")
	}
	items, err := h.Contributions.ListByAmalgamation(c.Request().Context(), id)
	if err != nil {
		log.Printf("contribution: list failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if items == nil {
		items = []*model.Contribution{}
	}
	return c.JSON(http.StatusOK, items)
}

// Update handles PUT /v1/contributions/:id. Author-only; the previous
// text goes to the append-only edit history before the overwrite.
func (h *ContributionHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "contribution not found")
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, kindValidation, "invalid request body")
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "text is required")
	}
	if len(req.Text) > model.MaxContributionLen {
		return fail(c, http.StatusBadRequest, kindValidation, "text must be at most 255 characters")
	}

	ctx := c.Request().Context()
	existing, err := h.Contributions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrContributionNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "contribution not found")
		}
		log.Printf("contribution: get failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if existing.UserID != uid {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "user not authorized")
	}
	if err := h.Contributions.UpdateText(ctx, id, existing.Text, req.Text); err != nil {
		log.Printf("contribution: update failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "update failed")
	}
	out, err := h.Contributions.GetByID(ctx, id)
	if err != nil {
		log.Printf("contribution: reload failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /v1/contributions/:id. Author-only soft delete:
// the record is flagged, the pairing's tallies drop by one, and the
// author pays the 0.1 point removal penalty (floored at zero).
func (h *ContributionHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "contribution not found")
	}

	ctx := c.Request().Context()
	existing, err := h.Contributions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrContributionNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "contribution not found")
		}
		log.Printf("contribution: get failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if existing.UserID != uid {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "user not authorized")
	}
	if err := h.Contributions.SoftRemove(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrContributionNotFound) {
			// Already removed; tallies and points were settled then.
			return fail(c, http.StatusNotFound, kindNotFound, "contribution not found")
		}
		log.Printf("contribution: remove failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "delete failed")
	}
	if err := h.Users.DeductRemovalPenalty(ctx, uid); err != nil {
		log.Printf("contribution: penalty failed: %v", err)
	}

	out, err := h.Contributions.GetByID(ctx, id)
	if err != nil {
		log.Printf("contribution: reload failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	return c.JSON(http.StatusOK, out)
}

// Like handles POST /v1/contributions/:id/like: a toggle. Present in the
// like set means unlike, absent means like, with no cap on re-toggling.
func (h *ContributionHandler) Like(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, kindNotFound, "contribution not found")
	}

	ctx := c.Request().Context()
	if _, err := h.Contributions.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrContributionNotFound) {
			return fail(c, http.StatusNotFound, kindNotFound, "contribution not found")
		}
		log.Printf("contribution: get failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	out, err := h.Contributions.ToggleLike(ctx, id, uid)
	if err != nil {
		log.Printf("contribution: toggle like failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "like failed")
	}
	return c.JSON(http.StatusOK, out)
}
