package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amalgamator/amalgamator/internal/config"
	"github.com/amalgamator/amalgamator/internal/model"
	"github.com/amalgamator/amalgamator/internal/repository"
)

// DataHandler serves the imported reference taxonomies: listing, the
// one-shot Roget CSV import and term search.
type DataHandler struct {
	Cfg       config.Config
	Hierarchy *repository.HierarchicalRepo
}

func NewDataHandler(cfg config.Config, h *repository.HierarchicalRepo) *DataHandler {
	if h == nil {
		panic("nil repository passed to NewDataHandler")
	}
	return &DataHandler{Cfg: cfg, Hierarchy: h}
}

// ListHierarchical handles GET /v1/data/hierarchical: every entry across
// sources.
func (h *DataHandler) ListHierarchical(c echo.Context) error {
	items, err := h.Hierarchy.ListAll(c.Request().Context())
	if err != nil {
		log.Printf("data: list failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if items == nil {
		items = []*model.HierarchicalEntry{}
	}
	return c.JSON(http.StatusOK, items)
}

// ListHierarchicalBySource handles GET /v1/data/hierarchical/:source.
// An unknown source name surfaces as not_found.
func (h *DataHandler) ListHierarchicalBySource(c echo.Context) error {
	source := strings.ToLower(strings.TrimSpace(c.Param("source")))
	if !model.ValidSource(source) {
		return fail(c, http.StatusNotFound, kindNotFound, "unknown taxonomy source")
	}
	items, err := h.Hierarchy.ListBySource(c.Request().Context(), source)
	if err != nil {
		log.Printf("data: list by source failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if items == nil {
		items = []*model.HierarchicalEntry{}
	}
	return c.JSON(http.StatusOK, items)
}

// ImportRoget handles POST /v1/data/import/roget (admin). The import is
// one-shot: a second attempt is a conflict and leaves the stored rows
// unchanged. There is no partial or incremental path.
func (h *DataHandler) ImportRoget(c echo.Context) error {
	ctx := c.Request().Context()
	exists, err := h.Hierarchy.SourceExists(ctx, model.SourceRoget)
	if err != nil {
		log.Printf("data: source check failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if exists {
		return fail(c, http.StatusConflict, kindConflict, "roget data already imported")
	}

	f, err := os.Open(h.Cfg.RogetCSVPath)
	if err != nil {
		log.Printf("data: open csv failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "import source unavailable")
	}
	defer f.Close()

	entries, err := parseTaxonomyCSV(f)
	if err != nil {
		log.Printf("data: parse csv failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "import failed")
	}

	count, err := h.Hierarchy.BulkImport(ctx, model.SourceRoget, entries)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, kindConflict, "roget data already imported")
		}
		log.Printf("data: bulk import failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "import failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "roget data imported successfully",
		"count":   count,
	})
}

// Search handles GET /v1/data/search/:term: case-insensitive substring
// match over the term lists of all sources.
func (h *DataHandler) Search(c echo.Context) error {
	term := strings.TrimSpace(c.Param("term"))
	if term == "" {
		return fail(c, http.StatusBadRequest, kindValidation, "search term is required")
	}
	items, err := h.Hierarchy.SearchTerm(c.Request().Context(), term)
	if err != nil {
		log.Printf("data: search failed: %v", err)
		return fail(c, http.StatusInternalServerError, kindInternal, "db error")
	}
	if items == nil {
		items = []*model.HierarchicalEntry{}
	}
	return c.JSON(http.StatusOK, items)
}

// parseTaxonomyCSV reads taxonomy rows with header columns C1..C4 and a
// comma-joined terms column. Header order is free; unknown columns are
// ignored. Rows without a top level label are skipped.
func parseTaxonomyCSV(r io.Reader) ([]*model.HierarchicalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	col := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var entries []*model.HierarchicalEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		e := &model.HierarchicalEntry{
			Level1: col(record, "c1"),
			Level2: col(record, "c2"),
			Level3: col(record, "c3"),
			Level4: col(record, "c4"),
		}
		if e.Level1 == "" {
			continue
		}
		if raw := col(record, "terms"); raw != "" {
			for _, t := range strings.Split(raw, ",") {
				if t = strings.TrimSpace(t); t != "" {
					e.Terms = append(e.Terms, t)
				}
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
