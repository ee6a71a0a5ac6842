package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avisions/backoffice/internal/model"
	"github.com/avisions/backoffice/internal/repository"
)

// ContentHandler serves the four content collections backing the public
// site: projects, services, artists and team. Public reads return the
// stored list (possibly empty); admin saves replace the whole document,
// matching how the back-office managers edit: load everything, edit in
// the browser, save everything.
type ContentHandler struct {
	Projects   *repository.Collection[model.Project]
	Services   *repository.Collection[model.Service]
	Artists    *repository.Collection[model.Artist]
	Team       *repository.Collection[model.TeamMember]
	Categories *repository.Collection[model.Category]
}

func NewContentHandler(store repository.Store) *ContentHandler {
	return &ContentHandler{
		Projects:   repository.NewCollection[model.Project](store, repository.ProjectsKey),
		Services:   repository.NewCollection[model.Service](store, repository.ServicesKey),
		Artists:    repository.NewCollection[model.Artist](store, repository.ArtistsKey),
		Team:       repository.NewCollection[model.TeamMember](store, repository.TeamKey),
		Categories: repository.NewCollection[model.Category](store, repository.CategoriesKey),
	}
}

// defaultCategories backs the categories endpoint until an editor saves a
// custom list, and whenever the store cannot be read: the public filter
// bar must always render.
var defaultCategories = []model.Category{
	{ID: "corporate", Label: "Entreprise", Description: "Événements d'entreprise", Color: "from-blue-500 to-cyan-500"},
	{ID: "production", Label: "Production Musicale", Description: "Création musicale", Color: "from-purple-500 to-pink-500"},
	{ID: "mapping", Label: "Vidéo Mapping", Description: "Spectacles visuels", Color: "from-indigo-500 to-purple-500"},
	{ID: "media", Label: "Captations et prises de vue", Description: "Captations et podcasts", Color: "from-green-500 to-emerald-500"},
}

func (h *ContentHandler) GetProjects(c echo.Context) error {
	return listCollection(c, h.Projects, "projects")
}

func (h *ContentHandler) SaveProjects(c echo.Context) error {
	return saveCollection(c, h.Projects, "projects")
}

func (h *ContentHandler) GetServices(c echo.Context) error {
	return listCollection(c, h.Services, "services")
}

func (h *ContentHandler) SaveServices(c echo.Context) error {
	return saveCollection(c, h.Services, "services")
}

func (h *ContentHandler) GetArtists(c echo.Context) error {
	return listCollection(c, h.Artists, "artists")
}

func (h *ContentHandler) SaveArtists(c echo.Context) error {
	return saveCollection(c, h.Artists, "artists")
}

// GetCategories returns the category list with per-category project counts
// recomputed from the projects collection. Read failures degrade to the
// default categories with zero counts instead of erroring.
func (h *ContentHandler) GetCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	categories, err := h.Categories.Load(ctx)
	if err != nil || len(categories) == 0 {
		categories = append([]model.Category(nil), defaultCategories...)
	}
	projects, err := h.Projects.Load(ctx)
	if err != nil {
		projects = nil
	}

	counts := make(map[string]int, len(categories))
	for _, p := range projects {
		counts[p.Category]++
	}
	for i := range categories {
		categories[i].ProjectCount = counts[categories[i].ID]
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (h *ContentHandler) SaveCategories(c echo.Context) error {
	return saveCollection(c, h.Categories, "categories")
}

// GetTeam returns members sorted by their display order.
func (h *ContentHandler) GetTeam(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	members, err := h.Team.Load(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load team"})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Order < members[j].Order })
	return c.JSON(http.StatusOK, echo.Map{"team": members})
}

func (h *ContentHandler) SaveTeam(c echo.Context) error {
	return saveCollection(c, h.Team, "team")
}

type reorderReq struct {
	IDs []string `json:"ids"`
}

// ReorderTeam rewrites the Order field from an ordered list of member ids.
// Members missing from the list keep their relative position after the
// listed ones; unknown ids are ignored.
func (h *ContentHandler) ReorderTeam(c echo.Context) error {
	var req reorderReq
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	members, err := h.Team.Load(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load team"})
	}
	pos := make(map[string]int, len(req.IDs))
	for i, id := range req.IDs {
		pos[id] = i
	}
	next := len(req.IDs)
	for i := range members {
		if p, ok := pos[members[i].ID]; ok {
			members[i].Order = p
		} else {
			members[i].Order = next
			next++
		}
	}
	if err := h.Team.Save(ctx, members); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save team"})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Order < members[j].Order })
	return c.JSON(http.StatusOK, echo.Map{"team": members})
}

// listCollection and saveCollection factor the identical load/replace
// plumbing shared by the collections without per-collection behavior.

func listCollection[T any](c echo.Context, col *repository.Collection[T], field string) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := col.Load(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load " + field})
	}
	return c.JSON(http.StatusOK, echo.Map{field: items})
}

func saveCollection[T any](c echo.Context, col *repository.Collection[T], field string) error {
	var items []T
	if err := c.Bind(&items); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := col.Save(ctx, items); err != nil {
		// Write errors must surface: the editor has to know the save did
		// not land.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save " + field})
	}
	return c.JSON(http.StatusOK, echo.Map{field: items})
}
