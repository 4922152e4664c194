package controller

import (
	"marimo-hub-be/internal/service"
	"marimo-hub-be/internal/viewer"

	"github.com/gofiber/fiber/v2"
)

type IViewerController interface {
	RegisterRoutes(r fiber.Router)
	Open(ctx *fiber.Ctx) error
}

type viewerController struct {
	notebooks service.INotebookService
	facade    viewer.Facade
	proxy     fiber.Handler
}

// NewViewerController serves /notebooks/:id through facade. proxy, when not
// nil, is mounted on /ui/*.
func NewViewerController(notebooks service.INotebookService, facade viewer.Facade, proxy fiber.Handler) IViewerController {
	return &viewerController{notebooks: notebooks, facade: facade, proxy: proxy}
}

func (c *viewerController) RegisterRoutes(r fiber.Router) {
	r.Get("/notebooks/:id", c.Open)
	if c.proxy != nil {
		r.All("/ui", c.proxy)
		r.All("/ui/*", c.proxy)
	}
}

func (c *viewerController) Open(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	content, err := c.notebooks.Get(ctx.Context(), id)
	if err != nil {
		return err
	}

	return c.facade.Open(ctx, id, content)
}
