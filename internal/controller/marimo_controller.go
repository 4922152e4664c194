package controller

import (
	"marimo-hub-be/internal/dto"
	"marimo-hub-be/internal/pkg/serverutils"
	"marimo-hub-be/internal/service"
	"marimo-hub-be/internal/viewer"

	"github.com/gofiber/fiber/v2"
)

type IMarimoController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	CreateViewer(ctx *fiber.Ctx) error
	Notebook(ctx *fiber.Ctx) error
	Viewer(ctx *fiber.Ctx) error
}

type marimoController struct {
	notebooks  service.INotebookService
	generation service.IGenerationService
	renderer   *viewer.Renderer
}

func NewMarimoController(
	notebooks service.INotebookService,
	generation service.IGenerationService,
	renderer *viewer.Renderer,
) IMarimoController {
	return &marimoController{
		notebooks:  notebooks,
		generation: generation,
		renderer:   renderer,
	}
}

func (c *marimoController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/marimo")
	h.Post("/generate", c.Generate)
	h.Post("/create-viewer", c.CreateViewer)
	h.Get("/notebook/:id", c.Notebook)
	h.Get("/viewer/:id", c.Viewer)
}

func (c *marimoController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateNotebookRequest
	if err := serverutils.ParseJSON(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generation.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *marimoController) CreateViewer(ctx *fiber.Ctx) error {
	var req dto.CreateViewerRequest
	if err := serverutils.ParseJSON(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.notebooks.CreateViewer(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *marimoController) Notebook(ctx *fiber.Ctx) error {
	content, err := c.notebooks.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return ctx.SendString(content)
}

// Viewer always renders, independent of the configured facade.
func (c *marimoController) Viewer(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	content, err := c.notebooks.Get(ctx.Context(), id)
	if err != nil {
		return err
	}

	return c.renderer.Open(ctx, id, content)
}
