package controller

import (
	"marimo-hub-be/internal/dto"
	"marimo-hub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const ServiceName = "Marimo Notebook Hub"

var endpoints = []string{
	"POST /api/save",
	"PUT /api/save",
	"POST /api/marimo/generate",
	"POST /api/marimo/create-viewer",
	"GET /api/marimo/notebook/{id}",
	"GET /api/marimo/viewer/{id}",
	"GET /notebooks/{id}",
	"ANY /ui/*",
	"GET /health",
}

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Banner(ctx *fiber.Ctx) error
}

type healthController struct {
	service service.INotebookService
	mode    string
}

func NewHealthController(service service.INotebookService, mode string) IHealthController {
	return &healthController{service: service, mode: mode}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Banner)
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	res, err := c.service.Health(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *healthController) Banner(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.BannerResponse{
		Service:   ServiceName,
		Mode:      c.mode,
		Endpoints: endpoints,
	})
}
