package controller

import (
	"marimo-hub-be/internal/dto"
	"marimo-hub-be/internal/pkg/serverutils"
	"marimo-hub-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotebookController interface {
	RegisterRoutes(r fiber.Router)
	Save(ctx *fiber.Ctx) error
}

type notebookController struct {
	service   service.INotebookService
	authToken string
}

func NewNotebookController(service service.INotebookService, authToken string) INotebookController {
	return &notebookController{service: service, authToken: authToken}
}

func (c *notebookController) RegisterRoutes(r fiber.Router) {
	auth := serverutils.BearerTokenMiddleware(c.authToken)
	r.Post("/save", auth, c.Save)
	r.Put("/save", auth, c.Save)
}

func (c *notebookController) Save(ctx *fiber.Ctx) error {
	var req dto.SaveNotebookRequest
	if err := serverutils.ParseJSON(ctx, &req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Save(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
