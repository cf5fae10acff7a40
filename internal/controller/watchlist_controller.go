package controller

import (
	"net/url"

	"acaradar-web/internal/dto"
	"acaradar-web/internal/pkg/serverutils"
	"acaradar-web/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWatchlistController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Watch(ctx *fiber.Ctx) error
	Unwatch(ctx *fiber.Ctx) error
}

type watchlistController struct {
	service service.IWatchlistService
}

func NewWatchlistController(service service.IWatchlistService) IWatchlistController {
	return &watchlistController{service: service}
}

func (c *watchlistController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/watched")
	h.Get("", c.List)
	h.Post("", c.Watch)
	h.Delete("/:key", c.Unwatch)
}

func (c *watchlistController) List(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.WatchlistResponse{
		Ok:    true,
		Items: c.service.List(serverutils.CurrentSession(ctx)),
	})
}

func (c *watchlistController) Watch(ctx *fiber.Ctx) error {
	var req dto.WatchPaperRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.WatchAck{Ok: false, Error: "invalid request body"})
	}
	req.Normalize()

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.WatchAck{Ok: false, Error: serverutils.ValidationMessage(err)})
	}

	c.service.Watch(ctx.Context(), serverutils.CurrentSession(ctx), &req)
	return ctx.JSON(dto.WatchAck{Ok: true})
}

func (c *watchlistController) Unwatch(ctx *fiber.Ctx) error {
	key, err := url.PathUnescape(ctx.Params("key"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.WatchAck{Ok: false, Error: "invalid key"})
	}

	if !c.service.Unwatch(ctx.Context(), serverutils.CurrentSession(ctx), key) {
		return ctx.Status(fiber.StatusNotFound).JSON(dto.WatchAck{Ok: false, Error: "paper is not watched"})
	}
	return ctx.JSON(dto.WatchAck{Ok: true})
}
