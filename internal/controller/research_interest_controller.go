package controller

import (
	"errors"

	"acaradar-web/internal/dto"
	"acaradar-web/internal/pkg/serverutils"
	"acaradar-web/internal/service"
	"acaradar-web/pkg/store"
	"acaradar-web/pkg/upstream"

	"github.com/gofiber/fiber/v2"
)

const (
	emptyInterestMessage     = "Research interest cannot be empty."
	interestSetMessage       = "Research interest has been set!"
	interestPendingMessage   = "Research interest is still being processed. Please check back shortly."
	interestFailedMessage    = "Research interest embedding failed."
	researchInterestRedirect = "/"
)

type IResearchInterestController interface {
	RegisterRoutes(r fiber.Router)
	Embed(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type researchInterestController struct {
	service service.IResearchInterestService
}

func NewResearchInterestController(service service.IResearchInterestService) IResearchInterestController {
	return &researchInterestController{service: service}
}

func (c *researchInterestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/research_interest")
	h.Post("", c.Embed)
	h.Get("/:jobId/status", c.Status)
}

func (c *researchInterestController) Embed(ctx *fiber.Ctx) error {
	var req dto.EmbedInterestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.RedirectWithFlash(ctx, store.FlashError, emptyInterestMessage, researchInterestRedirect)
	}
	req.Normalize()

	if req.Term == "" {
		return serverutils.RedirectWithFlash(ctx, store.FlashError, emptyInterestMessage, researchInterestRedirect)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return serverutils.RedirectWithFlash(ctx, store.FlashError, serverutils.ValidationMessage(err), researchInterestRedirect)
	}

	sess := serverutils.CurrentSession(ctx)
	result, err := c.service.Embed(ctx.Context(), sess, &req)
	if errors.Is(err, service.ErrMissingJobID) {
		return serverutils.RedirectWithFlash(ctx, store.FlashError, interestFailedMessage, researchInterestRedirect)
	}
	if err != nil {
		return serverutils.RedirectWithFlash(ctx, store.FlashError, upstreamMessage(err, ""), researchInterestRedirect)
	}

	switch result.Status {
	case upstream.StatusCompleted:
		return serverutils.RedirectWithFlash(ctx, store.FlashNotice, interestSetMessage, researchInterestRedirect)
	case upstream.StatusFailed:
		return serverutils.RedirectWithFlash(ctx, store.FlashError, interestFailedMessage, researchInterestRedirect)
	default:
		return serverutils.RedirectWithFlash(ctx, store.FlashNotice, interestPendingMessage, researchInterestRedirect)
	}
}

func (c *researchInterestController) Status(ctx *fiber.Ctx) error {
	sess := serverutils.CurrentSession(ctx)

	res, err := c.service.Status(ctx.Context(), sess, ctx.Params("jobId"))
	if err != nil {
		var httpErr *upstream.HTTPError
		switch {
		case errors.Is(err, service.ErrMissingJobID):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, upstream.ErrUnavailable):
			return fiber.NewError(fiber.StatusServiceUnavailable, connectionRefusedMessage)
		case errors.As(err, &httpErr):
			return fiber.NewError(fiber.StatusBadGateway, upstreamMessage(err, "API Error: "))
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get research interest status", res))
}
