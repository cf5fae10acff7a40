package controller

import (
	"acaradar-web/internal/dto"
	"acaradar-web/internal/pkg/serverutils"
	"acaradar-web/internal/service"
	"acaradar-web/pkg/store"

	"github.com/gofiber/fiber/v2"
)

type IPaperController interface {
	RegisterRoutes(r fiber.Router)
	SelectedJournals(ctx *fiber.Ctx) error
}

type paperController struct {
	service service.IPaperService
	maxTopN int
}

func NewPaperController(service service.IPaperService, maxTopN int) IPaperController {
	return &paperController{
		service: service,
		maxTopN: maxTopN,
	}
}

func (c *paperController) RegisterRoutes(r fiber.Router) {
	r.Get("/selected_journals", c.SelectedJournals)
}

func (c *paperController) SelectedJournals(ctx *fiber.Ctx) error {
	req := dto.ParseListPapersRequest(serverutils.QueryValues(ctx), c.maxTopN)
	if msg := req.ErrorMessage(); msg != "" {
		return serverutils.RedirectWithFlash(ctx, store.FlashError, msg, "/")
	}

	sess := serverutils.CurrentSession(ctx)
	page, err := c.service.List(ctx.Context(), sess, req)
	if err != nil {
		return serverutils.RedirectWithFlash(ctx, store.FlashError, upstreamMessage(err, "API Error: "), "/")
	}

	return serverutils.RenderView(ctx, "selected_journals", fiber.Map{
		"journals":                 page.Journals,
		"papers":                   page.Papers,
		"researchInterestTerm":     page.ResearchInterestTerm,
		"researchInterestVector":   page.ResearchInterestVector,
		"researchInterestConcepts": sess.ResearchInterestConcepts,
		"pagination":               page.Pagination,
		"error":                    nil,
		"flash":                    sess.TakeFlash(),
	})
}
