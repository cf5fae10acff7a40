package controller

import (
	"acaradar-web/internal/pkg/serverutils"
	"acaradar-web/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHomeController interface {
	RegisterRoutes(r fiber.Router)
	Home(ctx *fiber.Ctx) error
}

type homeController struct {
	journalService   service.IJournalService
	watchlistService service.IWatchlistService
}

func NewHomeController(journalService service.IJournalService, watchlistService service.IWatchlistService) IHomeController {
	return &homeController{
		journalService:   journalService,
		watchlistService: watchlistService,
	}
}

func (c *homeController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Home)
}

func (c *homeController) Home(ctx *fiber.Ctx) error {
	sess := serverutils.CurrentSession(ctx)

	return serverutils.RenderView(ctx, "home", fiber.Map{
		"journals":                  c.journalService.ListJournals(ctx.Context(), sess),
		"watchedItems":              c.watchlistService.List(sess),
		"researchInterestTerm":      sess.ResearchInterestTerm,
		"researchInterestVector":    sess.ResearchInterestVector,
		"researchInterestConcepts":  sess.ResearchInterestConcepts,
		"researchInterestRequestId": sess.ResearchInterestRequestID,
		"flash":                     sess.TakeFlash(),
	})
}
