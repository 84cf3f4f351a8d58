package controller

import (
	"intelliview-be/internal/dto"
	"intelliview-be/internal/pkg/serverutils"
	"intelliview-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Markdown(ctx *fiber.Ctx) error
	Regenerate(ctx *fiber.Ctx) error
}

type reportController struct {
	reportService service.IReportService
	auth          fiber.Handler
}

// NewReportController guards every report route with auth.
func NewReportController(reportService service.IReportService, auth fiber.Handler) IReportController {
	return &reportController{
		reportService: reportService,
		auth:          auth,
	}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/reports")
	h.Use(c.auth)
	h.Get("", c.List)
	h.Get(":sessionId", c.Show)
	h.Get(":sessionId/markdown", c.Markdown)
	h.Post(":sessionId/regenerate", c.Regenerate)
}

func (c *reportController) List(ctx *fiber.Ctx) error {
	var req dto.ListReportsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.ListReports(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get reports", res))
}

func (c *reportController) Show(ctx *fiber.Ctx) error {
	res, err := c.reportService.GetReport(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get report", res))
}

func (c *reportController) Markdown(ctx *fiber.Ctx) error {
	md, err := c.reportService.GetReportMarkdown(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="report_`+ctx.Params("sessionId")+`.md"`)
	return ctx.SendString(md)
}

func (c *reportController) Regenerate(ctx *fiber.Ctx) error {
	res, err := c.reportService.Regenerate(ctx.UserContext(), ctx.Params("sessionId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success regenerate report", res))
}
