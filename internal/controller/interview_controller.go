package controller

import (
	"intelliview-be/internal/dto"
	"intelliview-be/internal/pkg/serverutils"
	"intelliview-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IInterviewController interface {
	RegisterRoutes(r fiber.Router)
	GetCodingProblem(ctx *fiber.Ctx) error
	SubmitCode(ctx *fiber.Ctx) error
	AnalyzeFrame(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type interviewController struct {
	interviewService service.IInterviewService
}

func NewInterviewController(interviewService service.IInterviewService) IInterviewController {
	return &interviewController{
		interviewService: interviewService,
	}
}

func (c *interviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Get("coding-problem", c.GetCodingProblem)
	h.Post("submit-code", c.SubmitCode)
	h.Post("analyze-frame", c.AnalyzeFrame)
	h.Get("health", c.Health)
}

func (c *interviewController) GetCodingProblem(ctx *fiber.Ctx) error {
	var req dto.CodingProblemRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}

	res, err := c.interviewService.GetCodingProblem(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get coding problem", res))
}

func (c *interviewController) SubmitCode(ctx *fiber.Ctx) error {
	var req dto.SubmitCodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.interviewService.SubmitCode(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit code", res))
}

func (c *interviewController) AnalyzeFrame(ctx *fiber.Ctx) error {
	var req dto.AnalyzeFrameRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.interviewService.AnalyzeFrame(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success analyze frame", res))
}

func (c *interviewController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", c.interviewService.Health(ctx.UserContext())))
}
