package server

import (
	"log"
	"strings"

	"intelliview-be/internal/bootstrap"
	"intelliview-be/internal/config"
	"intelliview-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// maxBodySize fits a base64 webcam frame or a large code submission.
const maxBodySize = 10 * 1024 * 1024

type Server struct {
	app  *fiber.App
	port string
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "IntelliView",
		BodyLimit: maxBodySize,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, X-Request-ID",
	}))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(isWebSocketRoute)))
	app.Use(serverutils.ErrorHandlerMiddleware())

	container.InterviewController.RegisterRoutes(app)
	container.ReportController.RegisterRoutes(app)
	container.InterviewHandler.RegisterRoutes(app)

	return &Server{app: app, port: cfg.App.Port}
}

// websocket sessions last the whole interview; a request span around them says nothing
func isWebSocketRoute(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/ws/")
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.port)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops accepting requests and waits for open handlers to return.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
