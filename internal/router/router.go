package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushub/integrity-api/internal/config"
	"github.com/campushub/integrity-api/internal/handler"
	"github.com/campushub/integrity-api/internal/middleware"
	"github.com/campushub/integrity-api/internal/observability"
)

// Dependencies collects everything the route table needs.
type Dependencies struct {
	Config      *config.Config
	Health      *handler.HealthHandler
	Submissions *handler.SubmissionHandler
	Reports     *handler.ReportHandler
	Assignments *handler.AssignmentHandler
	Rosters     *handler.RosterHandler
}

// Register wires the versioned API route table onto the app.
func Register(app *fiber.App, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1")
	deps.Health.Register(api)

	protected := api.Group("", middleware.JWTProtected(deps.Config.JWTSecret))

	submissions := protected.Group("/submissions")
	deps.Submissions.Register(submissions, middleware.RateLimit("upload", deps.Config.UploadRateMax, deps.Config.UploadRateWindow))

	reports := protected.Group("/reports")
	deps.Reports.Register(reports)

	assignments := protected.Group("/assignments")
	deps.Assignments.Register(assignments)

	courses := protected.Group("/courses")
	deps.Rosters.Register(courses)
}
