package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/services/handlers"
	"github.com/heartletter/letter_api/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthService
	userSvc       *UserService
	letterSvc     *LetterService
	workflowSvc   *WorkflowService
	adminSvc      *AdminService
	migrationSvc  *MigrationService
	exportSvc     *ExportService
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.letterSvc = svc.Service(LETTER_SVC).(*LetterService)
	svc.workflowSvc = svc.Service(WORKFLOW_SVC).(*WorkflowService)
	svc.adminSvc = svc.Service(ADMIN_SVC).(*AdminService)
	svc.migrationSvc = svc.Service(MIGRATION_SVC).(*MigrationService)
	svc.exportSvc = svc.Service(EXPORT_SVC).(*ExportService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.app = svc.newApp()

	log.Info().Int("port", svc.port).Msg("HTTP server listening")
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

func (svc *HttpService) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		JSONEncoder:  shared.Marshal,
		JSONDecoder:  shared.Unmarshal,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if svc.monitoringSvc != nil {
		app.Use(MonitoringMiddleware(svc.monitoringSvc))
	}

	app.Get("/ping", svc.ping)

	v1 := app.Group("/api/v1")
	if svc.rateLimitSvc != nil {
		v1.Use(svc.rateLimitSvc.IPRateLimit())
	}
	v1.Get("/ping", svc.ping)

	svc.registerRoutes(v1)
	return app
}

// limit returns a rate limiter for endpointType, or a pass-through when no
// limiter is configured.
func (svc *HttpService) limit(endpointType string) fiber.Handler {
	if svc.rateLimitSvc == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return svc.rateLimitSvc.RateLimit(endpointType)
}

func (svc *HttpService) registerRoutes(v1 fiber.Router) {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	userHandler := handlers.NewUserHandler(svc.userSvc)
	letterHandler := handlers.NewLetterHandler(svc.letterSvc)
	workflowHandler := handlers.NewWorkflowHandler(svc.workflowSvc)
	aiHandler := handlers.NewAIHandler(svc.workflowSvc)
	adminHandler := handlers.NewAdminHandler(svc.adminSvc, svc.migrationSvc, svc.exportSvc)

	auth := v1.Group("/auth")
	auth.Post("/register", svc.limit(RateLimitRegister), authHandler.Register)
	auth.Post("/login", svc.limit(RateLimitLogin), authHandler.Login)

	users := v1.Group("/users")
	users.Get("/:userId", userHandler.GetUserProfile)
	users.Put("/:userId/profile", userHandler.UpdateUserProfile)

	answers := v1.Group("/answers")
	answers.Post("/save", userHandler.SaveAnswers)
	answers.Get("/", userHandler.ListAnswers)
	answers.Get("/:answersId", userHandler.GetAnswers)

	sessions := v1.Group("/sessions")
	sessions.Post("/save", userHandler.SaveSession)
	sessions.Get("/", userHandler.ListSessions)
	sessions.Get("/:sessionId", userHandler.GetSession)
	sessions.Delete("/:sessionId", userHandler.DeleteSession)

	letters := v1.Group("/letters")
	letters.Post("/generate", svc.limit(RateLimitLetter), letterHandler.GenerateLetter)
	letters.Post("/save", letterHandler.SaveLetter)
	letters.Get("/", letterHandler.ListLetters)
	letters.Get("/by-answers/:answersId", letterHandler.GetLetterByAnswers)
	letters.Get("/:letterId", letterHandler.GetLetter)

	understanding := v1.Group("/understanding-session")
	understanding.Post("/save", workflowHandler.SaveUnderstanding)
	understanding.Get("/by-letter/:letterId", workflowHandler.GetUnderstandingByLetter)
	understanding.Get("/:id", workflowHandler.GetUnderstanding)

	strength := v1.Group("/strength-finding-session")
	strength.Post("/save", workflowHandler.SaveStrengthFinding)
	strength.Get("/by-letter/:letterId", workflowHandler.GetStrengthFindingByLetter)
	strength.Get("/:id", workflowHandler.GetStrengthFinding)

	steps := v1.Group("/writing-step")
	steps.Post("/save-reflection", workflowHandler.SaveReflection)
	steps.Get("/get-reflection", workflowHandler.GetReflection)
	steps.Post("/save-inspection", workflowHandler.SaveInspection)
	steps.Post("/save-suggestion", workflowHandler.SaveSuggestion)
	steps.Post("/save-solution-exploration", workflowHandler.SaveSolutionExploration)
	steps.Post("/save-ai-strength-tags", workflowHandler.SaveAIStrengthTags)
	steps.Post("/save-magic-mix", workflowHandler.SaveMagicMix)
	steps.Post("/save-response-letter", workflowHandler.SaveResponseLetter)
	steps.Get("/get-response-letter", workflowHandler.GetResponseLetter)
	steps.Post("/save-letter-content", workflowHandler.SaveLetterContent)
	steps.Post("/save-completion", workflowHandler.SaveCompletion)
	steps.Post("/complete-reflection", svc.limit(RateLimitAI), workflowHandler.CompleteReflection)
	steps.Post("/regenerate-factors", svc.limit(RateLimitAI), workflowHandler.RegenerateFactors)

	ai := v1.Group("/ai", svc.limit(RateLimitAI))
	ai.Post("/check-emotion", aiHandler.CheckEmotion)
	ai.Post("/check-blame-pattern", aiHandler.CheckBlame)
	ai.Post("/summarize-situation", aiHandler.Summarize)
	ai.Post("/generate-reflection-hints", aiHandler.GenerateReflectionHints)
	ai.Post("/generate-solutions", aiHandler.GenerateSolutions)
	ai.Post("/generate-response-letter", aiHandler.GenerateResponseLetter)

	admin := v1.Group("/admin", svc.authSvc.RequiredAuth(), svc.authSvc.RequireRole(shared.RoleAdmin))
	admin.Get("/stats", adminHandler.GetStats)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:userId", adminHandler.GetUserActivity)
	admin.Delete("/user/delete", adminHandler.DeleteUser)
	admin.Post("/migrations/:name", adminHandler.RunMigration)
	admin.Post("/export", adminHandler.Export)
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")
	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Int("status", appErr.StatusCode).Msg("Request failed")
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return shared.ResponseJSON(c, fe.Code, fe.Message, nil)
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	return shared.ResponseInternalError(c)
}
