package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/og-construction/CRM-OGCS-sub001/internal/controller"
	"github.com/og-construction/CRM-OGCS-sub001/internal/middleware"
	"github.com/og-construction/CRM-OGCS-sub001/internal/model"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/config"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/cron"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/database"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/email"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/jwt"
	"github.com/og-construction/CRM-OGCS-sub001/pkg/utils/storage"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)

	// Lead routes
	leads := protected.Group("/leads")
	leads.Get("/my", controller.ListMyLeads)
	leads.Post("/my", controller.CreateLead)
	leads.Get("/my/followups", controller.ListFollowUps)
	leads.Get("/my/followups/summary", controller.FollowUpSummary)
	leads.Post("/my/import", controller.ImportLeads)
	leads.Put("/my/:id", controller.UpdateLead)
	leads.Delete("/my/:id", controller.DeleteLead)
	leads.Patch("/my/:id/followup", controller.UpdateFollowUp)

	// Visit routes
	visits := protected.Group("/visits")
	visits.Get("/my", controller.ListMyVisits)
	visits.Post("/", controller.CreateVisit)
	visits.Get("/:id", controller.GetVisit)
	visits.Put("/:id", controller.UpdateVisit)
	visits.Delete("/:id", controller.DeleteVisit)
	visits.Patch("/:id/checkin", controller.CheckIn)
	visits.Patch("/:id/checkout", controller.CheckOut)
	visits.Post("/:id/photos", controller.UploadVisitPhoto)
	visits.Post("/:visitId/create-lead", controller.PromoteMetPerson)

	// Quotation routes
	quotations := protected.Group("/quotations")
	quotations.Get("/my", controller.ListMyQuotations)
	quotations.Post("/my", controller.CreateQuotation)
	quotations.Put("/my/:id", controller.UpdateQuotation)
	quotations.Delete("/my/:id", controller.DeleteQuotation)
	quotations.Patch("/my/:id/submit", controller.SubmitQuotation)
	quotations.Post("/my/:id/attachment", controller.UploadQuotationAttachment)

	// Invoice routes
	invoices := protected.Group("/invoices")
	invoices.Get("/my", controller.ListMyInvoices)
	invoices.Post("/my", controller.CreateInvoice)
	invoices.Patch("/my/:id/submit", controller.SubmitInvoice)
	invoices.Patch("/my/:id/paid", controller.MarkInvoicePaid)
	invoices.Post("/my/:id/attachment", controller.UploadInvoiceAttachment)

	// Daily report routes
	reports := protected.Group("/reports")
	reports.Get("/my", controller.GetDailyReport)
	reports.Post("/my", controller.SubmitDailyReport)
	reports.Get("/my/list", controller.ListDailyReports)

	// Settings routes
	settings := protected.Group("/settings")
	settings.Get("/profile", controller.GetProfile)
	settings.Put("/profile", controller.UpdateProfile)
	settings.Put("/password", controller.ChangePassword)

	// Admin routes
	admin := protected.Group("/admin", middleware.AdminOnly())
	admin.Get("/overview", controller.GetAdminOverview)
	admin.Get("/users", controller.ListUsers)
	admin.Get("/quotations/pending", controller.ListPendingQuotations)
	admin.Patch("/quotations/:id/decision", controller.DecideQuotation)
	admin.Get("/invoices/pending", controller.ListPendingInvoices)
	admin.Patch("/invoices/:id/decision", controller.DecideInvoice)
}

func main() {
	cfg := config.Load()
	jwt.Init(cfg.JWT.Secret)

	if cfg.Email.ResendAPIKey != "" {
		if err := email.InitEmailService(cfg.Email.ResendAPIKey, cfg.Email.From); err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
	} else {
		log.Println("RESEND_API_KEY not set, email notifications disabled")
	}

	if err := storage.InitStorage(cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		log.Fatal("Could not initialize storage:", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.Lead{},
		&model.Visit{},
		&model.Quotation{},
		&model.Invoice{},
		&model.DailyReport{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	cron.InitActivityDigestCron()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
