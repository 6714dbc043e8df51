// @title           Chip Quotation API
// @version         1.0
// @description     Quotation management backend for semiconductor test services.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	_ "chip-quotation-backend/docs"
	"chip-quotation-backend/handlers"
	"chip-quotation-backend/repository"
	"chip-quotation-backend/services"
	"chip-quotation-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:8080",
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

var cronRunning int32

func main() {
	db := storage.InitDB()
	gdb := storage.InitGormDB()

	// Push notifications are optional: without credentials the backend
	// runs with push disabled.
	credentialsPath := os.Getenv("FCM_CREDENTIALS_PATH")
	if credentialsPath == "" {
		credentialsPath = "firebase-credentials.json"
	}
	pushService, err := services.NewPushService(credentialsPath, db)
	if err != nil {
		log.Printf("Warning: Failed to initialize push service: %v. Push notifications will be disabled.", err)
		pushService = nil
	} else {
		log.Println("Push service initialized successfully")
	}

	emailService := services.NewEmailService(db)

	// Daily maintenance: expired sessions and abandoned drafts.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err = c.AddFunc("30 2 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous maintenance run still in progress. Skipping.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance")
		if err := storage.CleanupExpiredSessions(db); err != nil {
			log.Printf("CleanupExpiredSessions failed: %v", err)
		}
		staleDays := 90
		if v, err := strconv.Atoi(os.Getenv("STALE_DRAFT_DAYS")); err == nil && v > 0 {
			staleDays = v
		}
		if deleted, err := repository.DeleteStaleDrafts(db, staleDays); err != nil {
			log.Printf("DeleteStaleDrafts failed: %v", err)
		} else if deleted > 0 {
			log.Printf("Deleted %d stale draft quotes", deleted)
		}
		log.Println("Daily maintenance completed")
	})
	if err != nil {
		log.Fatalf("Failed to schedule maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/api")
	auth.Use(handlers.AuthRequired(db))

	auth.POST("/logout", handlers.LogoutHandler(db, pushService))
	auth.POST("/validate-session", handlers.ValidateSessionHandler(db))
	auth.POST("/device-token", handlers.RegisterDeviceTokenHandler(pushService))

	// ==================== 2. CATALOG ====================
	auth.GET("/machines", handlers.GetMachines(gdb))
	auth.GET("/machines/:id", handlers.GetMachineByID(gdb))
	auth.GET("/machines/:id/cards", handlers.GetCardsForMachine(gdb))
	auth.GET("/currency", handlers.GetCurrencies(db))
	auth.GET("/currency/:id", handlers.GetCurrencyByID(db))

	catalogAdmin := auth.Group("")
	catalogAdmin.Use(handlers.RequirePermission(handlers.PermCatalogManage))
	catalogAdmin.POST("/machines", handlers.CreateMachine(gdb))
	catalogAdmin.PUT("/machines/:id", handlers.UpdateMachine(gdb))
	catalogAdmin.DELETE("/machines/:id", handlers.DeleteMachine(gdb))
	catalogAdmin.POST("/cards", handlers.CreateCard(gdb))
	catalogAdmin.PUT("/cards/:id", handlers.UpdateCard(gdb))
	catalogAdmin.DELETE("/cards/:id", handlers.DeleteCard(gdb))
	catalogAdmin.POST("/currency", handlers.CreateCurrency(db))
	catalogAdmin.PUT("/currency/:id", handlers.UpdateCurrency(db))
	catalogAdmin.DELETE("/currency/:id", handlers.DeleteCurrency(db))

	// ==================== 3. CALCULATOR ====================
	auth.POST("/calculate_rate", handlers.CalculateRate(gdb))
	auth.POST("/quote_items/:type", handlers.BuildQuoteItems(gdb))

	// ==================== 4. QUOTES ====================
	auth.GET("/quotes", handlers.ListQuotesHandler(db))
	auth.GET("/quotes/:id", handlers.GetQuoteHandler(db))
	auth.GET("/quote_edit/:id", handlers.GetQuoteEditState(db, gdb))
	auth.POST("/quotes/:id/status", handlers.UpdateQuoteStatusHandler(db, emailService, pushService))

	quoteWrite := auth.Group("")
	quoteWrite.Use(handlers.RequirePermission(handlers.PermQuoteCreate))
	quoteWrite.POST("/quotes", handlers.CreateQuoteHandler(db))
	quoteWrite.PUT("/quotes/:id", handlers.UpdateQuoteHandler(db))
	quoteWrite.DELETE("/quotes/:id", handlers.DeleteQuoteHandler(db))

	auth.GET("/quotes/:id/changes", handlers.ListQuoteChangesHandler(db))

	// ==================== 5. NOTIFICATIONS ====================
	auth.GET("/notifications", handlers.GetMyNotificationsHandler(db))
	auth.PUT("/notifications/read-all", handlers.MarkAllNotificationsAsReadHandler(db))
	auth.PUT("/notifications/:id/read", handlers.MarkNotificationAsReadHandler(db))
	auth.DELETE("/notifications/:id", handlers.DeleteNotificationHandler(db))

	// ==================== 6. EMAIL TEMPLATES ====================
	templates := auth.Group("/email-templates")
	templates.Use(handlers.RequirePermission(handlers.PermCatalogManage))
	templates.GET("", handlers.GetEmailTemplates(db))
	templates.POST("", handlers.CreateEmailTemplate(db))
	templates.PUT("/:id", handlers.UpdateEmailTemplate(db))
	templates.DELETE("/:id", handlers.DeleteEmailTemplate(db))

	// ==================== 7. EXPORT ====================
	export := auth.Group("/export")
	export.Use(handlers.RequirePermission(handlers.PermExport))
	export.GET("/quotes/csv", handlers.ExportQuotesCSV(db))
	export.GET("/quotes/excel", handlers.ExportQuotesExcel(db))
	export.GET("/quotes/:id/excel", handlers.ExportQuoteExcel(db))
	export.GET("/quotes/:id/pdf", handlers.GenerateQuotePDF(db))
	export.GET("/quotes/:id/qrcode", handlers.GenerateQuoteQRCode(db))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil || portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT environment variable: %s", port)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
