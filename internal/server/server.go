package server

import (
	"log"
	"os"
	"strings"
	"time"

	"brototype.com/complaintdesk/internal/handler"
	"brototype.com/complaintdesk/internal/middleware"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/realtime"
	"brototype.com/complaintdesk/internal/repository"
	"brototype.com/complaintdesk/internal/service"
	"brototype.com/complaintdesk/internal/workflow"
	"brototype.com/complaintdesk/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client) *Server {
	profileRepo := repository.NewProfileRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	blobStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	// Initialize Meilisearch
	meiliHost := os.Getenv("MEILISEARCH_HOST")
	if meiliHost == "" {
		meiliHost = "http://localhost:7700"
	}
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(os.Getenv("MEILI_MASTER_KEY")))

	auditSvc := service.NewAuditService(auditRepo)
	searchSvc := service.NewSearchService(meiliClient)

	complaintSvc := service.NewComplaintService(complaintRepo, categoryRepo, workflow.DefaultTransitions(), auditSvc, searchSvc)
	complaintHandler := handler.NewComplaintHandler(complaintSvc, searchSvc)

	messageSvc := service.NewMessageService(messageRepo, complaintRepo, auditSvc, redisClient)
	broker := realtime.NewRedisBroker(redisClient)
	messageHandler := handler.NewMessageHandler(messageSvc, realtime.NewManager(broker))

	attachmentSvc := service.NewAttachmentService(attachmentRepo, complaintRepo, blobStorage, auditSvc)
	attachmentHandler := handler.NewAttachmentHandler(attachmentSvc)

	categorySvc := service.NewCategoryService(categoryRepo, auditSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)

	ratingSvc := service.NewRatingService(ratingRepo, complaintRepo, auditSvc)
	ratingHandler := handler.NewRatingHandler(ratingSvc)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(profileRepo)

	api := router.Group("/api")

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Category admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRole(model.RoleSuperadmin))
		{
			adminGroup.POST("/categories", categoryHandler.Create)
			adminGroup.DELETE("/categories/:id", categoryHandler.Delete)
		}

		protected.GET("/categories", categoryHandler.List)

		// Complaint routes
		protected.POST("/complaints", complaintHandler.Create)
		protected.GET("/complaints", complaintHandler.List)
		protected.GET("/complaints/stats", complaintHandler.Stats)
		protected.GET("/complaints/search-token", complaintHandler.SearchToken)
		protected.GET("/complaints/:id", complaintHandler.Get)
		protected.PATCH("/complaints/:id/status", complaintHandler.UpdateStatus)
		protected.PATCH("/complaints/:id/assignment", complaintHandler.UpdateAssignment)
		protected.PATCH("/complaints/:id/resolution-notes", complaintHandler.UpdateResolutionNotes)

		// Message thread routes
		protected.POST("/complaints/:id/messages", messageHandler.Append)
		protected.GET("/complaints/:id/messages", messageHandler.List)
		protected.GET("/complaints/:id/messages/ws", messageHandler.Stream)

		// Attachment routes
		protected.POST("/complaints/:id/attachments", attachmentHandler.Upload)
		protected.GET("/complaints/:id/attachments", attachmentHandler.List)
		protected.GET("/attachments/:attachmentId/download", attachmentHandler.Download)

		// Rating routes
		protected.POST("/complaints/:id/rating", ratingHandler.Submit)
		protected.GET("/complaints/:id/rating", ratingHandler.Get)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
