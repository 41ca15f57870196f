package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"busyboard/internal/config"
	"busyboard/internal/handler"
	"busyboard/internal/mailer"
	"busyboard/internal/middleware"
	"busyboard/internal/model"
	"busyboard/internal/repository"
	"busyboard/internal/storage"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := db.AutoMigrate(&model.User{}, &model.Board{}, &model.BoardMember{}, &model.Card{}); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate schema: %w", err)
	}

	// Blob storage: S3 when a bucket is configured, local disk otherwise
	blobs, localMedia, err := initStorage(cfg)
	if err != nil {
		return nil, err
	}

	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	memberRepo := repository.NewMembershipRepository(db)
	cardRepo := repository.NewCardRepository(db)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	settingsHandler := handler.NewSettingsHandler(userRepo, blobs)
	boardHandler := handler.NewBoardHandler(boardRepo, memberRepo, cardRepo, userRepo)
	membershipHandler := handler.NewMembershipHandler(boardRepo, userRepo, memberRepo)
	cardHandler := handler.NewCardHandler(cardRepo, boardRepo, memberRepo, userRepo, blobs)
	contactHandler := handler.NewContactHandler(mail, cfg.MailTo)

	// Public routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "BusyBoard API", "status": "ok"})
	})
	r.POST("/contact_us", contactHandler.Submit)
	r.POST("/sign_up/", userHandler.SignUp)
	r.POST("/sign_in/", userHandler.SignIn)

	if localMedia {
		r.Static("/media", cfg.MediaDir)
	}

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.POST("/sign_out/", userHandler.SignOut)

		// Account settings
		authorized.GET("/settings/", settingsHandler.GetProfile)
		authorized.POST("/settings/", settingsHandler.UpdateProfile)
		authorized.POST("/settings/change_password/", settingsHandler.ChangePassword)
		authorized.POST("/settings/photo/", settingsHandler.UploadPhoto)
		authorized.POST("/settings/delete_photo/", settingsHandler.DeletePhoto)
		authorized.POST("/settings/delete_account/", settingsHandler.DeleteAccount)

		// Board routes. Creation lives beside edit/delete rather than
		// under /my_boards/: the router cannot mix a literal segment
		// with :slug at the same position.
		authorized.GET("/my_boards/", boardHandler.List)
		authorized.POST("/create_board/", boardHandler.Create)
		authorized.GET("/edit_board/:id/", boardHandler.Get)
		authorized.POST("/edit_board/:id/", boardHandler.Update)
		authorized.POST("/save_board_changes/:id/", boardHandler.Update)
		authorized.POST("/delete_board/:id/", boardHandler.Delete)
		authorized.GET("/my_boards/:slug/", boardHandler.Detail)
		authorized.GET("/export_board_to_json/:id/", boardHandler.Export)

		// Membership routes
		authorized.POST("/my_boards/:slug/invite/", membershipHandler.Invite)
		authorized.POST("/my_boards/:slug/leave/", membershipHandler.Leave)
		authorized.POST("/my_boards/:slug/remove_user/", membershipHandler.RemoveUser)

		// Card routes
		authorized.POST("/create_card/", cardHandler.Create)
		authorized.POST("/update_card_status/", cardHandler.UpdateStatus)
		authorized.GET("/get_card_details/:id/", cardHandler.GetDetails)
		authorized.GET("/edit_card/:id/", cardHandler.Get)
		authorized.POST("/save_card_changes/:id/", cardHandler.SaveChanges)
		authorized.POST("/delete_card/:id/", cardHandler.Delete)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

// initStorage selects the blob backend. The second return value reports
// whether media lives on local disk and should be served by this
// process.
func initStorage(cfg *config.Config) (storage.Service, bool, error) {
	if cfg.StorageBucket == "" {
		log.Printf("✅ Using local media storage at %s", cfg.MediaDir)
		return storage.NewLocalService(cfg.MediaDir, "/media"), true, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.StorageRegion))
	if err != nil {
		return nil, false, fmt.Errorf("❌ failed to load AWS config: %w", err)
	}
	log.Printf("✅ Using S3 media storage in bucket %s", cfg.StorageBucket)
	return storage.NewS3Service(s3.NewFromConfig(awsCfg), cfg.StorageBucket, cfg.StorageKeyPrefix), false, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
