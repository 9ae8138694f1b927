package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lokadeal/lokadeal-backend/internal/config"
	"github.com/lokadeal/lokadeal-backend/internal/dto"
	"github.com/lokadeal/lokadeal-backend/internal/handler"
	"github.com/lokadeal/lokadeal-backend/internal/middleware"
	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/lokadeal/lokadeal-backend/internal/repository"
	"github.com/lokadeal/lokadeal-backend/internal/service"
	"github.com/lokadeal/lokadeal-backend/pkg/cache"
	"github.com/lokadeal/lokadeal-backend/pkg/database"
	"github.com/lokadeal/lokadeal-backend/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set; rate limiting and notifications disabled")
	}

	var searchService service.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchService = service.NewSearchService(meiliClient)
	}

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary storage unavailable, image upload disabled: %v", err)
		imageStorage = nil
	}

	userRepo := repository.NewUserRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	dealRepo := repository.NewDealRepository(db)
	pointsRepo := repository.NewPointsRepository(db)

	lbCache := cache.New[[]dto.LeaderboardRow](cfg.LeaderboardTTLOverride)

	authService := service.NewAuthService(userRepo, cfg)
	authHandler := handler.NewAuthHandler(authService)

	merchantService := service.NewMerchantService(merchantRepo)
	merchantHandler := handler.NewMerchantHandler(merchantService)

	dealService := service.NewDealService(dealRepo, merchantRepo, searchService, imageStorage, cfg.CloudinaryUploadFolder)
	dealHandler := handler.NewDealHandler(dealService)

	notificationService := service.NewNotificationService(redisClient)
	checkInService := service.NewCheckInService(dealRepo, pointsRepo, lbCache, notificationService, redisClient, cfg)
	checkInHandler := handler.NewCheckInHandler(checkInService)

	leaderboardService := service.NewLeaderboardService(pointsRepo, userRepo, lbCache)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)

	pointsHandler := handler.NewPointsHandler(pointsRepo)
	adminHandler := handler.NewAdminHandler(merchantService, lbCache)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		// Public discovery surface.
		api.GET("/deals", dealHandler.ListDeals)
		api.GET("/deals/:id", dealHandler.GetDeal)
		api.GET("/leaderboard", authMiddleware.OptionalAuth(), leaderboardHandler.GetLeaderboard)

		protected := api.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			protected.POST("/deals/:id/checkin", checkInHandler.CheckIn)
			protected.GET("/points/history", pointsHandler.GetMyPointHistory)

			protected.POST("/merchants", merchantHandler.RegisterMerchant)
			protected.GET("/merchants/me", merchantHandler.GetMyMerchant)
			protected.PUT("/merchants/me", merchantHandler.UpdateMerchant)

			protected.POST("/merchants/me/deals", dealHandler.CreateDeal)
			protected.PUT("/merchants/me/deals/:id", dealHandler.UpdateDeal)
			protected.DELETE("/merchants/me/deals/:id", dealHandler.DeleteDeal)
			protected.POST("/merchants/me/deals/:id/image", dealHandler.UploadDealImage)

			admin := protected.Group("/admin")
			admin.Use(authMiddleware.RequireAdmin())
			{
				admin.GET("/merchants/pending", adminHandler.ListPendingMerchants)
				admin.PUT("/merchants/:id/approval", adminHandler.ApproveMerchant)
				admin.POST("/leaderboard/cache/reset", adminHandler.ResetLeaderboardCache)
			}
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Merchant{},
		&model.Deal{},
		&model.PointEvent{},
		&model.CheckIn{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Platform administrator"},
		{Name: "user", Description: "End user"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@lokadeal.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := "Administrator"
	adminUser := model.User{
		Email:        "admin@lokadeal.local",
		PasswordHash: string(hashedPasswordBytes),
		Name:         &name,
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded (admin@lokadeal.local / admin123)")
	return nil
}
