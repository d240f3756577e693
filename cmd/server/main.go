package main

import (
	"log"

	"brototype.com/complaintdesk/internal/config"
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/server"
	"brototype.com/complaintdesk/pkg/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedCategories(db); err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}

	redisClient := newRedisClient(cfg.RedisURL)

	srv := server.NewServer(db, redisClient)
	log.Printf("starting server on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Profile{},
		&model.Category{},
		&model.Complaint{},
		&model.ComplaintMessage{},
		&model.ComplaintAttachment{},
		&model.Rating{},
		&model.AuditLog{},
	)
}

// newRedisClient returns nil when no REDIS_URL is configured. Rate limiting
// and realtime notifications degrade gracefully without it.
func newRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("WARNING: REDIS_URL is not set, rate limiting and realtime updates are disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	return redis.NewClient(opts)
}

func seedCategories(db *gorm.DB) error {
	defaultCategories := []model.Category{
		{Name: "Academics", Slug: "academics", DefaultSLAHours: 48},
		{Name: "Facilities", Slug: "facilities", DefaultSLAHours: 72},
		{Name: "Hostel", Slug: "hostel", DefaultSLAHours: 24},
		{Name: "Placements", Slug: "placements", DefaultSLAHours: 72},
		{Name: "Other", Slug: "other", DefaultSLAHours: 72},
	}

	for _, category := range defaultCategories {
		var count int64
		if err := db.Model(&model.Category{}).
			Where("slug = ?", category.Slug).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&category).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
