package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/opskitchen/resto-ops/config"
	"github.com/opskitchen/resto-ops/middlewares"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/router"
	"github.com/opskitchen/resto-ops/utils"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seedAdmin(db)

	deps := router.NewDeps(db, config.SuggestionConfig())

	// Surface best-effort audit failures without coupling them to the
	// mutations they describe.
	go func() {
		for err := range deps.Audit.Errors() {
			utils.ErrorLogger.Printf("audit sink error: %v", err)
		}
	}()

	if interval := config.ScanInterval(); interval > 0 {
		deps.EightySix.StartScanner(interval)
		defer deps.EightySix.Stop()
	}

	r := router.SetupRouter(deps)

	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.TableStateEvent{},
		&models.TableStateSuggestion{},
		&models.MenuItem{},
		&models.MenuItemIngredient{},
		&models.InventoryItem{},
		&models.EightySixSuggestion{},
		&models.EightySixEvent{},
		&models.Reservation{},
		&models.POSEvent{},
		&models.AuditLogEntry{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed")
}

// seedAdmin bootstraps the first admin account from the environment so a
// fresh deployment can log in. A no-op once any admin exists.
func seedAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count).Error; err != nil {
		utils.ErrorLogger.Printf("admin seed check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.ErrorLogger.Printf("admin seed hash failed: %v", err)
		return
	}

	admin := models.User{
		Name:     "Administrator",
		Email:    email,
		Password: string(hashed),
		Role:     "ADMIN",
	}
	if err := db.Create(&admin).Error; err != nil {
		utils.ErrorLogger.Printf("admin seed failed: %v", err)
		return
	}
	utils.InfoLogger.Printf("seeded admin account %s", email)
}
