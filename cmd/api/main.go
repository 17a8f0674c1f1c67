package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"tableservice/internal/config"
	"tableservice/internal/domain/model"
	"tableservice/internal/eventbus"
	"tableservice/internal/handler"
	"tableservice/internal/infra/db"
	infraRepo "tableservice/internal/infra/repository"
	"tableservice/internal/payment"
	repo "tableservice/internal/repository"
	"tableservice/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// .envは無くてもよい（本番は環境変数直指定）
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.Restaurant{},
		&model.Table{},
		&model.MenuCategory{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.User{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Repository（GORM実装）生成
	restaurantRepo := infraRepo.NewRestaurantGormRepository(gormDB)
	tableRepo := infraRepo.NewTableGormRepository(gormDB)
	categoryRepo := infraRepo.NewMenuCategoryGormRepository(gormDB)
	menuItemRepo := infraRepo.NewMenuItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	if err := seed(restaurantRepo, userRepo); err != nil {
		log.Fatalf("seed: %v", err)
	}

	// プロセス内のイベントバス
	bus := eventbus.NewInMemoryBus()

	// 決済ゲートウェイ。資格情報が無ければモック。
	var gateway payment.Gateway
	if cfg.PaymentMockMode() {
		log.Println("payment gateway: mock mode (no razorpay credentials)")
		gateway = payment.NewMockGateway()
	} else {
		gateway = payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	}

	// Usecase生成
	orderUC := usecase.NewOrderUsecase(txManager, tableRepo, restaurantRepo, bus)
	paymentUC := usecase.NewPaymentUsecase(txManager, tableRepo, restaurantRepo, paymentRepo, gateway, bus)
	menuUC := usecase.NewMenuUsecase(tableRepo, restaurantRepo, categoryRepo, menuItemRepo)
	tableUC := usecase.NewTableUsecase(tableRepo)
	restaurantUC := usecase.NewRestaurantUsecase(restaurantRepo)
	reportUC := usecase.NewReportUsecase(orderRepo)
	authUC := usecase.NewAuthUsecase(userRepo, cfg.JWTSecret, 12*time.Hour)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FEURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	// Handler生成・ルート登録
	handler.NewAuthHandler(authUC).RegisterRoutes(e)
	handler.NewMenuHandler(menuUC).RegisterRoutes(e)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e)
	handler.NewPaymentHandler(paymentUC).RegisterRoutes(e)
	handler.NewStaffOrderHandler(orderUC).RegisterRoutes(e, cfg.JWTSecret)
	handler.NewStreamHandler(bus, orderUC).RegisterRoutes(e, cfg.JWTSecret)
	handler.NewAdminMenuHandler(menuUC).RegisterRoutes(e, cfg.JWTSecret)
	handler.NewAdminTableHandler(tableUC, cfg.PublicBaseURL).RegisterRoutes(e, cfg.JWTSecret)
	handler.NewAdminHandler(restaurantUC, reportUC, orderUC).RegisterRoutes(e, cfg.JWTSecret)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// 初期データ：店舗1件と管理者アカウント（既にあれば何もしない）
func seed(restaurants repo.RestaurantRepository, users repo.UserRepository) error {
	ctx := context.Background()

	rest, err := restaurants.FindFirst(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		name := os.Getenv("RESTAURANT_NAME")
		if name == "" {
			name = "My Restaurant"
		}
		id, err := restaurants.Create(ctx, model.Restaurant{
			Name:            name,
			PrepaidEnabled:  true,
			PostpaidEnabled: true,
		})
		if err != nil {
			return err
		}
		rest = model.Restaurant{ID: id, Name: name}
		log.Printf("seeded restaurant %q", name)
	} else if err != nil {
		return err
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	_, err = users.FindByEmail(ctx, adminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := users.Create(ctx, model.User{
		RestaurantID: rest.ID,
		Email:        adminEmail,
		PasswordHash: string(hashed),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}); err != nil {
		return err
	}
	log.Printf("seeded admin user %s", adminEmail)
	return nil
}
