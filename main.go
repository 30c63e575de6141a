package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wglickman33/mykosherdelivery-sub001/config"
	"github.com/wglickman33/mykosherdelivery-sub001/events"
	"github.com/wglickman33/mykosherdelivery-sub001/models"
	"github.com/wglickman33/mykosherdelivery-sub001/notify"
	"github.com/wglickman33/mykosherdelivery-sub001/payments"
	"github.com/wglickman33/mykosherdelivery-sub001/routes"
	"github.com/wglickman33/mykosherdelivery-sub001/zones"
)

func main() {
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.Info("starting application")

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Cart{},
		&models.CartItem{},
		&models.CheckoutGroup{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentIntent{},
		&models.AdminNotification{},
		&models.NotificationRead{},
		&models.DeliveryZone{},
		&models.PromoCode{},
	); err != nil {
		logrus.WithError(err).Fatal("automigrate failed")
	}

	bus := events.NewBus()

	zoneSvc := &zones.Service{DB: db, StaticTaxRate: cfg.StaticTaxRate}

	gateway, err := payments.NewHTTPGateway(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("payment gateway misconfigured")
	}
	orchestrator := &payments.Orchestrator{
		Store:    &payments.GormStore{DB: db},
		Gateway:  gateway,
		Bus:      bus,
		Mailer:   payments.LogMailer{},
		Currency: cfg.Currency,
		Notify: func(typ, title, message, refType, refID string) {
			notify.Create(db, bus, typ, title, message, refType, refID)
		},
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Dispatch-Secret"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(r, routes.Deps{
		DB:           db,
		Cfg:          cfg,
		Bus:          bus,
		Zones:        zoneSvc,
		Orchestrator: orchestrator,
	})

	logrus.WithField("port", cfg.Port).Info("server running")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}
