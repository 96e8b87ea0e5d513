package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avelar/digistore/internal/config"
	"github.com/avelar/digistore/internal/database"
	"github.com/avelar/digistore/internal/events"
	"github.com/avelar/digistore/internal/fulfillment"
	"github.com/avelar/digistore/internal/settings"
)

type api struct {
	db       *sql.DB
	engine   *fulfillment.Engine
	settings *settings.Service
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publisher events.Publisher
	var kp *events.KafkaPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		kp = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, 256)
		kp.Start()
		publisher = kp
		log.Printf("Publishing order events to %s", cfg.Kafka.Topic)
	}

	app := &api{
		db:       db,
		engine:   fulfillment.New(db, publisher),
		settings: settings.NewService(db, settings.NewRedisCache(cfg.Redis.Addr), cfg.Redis.SettingsTTL),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
		close(shutdownDone)
	}()

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	// Shutdown keeps draining in-flight handlers after ListenAndServe
	// returns; those handlers may still publish. Close the publisher
	// only once the drain is done.
	<-shutdownDone
	if kp != nil {
		kp.Close()
	}
}

func (a *api) router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/products", a.handleListProducts)
	r.Get("/products/{id}", a.handleGetProduct)
	r.Get("/categories", a.handleListCategories)
	r.Get("/categories/{id}/products", a.handleListCategoryProducts)
	r.Get("/payment-methods", a.handleListPaymentMethods)

	r.Post("/orders", a.handlePlaceOrder)
	r.Get("/orders/{id}", a.handleGetOrder)
	r.Get("/users/{id}/orders", a.handleListUserOrders)
	r.Get("/users/{id}/wallet", a.handleGetWallet)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/products", a.handleCreateProduct)
		r.Put("/products/{id}", a.handleUpdateProduct)
		r.Delete("/products/{id}", a.handleDeleteProduct)
		r.Post("/categories", a.handleCreateCategory)
		r.Delete("/categories/{id}", a.handleDeleteCategory)
		r.Post("/payment-methods", a.handleCreatePaymentMethod)
		r.Post("/coupons", a.handleCreateCoupon)
		r.Get("/coupons", a.handleListCoupons)
		r.Post("/assets", a.handleAddAsset)
		r.Get("/products/{id}/assets", a.handleListProductAssets)
		r.Delete("/assets/{id}", a.handleDeleteAsset)
		r.Get("/orders", a.handleListOrders)
		r.Post("/orders/{id}/status", a.handleSetOrderStatus)
		r.Post("/orders/{id}/refund", a.handleRefundOrder)
		r.Post("/orders/{id}/deliver", a.handleDeliverManually)
		r.Post("/orders/{id}/auto-deliver", a.handleAutoDeliver)
		r.Post("/users/{id}/wallet/credit", a.handleCreditWallet)
		r.Get("/settings/{key}", a.handleGetSetting)
		r.Put("/settings/{key}", a.handlePutSetting)
	})

	return r
}
