package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jeevanhealth/shell/cache"
	"github.com/jeevanhealth/shell/cart"
	"github.com/jeevanhealth/shell/config"
	"github.com/jeevanhealth/shell/gateway"
	"github.com/jeevanhealth/shell/identity"
	logger "github.com/jeevanhealth/shell/logging"
	"github.com/jeevanhealth/shell/queries"
	"github.com/jeevanhealth/shell/router"
	"github.com/jeevanhealth/shell/session"
	"github.com/jeevanhealth/shell/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize the external collaborators
	idp := identity.NewMemory(config.GetString("identity.principal"))
	gw := gateway.NewHTTP(config.GetString("gateway.baseURL"), config.GetDuration("gateway.timeout"))

	// Initialize stores: cache, typed gateway client, persisted cart
	store := cache.New(eventBus, config.GetDuration("cache.staleAfter"))
	client := queries.New(gw, store)

	cartStore, err := cart.NewStore(afero.NewOsFs(), config.GetString("cart.storageDir"), eventBus)
	if err != nil {
		logger.Fatal("Failed to initialize cart store", zap.Error(err))
	}

	resolver := session.NewResolver(idp, client, eventBus)

	eventBus.Subscribe(util.EventCacheInvalidated, func(ctx context.Context, event util.Event) error {
		logger.Debug("Invalidation event", zap.Any("keys", event.Payload))
		return nil
	})
	eventBus.Subscribe(util.EventSessionResolved, func(ctx context.Context, event util.Event) error {
		logger.Debug("Verdict settled", zap.Any("verdict", event.Payload))
		return nil
	})
	eventBus.Subscribe(util.EventCartCheckedOut, func(ctx context.Context, event util.Event) error {
		logger.Info("Checkout completed", zap.Any("reference", event.Payload))
		return nil
	})

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(router.Deps{
		Resolver: resolver,
		Queries:  client,
		Cart:     cartStore,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
