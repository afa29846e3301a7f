// Package http wires the HTTP interface: handlers, middleware and routes.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/application/billing/usecases"
	"github.com/stylora-app/stylora/internal/infrastructure/auth"
	infraCache "github.com/stylora-app/stylora/internal/infrastructure/cache"
	"github.com/stylora-app/stylora/internal/infrastructure/payment"
	"github.com/stylora-app/stylora/internal/infrastructure/repository"
	"github.com/stylora-app/stylora/internal/interfaces/http/handlers"
	"github.com/stylora-app/stylora/internal/infrastructure/config"
	"github.com/stylora-app/stylora/internal/interfaces/http/middleware"
	"github.com/stylora-app/stylora/internal/shared/db"
	"github.com/stylora-app/stylora/internal/shared/logger"
	"github.com/stylora-app/stylora/internal/shared/utils"

	"github.com/stylora-app/stylora/internal/domain/subscription"
)

// Router holds the HTTP surface and its wiring.
type Router struct {
	engine             *gin.Engine
	billingHandler     *handlers.BillingHandler
	webhookHandler     *handlers.WebhookHandler
	internalHandler    *handlers.InternalHandler
	authMiddleware     *middleware.AuthMiddleware
	internalMiddleware *middleware.InternalTokenMiddleware

	// ResetUsageUC is exposed for the scheduler registration in the server
	// command.
	ResetUsageUC *usecases.ResetMonthlyUsageUseCase
}

// NewRouter wires repositories, adapters, use cases and handlers. redisClient
// may be nil; the status cache degrades to a no-op.
func NewRouter(cfg *config.Config, database *gorm.DB, redisClient *redis.Client) *Router {
	log := logger.NewLogger()

	catalog := subscription.NewPlanCatalog(productPlansFromConfig(cfg))

	subscriptionRepo := repository.NewSubscriptionRepository(database, log.Named("subscription_repo"))
	purchaseRepo := repository.NewPurchaseRepository(database, log.Named("purchase_repo"))
	usageRepo := repository.NewUsageCounterRepository(database, log.Named("usage_repo"))
	txManager := db.NewTransactionManager(database)

	var entitlementCache billing.EntitlementCache
	if redisClient != nil {
		entitlementCache = infraCache.NewRedisEntitlementCache(redisClient, log.Named("entitlement_cache"))
	} else {
		entitlementCache = infraCache.NewNoopEntitlementCache()
	}

	gateway := payment.NewStripeGateway(&cfg.Billing, catalog, log.Named("stripe"))
	verifier := payment.NewAppStoreVerifier(&cfg.IAP, catalog, log.Named("appstore"))

	reconcileUC := usecases.NewReconcileFactUseCase(subscriptionRepo, purchaseRepo, txManager, entitlementCache, log.Named("reconcile"))
	getStatusUC := usecases.NewGetStatusUseCase(subscriptionRepo, usageRepo, catalog, entitlementCache, log.Named("status"))
	createCheckoutUC := usecases.NewCreateCheckoutUseCase(subscriptionRepo, gateway, log.Named("checkout"))
	verifyPurchaseUC := usecases.NewVerifyPurchaseUseCase(subscriptionRepo, gateway, verifier, reconcileUC, log.Named("verify"))
	restoreUC := usecases.NewRestorePurchasesUseCase(subscriptionRepo, gateway, verifier, reconcileUC, log.Named("restore"))
	cancelUC := usecases.NewCancelSubscriptionUseCase(subscriptionRepo, gateway, reconcileUC, log.Named("cancel"))
	authorizeUC := usecases.NewAuthorizeFeatureUseCase(subscriptionRepo, usageRepo, catalog, log.Named("authorize"))
	recordUsageUC := usecases.NewRecordUsageUseCase(subscriptionRepo, usageRepo, catalog, entitlementCache, log.Named("usage"))
	purchaseHistoryUC := usecases.NewGetPurchaseHistoryUseCase(purchaseRepo, log.Named("history"))
	processWebhookUC := usecases.NewProcessWebhookUseCase(subscriptionRepo, gateway, reconcileUC, log.Named("webhook"))
	grantTrialUC := usecases.NewGrantTrialUseCase(subscriptionRepo, entitlementCache, &cfg.Trial, log.Named("trial"))
	resetUsageUC := usecases.NewResetMonthlyUsageUseCase(usageRepo, log.Named("reset"))

	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)

	router := &Router{
		billingHandler: handlers.NewBillingHandler(
			getStatusUC,
			createCheckoutUC,
			verifyPurchaseUC,
			restoreUC,
			cancelUC,
			authorizeUC,
			recordUsageUC,
			purchaseHistoryUC,
			log.Named("billing_handler"),
		),
		webhookHandler:     handlers.NewWebhookHandler(processWebhookUC, log.Named("webhook_handler")),
		internalHandler:    handlers.NewInternalHandler(grantTrialUC, resetUsageUC, log.Named("internal_handler")),
		authMiddleware:     middleware.NewAuthMiddleware(jwtService, log.Named("auth")),
		internalMiddleware: middleware.NewInternalTokenMiddleware(cfg.Auth.InternalToken, log.Named("internal_auth")),
		ResetUsageUC:       resetUsageUC,
	}

	router.setupEngine(cfg)
	return router
}

func (r *Router) setupEngine(cfg *config.Config) {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger(logger.NewLogger()))
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	engine.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")

	billingGroup := v1.Group("/billing")
	billingGroup.Use(r.authMiddleware.RequireAuth())
	{
		billingGroup.GET("/status", r.billingHandler.GetStatus)
		billingGroup.GET("/purchases", r.billingHandler.GetPurchaseHistory)
		billingGroup.POST("/checkout", r.billingHandler.CreateCheckout)
		billingGroup.POST("/verify", r.billingHandler.VerifyPurchase)
		billingGroup.POST("/restore", r.billingHandler.RestorePurchases)
		billingGroup.POST("/cancel", r.billingHandler.CancelSubscription)
		billingGroup.POST("/uncancel", r.billingHandler.UncancelSubscription)
		billingGroup.POST("/authorize", r.billingHandler.Authorize)
		billingGroup.POST("/usage", r.billingHandler.RecordUsage)
	}

	v1.POST("/webhooks/stripe", r.webhookHandler.HandleStripe)

	internalGroup := v1.Group("/internal")
	internalGroup.Use(r.internalMiddleware.RequireInternalToken())
	{
		internalGroup.POST("/trial", r.internalHandler.GrantTrial)
		internalGroup.POST("/usage/reset", r.internalHandler.ResetUsage)
	}

	r.engine = engine
}

// Engine returns the configured gin engine.
func (r *Router) Engine() http.Handler {
	return r.engine
}

// productPlansFromConfig converts configured product mappings to domain
// plans, merging card-payment price ids and store product ids.
func productPlansFromConfig(cfg *config.Config) map[string]subscription.Plan {
	out := make(map[string]subscription.Plan, len(cfg.Billing.PricePlans)+len(cfg.IAP.ProductPlans))
	for id, plan := range cfg.Billing.PricePlans {
		out[id] = subscription.Plan(plan)
	}
	for id, plan := range cfg.IAP.ProductPlans {
		out[id] = subscription.Plan(plan)
	}
	return out
}
