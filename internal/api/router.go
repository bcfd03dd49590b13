package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/forumforge/reputation/internal/karma"
	"github.com/forumforge/reputation/internal/trust"
	"github.com/forumforge/reputation/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler    *JSONRPCHandler
	ledger     *karma.Ledger
	reconciler *karma.Reconciler
	trust      *trust.Service
	logger     *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(ledger *karma.Ledger, reconciler *karma.Reconciler, trustService *trust.Service) *Router {
	handler := NewJSONRPCHandler()
	router := &Router{
		handler:    handler,
		ledger:     ledger,
		reconciler: reconciler,
		trust:      trustService,
		logger:     logging.GetLogger().With(zap.String("component", "api-router")),
	}

	// Register all API methods
	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// JSON-RPC endpoint
	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	// Reputation ledger API
	reputation := NewReputationAPI(r.ledger, r.reconciler)

	r.handler.RegisterMethod("rep_api.cast_vote", reputation.CastVote)
	r.handler.RegisterMethod("rep_api.get_vote", reputation.GetVote)
	r.handler.RegisterMethod("rep_api.record_content_created", reputation.RecordContentCreated)
	r.handler.RegisterMethod("rep_api.get_user_karma", reputation.GetUserKarma)
	r.handler.RegisterMethod("rep_api.get_community_reputation", reputation.GetCommunityReputation)
	r.handler.RegisterMethod("rep_api.list_community_reputations", reputation.ListCommunityReputations)
	r.handler.RegisterMethod("rep_api.recompute_user_karma", reputation.RecomputeUserKarma)
	r.handler.RegisterMethod("rep_api.recompute_community_reputation", reputation.RecomputeCommunityReputation)

	// Trust level API
	trustAPI := NewTrustAPI(r.trust)

	r.handler.RegisterMethod("trust_api.get_trust_level", trustAPI.GetTrustLevel)
	r.handler.RegisterMethod("trust_api.get_breakdown", trustAPI.GetBreakdown)
	r.handler.RegisterMethod("trust_api.recompute", trustAPI.Recompute)
	r.handler.RegisterMethod("trust_api.recompute_all", trustAPI.RecomputeAll)
	r.handler.RegisterMethod("trust_api.leaderboard", trustAPI.Leaderboard)
	r.handler.RegisterMethod("trust_api.by_level", trustAPI.ByLevel)
	r.handler.RegisterMethod("trust_api.statistics", trustAPI.Statistics)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "reputation-engine",
	})
}
