package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/audit"
	"github.com/opskitchen/resto-ops/controllers"
	"github.com/opskitchen/resto-ops/events"
	"github.com/opskitchen/resto-ops/middlewares"
	"github.com/opskitchen/resto-ops/rbac"
	"github.com/opskitchen/resto-ops/services"
)

// Deps bundles the explicitly constructed components the router wires into
// controllers. Nothing here is a process-wide singleton.
type Deps struct {
	DB           *gorm.DB
	Audit        *audit.Sink
	Hub          *events.Hub
	StateMachine *services.TableStateMachine
	EightySix    *services.EightySixEngine
	Suggestions  *services.SuggestionEngine
}

// NewDeps builds the default component graph for db.
func NewDeps(db *gorm.DB, suggestionCfg services.SuggestionConfig) *Deps {
	sink := audit.NewSink(db)
	hub := events.NewHub()
	return &Deps{
		DB:           db,
		Audit:        sink,
		Hub:          hub,
		StateMachine: services.NewTableStateMachine(db, sink, hub),
		EightySix:    services.NewEightySixEngine(db, sink, hub),
		Suggestions:  services.NewSuggestionEngine(db, hub, suggestionCfg),
	}
}

func SetupRouter(deps *Deps) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(deps.DB)
	tableCtrl := controllers.NewTableController(deps.DB, deps.StateMachine)
	menuCtrl := controllers.NewMenuController(deps.DB)
	inventoryCtrl := controllers.NewInventoryController(deps.DB, deps.Audit)
	eightySixCtrl := controllers.NewEightySixController(deps.EightySix)
	suggestionCtrl := controllers.NewSuggestionController(deps.Suggestions, deps.StateMachine)
	reservationCtrl := controllers.NewReservationController(deps.DB)
	posCtrl := controllers.NewPOSController(deps.DB)
	auditCtrl := controllers.NewAuditController(deps.Audit)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Credential endpoints, throttled hard.
	strict := middlewares.NewStrictRateLimiter()
	r.POST("/register", strict, userCtrl.Register)
	r.POST("/login", strict, userCtrl.Login)

	// Live event stream for staff dashboards.
	r.GET("/ws/events", deps.Hub.Handler)

	// Short-TTL cache on the hot public read endpoints.
	readCache := cache.New(5*time.Second, time.Minute)
	r.GET("/menus", middlewares.Cache(readCache, 5*time.Second), menuCtrl.GetAllMenuItems)

	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)

		// Tables and the state machine.
		auth.GET("/tables",
			middlewares.RequirePermission(rbac.PermViewTables), tableCtrl.GetAllTables)
		auth.POST("/tables",
			middlewares.RequirePermission(rbac.PermUpdateTableState), tableCtrl.CreateTable)
		auth.GET("/tables/:table_id",
			middlewares.RequirePermission(rbac.PermViewTables), tableCtrl.GetTableByID)
		auth.PUT("/tables/:table_id/state",
			middlewares.RequirePermission(rbac.PermUpdateTableState), tableCtrl.UpdateTableState)
		auth.GET("/tables/:table_id/history",
			middlewares.RequirePermission(rbac.PermViewTables), tableCtrl.GetTableHistory)

		// Menu catalog.
		auth.POST("/menus",
			middlewares.RequirePermission(rbac.PermManageMenu), menuCtrl.CreateMenuItem)
		auth.GET("/menus/:menu_id",
			middlewares.RequirePermission(rbac.PermViewMenu), menuCtrl.GetMenuItemByID)
		auth.POST("/menus/:menu_id/ingredients",
			middlewares.RequirePermission(rbac.PermManageMenu), menuCtrl.AddIngredient)

		// Inventory.
		auth.GET("/inventory",
			middlewares.RequirePermission(rbac.PermManageInventory), inventoryCtrl.GetAllItems)
		auth.POST("/inventory",
			middlewares.RequirePermission(rbac.PermManageInventory), inventoryCtrl.CreateItem)
		auth.POST("/inventory/:item_id/adjust",
			middlewares.RequirePermission(rbac.PermManageInventory), inventoryCtrl.AdjustQuantity)

		// 86 engine.
		auth.POST("/inventory/86-engine/scan",
			middlewares.RequirePermission(rbac.PermManage86Events), eightySixCtrl.Scan)
		auth.GET("/inventory/86-engine/pending",
			middlewares.RequirePermission(rbac.PermManage86Events), eightySixCtrl.Pending)
		auth.POST("/inventory/86-engine/:suggestion_id/confirm",
			middlewares.RequirePermission(rbac.PermManage86Events), eightySixCtrl.Confirm)
		auth.POST("/inventory/86-engine/:suggestion_id/reject",
			middlewares.RequirePermission(rbac.PermManage86Events), eightySixCtrl.Reject)
		auth.POST("/inventory/86-events/:event_id/resolve",
			middlewares.RequirePermission(rbac.PermManage86Events), eightySixCtrl.Resolve)
		auth.GET("/inventory/86-engine/can-order/:menu_id",
			middlewares.RequirePermission(rbac.PermViewMenu), eightySixCtrl.CanOrder)

		// Suggestion engine.
		auth.POST("/ai/suggestions/generate/:table_id",
			middlewares.RequirePermission(rbac.PermViewTables), suggestionCtrl.Generate)
		auth.GET("/ai/suggestions/pending",
			middlewares.RequirePermission(rbac.PermUpdateTableState), suggestionCtrl.Pending)
		auth.POST("/ai/suggestions/:suggestion_id/review",
			middlewares.RequirePermission(rbac.PermUpdateTableState), suggestionCtrl.Review)

		// Reservations.
		auth.POST("/reservations",
			middlewares.RequirePermission(rbac.PermCreateReservation), reservationCtrl.CreateReservation)
		auth.GET("/reservations",
			middlewares.RequirePermission(rbac.PermViewReservations), reservationCtrl.GetAllReservations)
		auth.POST("/reservations/:reservation_id/arrive",
			middlewares.RequirePermission(rbac.PermUpdateReservation), reservationCtrl.MarkArrived)

		// POS signal ingestion.
		auth.POST("/pos/events",
			middlewares.RequirePermission(rbac.PermUpdateTableState), posCtrl.IngestEvent)

		// Audit trail.
		auth.GET("/audit-logs",
			middlewares.RequirePermission(rbac.PermViewAuditLog), auditCtrl.GetAuditLogs)
	}

	return r
}
