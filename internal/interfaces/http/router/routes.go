package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/interfaces/http/handler"
	"github.com/pentol/backend/internal/interfaces/http/middleware"
)

// Handlers are the endpoint handlers mounted by RegisterAPI
type Handlers struct {
	System   *handler.SystemHandler
	Identity *handler.IdentityHandler
	Harvest  *handler.HarvestHandler
	Spb      *handler.SpbHandler
	Report   *handler.ReportHandler
}

// Guards are the request middleware RegisterAPI places around routes.
// Any of them may be nil.
type Guards struct {
	// Authenticate validates the bearer token
	Authenticate gin.HandlerFunc
	// ResolveProfile loads the caller's profile after authentication
	ResolveProfile gin.HandlerFunc
	// SpanAttributes tags the server span once the profile is known
	SpanAttributes gin.HandlerFunc
	// Idempotency rejects replayed state changes
	Idempotency gin.HandlerFunc
	// BodyLimit bounds JSON bodies; PhotoBodyLimit bounds photo uploads
	BodyLimit      gin.HandlerFunc
	PhotoBodyLimit gin.HandlerFunc
	// ExportRateLimit throttles report exports per caller
	ExportRateLimit gin.HandlerFunc
}

// RegisterAPI mounts /health and every versioned route on engine
func RegisterAPI(engine *gin.Engine, h Handlers, g Guards) {
	engine.GET("/health", h.System.Health)

	api := NewGroup(APIPrefix, g.Authenticate, g.ResolveProfile, g.SpanAttributes)

	api.Child("/system").GET("/info", h.System.GetSystemInfo)
	api.GET("/me", h.Identity.Me)

	org := api.Child("/org")
	org.GET("/divisi", h.Identity.ListDivisi)
	org.GET("/divisi/:id/gangs", h.Identity.ListGangs)
	org.GET("/divisi/:id/bloks", h.Identity.ListBloks)
	org.GET("/bloks/:id/tph", h.Identity.ListTPH)
	org.GET("/gangs/:id/pemanen", h.Identity.ListPemanen)

	canInput := middleware.RequireAnyAction(identity.ActionInputHarvest)
	canApprove := middleware.RequireAnyAction(identity.ActionApprove)

	harvest := api.Child("/harvest", g.BodyLimit)
	harvest.POST("/inputs", canInput, h.Harvest.SubmitInput)
	harvest.GET("/records/:id",
		middleware.RequireAnyAction(identity.ActionInputHarvest, identity.ActionApprove, identity.ActionViewReports),
		h.Harvest.GetRecord)
	harvest.POST("/records/:id/submit", canInput, h.Harvest.Submit)
	harvest.POST("/records/:id/approve", canApprove, g.Idempotency, h.Harvest.Approve)
	harvest.POST("/records/:id/reject", canApprove, g.Idempotency, h.Harvest.Reject)
	harvest.POST("/records/bulk-approve", canApprove, g.Idempotency, h.Harvest.BulkApprove)
	harvest.POST("/records/bulk-reject", canApprove, g.Idempotency, h.Harvest.BulkReject)
	harvest.GET("/approvals/pending", canApprove, h.Harvest.PendingQueue)
	harvest.GET("/restan",
		middleware.RequireAnyAction(identity.ActionCreateSpb, identity.ActionViewReports),
		h.Spb.ListRestan)

	// photos take a larger body than the JSON routes
	api.Child("/harvest", g.PhotoBodyLimit).POST("/photos", canInput, h.Harvest.UploadPhoto)

	canReadSpb := middleware.RequireAnyAction(identity.ActionCreateSpb, identity.ActionShipSpb, identity.ActionViewReports)
	spb := api.Child("/spb", g.BodyLimit)
	spb.POST("", middleware.RequireAnyAction(identity.ActionCreateSpb), g.Idempotency, h.Spb.Create)
	spb.GET("", canReadSpb, h.Spb.List)
	spb.GET("/:id", canReadSpb, h.Spb.Get)
	spb.POST("/:id/ship", middleware.RequireAnyAction(identity.ActionShipSpb), g.Idempotency, h.Spb.Ship)

	reports := api.Child("/reports", middleware.RequireAnyAction(identity.ActionViewReports))
	reports.GET("/kpi", h.Report.KPI)
	reports.GET("/gang-performance", h.Report.GangPerformance)
	reports.GET("/records", h.Report.Records)
	reports.GET("/summary", h.Report.Summary)
	reports.GET("/export",
		middleware.RequireAnyAction(identity.ActionExportReports),
		g.ExportRateLimit,
		h.Report.Export)

	api.Mount(engine)
}
