package router

import (
	"bioAffiliate/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupPartnerRoutes(api *echo.Group, handler *rest.PartnerHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	partners := api.Group("/partners", authRequired)

	partners.GET("", handler.GetAllPartners)
	partners.GET("/:id", handler.GetPartnerByID)
	partners.POST("", handler.CreatePartner, adminOnly)
	partners.PUT("/:id", handler.UpdatePartner, adminOnly)
	partners.PATCH("/:id/status", handler.UpdatePartnerStatus, adminOnly)
	partners.DELETE("/:id", handler.DeletePartner, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products", authRequired)

	products.GET("", handler.GetAllProducts)
	products.GET("/:id", handler.GetProductByID)
	products.POST("", handler.CreateProduct, adminOnly)
	products.PUT("/:id", handler.UpdateProduct, adminOnly)
	products.DELETE("/:id", handler.DeleteProduct, adminOnly)
}

func SetupLinkRoutes(api *echo.Group, handler *rest.LinkHandler, authRequired echo.MiddlewareFunc) {
	links := api.Group("/links", authRequired)

	links.POST("", handler.CreateLink)
	links.GET("", handler.GetLinks)
	links.GET("/:id", handler.GetLinkByID)
	links.PATCH("/:id/status", handler.UpdateLinkStatus)
	links.DELETE("/:id", handler.DeleteLink)
	links.GET("/:id/clicks", handler.GetLinkClicks)

	api.GET("/clicks", handler.GetPartnerClicks, authRequired)
}

func SetupCampaignRoutes(api *echo.Group, handler *rest.CampaignHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	campaigns := api.Group("/campaigns", authRequired)

	campaigns.GET("", handler.GetAllCampaigns)
	campaigns.GET("/:id", handler.GetCampaignByID)
	campaigns.POST("", handler.CreateCampaign, adminOnly)
	campaigns.PUT("/:id", handler.UpdateCampaign, adminOnly)
	campaigns.POST("/:id/cancel", handler.CancelCampaign, adminOnly)
}

func SetupConversionRoutes(api *echo.Group, handler *rest.ConversionHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	conversions := api.Group("/conversions", authRequired)

	conversions.GET("", handler.GetConversions)
	conversions.GET("/:id", handler.GetConversionByID)
	conversions.POST("", handler.CreateConversion, adminOnly)
	conversions.POST("/:id/approve", handler.ApproveConversion, adminOnly)
	conversions.POST("/:id/reject", handler.RejectConversion, adminOnly)
	conversions.POST("/:id/reverse", handler.ReverseConversion, adminOnly)
}

func SetupPayoutRoutes(api *echo.Group, handler *rest.PayoutHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	payouts := api.Group("/payouts", authRequired, adminOnly)

	payouts.POST("", handler.CreatePayout)
	payouts.GET("", handler.GetAllPayouts)
	payouts.GET("/:id", handler.GetPayoutByID)
	payouts.GET("/:id/conversions", handler.GetPayoutConversions)
	payouts.POST("/:id/complete", handler.CompletePayout)
	payouts.POST("/:id/cancel", handler.CancelPayout)
}

func SetupAnalyticsRoutes(api *echo.Group, handler *rest.AnalyticsHandler, authRequired echo.MiddlewareFunc) {
	analytics := api.Group("/analytics", authRequired)

	analytics.GET("/summary", handler.GetSummary)
	analytics.GET("/daily", handler.GetDaily)
	analytics.GET("/top-partners", handler.GetTopPartners)
	analytics.GET("/top-products", handler.GetTopProducts)
}

// SetupPostbackRoutes registers the public ingestion endpoint and the admin
// audit-log view. Networks that cannot send POST bodies use the GET pixel form.
func SetupPostbackRoutes(api *echo.Group, handler *rest.PostbackHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	postback := api.Group("/postback")

	postback.POST("", handler.HandlePostback)
	postback.GET("", handler.HandlePostback)

	api.GET("/postback-logs", handler.GetPostbackLogs, authRequired, adminOnly)
}

// SetupRedirectRoutes registers the short link redirect at the server root so
// issued links stay short.
func SetupRedirectRoutes(e *echo.Echo, handler *rest.RedirectHandler) {
	e.GET("/go/:code", handler.Redirect)
}
