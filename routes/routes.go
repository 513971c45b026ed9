package routes

import (
	"github.com/fixhub/fixhub-backend/controllers"
	"github.com/fixhub/fixhub-backend/middleware"
	"github.com/fixhub/fixhub-backend/models"
	"github.com/fixhub/fixhub-backend/services"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth       *controllers.AuthController
	WorkOrders *controllers.WorkOrderController
	Payments   *controllers.PaymentController
	Webhooks   *controllers.WebhookController
	Products   *controllers.ProductController
	Tickets    *controllers.TicketController
	Uploads    *controllers.UploadController
	Admin      *controllers.AdminController
}

// Register mounts every route group. Handlers declare their required roles
// here, in one place.
func Register(r *gin.Engine, tokens *services.TokenService, ctrl Controllers) {
	staff := []string{models.RoleTechnician, models.RoleAdmin}

	// Provider webhooks: no auth, signature-verified inside the reconciler.
	r.POST("/webhooks/:provider", ctrl.Webhooks.HandleProviderWebhook)

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit())
	auth.POST("/register", ctrl.Auth.Register)
	auth.POST("/login", ctrl.Auth.Login)
	auth.POST("/refresh", ctrl.Auth.Refresh)

	// Public catalog reads.
	r.GET("/products", ctrl.Products.List)
	r.GET("/products/:id", ctrl.Products.Get)

	authed := r.Group("/")
	authed.Use(middleware.Authenticate(tokens))
	{
		authed.GET("/auth/me", ctrl.Auth.Me)

		authed.POST("/work-orders", ctrl.WorkOrders.Create)
		authed.GET("/work-orders", ctrl.WorkOrders.ListMine)
		authed.GET("/work-orders/:id", ctrl.WorkOrders.Get)

		authed.POST("/payments/initiate", ctrl.Payments.InitiatePayment)
		authed.GET("/payments", ctrl.Payments.ListMyPayments)
		authed.GET("/payments/verify/:reference", ctrl.Payments.VerifyPayment)

		authed.POST("/tickets", ctrl.Tickets.Create)
		authed.GET("/tickets", ctrl.Tickets.ListMine)
		authed.GET("/tickets/:id", ctrl.Tickets.Get)
		authed.POST("/tickets/:id/replies", ctrl.Tickets.Reply)

		authed.POST("/attachments/presign", ctrl.Uploads.PresignAttachment)
		authed.GET("/attachments/download", ctrl.Uploads.DownloadAttachment)
	}

	staffRoutes := r.Group("/staff")
	staffRoutes.Use(middleware.Authenticate(tokens), middleware.RequireRole(staff...))
	{
		staffRoutes.GET("/work-orders", ctrl.WorkOrders.ListAll)
		staffRoutes.PATCH("/work-orders/:id/status", ctrl.WorkOrders.UpdateStatus)
		staffRoutes.PATCH("/work-orders/:id/quote", ctrl.WorkOrders.SetQuote)
		staffRoutes.GET("/tickets", ctrl.Tickets.ListAll)
		staffRoutes.POST("/tickets/:id/close", ctrl.Tickets.Close)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.Authenticate(tokens), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", ctrl.Admin.ListUsers)
		admin.PATCH("/users/:id/role", ctrl.Admin.UpdateUserRole)
		admin.GET("/dashboard", ctrl.Admin.Dashboard)
		admin.GET("/payments", ctrl.Payments.ListAllPayments)
		admin.POST("/payments/:id/refund", ctrl.Payments.InitiateRefund)
		admin.PATCH("/work-orders/:id/technician", ctrl.WorkOrders.AssignTechnician)

		admin.POST("/products", ctrl.Products.Create)
		admin.PUT("/products/:id", ctrl.Products.Update)
		admin.DELETE("/products/:id", ctrl.Products.Delete)
	}
}
