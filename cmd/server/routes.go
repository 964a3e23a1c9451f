package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"easy-invoice.backend/internal/interfaces/http/handlers"
	"easy-invoice.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	invoiceHandler    *handlers.InvoiceHandler
	invoiceMeHandler  *handlers.InvoiceMeHandler
	paymentHandler    *handlers.PaymentHandler
	complianceHandler *handlers.ComplianceHandler
	webhookHandler    *handlers.WebhookHandler
	authMiddleware    gin.HandlerFunc
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// OAuth entry points live outside /api/v1 so the redirect URL stays short
	r.GET("/auth/google", d.authHandler.Login)
	r.GET("/auth/google/callback", d.authHandler.Callback)

	// Gateway webhooks (HMAC-verified, not cookie-authenticated)
	r.POST("/webhook", d.webhookHandler.HandleEvent)
	r.POST("/webhook/payment", d.webhookHandler.HandlePayment)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
			auth.POST("/logout", d.authHandler.Logout)
		}

		// Invoice routes (protected)
		invoices := v1.Group("/invoices")
		invoices.Use(d.authMiddleware)
		{
			invoices.POST("", middleware.IdempotencyMiddleware(), d.invoiceHandler.CreateInvoice)
			invoices.GET("", d.invoiceHandler.ListInvoices)
			invoices.GET("/invoiced-to-me", d.invoiceHandler.ListInvoicedToMe)
			invoices.GET("/:id", d.invoiceHandler.GetInvoice)
			invoices.POST("/:id/stop-recurrence", d.invoiceHandler.StopRecurrence)
		}

		// Invoice-me links (mixed: management is protected, resolution is public)
		invoiceMe := v1.Group("/invoice-me")
		{
			invoiceMe.POST("", d.authMiddleware, d.invoiceMeHandler.CreateLink)
			invoiceMe.GET("", d.authMiddleware, d.invoiceMeHandler.ListLinks)
			invoiceMe.DELETE("/:id", d.authMiddleware, d.invoiceMeHandler.DeleteLink)
			invoiceMe.GET("/:id", d.invoiceMeHandler.ResolveLink)
			invoiceMe.POST("/:id/invoices", d.invoiceMeHandler.CreateInvoiceForLink)
		}

		// Public payment page routes, keyed by request ID or payment reference
		v1.GET("/requests/:requestId", d.invoiceHandler.GetRequest)
		v1.GET("/pay/:paymentReference", d.invoiceHandler.GetPayData)
		v1.GET("/pay/:paymentReference/routes", d.paymentHandler.GetRoutes)
		v1.POST("/pay", d.paymentHandler.Pay)
		v1.POST("/payment-intents/:id", d.paymentHandler.SubmitPaymentIntent)

		// Compliance routes (protected)
		compliance := v1.Group("/compliance")
		compliance.Use(d.authMiddleware)
		{
			compliance.POST("", d.complianceHandler.SubmitComplianceInfo)
			compliance.GET("/status", d.complianceHandler.GetComplianceStatus)
			compliance.PATCH("/agreement", d.complianceHandler.UpdateAgreementStatus)
		}

		// Bank account routes (protected)
		paymentDetails := v1.Group("/payment-details")
		paymentDetails.Use(d.authMiddleware)
		{
			paymentDetails.POST("", middleware.IdempotencyMiddleware(), d.complianceHandler.CreatePaymentDetails)
			paymentDetails.GET("", d.complianceHandler.GetPaymentDetails)
			paymentDetails.POST("/:id/allow", middleware.IdempotencyMiddleware(), d.complianceHandler.AllowPaymentDetails)
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key, X-Request-ID")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "easy-invoice-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
