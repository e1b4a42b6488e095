package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loihd98/web-ecommerce-sub000/internal/adapter/http/middleware"
	"github.com/loihd98/web-ecommerce-sub000/internal/logging"
)

func NewRouter(oh *OrderHandler, ch *CatalogHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	v1 := r.Group("/v1")
	{
		v1.GET("/products", ch.ListProducts)
		v1.GET("/products/:id", ch.GetProduct)

		v1.POST("/orders", authz.Require("orders.write"), oh.CreateOrder)
		v1.GET("/orders", authz.Require("orders.read"), oh.ListOrders)
		// register before /orders/:id so "stats" is not taken as an order id
		v1.GET("/orders/stats", authz.Require("orders.manage"), oh.Stats)
		v1.GET("/orders/:id", authz.Require("orders.read"), oh.GetOrderByID)
		v1.GET("/users/:id/orders", authz.Require("orders.read"), oh.ListUserOrders)

		v1.PATCH("/orders/:id/status", authz.Require("orders.manage"), oh.UpdateStatus)
		v1.PATCH("/orders/:id/payment-status", authz.Require("orders.manage"), oh.UpdatePaymentStatus)
		v1.POST("/orders/:id/cancel", authz.Require("orders.write"), oh.CancelOrder)
	}

	return r
}
