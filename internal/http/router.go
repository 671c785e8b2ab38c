package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/quantum-web3-demo/internal/metrics"
)

var defaultAllowOrigins = []string{"http://localhost:3000"}

func NewRouter(h *Handler, origins []string) *gin.Engine {
	r := gin.Default()

	allowed := allowOrigins(origins)
	if len(allowed) == 0 {
		allowed = defaultAllowOrigins
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/metrics", loopbackOnly(), gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(loopbackOnly())
	{
		api.GET("/health", h.Health)
		api.GET("/status", h.Status)
		api.GET("/status/ws", h.StatusStream(newUpgrader(allowed)))
		api.GET("/chains", h.Chains)
		api.GET("/token", h.Token)
		api.GET("/account/qr", h.AccountQR)

		api.POST("/sign/message", h.SignMessage)
		api.POST("/sign/typed", h.SignTyped)
		api.POST("/sign/typed/v4", h.SignTypedV4)

		api.POST("/send/eth", h.SendEth)
		api.POST("/buy/token", h.BuyToken)
		api.POST("/send/token", h.SendToken)
	}

	return r
}
