package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/auth"
	"github.com/jackmilless/jackmilless-pep-spring-project/internal/config"
	"github.com/jackmilless/jackmilless-pep-spring-project/internal/service/messages"
)

// NewServer builds the HTTP server exposing the account and message API.
func NewServer(accounts *auth.Service, msgs *messages.Service, cfg *config.Config, logger *zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(accounts, msgs, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(accounts *auth.Service, msgs *messages.Service, logger *zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(accounts, logger)
	messageHandlers := NewMessageHandlers(msgs, logger)

	router.GET("/health", healthHandler)

	router.POST("/register", api.Register)
	router.POST("/login", api.Login)

	router.POST("/messages", messageHandlers.CreateMessage)
	router.GET("/messages", messageHandlers.ListMessages)
	router.GET("/messages/:messageId", messageHandlers.GetMessage)
	router.DELETE("/messages/:messageId", messageHandlers.DeleteMessage)
	router.PATCH("/messages/:messageId", messageHandlers.UpdateMessage)
	router.GET("/accounts/:accountId/messages", messageHandlers.ListAccountMessages)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
