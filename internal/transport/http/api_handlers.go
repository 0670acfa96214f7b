package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/auth"
	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store"
)

// APIHandlers provides HTTP handlers for account endpoints.
type APIHandlers struct {
	accounts *auth.Service
	log      *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(accounts *auth.Service, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		accounts: accounts,
		log:      logger,
	}
}

// AccountRequest represents the register and login request body.
type AccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	AccountID int64  `json:"accountId"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func accountResponse(a *store.Account) AccountResponse {
	return AccountResponse{
		AccountID: a.ID,
		Username:  a.Username,
		Password:  a.Password,
	}
}

// Register handles account registration.
// POST /register
func (h *APIHandlers) Register(c *gin.Context) {
	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.Status(http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			h.log.Debug().Str("username", req.Username).Msg("username already taken")
			c.Status(http.StatusConflict)
		case errors.Is(err, auth.ErrInvalidAccount):
			h.log.Debug().Err(err).Str("username", req.Username).Msg("rejected registration")
			c.Status(http.StatusBadRequest)
		default:
			h.log.Error().Err(err).Str("username", req.Username).Msg("failed to register account")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	h.log.Info().Str("username", account.Username).Int64("account_id", account.ID).Msg("account registered")
	c.JSON(http.StatusOK, accountResponse(account))
}

// Login handles account login.
// POST /login
func (h *APIHandlers) Login(c *gin.Context) {
	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid login request")
		c.Status(http.StatusBadRequest)
		return
	}

	account, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.Status(http.StatusUnauthorized)
			return
		}
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to login account")
		c.Status(http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("username", account.Username).Msg("account logged in")
	c.JSON(http.StatusOK, accountResponse(account))
}
