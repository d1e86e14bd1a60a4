package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pay-chain.backend/internal/domain/entities"
	domainerrors "pay-chain.backend/internal/domain/errors"
	"pay-chain.backend/internal/interfaces/http/middleware"
	"pay-chain.backend/internal/interfaces/http/response"
	"pay-chain.backend/internal/usecases"
)

// AccountHandler handles the authenticated account endpoints
type AccountHandler struct {
	accountUsecase *usecases.AccountUsecase
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountUsecase *usecases.AccountUsecase) *AccountHandler {
	return &AccountHandler{
		accountUsecase: accountUsecase,
	}
}

// Me returns the authenticated account's profile
// GET /api/v1/account/me
func (h *AccountHandler) Me(c *gin.Context) {
	email, ok := middleware.GetAccountEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	profile, err := h.accountUsecase.Profile(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// RequestDeletion issues a deletion confirmation code
// POST /api/v1/account/delete/request
func (h *AccountHandler) RequestDeletion(c *gin.Context) {
	email, ok := middleware.GetAccountEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.accountUsecase.RequestDeletion(c.Request.Context(), email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Deletion code sent. Please check your email.", nil)
}

// ConfirmDeletion consumes a deletion code and schedules the account
// for deletion
// POST /api/v1/account/delete/confirm
func (h *AccountHandler) ConfirmDeletion(c *gin.Context) {
	email, ok := middleware.GetAccountEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return
	}

	var input entities.ConfirmDeletionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.accountUsecase.ConfirmDeletion(c.Request.Context(), email, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Account scheduled for deletion", nil)
}
