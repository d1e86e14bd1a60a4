package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pay-chain.backend/internal/domain/entities"
	domainerrors "pay-chain.backend/internal/domain/errors"
	"pay-chain.backend/internal/interfaces/http/middleware"
	"pay-chain.backend/internal/interfaces/http/response"
	"pay-chain.backend/internal/usecases"
	"pay-chain.backend/pkg/utils"
)

// AdminHandler handles administrative endpoints
type AdminHandler struct {
	accountUsecase *usecases.AccountUsecase
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accountUsecase *usecases.AccountUsecase) *AdminHandler {
	return &AdminHandler{
		accountUsecase: accountUsecase,
	}
}

// requireAdmin resolves the caller and checks the ADMIN role. The role
// is read from the store, not the token, so a demotion takes effect on
// the next request.
func (h *AdminHandler) requireAdmin(c *gin.Context) bool {
	email, ok := middleware.GetAccountEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Authentication required"))
		return false
	}

	account, err := h.accountUsecase.GetByEmail(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return false
	}

	if account.Role != entities.RoleAdmin {
		response.Error(c, domainerrors.Forbidden("Admin access required"))
		return false
	}
	return true
}

// ListAccounts returns a paginated account listing
// GET /api/v1/admin/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("email")

	accounts, meta, err := h.accountUsecase.ListAccounts(c.Request.Context(), search, utils.GetPaginationParams(page, limit))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Accounts retrieved", gin.H{
		"accounts":   accounts,
		"pagination": meta,
	})
}
