// internal/interfaces/http/handlers/voucher.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
	"github.com/your-org/storefront-backend/internal/domain/voucher"
)

// ApplyVoucherRequest is the body of POST /cart/voucher
type ApplyVoucherRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// VoucherHandler handles voucher endpoints on the session cart
type VoucherHandler struct {
	carts          *Carts
	voucherService *voucher.Service
	estimator      *shipping.Estimator
	logger         *logrus.Logger
}

// NewVoucherHandler creates a new voucher handler
func NewVoucherHandler(carts *Carts, voucherService *voucher.Service, estimator *shipping.Estimator, logger *logrus.Logger) *VoucherHandler {
	return &VoucherHandler{
		carts:          carts,
		voucherService: voucherService,
		estimator:      estimator,
		logger:         logger,
	}
}

// ApplyVoucher handles POST /cart/voucher
func (h *VoucherHandler) ApplyVoucher(c *gin.Context) {
	var req ApplyVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if _, err := h.voucherService.Apply(c.Request.Context(), sc, req.Code); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCart(c, h.logger, h.estimator, sc, "Voucher applied successfully")
}

// RemoveVoucher handles DELETE /cart/voucher
func (h *VoucherHandler) RemoveVoucher(c *gin.Context) {
	sc, err := h.carts.load(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.voucherService.Remove(c.Request.Context(), sc); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondCart(c, h.logger, h.estimator, sc, "Voucher removed successfully")
}
