package api

import (
	"github.com/gin-gonic/gin"
)

type paymentRequest struct {
	Amount        int64  `json:"amount" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	Description   string `json:"description"`
}

func (h *Handler) createPayment(c *gin.Context) {
	var req paymentRequest
	if !bind(c, &req, "To'lov miqdori va usuli kerak") {
		return
	}
	payment, balance, err := h.svc.Payment().TopUp(c.Request.Context(), claimsFrom(c).UserID, req.Amount, req.PaymentMethod, req.Description)
	if err != nil {
		h.handleError(c, "create payment", err)
		return
	}
	ok(c, "To'lov muvaffaqiyatli amalga oshirildi", gin.H{
		"payment":    payment,
		"newBalance": balance,
	})
}

func (h *Handler) paymentHistory(c *gin.Context) {
	payments, err := h.svc.Payment().History(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		h.handleError(c, "payment history", err)
		return
	}
	ok(c, "", gin.H{"payments": payments})
}

func (h *Handler) paymentStats(c *gin.Context) {
	stats, err := h.svc.Payment().Stats(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		h.handleError(c, "payment stats", err)
		return
	}
	ok(c, "", gin.H{"stats": stats})
}

func (h *Handler) adminPayments(c *gin.Context) {
	payments, err := h.svc.Payment().All(c.Request.Context())
	if err != nil {
		h.handleError(c, "admin payments", err)
		return
	}
	ok(c, "", gin.H{"payments": payments})
}
