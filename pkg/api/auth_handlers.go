package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"proxedu/pkg/logger"
	"proxedu/pkg/models"
	"proxedu/service"
)

type registerRequest struct {
	FullName string `json:"fullName" binding:"required,notblank"`
	Phone    string `json:"phone" binding:"required,phone"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type verifyRequest struct {
	Code   string `json:"code" binding:"required,notblank"`
	ChatID int64  `json:"chatId" binding:"required"`
}

type checkRequest struct {
	Code string `json:"code" binding:"required,notblank"`
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !bind(c, &req, "Barcha maydonlarni to'ldiring") {
		return
	}

	ticket, err := h.svc.Auth().Register(c.Request.Context(), service.RegisterInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.handleError(c, "register", err)
		return
	}

	ok(c, "Telegram botga o'ting va kodni tasdiqlang", gin.H{
		"telegramCode": ticket.Code,
		"botUrl":       ticket.BotURL,
		"expiresAt":    ticket.ExpiresAt,
	})
}

func (h *Handler) verify(c *gin.Context) {
	var req verifyRequest
	if !bind(c, &req, "Kod va chat ID kerak") {
		return
	}

	res, err := h.svc.Auth().Verify(c.Request.Context(), req.Code, req.ChatID)
	if err != nil {
		h.handleError(c, "verify", err)
		return
	}
	ok(c, "Ro'yxatdan o'tish muvaffaqiyatli yakunlandi", gin.H{
		"token": res.Token,
		"user":  newUserView(res.User),
	})
}

func (h *Handler) check(c *gin.Context) {
	var req checkRequest
	if !bind(c, &req, "Kod kiritilmagan") {
		return
	}

	res, err := h.svc.Auth().Check(c.Request.Context(), req.Code)
	if err != nil {
		h.handleError(c, "check", err)
		return
	}
	ok(c, "Ro'yxatdan o'tish muvaffaqiyatli yakunlandi", gin.H{
		"token": res.Token,
		"user":  newUserView(res.User),
	})
}

func (h *Handler) cleanup(c *gin.Context) {
	removed, err := h.svc.Auth().Cleanup(c.Request.Context())
	if err != nil {
		h.handleError(c, "cleanup", err)
		return
	}
	ok(c, "Eski kodlar tozalandi", gin.H{"removed": removed})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req, "Telefon raqam va parol kerak") {
		return
	}

	res, err := h.svc.Auth().Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		h.handleError(c, "login", err)
		return
	}
	ok(c, "Tizimga kirish muvaffaqiyatli", gin.H{
		"token": res.Token,
		"user":  newUserView(res.User),
	})
}

func (h *Handler) profile(c *gin.Context) {
	user, err := h.svc.Auth().Profile(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		h.handleError(c, "profile", err)
		return
	}
	ok(c, "", gin.H{"user": newUserView(user)})
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bind(c, &req, "Barcha maydonlarni to'ldiring") {
		return
	}

	err := h.svc.Auth().ChangePassword(c.Request.Context(), claimsFrom(c).UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.handleError(c, "change password", err)
		return
	}
	ok(c, "Parol muvaffaqiyatli o'zgartirildi", nil)
}

func (h *Handler) notificationsSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		fail(c, http.StatusUnauthorized, "Token topilmadi")
		return
	}
	claims, err := h.svc.Auth().ParseToken(token)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Noto'g'ri token")
		return
	}
	if claims.Role != models.RoleAdmin {
		fail(c, http.StatusForbidden, "Admin huquqlari kerak")
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request); err != nil {
		h.log.Warning("websocket upgrade failed", logger.Error(err))
	}
}
