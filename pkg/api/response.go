package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"proxedu/pkg/logger"
	"proxedu/service"
)

func reply(c *gin.Context, status int, success bool, message string, extra gin.H) {
	body := gin.H{"success": success}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func ok(c *gin.Context, message string, extra gin.H) {
	reply(c, http.StatusOK, true, message, extra)
}

func created(c *gin.Context, message string, extra gin.H) {
	reply(c, http.StatusCreated, true, message, extra)
}

func fail(c *gin.Context, status int, message string) {
	reply(c, status, false, message, nil)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

var errorReplies = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrCodeNotFound, http.StatusOK, "Kod noto'g'ri yoki muddati tugagan"},
	{service.ErrNotVerified, http.StatusOK, "Kod hali Telegramda tasdiqlanmagan"},
	{service.ErrDuplicatePhone, http.StatusBadRequest, "Bu telefon raqam allaqachon ro'yxatdan o'tgan"},
	{service.ErrInvalidRole, http.StatusBadRequest, "Noto'g'ri rol"},
	{service.ErrInvalidCredentials, http.StatusBadRequest, "Telefon raqam yoki parol noto'g'ri"},
	{service.ErrWrongPassword, http.StatusBadRequest, "Joriy parol noto'g'ri"},
	{service.ErrUserNotFound, http.StatusNotFound, "Foydalanuvchi topilmadi"},
	{service.ErrCourseNotFound, http.StatusNotFound, "Kurs topilmadi"},
	{service.ErrModuleNotFound, http.StatusNotFound, "Modul topilmadi"},
	{service.ErrLessonNotFound, http.StatusNotFound, "Dars topilmadi"},
	{service.ErrMessageNotFound, http.StatusNotFound, "Xabar topilmadi"},
	{service.ErrCourseUnavailable, http.StatusBadRequest, "Bu kurs hozircha mavjud emas"},
	{service.ErrAlreadyEnrolled, http.StatusBadRequest, "Siz allaqachon bu kursga a'zo bo'lgansiz"},
	{service.ErrAmountTooSmall, http.StatusBadRequest, "To'lov miqdori kamida 1000 so'm bo'lishi kerak"},
	{service.ErrInvalidPaymentMethod, http.StatusBadRequest, "Noto'g'ri to'lov usuli"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "Noto'g'ri holat tanlandi"},
	{service.ErrInvalidLevel, http.StatusBadRequest, "Noto'g'ri daraja tanlandi"},
	{service.ErrInvalidBalance, http.StatusBadRequest, "Balans manfiy bo'lishi mumkin emas"},
	{service.ErrInvalidPrice, http.StatusBadRequest, "Narx manfiy bo'lishi mumkin emas"},
}

// handleError maps service errors to a status and a user facing message.
// Anything unknown is logged and reported as a generic server error.
func (h *Handler) handleError(c *gin.Context, op string, err error) {
	var be *service.BalanceError
	if errors.As(err, &be) {
		reply(c, http.StatusBadRequest, false, "Mablag' yetarli emas", gin.H{
			"required": be.Required,
			"current":  be.Current,
		})
		return
	}
	for _, e := range errorReplies {
		if errors.Is(err, e.err) {
			fail(c, e.status, e.message)
			return
		}
	}
	h.log.Error(op+" failed", logger.Error(err))
	fail(c, http.StatusInternalServerError, "Server xatosi")
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "Noto'g'ri ID")
		return 0, false
	}
	return id, true
}
