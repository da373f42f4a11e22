package api

import (
	"sort"

	"github.com/gin-gonic/gin"

	"proxedu/pkg/models"
	"proxedu/service"
)

type createUserRequest struct {
	FullName string `json:"fullName" binding:"required,notblank"`
	Phone    string `json:"phone" binding:"required,phone"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Balance  int64  `json:"balance" binding:"gte=0"`
}

type updateUserRequest struct {
	FullName   *string        `json:"fullName"`
	Phone      *string        `json:"phone" binding:"omitempty,phone"`
	Role       *string        `json:"role"`
	Balance    *int64         `json:"balance"`
	Step       *int           `json:"step"`
	TodayScore *int           `json:"todayScore"`
	WeekScores map[string]int `json:"weekScores"`
}

type messageRequest struct {
	ReceiverID int64  `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required,notblank"`
}

func (h *Handler) offlineStudents(c *gin.Context) {
	users, err := h.svc.User().GetOfflineStudents(c.Request.Context())
	if err != nil {
		h.handleError(c, "offline students", err)
		return
	}
	ok(c, "", gin.H{"students": newUserViews(users)})
}

func (h *Handler) adminListUsers(c *gin.Context) {
	users, err := h.svc.User().GetAll(c.Request.Context())
	if err != nil {
		h.handleError(c, "list users", err)
		return
	}
	ok(c, "", gin.H{"users": newUserViews(users)})
}

func (h *Handler) adminCreateUser(c *gin.Context) {
	var req createUserRequest
	if !bind(c, &req, "Barcha maydonlar to'ldirilishi shart") {
		return
	}
	user, err := h.svc.User().Create(c.Request.Context(), service.CreateUserInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
		Balance:  req.Balance,
	})
	if err != nil {
		h.handleError(c, "create user", err)
		return
	}
	created(c, "Foydalanuvchi muvaffaqiyatli qo'shildi", gin.H{"user": newUserView(user)})
}

func (h *Handler) adminUpdateUser(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req updateUserRequest
	if !bind(c, &req, "Noto'g'ri ma'lumot") {
		return
	}

	dates := make([]string, 0, len(req.WeekScores))
	for d := range req.WeekScores {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	week := make([]models.DailyScore, 0, len(dates))
	for _, d := range dates {
		week = append(week, models.DailyScore{Date: d, Score: req.WeekScores[d]})
	}

	user, err := h.svc.User().Update(c.Request.Context(), id, service.UpdateUserInput{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Role:       req.Role,
		Balance:    req.Balance,
		Step:       req.Step,
		TodayScore: req.TodayScore,
		WeekScores: week,
	})
	if err != nil {
		h.handleError(c, "update user", err)
		return
	}
	ok(c, "Foydalanuvchi ma'lumotlari yangilandi", gin.H{"user": newUserView(user)})
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.User().Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, "delete user", err)
		return
	}
	ok(c, "Foydalanuvchi o'chirildi", nil)
}

func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.svc.Dashboard().Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, "admin stats", err)
		return
	}
	ok(c, "", gin.H{"stats": stats})
}

func (h *Handler) adminListMessages(c *gin.Context) {
	messages, err := h.svc.Message().List(c.Request.Context())
	if err != nil {
		h.handleError(c, "list messages", err)
		return
	}
	ok(c, "", gin.H{"messages": messages})
}

func (h *Handler) adminSendMessage(c *gin.Context) {
	var req messageRequest
	if !bind(c, &req, "Qabul qiluvchi va xabar matni kerak") {
		return
	}
	msg, err := h.svc.Message().Send(c.Request.Context(), claimsFrom(c).UserID, req.ReceiverID, req.Content)
	if err != nil {
		h.handleError(c, "send message", err)
		return
	}
	created(c, "Xabar yuborildi", gin.H{"data": msg})
}

func (h *Handler) adminReadMessage(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	msg, err := h.svc.Message().MarkRead(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, "read message", err)
		return
	}
	ok(c, "Xabar o'qildi", gin.H{"data": msg})
}

func (h *Handler) adminDeleteMessage(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Message().Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, "delete message", err)
		return
	}
	ok(c, "Xabar o'chirildi", nil)
}

func (h *Handler) adminTestNotification(c *gin.Context) {
	h.svc.Notification().Notify(c.Request.Context(), "Test xabarnoma", "Bu test xabarnoma")
	ok(c, "Test xabarnoma yuborildi", nil)
}

func (h *Handler) adminReadNotification(c *gin.Context) {
	h.publishNotificationEvent(c, models.EventNotificationRead)
}

func (h *Handler) adminDeleteNotification(c *gin.Context) {
	h.publishNotificationEvent(c, models.EventNotificationDelete)
}

// publishNotificationEvent relays read/delete so every open dashboard stays in sync.
func (h *Handler) publishNotificationEvent(c *gin.Context, eventType string) {
	event := models.NotificationEvent{Type: eventType, ID: c.Param("id")}
	if err := h.svc.Notification().Publish(c.Request.Context(), event); err != nil {
		h.handleError(c, "publish notification event", err)
		return
	}
	ok(c, "", nil)
}
