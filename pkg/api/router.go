package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"proxedu/config"
	"proxedu/pkg/logger"
	"proxedu/pkg/metrics"
	"proxedu/pkg/notify"
	"proxedu/service"
)

type Handler struct {
	cfg config.Config
	svc service.IServiceManager
	hub *notify.Hub
	log logger.ILogger
}

func NewRouter(cfg config.Config, svc service.IServiceManager, hub *notify.Hub, log logger.ILogger) *gin.Engine {
	registerValidators()

	h := &Handler{cfg: cfg, svc: svc, hub: hub, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.requestLogger())
	r.Use(cors())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/ws/admin-notifications", h.notificationsSocket)

	api := r.Group("/api")
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

	tg := api.Group("/auth/telegram")
	{
		tg.POST("/register", h.register)
		tg.POST("/verify", h.botSecret(), h.verify)
		tg.POST("/check", h.check)
		tg.POST("/cleanup", h.cleanup)
	}

	api.POST("/auth/login", h.login)
	api.POST("/auth/change-password", h.authRequired(), h.changePassword)
	api.GET("/user/profile", h.authRequired(), h.profile)
	api.GET("/user/enrolled-courses", h.authRequired(), h.enrolledCourses)

	api.GET("/courses", h.listCourses)
	api.POST("/init-demo-courses", h.initDemoCourses)
	api.POST("/courses/:courseId/enroll", h.authRequired(), h.enroll)
	api.GET("/offline-students", h.offlineStudents)

	payments := api.Group("/payments", h.authRequired())
	{
		payments.POST("/create", h.createPayment)
		payments.GET("/history", h.paymentHistory)
		payments.GET("/stats", h.paymentStats)
	}

	admin := api.Group("/admin", h.authRequired(), adminOnly())
	{
		admin.GET("/users", h.adminListUsers)
		admin.POST("/users", h.adminCreateUser)
		admin.PUT("/users/:id", h.adminUpdateUser)
		admin.DELETE("/users/:id", h.adminDeleteUser)

		admin.GET("/stats", h.adminStats)
		admin.GET("/payments", h.adminPayments)

		admin.GET("/courses", h.adminListCourses)
		admin.POST("/courses", h.adminCreateCourse)
		admin.PUT("/courses/:courseId", h.adminUpdateCourse)
		admin.DELETE("/courses/:courseId", h.adminDeleteCourse)
		admin.PATCH("/courses/:courseId/status", h.adminSetCourseStatus)
		admin.GET("/courses/:courseId/details", h.adminCourseDetails)

		admin.GET("/courses/:courseId/modules", h.adminListModules)
		admin.POST("/courses/:courseId/modules", h.adminCreateModule)
		admin.PUT("/courses/:courseId/modules/:moduleId", h.adminUpdateModule)
		admin.DELETE("/courses/:courseId/modules/:moduleId", h.adminDeleteModule)

		admin.GET("/modules/:moduleId/lessons", h.adminListLessons)
		admin.POST("/modules/:moduleId/lessons", h.adminCreateLesson)
		admin.PUT("/modules/:moduleId/lessons/:lessonId", h.adminUpdateLesson)
		admin.DELETE("/modules/:moduleId/lessons/:lessonId", h.adminDeleteLesson)

		admin.GET("/messages", h.adminListMessages)
		admin.POST("/messages", h.adminSendMessage)
		admin.PATCH("/messages/:id/read", h.adminReadMessage)
		admin.DELETE("/messages/:id", h.adminDeleteMessage)

		admin.POST("/notifications/test", h.adminTestNotification)
		admin.PATCH("/notifications/:id/read", h.adminReadNotification)
		admin.DELETE("/notifications/:id", h.adminDeleteNotification)
	}

	return r
}

func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
