package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"proxedu/pkg/models"
	"proxedu/service"
)

type courseRequest struct {
	Title       string   `json:"title" binding:"required,notblank"`
	Description string   `json:"description" binding:"required"`
	Instructor  string   `json:"instructor" binding:"required"`
	Price       *int64   `json:"price" binding:"required"`
	Duration    string   `json:"duration" binding:"required"`
	Level       string   `json:"level" binding:"required"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

type courseUpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Instructor  *string  `json:"instructor"`
	Price       *int64   `json:"price"`
	Duration    *string  `json:"duration"`
	Level       *string  `json:"level"`
	Status      *string  `json:"status"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type moduleRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

type lessonRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	VideoURL      *string `json:"videoUrl"`
	CodeSourceURL *string `json:"codeSourceUrl"`
	Order         *int    `json:"order"`
}

type moduleDetails struct {
	*models.CourseModule
	Lessons []*models.Lesson `json:"lessons"`
}

func (h *Handler) listCourses(c *gin.Context) {
	courses, err := h.svc.Course().List(c.Request.Context())
	if err != nil {
		h.handleError(c, "list courses", err)
		return
	}
	ok(c, "", gin.H{"courses": courses})
}

func (h *Handler) initDemoCourses(c *gin.Context) {
	added, err := h.svc.Course().InitDemo(c.Request.Context())
	if err != nil {
		h.handleError(c, "init demo courses", err)
		return
	}
	if len(added) == 0 {
		ok(c, "Demo kurslar allaqachon mavjud", nil)
		return
	}
	ok(c, fmt.Sprintf("%d ta demo kurs qo'shildi", len(added)), gin.H{"courses": added})
}

func (h *Handler) enroll(c *gin.Context) {
	courseID, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	res, err := h.svc.Payment().Enroll(c.Request.Context(), claimsFrom(c).UserID, courseID)
	if err != nil {
		h.handleError(c, "enroll", err)
		return
	}
	ok(c, "Kursga muvaffaqiyatli a'zo bo'ldingiz", gin.H{
		"course":     res.Course,
		"payment":    res.Payment,
		"newBalance": res.NewBalance,
	})
}

func (h *Handler) enrolledCourses(c *gin.Context) {
	courses, err := h.svc.Payment().EnrolledCourses(c.Request.Context(), claimsFrom(c).UserID)
	if err != nil {
		h.handleError(c, "enrolled courses", err)
		return
	}
	ok(c, "", gin.H{"courses": courses})
}

func (h *Handler) adminListCourses(c *gin.Context) {
	h.listCourses(c)
}

func (h *Handler) adminCreateCourse(c *gin.Context) {
	var req courseRequest
	if !bind(c, &req, "Barcha majburiy maydonlarni to'ldiring") {
		return
	}
	course, err := h.svc.Course().Create(c.Request.Context(), service.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Instructor:  req.Instructor,
		Price:       *req.Price,
		Duration:    req.Duration,
		Level:       req.Level,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	})
	if err != nil {
		h.handleError(c, "create course", err)
		return
	}
	created(c, "Kurs muvaffaqiyatli qo'shildi", gin.H{"course": course})
}

func (h *Handler) adminUpdateCourse(c *gin.Context) {
	id, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	var req courseUpdateRequest
	if !bind(c, &req, "Noto'g'ri ma'lumot") {
		return
	}
	course, err := h.svc.Course().Update(c.Request.Context(), id, service.CourseUpdate{
		Title:       req.Title,
		Description: req.Description,
		Instructor:  req.Instructor,
		Price:       req.Price,
		Duration:    req.Duration,
		Level:       req.Level,
		Status:      req.Status,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	})
	if err != nil {
		h.handleError(c, "update course", err)
		return
	}
	ok(c, "Kurs ma'lumotlari yangilandi", gin.H{"course": course})
}

func (h *Handler) adminDeleteCourse(c *gin.Context) {
	id, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	if err := h.svc.Course().Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, "delete course", err)
		return
	}
	ok(c, "Kurs o'chirildi", nil)
}

func (h *Handler) adminSetCourseStatus(c *gin.Context) {
	id, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	var req statusRequest
	if !bind(c, &req, "Noto'g'ri holat tanlandi") {
		return
	}
	course, err := h.svc.Course().SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.handleError(c, "set course status", err)
		return
	}
	ok(c, "Kurs holati muvaffaqiyatli o'zgartirildi", gin.H{"course": course})
}

func (h *Handler) adminCourseDetails(c *gin.Context) {
	id, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	ctx := c.Request.Context()
	course, err := h.svc.Course().Get(ctx, id)
	if err != nil {
		h.handleError(c, "course details", err)
		return
	}
	modules, err := h.svc.Course().Modules(ctx, id)
	if err != nil {
		h.handleError(c, "course details", err)
		return
	}
	details := make([]moduleDetails, 0, len(modules))
	for _, m := range modules {
		lessons, err := h.svc.Course().Lessons(ctx, m.ID)
		if err != nil {
			h.handleError(c, "course details", err)
			return
		}
		details = append(details, moduleDetails{CourseModule: m, Lessons: lessons})
	}
	ok(c, "", gin.H{"course": course, "modules": details})
}

func (h *Handler) adminListModules(c *gin.Context) {
	courseID, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	modules, err := h.svc.Course().Modules(c.Request.Context(), courseID)
	if err != nil {
		h.handleError(c, "list modules", err)
		return
	}
	ok(c, "", gin.H{"modules": modules})
}

func (h *Handler) adminCreateModule(c *gin.Context) {
	courseID, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	var req moduleRequest
	if !bind(c, &req, "Modul nomi kerak") {
		return
	}
	if req.Title == nil || *req.Title == "" {
		fail(c, http.StatusBadRequest, "Modul nomi kerak")
		return
	}
	module, err := h.svc.Course().CreateModule(c.Request.Context(), courseID, service.ModuleInput(req))
	if err != nil {
		h.handleError(c, "create module", err)
		return
	}
	created(c, "Modul qo'shildi", gin.H{"module": module})
}

func (h *Handler) adminUpdateModule(c *gin.Context) {
	courseID, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	moduleID, valid := paramID(c, "moduleId")
	if !valid {
		return
	}
	var req moduleRequest
	if !bind(c, &req, "Noto'g'ri ma'lumot") {
		return
	}
	module, err := h.svc.Course().UpdateModule(c.Request.Context(), courseID, moduleID, service.ModuleInput(req))
	if err != nil {
		h.handleError(c, "update module", err)
		return
	}
	ok(c, "Modul yangilandi", gin.H{"module": module})
}

func (h *Handler) adminDeleteModule(c *gin.Context) {
	courseID, valid := paramID(c, "courseId")
	if !valid {
		return
	}
	moduleID, valid := paramID(c, "moduleId")
	if !valid {
		return
	}
	if err := h.svc.Course().DeleteModule(c.Request.Context(), courseID, moduleID); err != nil {
		h.handleError(c, "delete module", err)
		return
	}
	ok(c, "Modul o'chirildi", nil)
}

func (h *Handler) adminListLessons(c *gin.Context) {
	moduleID, valid := paramID(c, "moduleId")
	if !valid {
		return
	}
	lessons, err := h.svc.Course().Lessons(c.Request.Context(), moduleID)
	if err != nil {
		h.handleError(c, "list lessons", err)
		return
	}
	ok(c, "", gin.H{"lessons": lessons})
}

func (h *Handler) adminCreateLesson(c *gin.Context) {
	moduleID, valid := paramID(c, "moduleId")
	if !valid {
		return
	}
	var req lessonRequest
	if !bind(c, &req, "Dars nomi kerak") {
		return
	}
	if req.Title == nil || *req.Title == "" {
		fail(c, http.StatusBadRequest, "Dars nomi kerak")
		return
	}
	lesson, err := h.svc.Course().CreateLesson(c.Request.Context(), moduleID, service.LessonInput(req))
	if err != nil {
		h.handleError(c, "create lesson", err)
		return
	}
	created(c, "Dars qo'shildi", gin.H{"lesson": lesson})
}

func (h *Handler) adminUpdateLesson(c *gin.Context) {
	moduleID, valid := paramID(c, "moduleId")
	if !valid {
		return
	}
	lessonID, valid := paramID(c, "lessonId")
	if !valid {
		return
	}
	var req lessonRequest
	if !bind(c, &req, "Noto'g'ri ma'lumot") {
		return
	}
	lesson, err := h.svc.Course().UpdateLesson(c.Request.Context(), moduleID, lessonID, service.LessonInput(req))
	if err != nil {
		h.handleError(c, "update lesson", err)
		return
	}
	ok(c, "Dars yangilandi", gin.H{"lesson": lesson})
}

func (h *Handler) adminDeleteLesson(c *gin.Context) {
	moduleID, valid := paramID(c, "moduleId")
	if !valid {
		return
	}
	lessonID, valid := paramID(c, "lessonId")
	if !valid {
		return
	}
	if err := h.svc.Course().DeleteLesson(c.Request.Context(), moduleID, lessonID); err != nil {
		h.handleError(c, "delete lesson", err)
		return
	}
	ok(c, "Dars o'chirildi", nil)
}
