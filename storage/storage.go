package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"proxedu/pkg/models"
)

var (
	ErrDuplicate           = errors.New("storage: duplicate key")
	ErrInsufficientBalance = errors.New("storage: insufficient balance")
	ErrAlreadyEnrolled     = errors.New("storage: already enrolled")
	ErrNotFound            = errors.New("storage: not found")
)

// Lookups that find nothing return (nil, nil).
type IStorage interface {
	User() IUserStorage
	Course() ICourseStorage
	Module() IModuleStorage
	Lesson() ILessonStorage
	Payment() IPaymentStorage
	Message() IMessageStorage
	Close()
}

type IUserStorage interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByRole(ctx context.Context, role string) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) (bool, error)
	GetTotalUsers(ctx context.Context) (int, error)
	GetRecent(ctx context.Context, limit int) ([]*models.User, error)
	GetChatIDs(ctx context.Context) ([]int64, error)
}

type ICourseStorage interface {
	Create(ctx context.Context, course *models.Course) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) (*models.Course, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetAll(ctx context.Context) ([]*models.Course, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Course, error)
	Delete(ctx context.Context, id int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Course, error)
	GetTotal(ctx context.Context) (int, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Course, error)
}

type IModuleStorage interface {
	Create(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error)
	Update(ctx context.Context, module *models.CourseModule) (*models.CourseModule, error)
	GetByID(ctx context.Context, id int64) (*models.CourseModule, error)
	GetByCourse(ctx context.Context, courseID int64) ([]*models.CourseModule, error)
	Delete(ctx context.Context, courseID, id int64) (bool, error)
}

type ILessonStorage interface {
	Create(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error)
	Update(ctx context.Context, lesson *models.Lesson) (*models.Lesson, error)
	GetByID(ctx context.Context, id int64) (*models.Lesson, error)
	GetByModule(ctx context.Context, moduleID int64) ([]*models.Lesson, error)
	Delete(ctx context.Context, moduleID, id int64) (bool, error)
}

type IPaymentStorage interface {
	// TopUp writes the ledger entry and credits the balance in one transaction.
	TopUp(ctx context.Context, payment *models.Payment) (*models.Payment, int64, error)
	// Enroll debits payment.Amount, records the course and bumps its student count atomically.
	Enroll(ctx context.Context, payment *models.Payment, courseID int64) (*models.Payment, error)
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Payment, error)
	GetAll(ctx context.Context) ([]*models.Payment, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Payment, error)
	// Sum adds up completed payments, optionally for one user and from a point in time.
	Sum(ctx context.Context, userID *int64, since *time.Time) (int64, error)
}

type IMessageStorage interface {
	GetAll(ctx context.Context) ([]*models.Message, error)
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	MarkRead(ctx context.Context, id int64) (*models.Message, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// IRegistrationStorage keeps pending registrations until they expire or are consumed.
type IRegistrationStorage interface {
	// Save replaces any other pending registration for the same phone.
	Save(ctx context.Context, reg *models.PendingRegistration) error
	Get(ctx context.Context, code string) (*models.PendingRegistration, error)
	// Claim binds chatID only if the registration exists, is live at now and is unbound.
	Claim(ctx context.Context, code string, chatID int64, now time.Time) (*models.PendingRegistration, error)
	Release(ctx context.Context, code string) error
	// Complete records the created user; ErrNotFound when the registration is gone.
	Complete(ctx context.Context, code string, userID int64) error
	// Consume removes and returns the registration in one step.
	Consume(ctx context.Context, code string) (*models.PendingRegistration, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
