package handlers

import (
	"context"
	"mime/multipart"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/models"
	"github.com/harentsoaR/academic-scheduler/internal/utils"
)

// Store is the persistence contract shared by every resource.
type Store[T any, F any] interface {
	Create(ctx context.Context, doc *T) error
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	List(ctx context.Context, filter F) ([]T, error)
	Save(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	Store[models.User, models.UserFilter]
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type (
	VenueStore     = Store[models.Venue, models.VenueFilter]
	GroupStore     = Store[models.Group, models.GroupFilter]
	SubjectStore   = Store[models.Subject, models.SubjectFilter]
	TimetableStore = Store[models.Timetable, models.TimetableFilter]
)

// Stores groups the backing collections, either MongoDB or in-memory.
type Stores struct {
	Users      UserStore
	Venues     VenueStore
	Groups     GroupStore
	Subjects   SubjectStore
	Timetables TimetableStore
}

type TokenIssuer interface {
	GenerateJWT(userID, role string) (string, *utils.Claims, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
}

type ImageStorage interface {
	SaveImage(fh *multipart.FileHeader, subdir string) (string, error)
	Delete(publicPath string) error
	MaxBytes() int64
}

type Notifier interface {
	TimetablePublished(tt *models.Timetable)
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Stores
	Tokens          TokenIssuer
	Revocations     TokenRevoker
	Uploads         ImageStorage
	NotificationSvc Notifier

	checks []healthCheck
}

func NewHandler(stores Stores, tokens TokenIssuer, revocations TokenRevoker, uploads ImageStorage, notifier Notifier) *Handler {
	registerValidators()
	return &Handler{
		Stores:          stores,
		Tokens:          tokens,
		Revocations:     revocations,
		Uploads:         uploads,
		NotificationSvc: notifier,
	}
}

// AddHealthCheck registers a dependency reported by /healthz.
func (h *Handler) AddHealthCheck(name string, p Pinger) {
	h.checks = append(h.checks, healthCheck{name: name, pinger: p})
}
