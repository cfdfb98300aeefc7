package repository

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/academic-scheduler/internal/models"
)

const (
	UsersCollection      = "users"
	VenuesCollection     = "venues"
	GroupsCollection     = "groups"
	SubjectsCollection   = "subjects"
	TimetablesCollection = "timetables"
)

type UserRepository struct {
	*Collection[models.User, *models.User]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{newCollection[models.User](db, UsersCollection, "user", "an account with this email already exists")}
}

func (r *UserRepository) List(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	return r.find(ctx, userQuery(f), bson.D{{Key: "name", Value: 1}})
}

// GetByEmail looks the user up by the lowercased address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	return r.count(ctx, bson.M{"role": role})
}

type VenueRepository struct {
	*Collection[models.Venue, *models.Venue]
}

func NewVenueRepository(db *mongo.Database) *VenueRepository {
	return &VenueRepository{newCollection[models.Venue](db, VenuesCollection, "venue", "")}
}

func (r *VenueRepository) List(ctx context.Context, f models.VenueFilter) ([]models.Venue, error) {
	return r.find(ctx, venueQuery(f), bson.D{{Key: "building", Value: 1}, {Key: "hallName", Value: 1}})
}

type GroupRepository struct {
	*Collection[models.Group, *models.Group]
}

func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{newCollection[models.Group](db, GroupsCollection, "group", "a group with this name already exists")}
}

func (r *GroupRepository) List(ctx context.Context, f models.GroupFilter) ([]models.Group, error) {
	return r.find(ctx, groupQuery(f), bson.D{{Key: "name", Value: 1}})
}

type SubjectRepository struct {
	*Collection[models.Subject, *models.Subject]
}

func NewSubjectRepository(db *mongo.Database) *SubjectRepository {
	return &SubjectRepository{newCollection[models.Subject](db, SubjectsCollection, "subject", "a subject with this code already exists")}
}

func (r *SubjectRepository) List(ctx context.Context, f models.SubjectFilter) ([]models.Subject, error) {
	return r.find(ctx, subjectQuery(f), bson.D{{Key: "code", Value: 1}})
}

type TimetableRepository struct {
	*Collection[models.Timetable, *models.Timetable]
}

func NewTimetableRepository(db *mongo.Database) *TimetableRepository {
	return &TimetableRepository{newCollection[models.Timetable](db, TimetablesCollection, "timetable", "")}
}

func (r *TimetableRepository) List(ctx context.Context, f models.TimetableFilter) ([]models.Timetable, error) {
	return r.find(ctx, timetableQuery(f), bson.D{{Key: "createdAt", Value: -1}})
}
