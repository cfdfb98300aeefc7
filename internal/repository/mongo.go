package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/harentsoaR/academic-scheduler/internal/logger"
)

// Mongo bundles the client and one repository per collection.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database

	Users      *UserRepository
	Venues     *VenueRepository
	Groups     *GroupRepository
	Subjects   *SubjectRepository
	Timetables *TimetableRepository
}

// Open connects, pings and makes sure the unique indexes exist.
func Open(ctx context.Context, uri, database string) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	if err := EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.Info().Str("database", database).Msg("Connected to MongoDB")

	return &Mongo{
		client:     client,
		db:         db,
		Users:      NewUserRepository(db),
		Venues:     NewVenueRepository(db),
		Groups:     NewGroupRepository(db),
		Subjects:   NewSubjectRepository(db),
		Timetables: NewTimetableRepository(db),
	}, nil
}

// EnsureIndexes creates the unique indexes backing the conflict checks.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := []struct {
		collection string
		field      string
	}{
		{UsersCollection, "email"},
		{GroupsCollection, "name"},
		{SubjectsCollection, "code"},
	}
	for _, u := range unique {
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: u.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := db.Collection(u.collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create unique index %s.%s: %w", u.collection, u.field, err)
		}
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
