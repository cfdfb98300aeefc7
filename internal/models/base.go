package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base holds the fields every stored document carries.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Stamp assigns an id and creation time on first save and refreshes UpdatedAt.
func (b *Base) Stamp(now time.Time) {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Key returns the document id.
func (b *Base) Key() primitive.ObjectID {
	return b.ID
}

// Document is satisfied by pointers to every model embedding Base.
type Document[T any] interface {
	*T
	Stamp(now time.Time)
	Key() primitive.ObjectID
}
