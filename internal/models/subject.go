package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	SubjectActive   = "active"
	SubjectInactive = "inactive"
)

type Subject struct {
	Base        `bson:",inline"`
	Name        string              `bson:"name" json:"name"`
	Code        string              `bson:"code" json:"code"`
	Description string              `bson:"description" json:"description"`
	Lecturer    *primitive.ObjectID `bson:"lecturer,omitempty" json:"lecturer,omitempty"`
	Credits     int                 `bson:"credits" json:"credits"`
	Department  string              `bson:"department" json:"department"`
	Status      string              `bson:"status" json:"status"`
}

type SubjectFilter struct {
	Department string
	Lecturer   primitive.ObjectID
	Status     string
}
