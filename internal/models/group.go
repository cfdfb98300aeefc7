package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Group is a cohort of students sharing a schedule.
type Group struct {
	Base       `bson:",inline"`
	Name       string               `bson:"name" json:"name"`
	Faculty    string               `bson:"faculty" json:"faculty"`
	Department string               `bson:"department" json:"department"`
	Year       int                  `bson:"year" json:"year"`
	Semester   int                  `bson:"semester" json:"semester"`
	Type       string               `bson:"type" json:"type"`
	Students   []primitive.ObjectID `bson:"students" json:"students"`
}

type GroupFilter struct {
	Faculty    string
	Department string
	Year       int
	Semester   int
}
