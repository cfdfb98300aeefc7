package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Slot is one weekly occurrence of a subject at a venue.
type Slot struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Subject    primitive.ObjectID `bson:"subject" json:"subject"`
	Instructor primitive.ObjectID `bson:"instructor" json:"instructor"`
	Venue      primitive.ObjectID `bson:"venue" json:"venue"`
	Day        string             `bson:"day" json:"day"`
	StartTime  string             `bson:"startTime" json:"startTime"`
	EndTime    string             `bson:"endTime" json:"endTime"`
}

// Timetable is a named, publishable collection of slots for a group.
type Timetable struct {
	Base        `bson:",inline"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Group       primitive.ObjectID `bson:"group" json:"group"`
	Published   bool               `bson:"published" json:"published"`
	Slots       []Slot             `bson:"slots" json:"slots"`
}

type TimetableFilter struct {
	Group     primitive.ObjectID
	Published *bool
}
