package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	VenueLecture  = "lecture"
	VenueTutorial = "tutorial"
	VenueLab      = "lab"
)

// BookedSlot reserves a venue on a calendar date.
type BookedSlot struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Date      string             `bson:"date" json:"date"` // YYYY-MM-DD
	StartTime string             `bson:"startTime" json:"startTime"`
	EndTime   string             `bson:"endTime" json:"endTime"`
}

type Venue struct {
	Base            `bson:",inline"`
	Faculty         string       `bson:"faculty" json:"faculty"`
	Department      string       `bson:"department" json:"department"`
	Building        string       `bson:"building" json:"building"`
	HallName        string       `bson:"hallName" json:"hallName"`
	Type            string       `bson:"type" json:"type"`
	Capacity        int          `bson:"capacity" json:"capacity"`
	BookedTimeSlots []BookedSlot `bson:"bookedTimeSlots" json:"bookedTimeSlots"`
}

type VenueFilter struct {
	Faculty    string
	Department string
	Building   string
	Type       string
}
