package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/harentsoaR/academic-scheduler/internal/models"
)

// setIf adds key to filter only when value is non-empty.
func setIf(filter bson.M, key, value string) {
	if value != "" {
		filter[key] = value
	}
}

func userQuery(f models.UserFilter) bson.M {
	filter := bson.M{}
	setIf(filter, "role", f.Role)
	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	return filter
}

func venueQuery(f models.VenueFilter) bson.M {
	filter := bson.M{}
	setIf(filter, "faculty", f.Faculty)
	setIf(filter, "department", f.Department)
	setIf(filter, "building", f.Building)
	setIf(filter, "type", f.Type)
	return filter
}

func groupQuery(f models.GroupFilter) bson.M {
	filter := bson.M{}
	setIf(filter, "faculty", f.Faculty)
	setIf(filter, "department", f.Department)
	if f.Year > 0 {
		filter["year"] = f.Year
	}
	if f.Semester > 0 {
		filter["semester"] = f.Semester
	}
	return filter
}

func subjectQuery(f models.SubjectFilter) bson.M {
	filter := bson.M{}
	setIf(filter, "department", f.Department)
	setIf(filter, "status", f.Status)
	if !f.Lecturer.IsZero() {
		filter["lecturer"] = f.Lecturer
	}
	return filter
}

func timetableQuery(f models.TimetableFilter) bson.M {
	filter := bson.M{}
	if !f.Group.IsZero() {
		filter["group"] = f.Group
	}
	if f.Published != nil {
		filter["published"] = *f.Published
	}
	return filter
}
