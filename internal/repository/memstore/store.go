package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/harentsoaR/academic-scheduler/internal/models"
)

// Store holds one in-memory collection per resource.
type Store struct {
	Users      *Users
	Venues     *Venues
	Groups     *Groups
	Subjects   *Subjects
	Timetables *Timetables
}

func New() *Store {
	return &Store{
		Users:      newUsers(),
		Venues:     newVenues(),
		Groups:     newGroups(),
		Subjects:   newSubjects(),
		Timetables: newTimetables(),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type Users struct {
	*collection[models.User, *models.User]
}

func newUsers() *Users {
	c := newCollection[models.User]("user")
	c.duplicate = "an account with this email already exists"
	c.unique = func(u *models.User) string { return strings.ToLower(u.Email) }
	c.less = func(a, b *models.User) bool { return a.Name < b.Name }
	return &Users{c}
}

func (u *Users) List(_ context.Context, f models.UserFilter) ([]models.User, error) {
	return u.list(func(x *models.User) bool {
		if f.Role != "" && x.Role != f.Role {
			return false
		}
		return len(f.IDs) == 0 || lo.Contains(f.IDs, x.ID)
	}), nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(email)
	return u.findFirst(func(x *models.User) bool { return x.Email == email })
}

func (u *Users) CountByRole(_ context.Context, role string) (int64, error) {
	return int64(len(u.list(func(x *models.User) bool { return x.Role == role }))), nil
}

type Venues struct {
	*collection[models.Venue, *models.Venue]
}

func newVenues() *Venues {
	c := newCollection[models.Venue]("venue")
	c.clone = func(v models.Venue) models.Venue {
		v.BookedTimeSlots = slices.Clone(v.BookedTimeSlots)
		return v
	}
	c.less = func(a, b *models.Venue) bool {
		if a.Building != b.Building {
			return a.Building < b.Building
		}
		return a.HallName < b.HallName
	}
	return &Venues{c}
}

func (v *Venues) List(_ context.Context, f models.VenueFilter) ([]models.Venue, error) {
	return v.list(func(x *models.Venue) bool {
		return matches(f.Faculty, x.Faculty) &&
			matches(f.Department, x.Department) &&
			matches(f.Building, x.Building) &&
			matches(f.Type, x.Type)
	}), nil
}

type Groups struct {
	*collection[models.Group, *models.Group]
}

func newGroups() *Groups {
	c := newCollection[models.Group]("group")
	c.duplicate = "a group with this name already exists"
	c.unique = func(g *models.Group) string { return g.Name }
	c.clone = func(g models.Group) models.Group {
		g.Students = slices.Clone(g.Students)
		return g
	}
	c.less = func(a, b *models.Group) bool { return a.Name < b.Name }
	return &Groups{c}
}

func (g *Groups) List(_ context.Context, f models.GroupFilter) ([]models.Group, error) {
	return g.list(func(x *models.Group) bool {
		return matches(f.Faculty, x.Faculty) &&
			matches(f.Department, x.Department) &&
			(f.Year == 0 || f.Year == x.Year) &&
			(f.Semester == 0 || f.Semester == x.Semester)
	}), nil
}

type Subjects struct {
	*collection[models.Subject, *models.Subject]
}

func newSubjects() *Subjects {
	c := newCollection[models.Subject]("subject")
	c.duplicate = "a subject with this code already exists"
	c.unique = func(s *models.Subject) string { return s.Code }
	c.clone = func(s models.Subject) models.Subject {
		if s.Lecturer != nil {
			id := *s.Lecturer
			s.Lecturer = &id
		}
		return s
	}
	c.less = func(a, b *models.Subject) bool { return a.Code < b.Code }
	return &Subjects{c}
}

func (s *Subjects) List(_ context.Context, f models.SubjectFilter) ([]models.Subject, error) {
	return s.list(func(x *models.Subject) bool {
		if !f.Lecturer.IsZero() && (x.Lecturer == nil || *x.Lecturer != f.Lecturer) {
			return false
		}
		return matches(f.Department, x.Department) && matches(f.Status, x.Status)
	}), nil
}

type Timetables struct {
	*collection[models.Timetable, *models.Timetable]
}

func newTimetables() *Timetables {
	c := newCollection[models.Timetable]("timetable")
	c.clone = func(t models.Timetable) models.Timetable {
		t.Slots = slices.Clone(t.Slots)
		return t
	}
	c.less = func(a, b *models.Timetable) bool { return a.CreatedAt.After(b.CreatedAt) }
	return &Timetables{c}
}

func (t *Timetables) List(_ context.Context, f models.TimetableFilter) ([]models.Timetable, error) {
	return t.list(func(x *models.Timetable) bool {
		if !f.Group.IsZero() && x.Group != f.Group {
			return false
		}
		return f.Published == nil || *f.Published == x.Published
	}), nil
}

func matches(want, have string) bool {
	return want == "" || want == have
}
