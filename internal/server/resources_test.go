package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/academic-scheduler/internal/models"
)

func hexes(ids []primitive.ObjectID) []string {
	return lo.Map(ids, func(id primitive.ObjectID, _ int) string { return id.Hex() })
}

func venueBody() obj {
	return obj{
		"faculty": "Computing", "department": "CS", "building": "B1",
		"hallName": "Hall A", "type": "lecture", "capacity": 120,
	}
}

func TestVenues_CRUD(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()

	var created models.Venue
	decode(t, s.do(http.MethodPost, "/api/venue", admin, venueBody()), http.StatusCreated, &created)
	assert.NotNil(t, created.BookedTimeSlots)

	var fetched models.Venue
	decode(t, s.do(http.MethodGet, "/api/venue/"+created.ID.Hex(), admin, nil), http.StatusOK, &fetched)
	assert.Equal(t, "Hall A", fetched.HallName)
	assert.Equal(t, 120, fetched.Capacity)
	assert.Equal(t, "lecture", fetched.Type)

	var updated models.Venue
	decode(t, s.do(http.MethodPut, "/api/venue/"+created.ID.Hex(), admin, obj{"capacity": 80}), http.StatusOK, &updated)
	assert.Equal(t, 80, updated.Capacity)
	assert.Equal(t, "Hall A", updated.HallName)
	assert.Equal(t, "B1", updated.Building)

	decode(t, s.do(http.MethodPost, "/api/venue", admin, obj{"hallName": "x"}), http.StatusBadRequest, nil)
	bad := venueBody()
	bad["type"] = "ballroom"
	decode(t, s.do(http.MethodPost, "/api/venue", admin, bad), http.StatusBadRequest, nil)

	other := venueBody()
	other["building"], other["type"] = "B2", "lab"
	decode(t, s.do(http.MethodPost, "/api/venue", admin, other), http.StatusCreated, nil)

	var labs []models.Venue
	decode(t, s.do(http.MethodGet, "/api/venue?type=lab", admin, nil), http.StatusOK, &labs)
	require.Len(t, labs, 1)
	assert.Equal(t, "B2", labs[0].Building)

	decode(t, s.do(http.MethodDelete, "/api/venue/"+created.ID.Hex(), admin, nil), http.StatusOK, nil)
	decode(t, s.do(http.MethodGet, "/api/venue/"+created.ID.Hex(), admin, nil), http.StatusNotFound, nil)

	var all []models.Venue
	decode(t, s.do(http.MethodGet, "/api/venue", admin, nil), http.StatusOK, &all)
	require.Len(t, all, 1)
	assert.Equal(t, "B2", all[0].Building)
}

func TestVenues_EmptyListIsArray(t *testing.T) {
	s := newTestServer(t)
	env := decode(t, s.do(http.MethodGet, "/api/venue", s.admin(), nil), http.StatusOK, nil)
	assert.JSONEq(t, `[]`, string(env.Result))
}

func TestVenues_Bookings(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()
	_, lecturer := s.seedUser("Lee", "lee@uni.test", models.RoleLecturer)
	_, student := s.seedUser("Sam", "sam@uni.test", models.RoleStudent)

	var venue models.Venue
	decode(t, s.do(http.MethodPost, "/api/venue", admin, venueBody()), http.StatusCreated, &venue)
	path := "/api/venue/" + venue.ID.Hex() + "/bookings"

	decode(t, s.do(http.MethodPost, path, lecturer, obj{"date": "2026-10-20", "startTime": "09:00", "endTime": "11:00"}), http.StatusCreated, &venue)
	require.Len(t, venue.BookedTimeSlots, 1)

	// touching the end of the first booking is fine
	decode(t, s.do(http.MethodPost, path, lecturer, obj{"date": "2026-10-20", "startTime": "11:00", "endTime": "12:00"}), http.StatusCreated, &venue)
	// same times on another day
	decode(t, s.do(http.MethodPost, path, admin, obj{"date": "2026-10-21", "startTime": "10:00", "endTime": "11:00"}), http.StatusCreated, &venue)
	require.Len(t, venue.BookedTimeSlots, 3)

	decode(t, s.do(http.MethodPost, path, lecturer, obj{"date": "2026-10-20", "startTime": "10:30", "endTime": "11:30"}), http.StatusConflict, nil)
	decode(t, s.do(http.MethodPost, path, lecturer, obj{"date": "2026-10-20", "startTime": "14:00", "endTime": "13:00"}), http.StatusBadRequest, nil)
	decode(t, s.do(http.MethodPost, path, lecturer, obj{"date": "20/10/2026", "startTime": "14:00", "endTime": "15:00"}), http.StatusBadRequest, nil)
	decode(t, s.do(http.MethodPost, path, student, obj{"date": "2026-10-22", "startTime": "14:00", "endTime": "15:00"}), http.StatusForbidden, nil)

	first := venue.BookedTimeSlots[0].ID.Hex()
	decode(t, s.do(http.MethodDelete, path+"/"+first, lecturer, nil), http.StatusOK, &venue)
	assert.Len(t, venue.BookedTimeSlots, 2)
	decode(t, s.do(http.MethodDelete, path+"/"+first, lecturer, nil), http.StatusNotFound, nil)

	// the freed range can be booked again
	decode(t, s.do(http.MethodPost, path, lecturer, obj{"date": "2026-10-20", "startTime": "10:30", "endTime": "11:00"}), http.StatusCreated, nil)

	overlapping := venueBody()
	overlapping["bookedTimeSlots"] = []obj{
		{"date": "2026-10-20", "startTime": "09:00", "endTime": "10:00"},
		{"date": "2026-10-20", "startTime": "09:30", "endTime": "10:30"},
	}
	decode(t, s.do(http.MethodPost, "/api/venue", admin, overlapping), http.StatusConflict, nil)
}

func groupBody(name string) obj {
	return obj{
		"name": name, "faculty": "Computing", "department": "CS",
		"year": 1, "semester": 1, "type": "weekday",
	}
}

func TestGroups_CRUDAndUniqueName(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()

	var created models.Group
	decode(t, s.do(http.MethodPost, "/api/group", admin, groupBody("Y1.S1.WD.CS.01")), http.StatusCreated, &created)
	assert.Equal(t, []string{}, hexes(created.Students))

	decode(t, s.do(http.MethodPost, "/api/group", admin, groupBody("Y1.S1.WD.CS.01")), http.StatusConflict, nil)
	// names are case-sensitive
	decode(t, s.do(http.MethodPost, "/api/group", admin, groupBody("y1.s1.wd.cs.01")), http.StatusCreated, nil)

	var updated models.Group
	decode(t, s.do(http.MethodPut, "/api/group/"+created.ID.Hex(), admin, obj{"semester": 2}), http.StatusOK, &updated)
	assert.Equal(t, 2, updated.Semester)
	assert.Equal(t, 1, updated.Year)
	assert.Equal(t, "Y1.S1.WD.CS.01", updated.Name)

	decode(t, s.do(http.MethodPut, "/api/group/"+created.ID.Hex(), admin, obj{"name": "y1.s1.wd.cs.01"}), http.StatusConflict, nil)
	decode(t, s.do(http.MethodPut, "/api/group/"+created.ID.Hex(), admin, obj{"year": 9}), http.StatusBadRequest, nil)

	var bySemester []models.Group
	decode(t, s.do(http.MethodGet, "/api/group?semester=2", admin, nil), http.StatusOK, &bySemester)
	require.Len(t, bySemester, 1)
	assert.Equal(t, created.ID, bySemester[0].ID)
	decode(t, s.do(http.MethodGet, "/api/group?year=first", admin, nil), http.StatusBadRequest, nil)
	decode(t, s.do(http.MethodGet, "/api/group?year=-1", admin, nil), http.StatusBadRequest, nil)

	// leading zeros are decimal
	var padded []models.Group
	decode(t, s.do(http.MethodGet, "/api/group?year=01&semester=02", admin, nil), http.StatusOK, &padded)
	require.Len(t, padded, 1)
	assert.Equal(t, created.ID, padded[0].ID)
	decode(t, s.do(http.MethodGet, "/api/group?year=010", admin, nil), http.StatusOK, &padded)
	assert.Empty(t, padded)

	decode(t, s.do(http.MethodDelete, "/api/group/"+created.ID.Hex(), admin, nil), http.StatusOK, nil)
	decode(t, s.do(http.MethodGet, "/api/group/"+created.ID.Hex(), admin, nil), http.StatusNotFound, nil)

	var all []models.Group
	decode(t, s.do(http.MethodGet, "/api/group", admin, nil), http.StatusOK, &all)
	assert.Len(t, all, 1)
}

func TestBlankRequiredFieldsAreRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()

	blankVenue := venueBody()
	blankVenue["hallName"] = "   "
	blankGroup := groupBody("  ")
	creates := []struct {
		path string
		body obj
	}{
		{"/api/venue", blankVenue},
		{"/api/group", blankGroup},
		{"/api/subject", obj{"name": "\t", "code": "CS101", "department": "CS"}},
		{"/api/subject", obj{"name": "Algorithms", "code": " ", "department": "CS"}},
		{"/api/timetable", obj{"title": "   ", "group": primitive.NewObjectID().Hex()}},
		{"/api/user", obj{"name": " ", "email": "blank@uni.test", "password": "initial-pass", "role": models.RoleStudent}},
	}
	for _, tt := range creates {
		t.Run("create "+tt.path, func(t *testing.T) {
			decode(t, s.do(http.MethodPost, tt.path, admin, tt.body), http.StatusBadRequest, nil)
		})
	}

	var group models.Group
	decode(t, s.do(http.MethodPost, "/api/group", admin, groupBody("G1")), http.StatusCreated, &group)
	for _, name := range []string{"", "   "} {
		decode(t, s.do(http.MethodPut, "/api/group/"+group.ID.Hex(), admin, obj{"name": name}), http.StatusBadRequest, nil)
	}
	var tt models.Timetable
	decode(t, s.do(http.MethodPost, "/api/timetable", admin, obj{"title": "Y1S1", "group": group.ID.Hex()}), http.StatusCreated, &tt)
	decode(t, s.do(http.MethodPut, "/api/timetable/"+tt.ID.Hex(), admin, obj{"title": " "}), http.StatusBadRequest, nil)

	decode(t, s.do(http.MethodGet, "/api/group/"+group.ID.Hex(), admin, nil), http.StatusOK, &group)
	assert.Equal(t, "G1", group.Name)
	decode(t, s.do(http.MethodGet, "/api/timetable/"+tt.ID.Hex(), admin, nil), http.StatusOK, &tt)
	assert.Equal(t, "Y1S1", tt.Title)
}

func TestGroups_Members(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()
	sam, _ := s.seedUser("Sam", "sam@uni.test", models.RoleStudent)
	kim, _ := s.seedUser("Kim", "kim@uni.test", models.RoleStudent)
	lee, _ := s.seedUser("Lee", "lee@uni.test", models.RoleLecturer)

	body := groupBody("G1")
	body["students"] = []string{sam.ID.Hex(), lee.ID.Hex()}
	decode(t, s.do(http.MethodPost, "/api/group", admin, body), http.StatusBadRequest, nil)

	body["students"] = []string{sam.ID.Hex(), sam.ID.Hex()}
	var group models.Group
	decode(t, s.do(http.MethodPost, "/api/group", admin, body), http.StatusCreated, &group)
	assert.Equal(t, []string{sam.ID.Hex()}, hexes(group.Students))

	path := "/api/group/" + group.ID.Hex() + "/students"
	decode(t, s.do(http.MethodPost, path, admin, obj{"studentId": kim.ID.Hex()}), http.StatusOK, &group)
	decode(t, s.do(http.MethodPost, path, admin, obj{"studentId": kim.ID.Hex()}), http.StatusOK, &group)
	assert.Equal(t, []string{sam.ID.Hex(), kim.ID.Hex()}, hexes(group.Students))

	decode(t, s.do(http.MethodPost, path, admin, obj{"studentId": lee.ID.Hex()}), http.StatusBadRequest, nil)
	decode(t, s.do(http.MethodPost, path, admin, obj{"studentId": "64b7f0c2a1b2c3d4e5f60718"}), http.StatusNotFound, nil)

	decode(t, s.do(http.MethodDelete, path+"/"+sam.ID.Hex(), admin, nil), http.StatusOK, &group)
	assert.Equal(t, []string{kim.ID.Hex()}, hexes(group.Students))
	decode(t, s.do(http.MethodDelete, path+"/"+sam.ID.Hex(), admin, nil), http.StatusNotFound, nil)
}

func TestSubjects_CRUDAndAliases(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()
	lee, _ := s.seedUser("Lee", "lee@uni.test", models.RoleLecturer)

	var created models.Subject
	decode(t, s.do(http.MethodPost, "/api/subject/create", admin, obj{
		"name": "Algorithms", "code": "CS2001", "credits": 4, "department": "CS", "lecturer": lee.ID.Hex(),
	}), http.StatusCreated, &created)
	assert.Equal(t, models.SubjectActive, created.Status)
	require.NotNil(t, created.Lecturer)
	assert.Equal(t, lee.ID, *created.Lecturer)

	decode(t, s.do(http.MethodPost, "/api/subject", admin, obj{"name": "Algo II", "code": "CS2001", "department": "CS"}), http.StatusConflict, nil)
	decode(t, s.do(http.MethodPost, "/api/subject", admin, obj{"name": "Bad", "code": "X1", "department": "CS", "status": "paused"}), http.StatusBadRequest, nil)
	decode(t, s.do(http.MethodPost, "/api/subject", admin, obj{"name": "Databases", "code": "CS2002", "department": "CS", "status": "inactive"}), http.StatusCreated, nil)

	var viaAlias, viaREST models.Subject
	decode(t, s.do(http.MethodGet, "/api/subject/get/"+created.ID.Hex(), admin, nil), http.StatusOK, &viaAlias)
	decode(t, s.do(http.MethodGet, "/api/subject/"+created.ID.Hex(), admin, nil), http.StatusOK, &viaREST)
	assert.Equal(t, viaREST, viaAlias)

	var updated models.Subject
	decode(t, s.do(http.MethodPut, "/api/subject/update/"+created.ID.Hex(), admin, obj{"credits": 5}), http.StatusOK, &updated)
	assert.Equal(t, 5, updated.Credits)
	assert.Equal(t, "CS2001", updated.Code)
	require.NotNil(t, updated.Lecturer)

	var unassigned models.Subject
	decode(t, s.do(http.MethodPut, "/api/subject/"+created.ID.Hex(), admin, obj{"lecturer": ""}), http.StatusOK, &unassigned)
	assert.Nil(t, unassigned.Lecturer)
	assert.Equal(t, 5, unassigned.Credits)
	decode(t, s.do(http.MethodPut, "/api/subject/"+created.ID.Hex(), admin, obj{"lecturer": "nobody"}), http.StatusBadRequest, nil)

	var active []models.Subject
	decode(t, s.do(http.MethodGet, "/api/subject/get/all?status=active", admin, nil), http.StatusOK, &active)
	require.Len(t, active, 1)
	assert.Equal(t, "CS2001", active[0].Code)
	decode(t, s.do(http.MethodGet, "/api/subject?lecturer=zzz", admin, nil), http.StatusBadRequest, nil)

	decode(t, s.do(http.MethodDelete, "/api/subject/delete/"+created.ID.Hex(), admin, nil), http.StatusOK, nil)
	decode(t, s.do(http.MethodGet, "/api/subject/"+created.ID.Hex(), admin, nil), http.StatusNotFound, nil)
}

type slotIDs struct {
	subject, lecturer, otherLecturer, venue, otherVenue string
}

func newSlotIDs() slotIDs {
	return slotIDs{
		subject:       "64b7f0c2a1b2c3d4e5f60701",
		lecturer:      "64b7f0c2a1b2c3d4e5f60702",
		otherLecturer: "64b7f0c2a1b2c3d4e5f60703",
		venue:         "64b7f0c2a1b2c3d4e5f60704",
		otherVenue:    "64b7f0c2a1b2c3d4e5f60705",
	}
}

func slot(subject, instructor, venue, day, start, end string) obj {
	return obj{"subject": subject, "instructor": instructor, "venue": venue, "day": day, "startTime": start, "endTime": end}
}

func TestTimetables_CRUDAndAliases(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()
	ids := newSlotIDs()
	group := "64b7f0c2a1b2c3d4e5f60799"

	var created models.Timetable
	decode(t, s.do(http.MethodPost, "/api/timetable/create", admin, obj{
		"title": "Y1S1 Weekday", "group": group,
		"slots": []obj{
			slot(ids.subject, ids.lecturer, ids.venue, "Monday", "08:30", "10:30"),
			slot(ids.subject, ids.lecturer, ids.venue, "Tuesday", "08:30", "10:30"),
		},
	}), http.StatusCreated, &created)
	assert.False(t, created.Published)
	require.Len(t, created.Slots, 2)
	assert.NotEqual(t, created.Slots[0].ID, created.Slots[1].ID)

	var updated models.Timetable
	decode(t, s.do(http.MethodPut, "/api/timetable/update/"+created.ID.Hex(), admin, obj{"description": "core modules"}), http.StatusOK, &updated)
	assert.Equal(t, "core modules", updated.Description)
	assert.Equal(t, "Y1S1 Weekday", updated.Title)
	assert.Len(t, updated.Slots, 2)

	decode(t, s.do(http.MethodPost, "/api/timetable", admin, obj{"title": "Draft", "group": group}), http.StatusCreated, nil)

	var drafts []models.Timetable
	decode(t, s.do(http.MethodGet, "/api/timetable/get/all?group="+group+"&published=false", admin, nil), http.StatusOK, &drafts)
	assert.Len(t, drafts, 2)
	decode(t, s.do(http.MethodGet, "/api/timetable?published=maybe", admin, nil), http.StatusBadRequest, nil)

	decode(t, s.do(http.MethodDelete, "/api/timetable/delete/"+created.ID.Hex(), admin, nil), http.StatusOK, nil)
	decode(t, s.do(http.MethodGet, "/api/timetable/get/"+created.ID.Hex(), admin, nil), http.StatusNotFound, nil)
}

func TestTimetables_SlotConflicts(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()
	ids := newSlotIDs()

	var tt models.Timetable
	decode(t, s.do(http.MethodPost, "/api/timetable", admin, obj{
		"title": "T", "group": "64b7f0c2a1b2c3d4e5f60799",
		"slots": []obj{slot(ids.subject, ids.lecturer, ids.venue, "Monday", "09:00", "11:00")},
	}), http.StatusCreated, &tt)
	path := "/api/timetable/" + tt.ID.Hex() + "/slots"

	tests := []struct {
		name string
		body obj
		want int
	}{
		{"same venue overlapping", slot(ids.subject, ids.otherLecturer, ids.venue, "Monday", "10:00", "12:00"), http.StatusConflict},
		{"same instructor overlapping", slot(ids.subject, ids.lecturer, ids.otherVenue, "Monday", "10:00", "12:00"), http.StatusConflict},
		{"bad day", slot(ids.subject, ids.lecturer, ids.venue, "Someday", "12:00", "13:00"), http.StatusBadRequest},
		{"end before start", slot(ids.subject, ids.lecturer, ids.venue, "Monday", "13:00", "12:00"), http.StatusBadRequest},
		{"touching", slot(ids.subject, ids.lecturer, ids.venue, "Monday", "11:00", "12:00"), http.StatusCreated},
		{"other rooms and staff", slot(ids.subject, ids.otherLecturer, ids.otherVenue, "Monday", "09:00", "11:00"), http.StatusCreated},
		{"another day", slot(ids.subject, ids.lecturer, ids.venue, "Tuesday", "09:00", "11:00"), http.StatusCreated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decode(t, s.do(http.MethodPost, path, admin, tc.body), tc.want, nil)
		})
	}

	decode(t, s.do(http.MethodGet, "/api/timetable/"+tt.ID.Hex(), admin, nil), http.StatusOK, &tt)
	require.Len(t, tt.Slots, 4)

	moved := tt.Slots[3].ID.Hex() // Tuesday
	decode(t, s.do(http.MethodPut, path+"/"+moved, admin, obj{"day": "Monday"}), http.StatusConflict, nil)
	decode(t, s.do(http.MethodPut, path+"/"+moved, admin, obj{"startTime": "14:00", "endTime": "15:00"}), http.StatusOK, &tt)
	assert.Equal(t, "14:00", tt.Slots[3].StartTime)
	assert.Equal(t, "Tuesday", tt.Slots[3].Day)

	decode(t, s.do(http.MethodDelete, path+"/"+moved, admin, nil), http.StatusOK, &tt)
	assert.Len(t, tt.Slots, 3)
	decode(t, s.do(http.MethodDelete, path+"/"+moved, admin, nil), http.StatusNotFound, nil)

	clash := obj{"slots": []obj{
		slot(ids.subject, ids.lecturer, ids.venue, "Friday", "09:00", "10:00"),
		slot(ids.subject, ids.lecturer, ids.otherVenue, "Friday", "09:30", "10:30"),
	}}
	decode(t, s.do(http.MethodPut, "/api/timetable/"+tt.ID.Hex(), admin, clash), http.StatusConflict, nil)
}

func TestTimetables_PublishNotifies(t *testing.T) {
	s := newTestServer(t)
	admin := s.admin()

	var tt models.Timetable
	decode(t, s.do(http.MethodPost, "/api/timetable", admin, obj{"title": "T", "group": "64b7f0c2a1b2c3d4e5f60799"}), http.StatusCreated, &tt)
	assert.Empty(t, s.notifier.calls())

	path := "/api/timetable/" + tt.ID.Hex() + "/publish"
	decode(t, s.do(http.MethodPatch, path, admin, obj{}), http.StatusBadRequest, nil)
	decode(t, s.do(http.MethodPatch, path, admin, obj{"published": true}), http.StatusOK, &tt)
	assert.True(t, tt.Published)
	decode(t, s.do(http.MethodPatch, path, admin, obj{"published": true}), http.StatusOK, nil)
	assert.Equal(t, []string{tt.ID.Hex()}, s.notifier.calls())

	decode(t, s.do(http.MethodPatch, path, admin, obj{"published": false}), http.StatusOK, &tt)
	assert.False(t, tt.Published)
	decode(t, s.do(http.MethodPut, "/api/timetable/"+tt.ID.Hex(), admin, obj{"published": true}), http.StatusOK, nil)
	assert.Len(t, s.notifier.calls(), 2)

	var published models.Timetable
	decode(t, s.do(http.MethodPost, "/api/timetable", admin, obj{"title": "Live", "group": "64b7f0c2a1b2c3d4e5f60799", "published": true}), http.StatusCreated, &published)
	assert.Equal(t, published.ID.Hex(), s.notifier.calls()[2])
	assert.WithinDuration(t, time.Now(), published.UpdatedAt, time.Minute)
}
