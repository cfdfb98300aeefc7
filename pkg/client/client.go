// Package client is a typed Go client for the scheduler REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/harentsoaR/academic-scheduler/internal/handlers"
	"github.com/harentsoaR/academic-scheduler/internal/models"
)

type (
	User      = models.User
	Venue     = models.Venue
	Group     = models.Group
	Subject   = models.Subject
	Timetable = models.Timetable

	UserFilter      = models.UserFilter
	VenueFilter     = models.VenueFilter
	GroupFilter     = models.GroupFilter
	SubjectFilter   = models.SubjectFilter
	TimetableFilter = models.TimetableFilter

	LoginResponse          = handlers.LoginResponse
	CreateUserRequest      = handlers.CreateUserRequest
	UpdateUserRequest      = handlers.UpdateUserRequest
	CreateVenueRequest     = handlers.CreateVenueRequest
	UpdateVenueRequest     = handlers.UpdateVenueRequest
	BookingRequest         = handlers.BookingRequest
	CreateGroupRequest     = handlers.CreateGroupRequest
	UpdateGroupRequest     = handlers.UpdateGroupRequest
	CreateSubjectRequest   = handlers.CreateSubjectRequest
	UpdateSubjectRequest   = handlers.UpdateSubjectRequest
	CreateTimetableRequest = handlers.CreateTimetableRequest
	UpdateTimetableRequest = handlers.UpdateTimetableRequest
	SlotRequest            = handlers.SlotRequest
	UpdateSlotRequest      = handlers.UpdateSlotRequest
)

// Error is returned for every response with success=false.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from an *Error, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client talks to one API server. Login stores the token for later calls.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// fetch performs a JSON call and decodes the result into a fresh T.
func fetch[T any](ctx context.Context, c *Client, method, path string, body interface{}) (T, error) {
	var out T
	if err := c.do(ctx, method, path, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		return &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// Health returns the per-dependency status map. A 503 is reported as an
// error together with the map.
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	status := map[string]string{}
	if err := json.Unmarshal(env.Result, &status); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return status, &Error{StatusCode: resp.StatusCode, Message: "unhealthy"}
	}
	return status, nil
}

// Auth

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", handlers.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.setToken(out.Token)
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.setToken("")
	return nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/change-password", handlers.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	return fetch[*User](ctx, c, http.MethodGet, "/api/auth/me", nil)
}

// Users

func (c *Client) ListUsers(ctx context.Context, role string) ([]User, error) {
	q := url.Values{}
	setQuery(q, "role", role)
	return fetch[[]User](ctx, c, http.MethodGet, "/api/user"+encode(q), nil)
}

func (c *Client) ListStudents(ctx context.Context) ([]User, error) {
	return fetch[[]User](ctx, c, http.MethodGet, "/api/student/get/all", nil)
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	return fetch[*User](ctx, c, http.MethodGet, "/api/user/"+id, nil)
}

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	return fetch[*User](ctx, c, http.MethodPost, "/api/user", req)
}

func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	return fetch[*User](ctx, c, http.MethodPut, "/api/user/"+id, req)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/user/"+id, nil, nil)
}

func (c *Client) ResetPassword(ctx context.Context, id, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/user/"+id+"/reset-password", handlers.ResetPasswordRequest{NewPassword: newPassword}, nil)
}

// UploadProfilePicture sends content as the multipart "file" field.
func (c *Client) UploadProfilePicture(ctx context.Context, id, filename string, content io.Reader) (*User, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read picture: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/user/"+id+"/profile-picture", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	var out User
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Venues

func (c *Client) ListVenues(ctx context.Context, f VenueFilter) ([]Venue, error) {
	q := url.Values{}
	setQuery(q, "faculty", f.Faculty)
	setQuery(q, "department", f.Department)
	setQuery(q, "building", f.Building)
	setQuery(q, "type", f.Type)
	return fetch[[]Venue](ctx, c, http.MethodGet, "/api/venue"+encode(q), nil)
}

func (c *Client) GetVenue(ctx context.Context, id string) (*Venue, error) {
	return fetch[*Venue](ctx, c, http.MethodGet, "/api/venue/"+id, nil)
}

func (c *Client) CreateVenue(ctx context.Context, req CreateVenueRequest) (*Venue, error) {
	return fetch[*Venue](ctx, c, http.MethodPost, "/api/venue", req)
}

func (c *Client) UpdateVenue(ctx context.Context, id string, req UpdateVenueRequest) (*Venue, error) {
	return fetch[*Venue](ctx, c, http.MethodPut, "/api/venue/"+id, req)
}

func (c *Client) DeleteVenue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/venue/"+id, nil, nil)
}

func (c *Client) AddBooking(ctx context.Context, venueID string, req BookingRequest) (*Venue, error) {
	return fetch[*Venue](ctx, c, http.MethodPost, "/api/venue/"+venueID+"/bookings", req)
}

func (c *Client) RemoveBooking(ctx context.Context, venueID, bookingID string) (*Venue, error) {
	return fetch[*Venue](ctx, c, http.MethodDelete, "/api/venue/"+venueID+"/bookings/"+bookingID, nil)
}

// Groups

func (c *Client) ListGroups(ctx context.Context, f GroupFilter) ([]Group, error) {
	q := url.Values{}
	setQuery(q, "faculty", f.Faculty)
	setQuery(q, "department", f.Department)
	if f.Year > 0 {
		q.Set("year", fmt.Sprint(f.Year))
	}
	if f.Semester > 0 {
		q.Set("semester", fmt.Sprint(f.Semester))
	}
	return fetch[[]Group](ctx, c, http.MethodGet, "/api/group"+encode(q), nil)
}

func (c *Client) GetGroup(ctx context.Context, id string) (*Group, error) {
	return fetch[*Group](ctx, c, http.MethodGet, "/api/group/"+id, nil)
}

func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error) {
	return fetch[*Group](ctx, c, http.MethodPost, "/api/group", req)
}

func (c *Client) UpdateGroup(ctx context.Context, id string, req UpdateGroupRequest) (*Group, error) {
	return fetch[*Group](ctx, c, http.MethodPut, "/api/group/"+id, req)
}

func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/group/"+id, nil, nil)
}

func (c *Client) AddStudent(ctx context.Context, groupID, studentID string) (*Group, error) {
	return fetch[*Group](ctx, c, http.MethodPost, "/api/group/"+groupID+"/students", handlers.AddStudentRequest{StudentID: studentID})
}

func (c *Client) RemoveStudent(ctx context.Context, groupID, studentID string) (*Group, error) {
	return fetch[*Group](ctx, c, http.MethodDelete, "/api/group/"+groupID+"/students/"+studentID, nil)
}

// Subjects

func (c *Client) ListSubjects(ctx context.Context, f SubjectFilter) ([]Subject, error) {
	q := url.Values{}
	setQuery(q, "department", f.Department)
	setQuery(q, "status", f.Status)
	if !f.Lecturer.IsZero() {
		q.Set("lecturer", f.Lecturer.Hex())
	}
	return fetch[[]Subject](ctx, c, http.MethodGet, "/api/subject"+encode(q), nil)
}

func (c *Client) GetSubject(ctx context.Context, id string) (*Subject, error) {
	return fetch[*Subject](ctx, c, http.MethodGet, "/api/subject/"+id, nil)
}

func (c *Client) CreateSubject(ctx context.Context, req CreateSubjectRequest) (*Subject, error) {
	return fetch[*Subject](ctx, c, http.MethodPost, "/api/subject", req)
}

func (c *Client) UpdateSubject(ctx context.Context, id string, req UpdateSubjectRequest) (*Subject, error) {
	return fetch[*Subject](ctx, c, http.MethodPut, "/api/subject/"+id, req)
}

func (c *Client) DeleteSubject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/subject/"+id, nil, nil)
}

// Timetables

func (c *Client) ListTimetables(ctx context.Context, f TimetableFilter) ([]Timetable, error) {
	q := url.Values{}
	if !f.Group.IsZero() {
		q.Set("group", f.Group.Hex())
	}
	if f.Published != nil {
		q.Set("published", fmt.Sprint(*f.Published))
	}
	return fetch[[]Timetable](ctx, c, http.MethodGet, "/api/timetable"+encode(q), nil)
}

func (c *Client) GetTimetable(ctx context.Context, id string) (*Timetable, error) {
	return fetch[*Timetable](ctx, c, http.MethodGet, "/api/timetable/"+id, nil)
}

func (c *Client) CreateTimetable(ctx context.Context, req CreateTimetableRequest) (*Timetable, error) {
	return fetch[*Timetable](ctx, c, http.MethodPost, "/api/timetable", req)
}

func (c *Client) UpdateTimetable(ctx context.Context, id string, req UpdateTimetableRequest) (*Timetable, error) {
	return fetch[*Timetable](ctx, c, http.MethodPut, "/api/timetable/"+id, req)
}

func (c *Client) DeleteTimetable(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/timetable/"+id, nil, nil)
}

func (c *Client) AddSlot(ctx context.Context, timetableID string, req SlotRequest) (*Timetable, error) {
	return fetch[*Timetable](ctx, c, http.MethodPost, "/api/timetable/"+timetableID+"/slots", req)
}

func (c *Client) UpdateSlot(ctx context.Context, timetableID, slotID string, req UpdateSlotRequest) (*Timetable, error) {
	return fetch[*Timetable](ctx, c, http.MethodPut, "/api/timetable/"+timetableID+"/slots/"+slotID, req)
}

func (c *Client) DeleteSlot(ctx context.Context, timetableID, slotID string) (*Timetable, error) {
	return fetch[*Timetable](ctx, c, http.MethodDelete, "/api/timetable/"+timetableID+"/slots/"+slotID, nil)
}

func (c *Client) PublishTimetable(ctx context.Context, id string, published bool) (*Timetable, error) {
	return fetch[*Timetable](ctx, c, http.MethodPatch, "/api/timetable/"+id+"/publish", handlers.PublishRequest{Published: &published})
}

func setQuery(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func encode(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
