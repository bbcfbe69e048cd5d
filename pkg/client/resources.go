package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alumnet/apiserver/types"
)

// RegisterRequest creates an account. Role is inferred from the email domain
// when empty.
type RegisterRequest struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           types.Role `json:"role,omitempty"`
	GraduationYear *int       `json:"graduationYear,omitempty"`
	Department     string     `json:"department,omitempty"`
	Password       string     `json:"password,omitempty"`
}

// LoginRequest signs in, creating the account on first use.
type LoginRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	GraduationYear *int   `json:"graduationYear,omitempty"`
	Password       string `json:"password,omitempty"`
}

// Session is the reply to register and login.
type Session struct {
	types.User
	Token string `json:"token"`
}

// ApplyResult is the reply to a job application.
type ApplyResult struct {
	Message string    `json:"message"`
	Job     types.Job `json:"job"`
}

// RSVPResult is the reply to an RSVP toggle.
type RSVPResult struct {
	RSVPs     []int64     `json:"rsvps"`
	Attending bool        `json:"attending"`
	Event     types.Event `json:"event"`
}

// CampaignRequest queues a mailing to a recipient group.
type CampaignRequest struct {
	Group   string `json:"group"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Register creates an account and signs the client in as it.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	var s Session
	if err := c.send(ctx, http.MethodPost, "/users/register", req, &s, "/users"); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

// Login signs the client in.
func (c *Client) Login(ctx context.Context, req LoginRequest) (Session, error) {
	var s Session
	if err := c.send(ctx, http.MethodPost, "/users/login", req, &s, "/users"); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

func (c *Client) Profile(ctx context.Context) (types.User, error) {
	var u types.User
	err := c.get(ctx, "/users/profile", &u)
	return u, err
}

func (c *Client) UpdateProfile(ctx context.Context, update types.ProfileUpdate) (types.User, error) {
	var u types.User
	err := c.send(ctx, http.MethodPut, "/users/profile", update, &u, "/users", "/messages/contacts")
	return u, err
}

// Users lists the directory. Admin only.
func (c *Client) Users(ctx context.Context, filter types.UserFilter) ([]types.User, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Role != "" {
		q.Set("role", string(filter.Role))
	}
	if filter.Department != "" {
		q.Set("department", filter.Department)
	}
	if filter.GraduationYear != 0 {
		q.Set("graduationYear", strconv.Itoa(filter.GraduationYear))
	}
	path := "/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var users []types.User
	err := c.get(ctx, path, &users)
	return users, err
}

func (c *Client) User(ctx context.Context, id int64) (types.User, error) {
	var u types.User
	err := c.get(ctx, fmt.Sprintf("/users/%d", id), &u)
	return u, err
}

func (c *Client) Stats(ctx context.Context) (types.Stats, error) {
	var s types.Stats
	err := c.get(ctx, "/users/stats", &s)
	return s, err
}

// DeleteUser removes an account and everything it owns, so every cached
// resource is dropped.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, "/")
}

func (c *Client) Jobs(ctx context.Context, search string) ([]types.Job, error) {
	path := "/jobs"
	if search != "" {
		path += "?" + url.Values{"search": {search}}.Encode()
	}
	var jobs []types.Job
	err := c.get(ctx, path, &jobs)
	return jobs, err
}

func (c *Client) Job(ctx context.Context, id int64) (types.Job, error) {
	var j types.Job
	err := c.get(ctx, fmt.Sprintf("/jobs/%d", id), &j)
	return j, err
}

func (c *Client) CreateJob(ctx context.Context, input types.JobInput) (types.Job, error) {
	var j types.Job
	err := c.send(ctx, http.MethodPost, "/jobs", input, &j, "/jobs")
	return j, err
}

// UpdateJob edits a job. Nil fields are left untouched.
func (c *Client) UpdateJob(ctx context.Context, id int64, update types.JobUpdate) (types.Job, error) {
	var j types.Job
	err := c.send(ctx, http.MethodPut, fmt.Sprintf("/jobs/%d", id), update, &j, "/jobs")
	return j, err
}

func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/jobs/%d", id), nil, nil, "/jobs")
}

func (c *Client) ApplyJob(ctx context.Context, id int64) (ApplyResult, error) {
	var res ApplyResult
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/jobs/%d/apply", id), nil, &res, "/jobs")
	return res, err
}

func (c *Client) Events(ctx context.Context) ([]types.Event, error) {
	var events []types.Event
	err := c.get(ctx, "/events", &events)
	return events, err
}

func (c *Client) Event(ctx context.Context, id int64) (types.Event, error) {
	var e types.Event
	err := c.get(ctx, fmt.Sprintf("/events/%d", id), &e)
	return e, err
}

func (c *Client) CreateEvent(ctx context.Context, input types.EventInput) (types.Event, error) {
	var e types.Event
	err := c.send(ctx, http.MethodPost, "/events", input, &e, "/events")
	return e, err
}

// UpdateEvent edits an event. Nil fields are left untouched.
func (c *Client) UpdateEvent(ctx context.Context, id int64, update types.EventUpdate) (types.Event, error) {
	var e types.Event
	err := c.send(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), update, &e, "/events")
	return e, err
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil, "/events")
}

// ToggleRSVP adds the caller to the event, or removes them if already in.
func (c *Client) ToggleRSVP(ctx context.Context, id int64) (RSVPResult, error) {
	var res RSVPResult
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/events/%d/rsvp", id), nil, &res, "/events")
	return res, err
}

func (c *Client) Posts(ctx context.Context) ([]types.Post, error) {
	var posts []types.Post
	err := c.get(ctx, "/news", &posts)
	return posts, err
}

func (c *Client) CreatePost(ctx context.Context, content string) (types.Post, error) {
	var p types.Post
	err := c.send(ctx, http.MethodPost, "/news", map[string]string{"content": content}, &p, "/news")
	return p, err
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/news/%d", id), nil, nil, "/news")
}

func (c *Client) ToggleLike(ctx context.Context, id int64) (types.Post, error) {
	var p types.Post
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/news/%d/like", id), nil, &p, "/news")
	return p, err
}

func (c *Client) Comment(ctx context.Context, postID int64, text string) (types.Comment, error) {
	var cm types.Comment
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/news/%d/comments", postID), map[string]string{"text": text}, &cm, "/news")
	return cm, err
}

func (c *Client) Contacts(ctx context.Context) ([]types.UserSummary, error) {
	var contacts []types.UserSummary
	err := c.get(ctx, "/messages/contacts", &contacts)
	return contacts, err
}

func (c *Client) Conversation(ctx context.Context, userID int64) ([]types.Message, error) {
	var msgs []types.Message
	err := c.get(ctx, fmt.Sprintf("/messages/%d", userID), &msgs)
	return msgs, err
}

func (c *Client) SendMessage(ctx context.Context, userID int64, body string) (types.Message, error) {
	var m types.Message
	err := c.send(ctx, http.MethodPost, fmt.Sprintf("/messages/%d", userID), map[string]string{"body": body}, &m, "/messages/")
	return m, err
}

func (c *Client) CampaignGroups(ctx context.Context) ([]types.CampaignGroup, error) {
	var groups []types.CampaignGroup
	err := c.get(ctx, "/campaigns/groups", &groups)
	return groups, err
}

func (c *Client) SendCampaign(ctx context.Context, req CampaignRequest) (types.Campaign, error) {
	var campaign types.Campaign
	err := c.send(ctx, http.MethodPost, "/campaigns", req, &campaign)
	return campaign, err
}

// Donate records a pledge. No sign-in is needed.
func (c *Client) Donate(ctx context.Context, donation types.Donation) (types.Donation, error) {
	var d types.Donation
	err := c.send(ctx, http.MethodPost, "/donations", donation, &d, "/donations")
	return d, err
}

func (c *Client) Donations(ctx context.Context) ([]types.Donation, error) {
	var donations []types.Donation
	err := c.get(ctx, "/donations", &donations)
	return donations, err
}
