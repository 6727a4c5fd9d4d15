package directory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const tokenHeader = "Token"

type Operation int

const (
	OpListUsers Operation = iota
	OpGetUser
	OpGetPositions
	OpGetToken
	OpRegister
)

func (o Operation) String() string {
	switch o {
	case OpListUsers:
		return "list_users"
	case OpGetUser:
		return "get_user"
	case OpGetPositions:
		return "get_positions"
	case OpGetToken:
		return "get_token"
	case OpRegister:
		return "register"
	default:
		return "unknown"
	}
}

// Request describes one API operation as data. Constructing a Request never
// fails; field validation belongs to the caller.
type Request struct {
	Operation  Operation
	Page       int
	Count      int
	UserID     int
	Submission Submission
	Token      string
}

func ListUsers(page, count int) Request {
	return Request{Operation: OpListUsers, Page: page, Count: count}
}

func GetUser(id int) Request {
	return Request{Operation: OpGetUser, UserID: id}
}

func GetPositions() Request {
	return Request{Operation: OpGetPositions}
}

func GetToken() Request {
	return Request{Operation: OpGetToken}
}

func Register(submission Submission, token string) Request {
	return Request{Operation: OpRegister, Submission: submission, Token: token}
}

func (r Request) Method() string {
	if r.Operation == OpRegister {
		return http.MethodPost
	}
	return http.MethodGet
}

func (r Request) Path() string {
	switch r.Operation {
	case OpGetUser:
		return "/users/" + strconv.Itoa(r.UserID)
	case OpGetPositions:
		return "/positions"
	case OpGetToken:
		return "/token"
	default:
		return "/users"
	}
}

func (r Request) Query() url.Values {
	if r.Operation != OpListUsers {
		return nil
	}
	return url.Values{
		"page":  []string{strconv.Itoa(r.Page)},
		"count": []string{strconv.Itoa(r.Count)},
	}
}

func (r Request) newHTTPRequest(ctx context.Context, baseURL string) (*http.Request, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + r.Path())
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if q := r.Query(); q != nil {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	var contentType string
	if r.Operation == OpRegister {
		boundary := NewBoundary()
		payload, err := EncodeMultipart(r.Submission, boundary)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
		contentType = MultipartContentType(boundary)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method(), u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.Operation == OpRegister {
		req.Header.Set("Content-Type", contentType)
		req.Header.Set(tokenHeader, r.Token)
	}
	return req, nil
}
