package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrorBody is the decoded body of a failed response. Both the catalog style
// `{"error": {...}}` envelope and RFC 7807 problem details are understood.
type ErrorBody struct {
	Error *struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status,omitempty"`
}

// Message returns the most specific message in the body
func (b *ErrorBody) Message() string {
	switch {
	case b == nil:
		return ""
	case b.Error != nil && b.Error.Message != "":
		return b.Error.Message
	case b.Detail != "":
		return b.Detail
	default:
		return b.Title
	}
}

// ResponseError is returned for every non-2xx response
type ResponseError struct {
	Method     string
	URL        string
	StatusCode int
	StatusText string
	Body       *ErrorBody
	Raw        string
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("Request failed with %d %s", e.StatusCode, e.StatusText)
	if detail := e.Body.Message(); detail != "" {
		msg += ", " + detail
	}
	return msg
}

// NotFound reports whether the response was a 404
func (e *ResponseError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func newResponseError(resp *resty.Response) *ResponseError {
	res := &ResponseError{
		StatusCode: resp.StatusCode(),
		StatusText: http.StatusText(resp.StatusCode()),
		Raw:        string(resp.Body()),
	}
	if req := resp.Request; req != nil {
		res.Method = req.Method
		res.URL = req.URL
	}

	ct := resp.Header().Get("Content-Type")
	if strings.Contains(ct, "json") && len(resp.Body()) > 0 {
		var body ErrorBody
		if err := json.Unmarshal(resp.Body(), &body); err == nil {
			res.Body = &body
		}
	}
	return res
}
