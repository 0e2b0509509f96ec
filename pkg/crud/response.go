package crud

import (
	"net/http"

	"github.com/dmitrymomot/scaffold/pkg/bulk"
)

// Kind tells the HTTP binding how to write a Response.
type Kind int

const (
	KindHTML Kind = iota
	KindJSON
	KindRedirect
	KindFile
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindJSON:
		return "json"
	case KindRedirect:
		return "redirect"
	case KindFile:
		return "file"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Response describes the outcome of a dispatched request.
type Response struct {
	Data        map[string]any
	JSON        any
	Bulk        *bulk.Result
	Template    string
	Location    string
	Filename    string
	ContentType string
	Message     string
	Body        []byte
	Kind        Kind
	Status      int
}

// HTML is a page render.
func HTML(template string, data map[string]any) Response {
	return Response{Kind: KindHTML, Status: http.StatusOK, Template: template, Data: data}
}

// JSON is a JSON document.
func JSON(status int, v any) Response {
	return Response{Kind: KindJSON, Status: status, JSON: v}
}

// Redirect is a see-other redirect.
func Redirect(location string) Response {
	return Response{Kind: KindRedirect, Status: http.StatusSeeOther, Location: location}
}

// Download is a file attachment.
func Download(filename, contentType string, body []byte) Response {
	return Response{Kind: KindFile, Status: http.StatusOK, Filename: filename, ContentType: contentType, Body: body}
}

// Fail is an error page.
func Fail(status int, message string) Response {
	return Response{Kind: KindError, Status: status, Message: message}
}
