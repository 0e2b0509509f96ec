package crud

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Params are the route parameters of a CRUD URL.
type Params struct {
	Action string
	ID     string
	Page   string
}

// File is an uploaded file.
type File struct {
	Open        func() (io.ReadCloser, error)
	Filename    string
	ContentType string
	Size        int64
}

// Request is the transport-neutral view of one HTTP request.
type Request struct {
	Header http.Header
	Query  url.Values
	Form   url.Values
	Files  map[string]File
	Params Params
	Method string
	Path   string
	// Principal identifies the acting user for audit fields.
	Principal string
}

// ItemID returns the id param, falling back to the action segment so that
// "/base/{id}" addresses an item.
func (r Request) ItemID() string {
	if r.Params.ID != "" {
		return r.Params.ID
	}
	return r.Params.Action
}

// IsGet reports whether the request only reads.
func (r Request) IsGet() bool {
	return r.Method == "" || strings.EqualFold(r.Method, "GET") || strings.EqualFold(r.Method, "HEAD")
}

// FormValue returns the first value of a form field.
func (r Request) FormValue(key string) string {
	if r.Form == nil {
		return ""
	}
	return r.Form.Get(key)
}

// FormValues returns every value submitted for key, including the
// "key[]" form used by checkbox lists.
func (r Request) FormValues(key string) []string {
	if r.Form == nil {
		return nil
	}
	out := append([]string(nil), r.Form[key]...)
	return append(out, r.Form[key+"[]"]...)
}

// HasForm reports whether a form field was submitted.
func (r Request) HasForm(key string) bool {
	if r.Form == nil {
		return false
	}
	_, ok := r.Form[key]
	return ok
}
