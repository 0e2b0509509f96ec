package internal

import (
	"fmt"
	"strings"
)

// ExtractorSource reads one value from the request.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries sources in order and returns the first non-empty value.
// The app uses one to find the principal recorded in audit fields.
type Extractor struct {
	sources []ExtractorSource
}

func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func nonEmpty(v string) (string, bool) {
	return v, v != ""
}

func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.Header(name)) }
}

func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.Query(name)) }
}

func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.Param(name)) }
}

func FromForm(name string) ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.Form(name)) }
}

// FromUserID reads the user attached to the session.
func FromUserID() ExtractorSource {
	return func(c Context) (string, bool) { return nonEmpty(c.UserID()) }
}

// FromSession reads a session value, formatting non-strings with fmt.Sprint.
func FromSession(key string) ExtractorSource {
	return func(c Context) (string, bool) {
		val, err := c.SessionValue(key)
		if err != nil || val == nil {
			return "", false
		}
		if s, ok := val.(string); ok {
			return nonEmpty(s)
		}
		return nonEmpty(fmt.Sprint(val))
	}
}

// FromBearerToken reads the token of an "Authorization: Bearer" header.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		auth := c.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return nonEmpty(strings.TrimSpace(auth[7:]))
	}
}
