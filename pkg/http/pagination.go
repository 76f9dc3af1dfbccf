package http

import (
	"net/url"
	"strconv"
	"time"
)

// PaginationParams represents pagination parameters for list requests.
type PaginationParams struct {
	Page  int
	Limit int
}

// ToQuery converts pagination parameters to URL query values.
func (p *PaginationParams) ToQuery() url.Values {
	q := url.Values{}
	if p == nil {
		return q
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// FilterParams represents common filter parameters.
type FilterParams struct {
	Name          string
	UserID        string
	Type          string
	TraceID       string
	SessionID     string
	Level         string
	Version       string
	Environment   string
	FromTimestamp time.Time
	ToTimestamp   time.Time
	Tags          []string
}

// ToQuery converts filter parameters to URL query values.
func (f *FilterParams) ToQuery() url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("name", f.Name)
	set("userId", f.UserID)
	set("type", f.Type)
	set("traceId", f.TraceID)
	set("sessionId", f.SessionID)
	set("level", f.Level)
	set("version", f.Version)
	set("environment", f.Environment)
	if !f.FromTimestamp.IsZero() {
		q.Set("fromTimestamp", f.FromTimestamp.UTC().Format(time.RFC3339))
	}
	if !f.ToTimestamp.IsZero() {
		q.Set("toTimestamp", f.ToTimestamp.UTC().Format(time.RFC3339))
	}
	for _, tag := range f.Tags {
		q.Add("tags", tag)
	}
	return q
}

// MergeQuery merges multiple url.Values into one.
func MergeQuery(queries ...url.Values) url.Values {
	result := url.Values{}
	for _, q := range queries {
		for k, v := range q {
			for _, val := range v {
				result.Add(k, val)
			}
		}
	}
	return result
}
