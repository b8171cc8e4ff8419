package pageviews

import (
	"errors"
	"fmt"

	"github.com/dtnitsch/pageview-charts/models"
)

// Kind classifies why a request produced no series.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindNetworkError Kind = "network_error"
	KindParseError   Kind = "parse_error"
)

// ErrNoItems is wrapped when a response body has no items key.
var ErrNoItems = errors.New("response has no items")

// FetchError reports a failed per-article request.
type FetchError struct {
	Kind   Kind
	Title  string
	Access string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Title, e.Access, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, or "" when err is not a FetchError.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func newFetchError(kind Kind, title string, access string, err error) *FetchError {
	return &FetchError{Kind: kind, Title: title, Access: access, Err: err}
}

// itemError describes a malformed element of the items array.
type itemError struct {
	Index int
	Msg   string
}

func (e *itemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Msg)
}

// asObservation converts one parsed item into an Observation. ojg decodes
// integers as int64 and anything with a fraction or exponent as float64.
func asObservation(i int, item any) (models.Observation, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return models.Observation{}, &itemError{Index: i, Msg: "not an object"}
	}

	ts, ok := obj["timestamp"].(string)
	if !ok || ts == "" {
		return models.Observation{}, &itemError{Index: i, Msg: "missing timestamp"}
	}

	var views int64
	switch v := obj["views"].(type) {
	case int64:
		views = v
	case float64:
		if v != float64(int64(v)) {
			return models.Observation{}, &itemError{Index: i, Msg: fmt.Sprintf("views %v is not an integer", v)}
		}
		views = int64(v)
	case nil:
		return models.Observation{}, &itemError{Index: i, Msg: "missing views"}
	default:
		return models.Observation{}, &itemError{Index: i, Msg: fmt.Sprintf("views has type %T", v)}
	}
	if views < 0 {
		return models.Observation{}, &itemError{Index: i, Msg: "negative views"}
	}

	return models.Observation{Timestamp: ts, Views: views}, nil
}
