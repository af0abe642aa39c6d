package ifmaperr

import (
	"time"

	"github.com/contrail/ifmapd/errors"
)

// Error carries a category tag and introspectable context alongside an
// underlying error, so the exporter/sender/walker can count and dump
// conditions without ever surfacing them to the session layer.
type Error struct {
	Err         error
	Category    Category
	Subcategory string
	Context     map[string]interface{}
	Timestamp   time.Time
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Category)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given category wrapping err.
func New(category Category, err error) *Error {
	return &Error{
		Err:       err,
		Category:  category,
		Context:   make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

// Newf creates an Error of the given category with a formatted message.
func Newf(category Category, format string, args ...interface{}) *Error {
	return &Error{
		Err:       errors.Newf(format, args...),
		Category:  category,
		Context:   make(map[string]interface{}),
		Timestamp: time.Now(),
	}
}

func (e *Error) WithSubcategory(sub string) *Error {
	e.Subcategory = sub
	return e
}

func (e *Error) WithContext(key string, value interface{}) *Error {
	e.Context[key] = value
	return e
}
