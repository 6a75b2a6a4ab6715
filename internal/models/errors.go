package models

import (
	"errors"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	ErrShopDoesNotExist    = errors.New("shop does not exist")
	ErrAccountDoesNotExist = errors.New("account does not exist")
	ErrClusterDoesNotExist = errors.New("cluster does not exist")

	ErrFileExists    = errors.New("file already exists")
	ErrAccountExists = errors.New("account exists")
	ErrClusterExists = errors.New("cluster exists")
	ErrShopMismatch  = errors.New("shop already exists with different settings")

	ErrInconsistentAccountData = errors.New("account data inconsistent between shop and user config")
	ErrInconsistentClusterData = errors.New("cluster data inconsistent between shop and user config")

	ErrAccountNotConfigured = errors.New("account user data missing")
	ErrClusterNotConfigured = errors.New("cluster user data missing")

	ErrAccountNotSet = errors.New("account not set")
	ErrClusterNotSet = errors.New("cluster not set")

	ErrEmptyName = errors.New("name must not be empty")

	ErrFileLoad   = errors.New("could not load file")
	ErrFileUpdate = errors.New("update failed")
)

// Error is a classified failure carrying the entity or file involved and,
// when one exists, the command that fixes it.
type Error struct {
	Kind error
	Name string // account or cluster name
	Path string // file path
	Hint string
	Err  error
}

// NewError returns an *Error of kind about the named entity.
func NewError(kind error, name string) *Error {
	return &Error{Kind: kind, Name: name}
}

// WithHint sets the remediation hint and returns e.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	switch {
	case e.Name != "":
		b.WriteString(": ")
		b.WriteString(e.Name)
	case e.Path != "":
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RequireName fails with ErrEmptyName when name is empty. level names the
// entity kind ("account", "cluster") in the message.
func RequireName(level, name string) error {
	if name == "" {
		return NewError(ErrEmptyName, level)
	}
	return nil
}

// Hint returns the first remediation hint found in err's chain, if any.
func Hint(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}
