package permissions

import "fmt"

// Kind tags the taxonomy of failures this package surfaces. These are
// kinds, not Go types, so callers compare them with Is rather than type
// assertions.
type Kind string

const (
	// PermissionDenied covers a failed check, a fork that would escalate,
	// or an interactive grant the operator refused.
	PermissionDenied Kind = "PermissionDenied"
	// URIError covers a net URL that fails to parse or lacks a host.
	URIError Kind = "URIError"
	// InvalidArgument covers malformed flag-derived input, e.g. a path the
	// engine cannot resolve to an absolute form.
	InvalidArgument Kind = "InvalidArgument"
)

// Error is the structured failure type every authorization or parsing
// failure in this package surfaces as.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is allows errors.Is(err, &Error{Kind: PermissionDenied}) style checks by
// comparing only the Kind field.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// IsPermissionDenied reports whether err is a PermissionDenied failure.
func IsPermissionDenied(err error) bool {
	return hasKind(err, PermissionDenied)
}

// IsURIError reports whether err is a URIError failure.
func IsURIError(err error) bool {
	return hasKind(err, URIError)
}

// IsInvalidArgument reports whether err is an InvalidArgument failure.
func IsInvalidArgument(err error) bool {
	return hasKind(err, InvalidArgument)
}

func hasKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// deniedErr builds the §6 failure payload: "{operation}, run again with the
// {flag} flag".
func deniedErr(operation, flag string) error {
	return &Error{
		Kind:    PermissionDenied,
		Message: fmt.Sprintf("%s, run again with the %s flag", operation, flag),
	}
}

// escalationErr is the fixed message for a fork that would escalate
// authority; it deliberately never reveals which field escalated.
func escalationErr() error {
	return &Error{Kind: PermissionDenied, Message: "Arguments escalate parent permissions"}
}

// invalidURLErr builds the §4.2 "invalid URL" failure for a URL with no host.
func invalidURLErr() error {
	return &Error{Kind: URIError, Message: "invalid URL: missing host"}
}
