package guard

import "net/http"

// Strategy authenticates a request against one credential source, such as a
// password form, an API key header or an upstream identity provider.
//
// The error return is reserved for infrastructure failures (store down,
// upstream unreachable) and maps to server_error. A rejected credential is not
// an error: return Failure instead.
type Strategy[U any] interface {
	Authenticate(w http.ResponseWriter, r *http.Request) (Outcome[U], error)
}

// LogoutStrategy is implemented by strategies that need to tear down state on
// logout, such as notifying an upstream provider. Strategies without it are
// deemed to agree to every logout.
type LogoutStrategy interface {
	Logout(w http.ResponseWriter, r *http.Request) error
}

type outcomeKind int

const (
	outcomeFailure outcomeKind = iota
	outcomeSuccess
	outcomeHandled
)

// Outcome is the result of a strategy run.
type Outcome[U any] struct {
	kind      outcomeKind
	principal U
	cause     error
}

// Success reports an authenticated principal.
func Success[U any](principal U) Outcome[U] {
	return Outcome[U]{kind: outcomeSuccess, principal: principal}
}

// Failure reports a rejected credential. The cause is logged, never sent to
// the client.
func Failure[U any](cause error) Outcome[U] {
	return Outcome[U]{kind: outcomeFailure, cause: cause}
}

// Handled reports that the strategy already wrote the full response, e.g. a
// redirect to an upstream provider mid-flow. The orchestrator passes through.
func Handled[U any]() Outcome[U] {
	return Outcome[U]{kind: outcomeHandled}
}
