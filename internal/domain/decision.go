package domain

// DecisionKind enumerates the terminal outcomes of the access engine.
type DecisionKind int

const (
	// DecisionAllow delegates to the downstream handler.
	DecisionAllow DecisionKind = iota
	// DecisionRedirect short-circuits with a Location redirect.
	DecisionRedirect
	// DecisionDeny short-circuits with a 403 and a machine-readable code.
	DecisionDeny
	// DecisionMethodNotAllowed short-circuits with a 405.
	DecisionMethodNotAllowed
)

// Machine-readable error codes surfaced to clients.
const CodeForbidden = "FORBIDDEN"

// AccessDecision is the value the decision engine returns. Redirects are
// modeled as data, not control flow; only the transport adapter turns a
// decision into an HTTP response.
type AccessDecision struct {
	Kind           DecisionKind
	RedirectURL    string
	RedirectStatus int
	Code           string
	Message        string
}

// Allow returns the pass-through decision.
func Allow() AccessDecision {
	return AccessDecision{Kind: DecisionAllow}
}

// RedirectTo returns a redirect decision with the given status.
func RedirectTo(url string, status int) AccessDecision {
	return AccessDecision{Kind: DecisionRedirect, RedirectURL: url, RedirectStatus: status}
}

// Deny returns a 403 decision carrying a stable code.
func Deny(code, message string) AccessDecision {
	return AccessDecision{Kind: DecisionDeny, Code: code, Message: message}
}

// MethodNotAllowed returns the 405 decision.
func MethodNotAllowed() AccessDecision {
	return AccessDecision{Kind: DecisionMethodNotAllowed}
}
