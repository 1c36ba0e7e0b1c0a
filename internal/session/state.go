package session

// State is the portal login lifecycle:
// Unauthenticated -> Authenticating -> Authenticated -> (Expired | LoggedOut).
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Expired
	LoggedOut
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	case LoggedOut:
		return "logged out"
	default:
		return "unknown"
	}
}
