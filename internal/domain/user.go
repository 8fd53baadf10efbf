package domain

// UserProfile is the caller identity carried by a verified bearer token
type UserProfile struct {
	Sub       string `json:"sub"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// IdentityStatus tags the outcome of resolving the caller's identity
type IdentityStatus int

const (
	// IdentityUnauthenticated means no credentials, or credentials that failed verification
	IdentityUnauthenticated IdentityStatus = iota
	// IdentityAuthenticated means the token verified and User is set
	IdentityAuthenticated
	// IdentityFailed means resolution hit an infrastructure error; Err is set
	IdentityFailed
)

func (s IdentityStatus) String() string {
	switch s {
	case IdentityAuthenticated:
		return "authenticated"
	case IdentityFailed:
		return "failed"
	default:
		return "unauthenticated"
	}
}

// Identity is the tagged result of identity resolution
type Identity struct {
	Status IdentityStatus
	User   *UserProfile
	Err    error
}

func Authenticated(user *UserProfile) Identity {
	return Identity{Status: IdentityAuthenticated, User: user}
}

func Unauthenticated() Identity {
	return Identity{Status: IdentityUnauthenticated}
}

func IdentityError(err error) Identity {
	return Identity{Status: IdentityFailed, Err: err}
}
