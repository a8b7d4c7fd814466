package domain

// AnonymousSubject is the subject name carried by an unauthenticated context.
const AnonymousSubject = "anonymousUser"

// UserDetails is the principal produced by loading the token subject from the user store.
type UserDetails struct {
	ID       int64
	Username string
}

// Authentication is the request-scoped identity context. A nil *Authentication means
// the request carried no credentials at all.
type Authentication struct {
	Subject       string
	Authenticated bool
	Details       *UserDetails
}
