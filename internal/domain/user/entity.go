package user

import (
	"time"
)

// User is a document in the users collection, keyed by username.
// Contacts, ContactRequests and SentRequests are sets of usernames;
// membership is enforced in the store with $addToSet / $pull so a
// duplicate can never appear regardless of request interleaving.
type User struct {
	Username        string    `bson:"_id" json:"user"`
	HashedPassword  string    `bson:"hashedPassword" json:"-"`
	Contacts        []string  `bson:"contacts" json:"contacts"`
	ContactRequests []string  `bson:"contactRequests" json:"contactRequests"`
	SentRequests    []string  `bson:"sentRequests" json:"sentRequests"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasContact reports whether other is already a mutual contact.
func (u User) HasContact(other string) bool {
	return contains(u.Contacts, other)
}

// HasPendingRequestFrom reports whether other has an unresolved
// incoming request to this user.
func (u User) HasPendingRequestFrom(other string) bool {
	return contains(u.ContactRequests, other)
}

// HasSentRequestTo reports whether this user has an unresolved
// outgoing request to other.
func (u User) HasSentRequestTo(other string) bool {
	return contains(u.SentRequests, other)
}

func contains(set []string, member string) bool {
	for _, s := range set {
		if s == member {
			return true
		}
	}
	return false
}
