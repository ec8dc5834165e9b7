package domain

import "time"

// OAuthSession is the short-lived state record of an in-progress
// install. Keyed by the random state nonce carried through the
// authorization redirect.
type OAuthSession struct {
	State     string    `json:"state" bson:"_id"`
	Shop      string    `json:"shop" bson:"shop"`
	Scopes    []string  `json:"scopes" bson:"scopes"`
	ReturnURL string    `json:"return_url" bson:"return_url"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
