// Package model defines the data structures used throughout the application.
package model

// Student is a student profile created the first time any external platform
// account is linked. The ID is the database's auto-increment key — everything
// else in the system references students through it.
//
// Name/Surname/Email are refreshed on every subsequent login from a linked
// platform: the latest upstream profile always wins.
type Student struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	University string `json:"university"`
	Email      string `json:"email"` // unique; synthesized if the platform hides it
}

// PlatformAccount binds one Student to one identity on an external developer
// platform (GitHub, Notion, ...).
//
// PlatformUserID is the platform's own user id in string form. It is unique
// across the table and is the reconciliation key for "have we seen this user
// before" — lookups never go through the (student, platform) pair.
//
// AccessToken holds the most recent upstream OAuth token and is overwritten on
// every login. It doubles as the session credential for the import endpoints.
// RefreshToken is stored when the platform provides one but is currently unused.
type PlatformAccount struct {
	ID             int64  `json:"id"`
	StudentID      int64  `json:"student_id"`
	PlatformName   string `json:"platform_name"`
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	PlatformUserID string `json:"platform_user_id"`
}
