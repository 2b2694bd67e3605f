package models

// UserStats aggregates account counters shown on dashboards.
type UserStats struct {
	Total  int `json:"total_users"`
	Admins int `json:"admin_count"`
	Users  int `json:"user_count"`
	Active int `json:"active_count"`
	Locked int `json:"locked_count"`
}

// Dashboard is the admin overview: every account, newest first, plus totals.
type Dashboard struct {
	Users []User    `json:"users"`
	Stats UserStats `json:"stats"`
}

// Directory lists accounts with admins first, then by username.
type Directory struct {
	Users      []User `json:"users"`
	AdminCount int    `json:"admin_count"`
	UserCount  int    `json:"user_count"`
}

// DeleteResult reports the outcome of an account removal. SelfDeleted is set
// when the actor removed their own account and must be signed out.
type DeleteResult struct {
	Username    string
	SelfDeleted bool
}

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}
