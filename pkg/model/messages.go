package model

// LoginRequest carries the credentials for a login call.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the remote service's answer to a login call.
// Success is false when the credentials were rejected.
type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	User      User      `json:"user"`
	AuthToken AuthToken `json:"authToken"`
}

// FollowingRequest asks for one page of the users FollowerAlias follows.
// LastFolloweeAlias is empty for the first page.
type FollowingRequest struct {
	FollowerAlias     string `json:"followerAlias"`
	Limit             int    `json:"limit"`
	LastFolloweeAlias string `json:"lastFolloweeAlias,omitempty"`
}

// FollowingResponse is one page of followees.
type FollowingResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Followees    []User `json:"followees"`
	HasMorePages bool   `json:"hasMorePages"`
}
