package models

// User is the signed-in account profile returned by POST /accounts/signin.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}
