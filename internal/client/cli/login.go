package cli

import (
	"context"
	"fmt"
)

func (a *App) Login(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	user, err := a.client.SignIn(ctx, username, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return
	}

	if user != nil && user.Name != "" {
		fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	} else {
		fmt.Fprintln(a.out, "Login successful")
	}
}

// Logout destroys the stored session. Local only; the server keeps its
// own token expiry.
func (a *App) Logout(ctx context.Context) {
	if err := a.creds.Clear(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) whoami() {
	u := a.creds.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Username, u.Email)
}
