package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/IndraPur1/ChatApp/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials, authenticates and activates the session.
// The password byte slice is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.controller.Login(ctx, email, string(password), a.renderSnapshot)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAuth):
			fmt.Println("Email or password is incorrect.")
		case errors.Is(err, common.ErrUnavailable):
			fmt.Println("Server unavailable, try again later.")
		default:
			fmt.Println("Login failed:", err)
		}
		return err
	}

	fmt.Printf("Logged in as %s\n", res.DisplayName)
	return nil
}

// Register prompts for email, display name and password, creates the account
// and activates the session.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	displayName, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.controller.Register(ctx, email, string(password), displayName, a.renderSnapshot)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			fmt.Println("That email is already registered.")
		} else {
			fmt.Println("Registration failed:", err)
		}
		return err
	}

	fmt.Printf("Welcome, %s!\n", res.DisplayName)
	return nil
}

// Logout signs out remotely and tears the session down. On failure the
// session stays active so the user can retry.
func (a *App) Logout(ctx context.Context) error {
	if err := a.controller.Logout(ctx); err != nil {
		fmt.Println("Logout failed:", err)
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
