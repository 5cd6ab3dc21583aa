package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if name := a.controller.DisplayName(); name != "" {
		return fmt.Sprintf("(%s)", name)
	}
	return ""
}

// Root runs the command loop until EOF, "exit" or ctx cancellation.
func (a *App) Root(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("chat %s> ", a.getStatus())
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: send [text], image [path], history, logout, exit")
			} else {
				fmt.Println("Available commands: login, register, history, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "send":
			if !a.isLoggedIn() {
				fmt.Println("Log in first.")
				continue
			}
			_ = a.Send(ctx, args)

		case "image":
			if !a.isLoggedIn() {
				fmt.Println("Log in first.")
				continue
			}
			_ = a.SendImage(ctx, args)

		case "history":
			_ = a.History(ctx)

		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
