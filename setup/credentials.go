package setup

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Credentials holds the PIA account username and password.
type Credentials struct {
	Username string
	Password string
}

// PromptCredentials reads the PIA username from stdin and the password
// twice without echo, retrying until both password entries match.
func PromptCredentials() (Credentials, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("\nEnter your PIA username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return Credentials{}, fmt.Errorf("reading username: %w", err)
	}
	username = strings.TrimSpace(username)

	for {
		fmt.Print("Enter your password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return Credentials{}, fmt.Errorf("reading password: %w", err)
		}

		fmt.Print("Please re-enter password: ")
		confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return Credentials{}, fmt.Errorf("reading password: %w", err)
		}

		if string(password) == string(confirm) {
			return Credentials{Username: username, Password: string(password)}, nil
		}
		fmt.Println("\nPasswords do not match. Please try again.")
	}
}
