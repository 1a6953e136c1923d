package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"mdnotes/internal/auth"
	"mdnotes/internal/config"
)

var errUsage = errors.New("usage: note-user [list|add|remove] <username>")

func main() {
	path := authFilePath(config.Load())
	if err := run(os.Args[1:], path, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, path string, out io.Writer) error {
	if len(args) == 0 || (args[0] == "list" && len(args) == 1) {
		return listUsers(path, out)
	}
	if len(args) != 2 {
		return errUsage
	}
	user := strings.TrimSpace(args[1])
	if user == "" || strings.Contains(user, ":") {
		return errors.New("username must be non-empty and must not contain ':'")
	}
	switch args[0] {
	case "add":
		return addUser(path, user)
	case "remove":
		return removeUser(path, user, out)
	default:
		return errUsage
	}
}

func authFilePath(cfg config.Config) string {
	if cfg.AuthFile != "" {
		return cfg.AuthFile
	}
	return filepath.Join(cfg.DataDir, "auth.txt")
}

func listUsers(path string, out io.Writer) error {
	names, err := auth.UserNames(path)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "no users")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func addUser(path, user string) error {
	exists, err := userExists(path, user)
	if err != nil {
		return err
	}
	if exists {
		ok, err := promptYesNo(fmt.Sprintf("User %q exists. Update password? [y/N]: ", user))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "no changes made")
			return nil
		}
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := auth.SetUser(path, user, hash); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "updated %s\n", path)
	return nil
}

func removeUser(path, user string, out io.Writer) error {
	removed, err := auth.RemoveUser(path, user)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("user %q not found", user)
	}
	fmt.Fprintf(out, "removed %s\n", user)
	return nil
}

func userExists(path, user string) (bool, error) {
	names, err := auth.UserNames(path)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == user {
			return true, nil
		}
	}
	return false, nil
}

func promptPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(pass)), nil
}

func promptYesNo(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
