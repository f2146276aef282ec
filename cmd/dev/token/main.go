package main

import (
	"flag"
	"fmt"
	"os"

	"makerspace/internal/auth"
	"makerspace/internal/user"
	"makerspace/pkg/config"
)

// Prints a bearer token for an existing user. The API reloads the user on
// every request, so the id must be present in the store.
func main() {
	userID := flag.String("user", "", "user id (required)")
	email := flag.String("email", "dev@makerspace.local", "email claim")
	role := flag.String("role", string(user.RoleStandard), "role claim (standard|admin)")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "missing -user")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	tok, exp, err := tokens.Issue(user.User{ID: *userID, Email: *email, Role: user.ParseRole(*role)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("user:    %s\nrole:    %s\nexpires: %s\n\n", *userID, user.ParseRole(*role), exp.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Authorization: Bearer %s\n", tok)
}
