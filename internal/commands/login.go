package commands

import (
	"context"
	"fmt"
)

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login", "[-email address]")
	email := fs.String("email", "", "Account email (prompted if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprint(a.Out, "Email: ")
		line, err := a.readLine()
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		*email = line
	}

	fmt.Fprint(a.Out, "Password: ")
	readPassword := a.ReadPassword
	if readPassword == nil {
		readPassword = a.readLine
	}
	password, err := readPassword()
	fmt.Fprintln(a.Out)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	user, err := a.Sessions.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Logged in as %s\n", user.Name.Full())
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	fs := a.flagSet("logout", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.Sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Logged out")
	return nil
}
