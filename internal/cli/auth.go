package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pharmadash/pharmadash/internal/api"
)

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("-email is required")
	}
	pass := *password
	if pass == "" {
		var err error
		pass, err = promptLine(a.stdout, "Password: ")
		if err != nil {
			return err
		}
	}

	user, err := a.session.Login(ctx, *email, pass)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Signed in as %s (%s)\n", user.FullName, user.Role)
	return nil
}

func (a *App) cmdLogout() error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Signed out")
	return nil
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	fullName := fs.String("name", "", "full name")
	role := fs.String("role", "staff", "role: admin, pharmacist or staff")
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptLine(a.stdout, "Password: ")
		if err != nil {
			return err
		}
	}

	user, err := a.session.Register(ctx, api.UserCreate{
		Email:    *email,
		FullName: *fullName,
		Password: pass,
		Role:     *role,
		Phone:    *phone,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Account created; signed in as %s (%s)\n", user.FullName, user.Role)
	return nil
}

func (a *App) cmdWhoami() error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	user := a.session.User()
	fmt.Fprintf(a.stdout, "%s <%s>\nRole: %s\nActive: %s\n",
		user.FullName, user.Email, user.Role, yesNo(user.IsActive))
	return nil
}

func promptLine(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
