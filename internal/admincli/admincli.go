// Package admincli implements the operator commands that grant or revoke the
// admin flag. No HTTP route can do this, so the first admin is created here.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/taskapi/internal/flagx"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
)

var ErrUsage = errors.New("usage error")

var ErrProcessLocalStore = errors.New("memory:// store is private to one process; point DATABASE_DSN at the server's database")

// CheckDSN rejects stores the running server cannot see.
func CheckDSN(dsn string) error {
	scheme, _, _ := strings.Cut(dsn, "://")
	if strings.EqualFold(scheme, "memory") {
		return ErrProcessLocalStore
	}
	return nil
}

const usage = `Usage: admin <command> -email <address> [config flags]

Commands:
  create-admin   create a new admin account (password is prompted)
  promote        grant the admin flag to an existing user
  demote         revoke the admin flag and sign the user out everywhere
`

// UserAdmin is the part of the user service the commands need.
type UserAdmin interface {
	CreateAdmin(ctx context.Context, email, password string) (*models.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) (*models.User, error)
}

type App struct {
	users UserAdmin
	in    *bufio.Reader
	inFd  int
	out   io.Writer
}

func New(users UserAdmin, in *os.File, out io.Writer) *App {
	return &App{users: users, in: bufio.NewReader(in), inFd: int(in.Fd()), out: out}
}

// Run executes one command. args is os.Args[1:]; flags other than -email are
// left to the config loader.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd := args[0]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(flagx.FilterArgs(args[1:], []string{"-email", "--email"})); err != nil {
		return ErrUsage
	}

	switch cmd {
	case "create-admin":
		return a.createAdmin(ctx, *email)
	case "promote":
		return a.setAdmin(ctx, *email, true)
	case "demote":
		return a.setAdmin(ctx, *email, false)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprintf(a.out, "Unknown command: %s\n\n%s", cmd, usage)
		return ErrUsage
	}
}

func (a *App) createAdmin(ctx context.Context, email string) error {
	if email == "" {
		fmt.Fprintln(a.out, "-email is required")
		return ErrUsage
	}

	password, err := getPassword(a.inFd, a.in, a.out, "Enter password: ")
	if err != nil {
		return err
	}
	confirm, err := getPassword(a.inFd, a.in, a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	u, err := a.users.CreateAdmin(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Admin %s created with ID %s\n", u.Email, u.ID)
	return nil
}

func (a *App) setAdmin(ctx context.Context, email string, isAdmin bool) error {
	if email == "" {
		fmt.Fprintln(a.out, "-email is required")
		return ErrUsage
	}

	u, err := a.users.SetAdmin(ctx, email, isAdmin)
	if err != nil {
		return err
	}

	if isAdmin {
		fmt.Fprintf(a.out, "%s is now an admin\n", u.Email)
	} else {
		fmt.Fprintf(a.out, "%s is no longer an admin\n", u.Email)
	}
	return nil
}
