package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"proxedu/config"
	"proxedu/pkg/client"
	"proxedu/pkg/models"
	"proxedu/pkg/phone"
	"proxedu/service"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// serviceOpener connects the configured storage; the returned func releases it.
type serviceOpener func(ctx context.Context) (service.IServiceManager, func(), error)

type commandLine struct {
	cfg      config.Config
	out      io.Writer
	in       io.Reader
	services serviceOpener
	api      *client.Client
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -name NAME -phone PHONE [-role ROLE] [-balance N] - create a user, the password is prompted next")
	fmt.Fprintln(cli.out, "  cleanup                                                   - drop expired registration codes")
	fmt.Fprintln(cli.out, "  register -name NAME -phone PHONE [-token FILE]            - sign up through the Telegram bot")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "adduser":
		cmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
		cmd.SetOutput(cli.out)
		name := cmd.String("name", "", "Full name.")
		phoneNumber := cmd.String("phone", "", "Phone number, +998XXXXXXXXX.")
		role := cmd.String("role", models.RoleAdmin, "One of admin, student, student_offline.")
		balance := cmd.Int64("balance", 0, "Starting balance in so'm.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if strings.TrimSpace(*name) == "" || *phoneNumber == "" {
			cmd.Usage()
			return errHelp
		}
		if !phone.Valid(*phoneNumber) {
			return errors.Errorf("invalid phone number %q", *phoneNumber)
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.addUser(ctx, service.CreateUserInput{
			FullName: *name,
			Phone:    *phoneNumber,
			Password: pwd,
			Role:     *role,
			Balance:  *balance,
		})

	case "cleanup":
		return cli.cleanup(ctx)

	case "register":
		cmd := flag.NewFlagSet("register", flag.ContinueOnError)
		cmd.SetOutput(cli.out)
		name := cmd.String("name", "", "Full name.")
		phoneNumber := cmd.String("phone", "", "Phone number, +998XXXXXXXXX.")
		offline := cmd.Bool("offline", false, "Register as an offline student.")
		tokenFile := cmd.String("token", ".proxedu-token", "Where to keep the issued token.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if strings.TrimSpace(*name) == "" || *phoneNumber == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		req := client.RegisterRequest{FullName: *name, Phone: *phoneNumber, Password: pwd}
		if *offline {
			req.Role = models.RoleStudentOffline
		}
		return cli.register(ctx, req, client.FileTokenStore{Path: *tokenFile})

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	if len(pwd) < 6 {
		return "", errors.New("password must be at least 6 characters")
	}
	return string(pwd), nil
}

func (cli *commandLine) addUser(ctx context.Context, in service.CreateUserInput) error {
	svc, closeFn, err := cli.services(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	user, err := svc.User().Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created user #%d %s (%s)\n", user.ID, user.Phone, user.Role)
	return nil
}

// cleanup asks the running server when one is reachable and falls back to
// the storage directly otherwise.
func (cli *commandLine) cleanup(ctx context.Context) error {
	removed, err := cli.api.Cleanup(ctx)
	if err != nil {
		svc, closeFn, serr := cli.services(ctx)
		if serr != nil {
			return errors.Wrapf(serr, "server unreachable (%v)", err)
		}
		defer closeFn()
		if removed, err = svc.Auth().Cleanup(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "removed %d expired registrations\n", removed)
	return nil
}

func (cli *commandLine) register(ctx context.Context, req client.RegisterRequest, tokens client.TokenStore) error {
	session := client.NewSession(cli.api, tokens, cli.cfg.PollInterval)
	ticket, err := session.Start(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Open %s and press Start, or send /start %s to the bot.\n", ticket.BotURL, ticket.Code)
	fmt.Fprintf(cli.out, "Code expires in %s. Press Enter to check right away.\n", session.Remaining().Round(time.Second))

	done := make(chan error, 1)
	go func() { done <- session.Wait(ctx) }()

	lines := make(chan struct{})
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		scanner := bufio.NewScanner(cli.in)
		for scanner.Scan() {
			select {
			case lines <- struct{}{}:
			case <-stopped:
				return
			}
		}
	}()

	for {
		select {
		case err := <-done:
			return cli.reportRegistration(session, err)
		case <-lines:
			state, err := session.CheckNow(ctx)
			if err != nil && !errors.Is(err, client.ErrFinished) {
				fmt.Fprintf(cli.out, "check failed: %v\n", err)
				continue
			}
			if !state.Terminal() {
				fmt.Fprintf(cli.out, "still waiting, %s left\n", session.Remaining().Round(time.Second))
			}
		}
	}
}

func (cli *commandLine) reportRegistration(session *client.Session, err error) error {
	if err != nil {
		if errors.Is(err, client.ErrExpired) {
			fmt.Fprintln(cli.out, "The code expired. Run register again for a new one.")
		}
		return err
	}
	user := session.User()
	if user != nil {
		fmt.Fprintf(cli.out, "Welcome, %s! Your account is ready.\n", user.FullName)
	}
	return nil
}
