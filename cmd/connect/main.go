// Command connect keeps a marketplace session on the local machine and
// applies the route guards to navigations made with it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/policy"
	"github.com/gccconnect/connect/internal/core/ports"
	"github.com/gccconnect/connect/internal/core/session"
	"github.com/gccconnect/connect/internal/infrastructure/client"
	"github.com/gccconnect/connect/internal/infrastructure/db/memory"
	redisdb "github.com/gccconnect/connect/internal/infrastructure/db/redis"
	"github.com/gccconnect/connect/internal/infrastructure/storage/file"
	"github.com/gccconnect/connect/internal/pkg/validate"
	"github.com/gccconnect/connect/pkg/logger"
)

const usage = `usage: connect [flags] <command> [args]

commands:
  login    -email E -password P
  register -email E -name N -role GCC|STARTUP -password P
  logout
  whoami   [-remote]
  open     <path>

flags:
`

type options struct {
	api             string
	timeout         time.Duration
	storage         string
	state           string
	redisAddr       string
	profile         string
	requireApproval bool
	verbose         bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.api, "api", envOr("CONNECT_API_URL", "http://localhost:8080"), "connect API base URL")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Second, "request timeout")
	fs.StringVar(&opts.storage, "storage", "file", "session storage: file, redis or memory")
	fs.StringVar(&opts.state, "state", "", "session file (default $XDG_CONFIG_HOME/gccconnect/session.json)")
	fs.StringVar(&opts.redisAddr, "redis-addr", envOr("REDIS_ADDR", "localhost:6379"), "redis address for -storage redis")
	fs.StringVar(&opts.profile, "profile", "default", "session profile name for -storage redis")
	fs.BoolVar(&opts.requireApproval, "require-approval", true, "keep unapproved sessions out of role areas")
	fs.BoolVar(&opts.verbose, "v", false, "log navigation decisions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger.Init(logger.Options{Level: level, Pretty: true, Output: stderr, Service: "connect-cli"})

	storage, closeStorage, err := openStorage(ctx, opts)
	if err != nil {
		return err
	}
	defer closeStorage()

	store := session.NewStore()
	verifier := client.NewVerifier(opts.api, opts.timeout, func() string { return store.Snapshot().Token() })
	router := policy.NewRouter(policy.NewTable(policy.Options{RequireApproval: opts.requireApproval}), store, logger.Component("policy"))
	mgr := session.NewManager(store, session.NewPersister(storage), verifier, router, validate.New(), logger.Component("session"))

	if _, err := mgr.Init(ctx); err != nil {
		return err
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "login":
		return login(ctx, mgr, rest, stdout, stderr)
	case "register":
		return register(ctx, mgr, rest, stdout, stderr)
	case "logout":
		fmt.Fprintln(stdout, mgr.Logout(ctx))
		return nil
	case "whoami":
		return whoami(ctx, mgr, verifier, rest, stdout, stderr)
	case "open":
		if len(rest) != 1 {
			return errors.New("open takes exactly one path")
		}
		fmt.Fprintln(stdout, router.Navigate(ctx, domain.Route(rest[0])))
		return nil
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func openStorage(ctx context.Context, opts options) (ports.SessionStorage, func(), error) {
	switch opts.storage {
	case "file":
		path := opts.state
		if path == "" {
			p, err := file.DefaultPath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		return file.New(path), func() {}, nil
	case "redis":
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: opts.redisAddr})
		if err != nil {
			return nil, nil, err
		}
		return redisdb.NewSessionStorage(rdb, opts.profile), func() { _ = rdb.Close() }, nil
	case "memory":
		// Lives for one invocation only.
		return memory.NewSessionStorage(0), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", opts.storage)
	}
}

func login(ctx context.Context, mgr *session.Manager, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	identity, landed, err := mgr.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "logged in as %s (%s, %s)\n%s\n", identity.Email, identity.Role, identity.ApprovalStatus, landed)
	return nil
}

func register(ctx context.Context, mgr *session.Manager, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var draft domain.RegistrationDraft
	var role string
	fs.StringVar(&draft.Email, "email", "", "account email")
	fs.StringVar(&draft.Name, "name", "", "company name")
	fs.StringVar(&role, "role", "", "GCC or STARTUP")
	fs.StringVar(&draft.Password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	draft.Role = domain.Role(strings.ToUpper(role))

	identity, landed, err := mgr.Register(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "registered %s (%s), awaiting approval\n%s\n", identity.Email, identity.Role, landed)
	return nil
}

func whoami(ctx context.Context, mgr *session.Manager, verifier *client.Verifier, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(stderr)
	remote := fs.Bool("remote", false, "fetch the stored identity from the API")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap := mgr.Snapshot()
	if !snap.LoggedIn() {
		fmt.Fprintln(stdout, domain.StateAnonymous)
		return nil
	}
	id := snap.Session.Identity
	fmt.Fprintf(stdout, "%s %s %s %s\n", id.Email, id.Role, id.ApprovalStatus, snap.State())

	if *remote {
		current, err := verifier.Me(ctx)
		if err != nil {
			return err
		}
		if current.ApprovalStatus != id.ApprovalStatus {
			fmt.Fprintf(stdout, "approval changed to %s, log in again to refresh the session\n", current.ApprovalStatus)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
