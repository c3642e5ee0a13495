package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"blogsite/internal/config"
	"blogsite/internal/handlers"
	"blogsite/internal/logger"
	"blogsite/internal/render"
	"blogsite/internal/repository"
	"blogsite/internal/repository/db"
	"blogsite/internal/server"
	"blogsite/internal/service"
	"blogsite/internal/session"
	"blogsite/internal/storage"
	"blogsite/web"

	"github.com/aarol/reload"
	"golang.org/x/term"
)

const (
	defaultFakePosts = 50
	shutdownTimeout  = 10 * time.Second
)

// test seams for the password prompt
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

type app struct {
	cfg *config.Config
	log *logger.Logger
	in  io.Reader
	out io.Writer
}

func (a *app) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "serve":
		return a.serve(ctx)
	case "initdb":
		return a.initDB(ctx)
	case "dropdb":
		return a.dropDB(ctx)
	case "fakerdb":
		return a.fakerDB(ctx, args)
	case "createuser":
		return a.createUser(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

// openDB opens the configured database and brings its schema up to date.
func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	conn, err := db.Open(a.cfg.DB.Driver, a.cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn, a.cfg.DB.Driver, a.log); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (a *app) closeDB(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		a.log.Errorw("failed to close db", "err", err)
	}
}

// newServices wires repositories and the upload store into the service layer.
func (a *app) newServices(ctx context.Context, conn *sql.DB) (*service.Service, error) {
	store, err := a.newStore(ctx)
	if err != nil {
		return nil, err
	}
	repos := repository.NewRepository(conn, a.cfg.DB.Driver)
	return service.NewService(repos, store), nil
}

func (a *app) newStore(ctx context.Context) (storage.Store, error) {
	if a.cfg.Upload.Backend != "s3" {
		return storage.NewLocal(a.cfg.Upload.Dir, a.cfg.Upload.URLPath), nil
	}
	s3, err := storage.NewS3(ctx, storage.S3Options{
		Bucket:    a.cfg.S3.Bucket,
		Region:    a.cfg.S3.Region,
		Endpoint:  a.cfg.S3.Endpoint,
		AccessKey: a.cfg.S3.AccessKey,
		SecretKey: a.cfg.S3.SecretKey,
		PublicURL: a.cfg.S3.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	return s3, nil
}

// newHTTPHandler builds the router; in dev mode templates come from disk and
// pages reload in the browser when they change.
func (a *app) newHTTPHandler(services *service.Service) (http.Handler, error) {
	templates := web.Templates()
	if a.cfg.Server.Dev {
		templates = os.DirFS(a.cfg.Server.TemplateDir)
	}
	tmpl, err := render.NewHTML(templates, a.cfg.Server.Dev)
	if err != nil {
		return nil, err
	}

	opts := handlers.Options{
		Templates:      tmpl,
		Assets:         web.Static(),
		MaxUploadBytes: a.cfg.Upload.MaxBytes,
		FeedInterval:   a.cfg.Feed.Interval,
		FeedSize:       a.cfg.Feed.Size,
	}
	if a.cfg.Upload.Backend == "local" {
		opts.UploadDir = a.cfg.Upload.Dir
		opts.UploadURLPath = a.cfg.Upload.URLPath
	}

	sessions := session.NewManager(a.cfg.Session.Secret, a.cfg.Session.CookieName, a.cfg.Session.TTL, a.cfg.Session.Secure)
	var h http.Handler = handlers.NewHandler(services, sessions, a.log, opts).InitRoutes()

	if a.cfg.Server.Dev {
		h = reload.New(a.cfg.Server.TemplateDir).Handle(h)
	}
	return h, nil
}

func (a *app) serve(ctx context.Context) error {
	if a.cfg.Server.Dev {
		a.log.Warnw("running in dev mode", "template_dir", a.cfg.Server.TemplateDir)
	}

	conn, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer a.closeDB(conn)

	services, err := a.newServices(ctx, conn)
	if err != nil {
		return err
	}
	h, err := a.newHTTPHandler(services)
	if err != nil {
		return err
	}

	srv := &server.Server{}
	errc := make(chan error, 1)
	go func() { errc <- srv.Run(a.cfg.Server.Port, h) }()
	a.log.Infow("server started", "port", a.cfg.Server.Port, "db_driver", a.cfg.DB.Driver, "upload_backend", a.cfg.Upload.Backend)

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Infow("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (a *app) initDB(ctx context.Context) error {
	conn, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer a.closeDB(conn)

	fmt.Fprintln(a.out, "Initialized database.")
	return nil
}

func (a *app) dropDB(ctx context.Context) error {
	conn, err := db.Open(a.cfg.DB.Driver, a.cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer a.closeDB(conn)

	if err := db.Reset(ctx, conn, a.cfg.DB.Driver, a.log); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Dropped database.")
	return nil
}

func (a *app) fakerDB(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fakerdb", flag.ContinueOnError)
	fs.SetOutput(a.out)
	count := fs.Int("n", defaultFakePosts, "number of posts to insert")
	if err := fs.Parse(args); err != nil {
		return err
	}

	conn, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer a.closeDB(conn)

	services, err := a.newServices(ctx, conn)
	if err != nil {
		return err
	}
	n, err := services.SeedPosts(ctx, *count)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Inserted %d fake posts.\n", n)
	return nil
}

func (a *app) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(a.out)
	in := service.RegisterInput{}
	fs.StringVar(&in.Username, "username", "", "login name (4-25 characters)")
	fs.StringVar(&in.Name, "name", "", "display name")
	fs.StringVar(&in.Email, "email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in.Username == "" || in.Email == "" {
		return errors.New("-username and -email are required")
	}
	if in.Name == "" {
		in.Name = in.Username
	}

	password, err := a.promptPassword()
	if err != nil {
		return err
	}
	in.Password = password

	conn, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer a.closeDB(conn)

	services, err := a.newServices(ctx, conn)
	if err != nil {
		return err
	}
	id, err := services.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created user %q (id %d).\n", in.Username, id)
	return nil
}

// promptPassword reads the password twice without echo on a terminal, or one
// line from input when it is piped.
func (a *app) promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(a.out, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(a.out, "Confirm password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
