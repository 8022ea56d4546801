package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/jadupage/storefront/internal/client/api"
	"github.com/jadupage/storefront/internal/client/config"
	"github.com/jadupage/storefront/internal/client/credentials"
	"github.com/jadupage/storefront/internal/client/services"
	"github.com/jadupage/storefront/internal/client/storage"
	"github.com/jadupage/storefront/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the storefront client together and drives the REPL.
type App struct {
	config *config.Config
	log    logging.Logger

	db         *sql.DB
	persistent storage.Repository
	ephemeral  storage.Repository
	creds      *credentials.Store
	client     api.Client
	cart       *services.CartManager
	resolver   services.OrderResolver
	checkout   *services.Checkout

	reader *bufio.Reader
	out    io.Writer

	// sessionEnded is set by the API layer when a refresh fails for good;
	// the REPL reacts by dropping to the signed-out prompt.
	sessionEnded atomic.Bool
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabaseFile)
	if err != nil {
		return nil, err
	}

	persistent := storage.NewSQLiteRepository(db)
	ephemeral := storage.NewMemoryRepository()

	creds, err := credentials.Open(ctx, persistent)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	httpClient := api.NewHTTPClient(cfg.APIBaseURL, creds, log)

	app := &App{
		config:     cfg,
		log:        log,
		db:         db,
		persistent: persistent,
		ephemeral:  ephemeral,
		creds:      creds,
		client:     httpClient,
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}
	httpClient.OnSessionEnded(func() { app.sessionEnded.Store(true) })

	app.cart = services.NewCartManager(httpClient, log)
	app.resolver = services.NewOrderResolver(httpClient, ephemeral, persistent, creds, log)
	app.checkout = services.NewCheckout(app.resolver, httpClient, creds, ephemeral, persistent, log)

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.creds.AccessToken() != ""
}

// sessionLabel builds the prompt decoration: signed-in user plus a note
// once the access token's recorded expiry has passed.
func (a *App) sessionLabel() string {
	if !a.isLoggedIn() {
		return ""
	}
	label := "signed in"
	if u := a.creds.User(); u != nil && u.Username != "" {
		label = u.Username
	}
	if exp, ok := a.creds.ExpiresAt(); ok && time.Now().After(exp) {
		label += ", token expired"
	}
	return "(" + label + ")"
}
