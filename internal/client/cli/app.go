package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/IndraPur1/ChatApp/internal/client/client"
	"github.com/IndraPur1/ChatApp/internal/client/config"
	"github.com/IndraPur1/ChatApp/internal/client/models"
	"github.com/IndraPur1/ChatApp/internal/client/services"
	"github.com/IndraPur1/ChatApp/internal/client/session"
	"github.com/IndraPur1/ChatApp/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the local cache, the HTTP client and the services together and
// drives the REPL.
type App struct {
	config     *config.Config
	log        logging.Logger
	repos      *client.Repositories
	api        *client.HTTPClient
	chat       services.ChatService
	controller *session.Controller
	reader     *bufio.Reader

	mu       sync.Mutex
	rendered int
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	repos, err := client.InitDatabase(ctx, cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	api := client.NewHTTPClient(cfg.ServerURL, log)
	identity := services.NewIdentityService(api, api, repos.Credentials, log)
	chat := services.NewChatService(api, repos.History, log)

	return &App{
		config:     cfg,
		log:        log,
		repos:      repos,
		api:        api,
		chat:       chat,
		controller: session.NewController(identity, chat, log),
		reader:     bufio.NewReader(os.Stdin),
	}, nil
}

// Run shows the cached history, attempts the silent auto-login and hands
// control to the REPL. It blocks until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Println("Welcome to ChatApp (type 'help' for commands)")
	a.printHistory(a.chat.CachedHistory(ctx))

	route, err := a.controller.Start(ctx, a.config.ResolveTimeout, a.renderSnapshot)
	if err != nil {
		fmt.Println("Could not start a session:", err)
	}
	if route == session.RouteChat {
		fmt.Printf("Logged in as %s\n", a.controller.DisplayName())
	} else {
		fmt.Println("Not logged in. Use 'login' or 'register'.")
	}

	a.Root(ctx)
}

// Close releases the session, the HTTP client and the local database.
func (a *App) Close() {
	a.controller.Shutdown()
	_ = a.api.Close()
	_ = a.repos.DB.Close()
}

func (a *App) isLoggedIn() bool {
	return a.controller.State() == session.StateActive
}

// renderSnapshot prints messages the user has not seen yet. Snapshots arrive
// whole, so anything past the previously rendered length is new; a shorter
// snapshot means the log was rewritten and is reprinted in full.
func (a *App) renderSnapshot(msgs []models.Message) {
	a.mu.Lock()
	from := a.rendered
	if from > len(msgs) {
		from = 0
	}
	a.rendered = len(msgs)
	a.mu.Unlock()

	for _, m := range msgs[from:] {
		printMessage(m)
	}
}

func (a *App) printHistory(msgs []models.Message) {
	if len(msgs) == 0 {
		return
	}
	for _, m := range msgs {
		printMessage(m)
	}
	a.mu.Lock()
	a.rendered = len(msgs)
	a.mu.Unlock()
}

func printMessage(m models.Message) {
	ts := ""
	if m.CreatedAt != nil {
		ts = m.CreatedAt.Local().Format("15:04") + " "
	}
	switch m.Kind {
	case models.KindImage:
		fmt.Printf("%s%s: [image, %d bytes]\n", ts, m.Author, len(m.ImageData))
	default:
		fmt.Printf("%s%s: %s\n", ts, m.Author, m.Body)
	}
}
