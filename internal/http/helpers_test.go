package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"bookbright/internal/config"
	"bookbright/internal/fetcher"
	"bookbright/internal/http/handlers"
	applog "bookbright/internal/log"
	"bookbright/internal/providers"
	"bookbright/internal/repos"
	"bookbright/internal/services"
)

const lampPage = `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"LED Clip Book Light",
 "description":"Rechargeable clip-on reading light",
 "image":["https://img.example/lamp-1.jpg","https://img.example/lamp-2.jpg"],
 "offers":{"@type":"Offer","price":"12.99","priceCurrency":"USD","availability":"https://schema.org/InStock"}}
</script></head><body><h1>LED Clip Book Light</h1></body></html>`

// stubFetcher serves lampPage for every URL except those containing "missing".
type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, u string) (*fetcher.Page, error) {
	if strings.Contains(u, "missing") {
		return nil, &fetcher.StatusError{Code: http.StatusNotFound}
	}
	return &fetcher.Page{URL: u, FinalURL: u, StatusCode: http.StatusOK, Body: []byte(lampPage), FetchedAt: time.Now()}, nil
}

func stubRegistry() *providers.Registry {
	return providers.NewRegistry(providers.NewTemu(stubFetcher{}, nil), providers.NewAlibaba(stubFetcher{}, nil))
}

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	users *repos.UserRepo
}

// newTestApp wires the same routes and middleware order as cmd/bookbright,
// with a stub registry and no delay between import URLs.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBDSN = ":memory:"
	cfg.Import.Delay = 0
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}))

	deps := handlers.NewDeps(db, cfg, stubRegistry())
	app.Get("/", deps.CategoryHandler.Home)
	app.Get("/search", limiter.New(limiter.Config{Max: 3, Expiration: time.Minute}), deps.SearchHandler.Search)
	app.Get("/category/:name", deps.CategoryHandler.List)
	app.Get("/product/:slug", deps.ProductHandler.Detail)
	api := app.Group("/api/v1")
	api.Get("/products", deps.ProductHandler.APIList)
	api.Get("/products/:slug", deps.ProductHandler.APIDetail)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)

	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/import", deps.AdminHandler.ImportPage)
	admin.Post("/import", deps.AdminHandler.ImportForm)
	adminAPI := app.Group("/api/admin", handlers.RequireAdminAPI(authSvc))
	adminAPI.Post("/import", deps.AdminHandler.ImportAPI)
	adminAPI.Get("/providers", deps.AdminHandler.ProvidersAPI)

	return &testApp{app: app, db: db, users: userRepo}
}

func (ta *testApp) bind(t *testing.T, sid, userID string) {
	t.Helper()
	if err := ta.users.BindSession(context.Background(), sid, userID); err != nil {
		t.Fatalf("bind session %s: %v", sid, err)
	}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs points the application logger at a buffer while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	applog.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
