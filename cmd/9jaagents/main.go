package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/jost305/9jaagents/auth"
	"github.com/jost305/9jaagents/auth/provider/supabase"
	"github.com/jost305/9jaagents/config"
	"github.com/jost305/9jaagents/marketplace"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

//go:embed views
var viewsFS embed.FS

type App struct {
	config *config.App
	bunDB  *bun.DB
	repo   marketplace.RepositoryManager
	client *supabase.Client
	store  *auth.SessionStore
	nav    *auth.NavigationPolicy
	guard  *auth.Guard
	ops    *auth.Operations
	srv    router.Server[*fiber.App]
}

func main() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		fmt.Println(print.MaybePrettyJSON(cfg))
		panic(err)
	}

	app := &App{config: cfg}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithIdentityProvider(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	Routes(app)

	go app.srv.Serve(cfg.Server.Address)

	WaitExitSignal()

	app.store.Close()
	app.client.Close()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.config.Persistence.GetDSN())
	if err != nil {
		log.Fatal(err)
		return err
	}

	persistence.RegisterModel((*marketplace.Profile)(nil))
	persistence.RegisterModel((*marketplace.Category)(nil))
	persistence.RegisterModel((*marketplace.Agent)(nil))

	client, err := persistence.New(app.config.Persistence, db, sqlitedialect.New())
	if err != nil {
		log.Fatal(err)
		return err
	}

	migrationsFS, err := fs.Sub(marketplace.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = marketplace.NewRepositoryManager(client.DB())

	if err := app.repo.Validate(); err != nil {
		return err
	}

	seed := marketplace.NewSeedDemoAccountsHandler(app.repo)
	if err := seed.Execute(ctx, marketplace.SeedDemoAccountsMessage{}); err != nil {
		return err
	}

	return nil
}

func WithIdentityProvider(ctx context.Context, app *App) error {
	providerCfg := supabase.DefaultConfig(
		app.config.Supabase.ProjectURL,
		app.config.Supabase.AnonKey,
	)
	providerCfg.JWTSecret = app.config.Supabase.JWTSecret

	client, err := supabase.New(providerCfg)
	if err != nil {
		return err
	}

	app.client = client

	store := auth.NewSessionStore(client)
	store.Start(ctx)
	app.store = store

	// Server side, the actual redirects happen per request in the guard
	// and the auth controller; the policy's navigator records the
	// role-driven destination each session transition resolves to.
	app.nav = auth.NewNavigationPolicy(auth.NavigatorFunc(func(destination string) {
		log.Printf("session transition resolved destination: %s", destination)
	}), app.config.Auth)

	if _, err := app.nav.Attach(store); err != nil {
		return err
	}

	app.guard = auth.NewGuard(store, app.config.Auth)
	app.ops = auth.NewOperations(client, app.config.Auth)

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	templates, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return err
	}

	engine := django.NewFileSystem(http.FS(templates), ".html")

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})

	app.srv = srv

	return nil
}

func Routes(app *App) {
	r := app.srv.Router()

	auth.RegisterAuthRoutes(r.Group("/"),
		func(ac *auth.AuthController) *auth.AuthController {
			ac.Ops = app.ops
			ac.Client = app.client
			ac.Nav = app.nav
			return ac
		})

	r.Get("/", func(ctx router.Context) error {
		return ctx.Render("landing", router.ViewContext{
			"title": "9jaAgents",
		})
	})

	r.Get("/unauthorized", func(ctx router.Context) error {
		return ctx.Render("unauthorized", router.ViewContext{
			"title": "Not Authorized",
		})
	})

	r.Get("/dashboard", Dashboard(app), app.guard.Protected())
	r.Get("/creator/dashboard", CreatorDashboard(app), app.guard.RequireRole(auth.RoleCreator))
	r.Get("/admin", AdminDashboard(app), app.guard.RequireRole(auth.RoleAdmin))
}

func Dashboard(app *App) router.HandlerFunc {
	return func(ctx router.Context) error {
		principal, _ := auth.PrincipalFromContext(ctx.Context())
		return ctx.Render("dashboard", router.ViewContext{
			"title":     "Dashboard",
			"principal": principal,
			"role":      auth.ResolveRole(principal),
		})
	}
}

func CreatorDashboard(app *App) router.HandlerFunc {
	return func(ctx router.Context) error {
		principal, _ := auth.PrincipalFromContext(ctx.Context())

		agents := []*marketplace.Agent{}
		if uid, err := principal.UUID(); err == nil {
			if list, err := app.repo.Agents().ListByCreator(ctx.Context(), uid); err == nil {
				agents = list
			}
		}

		return ctx.Render("creator_dashboard", router.ViewContext{
			"title":     "Creator Dashboard",
			"principal": principal,
			"agents":    agents,
		})
	}
}

func AdminDashboard(app *App) router.HandlerFunc {
	return func(ctx router.Context) error {
		principal, _ := auth.PrincipalFromContext(ctx.Context())
		return ctx.Render("admin_dashboard", router.ViewContext{
			"title":     "Admin",
			"principal": principal,
		})
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
