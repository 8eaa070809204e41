package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/analytics"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/api"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/cmdlog"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/config"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/logging"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/metrics"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/secrets"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/supervisor"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/theme"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/users"
)

const defaultConfigPath = "./subxbot.yaml"

func main() {
	_ = godotenv.Load()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "serve":
		cmdServe()
	case "run":
		cmdRun()
	case "adduser":
		cmdAddUser()
	case "creds":
		cmdCreds()
	case "status":
		cmdStatus()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: subxbot <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./subxbot.yaml")
	fmt.Println("  serve       Run the admin API and all active tenant bots")
	fmt.Println("  run         Run one tenant's bot in the foreground")
	fmt.Println("  adduser     Register a tenant")
	fmt.Println("  creds       Store a tenant's X API credentials")
	fmt.Println("  status      Show a tenant's posting and reply stats")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func loadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.Default()
			cfg.ResolveEnv()
			return cfg
		}
		fatalf("load config: %v", err)
	}
	return cfg
}

func openStore(cfg config.Config) *store.Store {
	s, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		fatalf("open store: %v", err)
	}
	return s
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", defaultConfigPath, "path to write config")
	_ = fs.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fatalf("write config: %v", err)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	_ = fs.Parse(os.Args[2:])
	cfg := loadConfig(*cfgPath)
	if cfg.Admin.APIKey == "" {
		fatalf("no admin API key set (BOT_API_KEY or admin.apiKey)")
	}

	_ = cmdlog.Run("serve", func() error {
		s := openStore(cfg)
		defer s.Close()
		vault, err := secrets.Open(cfg.Secrets.Dir, cfg.Secrets.Key)
		if err != nil {
			return err
		}
		um := users.NewManager(s).WithVault(vault)
		sup, err := supervisor.New(s, um, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		metrics.StartServer(cfg.Metrics.Addr)
		if err := sup.StartAll(ctx); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    cfg.Admin.Addr,
			Handler: api.NewHandler(s, um, sup, cfg.Admin.APIKey).Router(),
		}
		go func() {
			logging.Info("admin api listening", map[string]any{"addr": cfg.Admin.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("admin api failed", map[string]any{"error": err.Error()})
				stop()
			}
		}()

		<-ctx.Done()
		logging.Info("shutting down", nil)
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
		sup.StopAll(shutCtx)
		return nil
	})
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	userID := fs.String("user", "", "tenant ID")
	_ = fs.Parse(os.Args[2:])
	if *userID == "" {
		fatalf("-user is required")
	}
	cfg := loadConfig(*cfgPath)

	_ = cmdlog.Run("run", func() error {
		s := openStore(cfg)
		defer s.Close()
		um := users.NewManager(s)
		sup, err := supervisor.New(s, um, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		metrics.StartServer(cfg.Metrics.Addr)
		if err := sup.Start(ctx, *userID); err != nil {
			return err
		}
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sup.StopAll(shutCtx)
		return nil
	})
}

func cmdAddUser() {
	fs := flag.NewFlagSet("adduser", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	id := fs.String("id", "", "tenant ID (generated if empty)")
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "contact email")
	twitterID := fs.String("twitter-id", "", "X account ID")
	_ = fs.Parse(os.Args[2:])
	if *username == "" {
		fatalf("-username is required")
	}
	cfg := loadConfig(*cfgPath)

	_ = cmdlog.Run("adduser", func() error {
		s := openStore(cfg)
		defer s.Close()
		u, err := users.NewManager(s).Create(context.Background(), *id, *username, *email, *twitterID)
		if err != nil {
			return err
		}
		fmt.Println("User created:", u.UserID)
		return nil
	})
}

func cmdCreds() {
	fs := flag.NewFlagSet("creds", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	userID := fs.String("user", "", "tenant ID")
	apiKey := fs.String("api-key", "", "X API key")
	apiSecret := fs.String("api-secret", "", "X API secret")
	accessToken := fs.String("access-token", "", "X access token")
	accessSecret := fs.String("access-token-secret", "", "X access token secret")
	bearer := fs.String("bearer-token", "", "X bearer token")
	_ = fs.Parse(os.Args[2:])
	if *userID == "" {
		fatalf("-user is required")
	}
	cfg := loadConfig(*cfgPath)

	_ = cmdlog.Run("creds", func() error {
		s := openStore(cfg)
		defer s.Close()
		um := users.NewManager(s)
		if _, err := um.Get(context.Background(), *userID); err != nil {
			return err
		}
		vault, err := secrets.Open(cfg.Secrets.Dir, cfg.Secrets.Key)
		if err != nil {
			return err
		}
		err = vault.Save(*userID, model.CredentialBundle{
			APIKey:            *apiKey,
			APISecret:         *apiSecret,
			AccessToken:       *accessToken,
			AccessTokenSecret: *accessSecret,
			BearerToken:       *bearer,
		})
		if err != nil {
			return err
		}
		if err := um.SetTwitterConnected(context.Background(), *userID, true); err != nil {
			return err
		}
		fmt.Println("Credentials stored for:", *userID)
		return nil
	})
}

func cmdStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	userID := fs.String("user", "", "tenant ID (all tenants if empty)")
	_ = fs.Parse(os.Args[2:])
	cfg := loadConfig(*cfgPath)

	_ = cmdlog.Run("status", func() error {
		s := openStore(cfg)
		defer s.Close()
		ctx := context.Background()
		um := users.NewManager(s)

		if *userID == "" {
			all, err := um.List(ctx)
			if err != nil {
				return err
			}
			for _, u := range all {
				fmt.Printf("%s  %-16s active=%v connected=%v\n", u.UserID, u.Username, u.BotActive, u.TwitterConnected)
			}
			return nil
		}

		u, err := um.Get(ctx, *userID)
		if err != nil {
			return err
		}
		st, err := s.Load(ctx, *userID)
		if err != nil {
			return err
		}
		r := analytics.Summarize(st, time.Now())
		fmt.Printf("Tenant:        %s (@%s)\n", u.UserID, u.Username)
		fmt.Printf("Bot active:    %v\n", u.BotActive)
		fmt.Printf("Tweets total:  %d (today %d)\n", r.TweetsTotal, r.TweetsToday)
		fmt.Printf("Replies total: %d (today %d)\n", r.RepliesTotal, r.RepliesToday)
		fmt.Printf("Queue index:   %d\n", r.QueueIndex)
		for _, d := range r.Daily {
			fmt.Printf("  %s  tweets=%d replies=%d\n", d.Date, d.Tweets, d.Replies)
		}
		return nil
	})
}
