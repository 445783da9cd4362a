package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/autobattle/roomserver/internal/catalogue"
	"github.com/autobattle/roomserver/internal/config"
	"github.com/autobattle/roomserver/internal/logging"
	"github.com/autobattle/roomserver/internal/process"
	"github.com/autobattle/roomserver/internal/result"
	"github.com/autobattle/roomserver/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func printBanner(name string, id int) {
	fmt.Println()
	fmt.Println("  ┌───────────────────────────────────────────┐")
	fmt.Println("  │            autobattle room server          │")
	fmt.Println("  └───────────────────────────────────────────┘")
	fmt.Println()
	fmt.Printf("  server: %s (id: %d)\n\n", name, id)
}

func printSection(title string) {
	fmt.Printf("  ── %s ──\n", title)
}

func printOK(msg string) {
	fmt.Printf("  ✓ %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  ▶ %s\n", msg)
}

func run() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("AUTOBATTLE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	printSection("catalogue")
	dataDir := "data/catalogue"
	if d := os.Getenv("AUTOBATTLE_DATA_DIR"); d != "" {
		dataDir = d
	}
	cat, err := catalogue.Load(dataDir)
	if err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}
	printOK(fmt.Sprintf("loaded %d units", len(cat.AllUnits())))
	fmt.Println()

	var recorder result.Recorder = result.NoopRecorder{}
	if cfg.Database.Enabled {
		printSection("database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		pg, err := result.NewPostgresRecorder(ctx, cfg.Database, log)
		cancel()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pg.Close()
		recorder = pg
		printOK("connected and migrated")
		fmt.Println()
	}

	proc := process.New(cat, recorder, log, time.Now().UnixNano(), cfg.Room.MaxPlayers)

	mux := http.NewServeMux()
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	nextSessionID := 0
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}
		nextSessionID++
		id := strconv.Itoa(nextSessionID)
		s := session.New(id, conn, cfg.Network.OutQueueSize, log)
		proc.Register(s)
		go s.Run(proc)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         cfg.Network.BindAddress,
		Handler:      mux,
		ReadTimeout:  cfg.Network.ReadTimeout,
		WriteTimeout: cfg.Network.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	printSection("ready")
	printReady(fmt.Sprintf("listening on %s", cfg.Network.BindAddress))
	fmt.Println()

	if err := group.Wait(); err != nil {
		log.Warn("server stopped with error", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
