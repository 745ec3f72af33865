package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"wildscrap.game/internal/config"
	persistlog "wildscrap.game/internal/persistence/log"
	"wildscrap.game/internal/protocol"
	"wildscrap.game/internal/sim/game"
	"wildscrap.game/internal/sim/tuning"
	"wildscrap.game/internal/transport/observer"
	"wildscrap.game/internal/transport/ws"
)

// serverEnv holds environment defaults; flags override them.
type serverEnv struct {
	Addr        string `env:"WILDSCRAP_ADDR" envDefault:":8080"`
	DataDir     string `env:"WILDSCRAP_DATA_DIR" envDefault:"./data"`
	TuningPath  string `env:"WILDSCRAP_TUNING" envDefault:"./configs/tuning.yaml"`
	Backend     string `env:"WILDSCRAP_SAVE_BACKEND" envDefault:"sqlite"`
	StateRateHz int    `env:"WILDSCRAP_STATE_RATE_HZ" envDefault:"20"`
	Journal     bool   `env:"WILDSCRAP_JOURNAL" envDefault:"true"`
	AdminHTTP   bool   `env:"WILDSCRAP_ADMIN_HTTP" envDefault:"true"`
	LoadOnStart bool   `env:"WILDSCRAP_LOAD_ON_START" envDefault:"false"`
	ArchiveKeep int    `env:"WILDSCRAP_ARCHIVE_KEEP" envDefault:"5"`
}

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)
	if err := run(os.Args[1:], logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

// run holds the deferred closes for the journal and the save backend.
func run(args []string, logger *log.Logger) error {
	var cfg serverEnv
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	var (
		addr        = fs.String("addr", cfg.Addr, "http listen address")
		dataDir     = fs.String("data", cfg.DataDir, "runtime data directory")
		tuningPath  = fs.String("tuning", cfg.TuningPath, "path to tuning.yaml")
		backend     = fs.String("save_backend", cfg.Backend, "save backend: sqlite|file|memory")
		stateRateHz = fs.Int("state_rate_hz", cfg.StateRateHz, "STATE messages per second per client")
		journal     = fs.Bool("journal", cfg.Journal, "write the zstd event journal under <data>/events")
		adminHTTP   = fs.Bool("admin_http", cfg.AdminHTTP, "serve loopback-only admin endpoints")
		loadOnStart = fs.Bool("load", cfg.LoadOnStart, "load the save slot once at startup")
		archiveKeep = fs.Int("archive_keep", cfg.ArchiveKeep, "previous save versions kept per slot (file backend)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load tuning: %w", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}

	saves, err := openSaveBackend(*backend, *dataDir, *archiveKeep, logger)
	if err != nil {
		return fmt.Errorf("open save backend: %w", err)
	}
	defer saves.Close()

	hub := ws.NewHub()
	deps := game.Deps{
		Saves:    loggingStore{Store: saves, logger: logger},
		Notifier: hub,
		Logger:   log.New(os.Stdout, "[game] ", log.LstdFlags|log.Lmicroseconds),
	}
	if *journal {
		events := persistlog.NewEventLogger(*dataDir)
		defer events.Close()
		deps.Events = events
	}
	loop := game.NewLoop(tune, deps)

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, loop.Latest(), hub.Clients())
	})
	if *adminHTTP {
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(loop.Latest())
		})
		for _, op := range []game.Op{game.OpSave, game.OpLoad} {
			mux.HandleFunc("/admin/v1/"+string(op), persistHandler(loop, op))
		}
		obs := observer.NewServer(loop, tune, logger)
		mux.HandleFunc("/admin/v1/observer/bootstrap", obs.BootstrapHandler())
		mux.HandleFunc("/admin/v1/observer/ws", obs.WSHandler())
	} else {
		logger.Printf("admin endpoints disabled")
	}
	wsSrv := ws.NewServer(loop, hub, ws.Config{
		Params: protocol.WorldParams{
			TickRateHz:  tune.TickRateHz,
			StateRateHz: *stateRateHz,
			Seed:        tune.WorldGen.Seed,
			SlotID:      tune.Persist.SlotID,
		},
	}, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := loop.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		return srv.Shutdown(ctx2)
	})
	g.Go(func() error {
		logger.Printf("listening on %s (data=%s)", *addr, filepath.Clean(*dataDir))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
		return nil
	})
	if *loadOnStart {
		if err := loop.Submit(ctx, game.Command{Op: game.OpLoad}); err != nil {
			logger.Printf("load on start: %v", err)
		}
	}
	return g.Wait()
}

// persistHandler queues a save or load; the result arrives as a notice.
func persistHandler(g ws.Game, op game.Op) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := g.Submit(r.Context(), game.Command{Op: op}); err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(rw).Encode(map[string]string{"op": string(op), "status": "queued"})
	}
}

func writeMetrics(rw http.ResponseWriter, st *game.State, clients int) {
	fmt.Fprintf(rw, "# HELP wildscrap_tick Current frame.\n")
	fmt.Fprintf(rw, "# TYPE wildscrap_tick counter\n")
	fmt.Fprintf(rw, "wildscrap_tick %d\n", st.Tick)

	fmt.Fprintf(rw, "# HELP wildscrap_clients Connected websocket clients.\n")
	fmt.Fprintf(rw, "# TYPE wildscrap_clients gauge\n")
	fmt.Fprintf(rw, "wildscrap_clients %d\n", clients)

	fmt.Fprintf(rw, "# HELP wildscrap_vital Player vitals (0..100).\n")
	fmt.Fprintf(rw, "# TYPE wildscrap_vital gauge\n")
	fmt.Fprintf(rw, "wildscrap_vital{vital=%q} %.3f\n", "hp", st.HP)
	fmt.Fprintf(rw, "wildscrap_vital{vital=%q} %.3f\n", "hunger", st.Hunger)
	fmt.Fprintf(rw, "wildscrap_vital{vital=%q} %.3f\n", "thirst", st.Thirst)

	fmt.Fprintf(rw, "# HELP wildscrap_structures Placed structures.\n")
	fmt.Fprintf(rw, "# TYPE wildscrap_structures gauge\n")
	fmt.Fprintf(rw, "wildscrap_structures %d\n", len(st.Structures))
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
