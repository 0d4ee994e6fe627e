package main

import (
	"context"
	"encoding/json"
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

	persistlog "survivecraft.ai/internal/persistence/log"
	"survivecraft.ai/internal/protocol"
	"survivecraft.ai/internal/sim/tuning"
	"survivecraft.ai/internal/sim/world"
	"survivecraft.ai/internal/sim/world/feature/economy/ledger"
	"survivecraft.ai/internal/sim/world/terrain/scatter"
	"survivecraft.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 0, "world seed (overrides world.seed from tuning when set)")
		dataDir    = flag.String("data", "", "runtime data directory (default: logging.data_dir from tuning)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite tick/audit index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	if flagSet("seed") {
		tune.World.Seed = *seed
	}
	dd := strings.TrimSpace(*dataDir)
	if dd == "" {
		dd = tune.Logging.DataDir
	}

	worldDir := filepath.Join(dd, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}
	// The effective tuning is what cmd/replay rebuilds the world from.
	if err := tuning.Save(filepath.Join(worldDir, "tuning.yaml"), tune); err != nil {
		logger.Fatalf("save effective tuning: %v", err)
	}

	// Optional: read-model index (does not affect sim determinism).
	idx, err := openRuntimeIndex(worldDir, *disableDB || tune.Logging.DisableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if digest, err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("index backend: upsert tuning: %v", err)
		} else {
			logger.Printf("index backend: tuning digest=%s", digest)
		}
	}

	w, err := world.New(world.ConfigFromTuning(*worldID, tune))
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	w.SetLogger(logger)
	st := w.ScatterStats()
	logger.Printf("world %s seed=%d trees=%d rocks=%d (below water %d, sparsified %d)",
		*worldID, tune.World.Seed, st.Count(scatter.Tree), st.Count(scatter.Rock), st.TreesBelowWater, st.TreesSparsified)

	tickLog := persistlog.NewTickLogger(worldDir)
	auditLog := persistlog.NewAuditLogger(worldDir)
	defer tickLog.Close()
	defer auditLog.Close()
	w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
	w.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})

	validator, err := protocol.NewValidator()
	if err != nil {
		logger.Fatalf("schemas: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := newMux(*worldID, w, idx)
	mux.HandleFunc("/v1/ws", ws.NewServer(w, validator, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// metricsSource is what the HTTP endpoints read; World satisfies it.
type metricsSource interface {
	CurrentTick() uint64
	Metrics() world.WorldMetrics
}

func newMux(worldID string, w metricsSource, idx runtimeIndex) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := w.Metrics()
		tick := w.CurrentTick()
		if m.Tick != 0 {
			tick = m.Tick
		}

		// Minimal Prometheus exposition format.
		gauge(rw, "survivecraft_world_tick", "Current world tick.")
		fmt.Fprintf(rw, "survivecraft_world_tick{world=%q} %d\n", worldID, tick)

		gauge(rw, "survivecraft_world_clients", "Current number of connected clients.")
		fmt.Fprintf(rw, "survivecraft_world_clients{world=%q} %d\n", worldID, m.Clients)

		gauge(rw, "survivecraft_world_instances", "Trees and rocks still standing.")
		fmt.Fprintf(rw, "survivecraft_world_instances{world=%q} %d\n", worldID, m.Instances)

		gauge(rw, "survivecraft_world_structures", "Confirmed placements.")
		fmt.Fprintf(rw, "survivecraft_world_structures{world=%q} %d\n", worldID, m.Structures)

		gauge(rw, "survivecraft_world_queue_depth", "Channel backlog depth.")
		fmt.Fprintf(rw, "survivecraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inbox", m.QueueDepths.Inbox)
		fmt.Fprintf(rw, "survivecraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "join", m.QueueDepths.Join)
		fmt.Fprintf(rw, "survivecraft_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "leave", m.QueueDepths.Leave)

		gauge(rw, "survivecraft_world_step_ms", "Last tick step duration in milliseconds.")
		fmt.Fprintf(rw, "survivecraft_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)

		if idx != nil {
			s := idx.Stats()
			gauge(rw, "survivecraft_index_queue_depth", "Index writer backlog.")
			fmt.Fprintf(rw, "survivecraft_index_queue_depth %d\n", s.QueueDepth)
			fmt.Fprintf(rw, "# HELP survivecraft_index_dropped_total Index writes dropped because the queue was full.\n")
			fmt.Fprintf(rw, "# TYPE survivecraft_index_dropped_total counter\n")
			fmt.Fprintf(rw, "survivecraft_index_dropped_total{kind=%q} %d\n", "tick", s.DropTickTotal)
			fmt.Fprintf(rw, "survivecraft_index_dropped_total{kind=%q} %d\n", "audit", s.DropAuditTotal)
		}
	})

	if envBool("SC_ENABLE_ADMIN_HTTP", true) {
		// Local-only; does not affect simulation determinism.
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			// Ledger comes from the published snapshot; the live ledger belongs
			// to the world goroutine.
			m := w.Metrics()
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Metrics world.WorldMetrics `json:"metrics"`
				Ledger  ledger.Counts      `json:"ledger"`
			}{
				WorldID: worldID,
				Tick:    w.CurrentTick(),
				Metrics: m,
				Ledger:  m.Ledger,
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
	}
	return mux
}

func gauge(rw http.ResponseWriter, name, help string) {
	fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
	fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
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

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
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

type multiTickLogger struct {
	a world.TickLogger
	b world.TickLogger
}

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}

type multiAuditLogger struct {
	a world.AuditLogger
	b world.AuditLogger
}

func (m multiAuditLogger) WriteAudit(entry world.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(entry)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(entry)
	}
	return nil
}
