package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/mimirmaps/tilecover/featureflag"
	tilecoverhttp "github.com/mimirmaps/tilecover/http"
	"github.com/mimirmaps/tilecover/models"
	"github.com/mimirmaps/tilecover/terrain"
	"github.com/mimirmaps/tilecover/tile"
	twebsocket "github.com/mimirmaps/tilecover/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The tilecover version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "tilecover_info",
		Help:        "Tilecover information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr               string        `cli:""        env:"TILECOVER_ADDR"                 help:"Listening address for viewer connections."`
	AdminAddr          string        `cli:""        env:"TILECOVER_ADMIN_ADDR"           help:"Admin listening address."`
	PublicEndpoint     string        `cli:""        env:"TILECOVER_PUBLIC_ENDPOINT"      help:"The public endpoint where this covering server is reachable."`
	LogLevel           string        `cli:""        env:"TILECOVER_LOG_LEVEL"            help:"Log level (debug|info|warning|error)."`
	LogIndent          bool          `cli:""        env:"TILECOVER_LOG_INDENT"           help:"Indent logs."`
	ClientIdleTimeout  time.Duration `cli:",hidden" env:"TILECOVER_CLIENT_IDLE_TIMEOUT"  help:"Time until an idle viewer will be disconnected."`
	LogSummaryInterval time.Duration `cli:",hidden" env:"TILECOVER_LOG_SUMMARY_INTERVAL" help:"The duration between each log summary by connection."`
	Events             eventsConfig  `cli:",hidden" env:"-"                              help:"Event pusher configuration."`
	FeatureFlags       []string      `cli:",hidden" env:"TILECOVER_FEATURE_FLAGS"        help:"Comma separated feature flags"`
	Version            bool          `cli:""        env:"-"                              help:"Show version."`
	Help               bool          `cli:""        env:"-"                              help:"Show help."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"TILECOVER_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed."`
	FlushInterval time.Duration `cli:",hidden" env:"TILECOVER_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"TILECOVER_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"TILECOVER_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	conf := config{
		Addr:               ":4000",
		AdminAddr:          ":18190",
		PublicEndpoint:     "http://localhost:4000",
		LogLevel:           logs.InfoLevel.String(),
		ClientIdleTimeout:  time.Minute * 5,
		LogSummaryInterval: time.Minute,
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts a tile covering server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if conf.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      conf.Events.Endpoint,
			FlushInterval: conf.Events.FlushInterval,
			BatchSize:     conf.Events.BatchSize,
			QueueSize:     conf.Events.QueueSize,
			Transport:     metrics.HTTPTransport(http.DefaultTransport),
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "tilecover",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	}

	var sessions models.SessionStore
	elevations := terrain.NewMemStore()
	featureFlags := featureflag.New(conf.FeatureFlags)

	var service http.ServeMux

	service.Handle("/", tilecoverhttp.HandleWithCORS(websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			var ch twebsocket.Handler = &twebsocket.CoveringHandler{
				ClientIdleTimeout: conf.ClientIdleTimeout,
				Sessions:          &sessions,
				FeatureFlags:      featureFlags,
				Terrain:           elevations,
			}
			h := twebsocket.HandlerWithLogs(ch, conf.LogSummaryInterval)
			h = twebsocket.HandlerWithMetrics(h, conf.PublicEndpoint)
			defer h.Close()

			twebsocket.Handle(ctx, conn, h)
		},
	}))

	service.Handle("/ping", websocket.Server{
		Handler: func(ws *websocket.Conn) {
			defer ws.Close()
			io.Copy(ws, ws)
		},
	})

	readinessCheck := func() bool { return true }

	service.Handle("/health", tilecoverhttp.HandleWithCORS(http.HandlerFunc(tilecoverhttp.HandleHealthCheck)))
	service.Handle("/ready", tilecoverhttp.HandleWithCORS(tilecoverhttp.HandleReadyCheck(readinessCheck)))
	service.Handle("/version", tilecoverhttp.HandleWithCORS(tilecoverhttp.HandleVersion(version)))

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", tilecoverhttp.HandleHealthCheck)
	admin.HandleFunc("/ready", tilecoverhttp.HandleReadyCheck(readinessCheck))
	admin.HandleFunc("/terrain", handleTerrainUpload(elevations))
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("endpoint", conf.PublicEndpoint).
		Info("starting tile covering server")

	tilecoverhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			tilecoverhttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

type terrainUpload struct {
	Z   int     `json:"z"`
	X   int     `json:"x"`
	Y   int     `json:"y"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// handleTerrainUpload ingests tile elevation ranges used for terrain-aware
// level of detail.
func handleTerrainUpload(store *terrain.MemStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var uploads []terrainUpload
		if err := json.Unmarshal(body, &uploads); err != nil {
			logs.WithTag("remote_addr", r.RemoteAddr).
				Debug(errors.New("decoding terrain upload failed").Wrap(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		for _, u := range uploads {
			store.Set(tile.Address{Z: u.Z, X: u.X, Y: u.Y}, u.Min, u.Max)
		}
		w.WriteHeader(http.StatusOK)
	}
}
