package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/absmach/cartridge"
	"github.com/absmach/cartridge/agent"
	"github.com/absmach/cartridge/agent/api"
	"github.com/absmach/cartridge/extension"
	extmiddleware "github.com/absmach/cartridge/extension/middleware"
	"github.com/absmach/cartridge/pkg/mqtt"
	"github.com/absmach/cartridge/pkg/storage"
	"github.com/absmach/cartridge/repository"
	repomiddleware "github.com/absmach/cartridge/repository/middleware"
	"github.com/absmach/cartridge/tenant"
	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

const (
	svcName       = "cartridge-agent"
	defHTTPPort   = "9180"
	envPrefixHTTP = "CARTRIDGE_HTTP_"
	pathEnv       = ".env"
)

type envConfig struct {
	LogLevel       string        `env:"CARTRIDGE_LOG_LEVEL"       envDefault:"info"`
	InstanceID     string        `env:"CARTRIDGE_INSTANCE_ID"`
	PropertiesPath string        `env:"CARTRIDGE_PROPERTIES_PATH" envDefault:"/mnt/cartridge/conf/agent.toml"`
	MQTTAddress    string        `env:"CARTRIDGE_MQTT_ADDRESS"`
	MQTTQoS        uint8         `env:"CARTRIDGE_MQTT_QOS"        envDefault:"1"`
	MQTTTimeout    time.Duration `env:"CARTRIDGE_MQTT_TIMEOUT"    envDefault:"30s"`
	MQTTUsername   string        `env:"CARTRIDGE_MQTT_USERNAME"`
	MQTTPassword   string        `env:"CARTRIDGE_MQTT_PASSWORD"`
	Shell          string        `env:"CARTRIDGE_SHELL"           envDefault:"/bin/sh"`
	GitBinary      string        `env:"CARTRIDGE_GIT_BINARY"      envDefault:"git"`
	OTELURL        url.URL       `env:"CARTRIDGE_OTEL_URL"`
	TraceRatio     float64       `env:"CARTRIDGE_TRACE_RATIO"     envDefault:"0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	props, err := cartridge.LoadProperties(cfg.PropertiesPath)
	if err != nil {
		logger.Error("failed to load agent properties", slog.String("path", cfg.PropertiesPath), slog.Any("error", err))

		return
	}

	agentCfg, err := cartridge.NewConfig(props)
	if err != nil {
		logger.Error("invalid agent configuration", slog.Any("error", err))

		return
	}
	logger = logger.With(
		slog.String("member_id", agentCfg.Instance.MemberID),
		slog.String("cluster_id", agentCfg.Instance.ClusterID),
	)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := jaeger.NewProvider(ctx, svcName, cfg.OTELURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := sdktp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	mqttAddress := cfg.MQTTAddress
	if mqttAddress == "" {
		mqttAddress = agentCfg.MessageBroker
	}
	pubsub, err := mqtt.NewPubSub(mqtt.Config{
		URL:      mqttAddress,
		QoS:      cfg.MQTTQoS,
		ID:       fmt.Sprintf("%s-%s", svcName, cfg.InstanceID),
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
		Timeout:  cfg.MQTTTimeout,
		Will:     agent.LastWill(agentCfg.Instance),
	}, logger)
	if err != nil {
		logger.Error("failed to initialize mqtt pubsub", slog.String("error", err.Error()))

		return
	}
	defer func() {
		if err := pubsub.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect from broker", slog.Any("error", err))
		}
	}()

	resolver := tenant.NewResolver(agentCfg.TenantRange, logger)
	fs := afero.NewOsFs()

	dispatcher := extension.NewDispatcher(agentCfg, fs, extension.NewShellExecutor(cfg.Shell), logger)
	dispatcher = extmiddleware.Logging(logger, dispatcher)
	dispatcher = extmiddleware.Tracing(tracer, dispatcher)
	counter, latency := prometheus.MakeMetrics(svcName, "extension")
	dispatcher = extmiddleware.Metrics(counter, latency, dispatcher)

	repos := repository.NewSynchronizer(
		agentCfg,
		repository.NewGit(cfg.GitBinary),
		fs,
		resolver,
		storage.NewInMemoryStorage[int, repository.State](),
		logger,
	)
	repos = repomiddleware.Logging(logger, repos)
	repos = repomiddleware.Tracing(tracer, repos)
	counter, latency = prometheus.MakeMetrics(svcName, "repository")
	repos = repomiddleware.Metrics(counter, latency, repos)

	reporter := agent.NewReporter(agentCfg, pubsub, logger)
	svc := agent.New(agentCfg, dispatcher, repos, resolver, reporter, logger)

	g.Go(func() error {
		defer cancel()

		return svc.Run(ctx)
	})

	if err := agent.Subscribe(ctx, pubsub, svc, logger); err != nil {
		logger.Error("failed to subscribe to lifecycle events", slog.String("error", err.Error()))
		cancel()
		_ = g.Wait()

		return
	}

	health := agent.NewHealthPublisher(agentCfg, agent.NewHostSampler(), pubsub, logger)
	g.Go(func() error {
		return health.Run(ctx)
	})

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err.Error()))
		cancel()
		_ = g.Wait()

		return
	}

	hs := httpserver.NewServer(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}
}
