package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jkaberg/obd-diag/internal/app"
	"github.com/jkaberg/obd-diag/internal/cache"
	"github.com/jkaberg/obd-diag/internal/collector"
	"github.com/jkaberg/obd-diag/internal/config"
	"github.com/jkaberg/obd-diag/internal/mqtt"
	"github.com/jkaberg/obd-diag/internal/netutil"
	"github.com/jkaberg/obd-diag/internal/notify"
	"github.com/jkaberg/obd-diag/internal/pipeline"
	"github.com/jkaberg/obd-diag/internal/report"
	"github.com/jkaberg/obd-diag/internal/sensors"
	"github.com/jkaberg/obd-diag/internal/transmission"
	"github.com/jkaberg/obd-diag/internal/wifi"
	"github.com/sirupsen/logrus"
)

// version is injected at build time via ldflags
var version = "dev"

func main() {
	cfg, captureFile := parseFlags()

	logger := setupLogger(cfg.Verbose)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	monitored, unknown := sensors.ParseMonitored(cfg.PIDs)
	for _, name := range unknown {
		logger.WithField("pid", name).Warn("Unknown PID, skipping")
	}

	opts := pipeline.DefaultOptions()
	opts.Policy = cfg.Policy()
	processor := pipeline.NewProcessor(opts, logger)

	// Capture path ----------------------------------------------------------------
	if captureFile != "" {
		os.Exit(runCapture(cfg, captureFile, processor, logger))
	}

	logger.WithFields(logrus.Fields{
		"version":   version,
		"device_id": cfg.DeviceID,
		"bridge":    cfg.BridgeURL,
		"pids":      len(monitored),
		"poll":      cfg.PollInterval,
		"fast":      cfg.FastInterval,
		"strict":    cfg.StrictAbsent,
	}).Info("Starting obd-diag")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("Shutdown signal received")
		cancel()
	}()

	// Core clients ---------------------------------------------------------------
	httpClient := netutil.NewHTTPClient(cfg.GetBridgeTimeout(), cfg.InsecureTLS, logger)
	source := collector.NewHTTPSource(cfg.BridgeURL, monitored, httpClient, logger)
	if !source.IsHealthy(ctx) {
		logger.WithField("bridge", cfg.BridgeURL).Warn("OBD bridge not reachable yet; will keep polling")
	}

	// Transmitters ---------------------------------------------------------------
	var targets []app.Target

	if cfg.HasMQTT() {
		mqttClient, err := mqtt.NewClient(cfg.MQTTUrl, cfg.DeviceID, cfg.InsecureTLS, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create MQTT client")
		}
		defer mqttClient.Disconnect(250)
		targets = append(targets, app.Target{
			Name:     "MQTT",
			Interval: cfg.MQTTInterval,
			Tx:       transmission.NewMQTTTransmitter(mqttClient, cfg.DiscoveryPrefix, monitored, logger),
		})
		logger.Info("MQTT transmitter ready")
	}

	if cfg.HasNATS() {
		natsTx, err := transmission.NewNATSTransmitter(cfg.NATSUrl, cfg.NATSSubjectPrefix, cfg.DeviceID, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create NATS transmitter")
		}
		defer func() {
			if err := natsTx.Close(); err != nil {
				logger.WithError(err).Debug("NATS drain failed")
			}
		}()
		targets = append(targets, app.Target{Name: "NATS", Interval: cfg.NATSInterval, Tx: natsTx})
		logger.Info("NATS transmitter ready")
	}

	if cfg.HasWebhook() {
		webhookClient := netutil.NewHTTPClient(config.TransmitTimeout, cfg.InsecureTLS, logger)
		targets = append(targets, app.Target{
			Name:     "Webhook",
			Interval: cfg.WebhookInterval,
			Tx:       transmission.NewWebhookTransmitter(cfg.WebhookURL, cfg.WebhookToken, version, webhookClient, logger),
		})
		logger.Info("Webhook transmitter ready")
	}

	if cfg.HasExport() {
		targets = append(targets, app.Target{
			Name:     "Export",
			Interval: cfg.ExportInterval,
			Tx:       transmission.NewFileExporter(cfg.OutputDir, cfg.PrettyJSON, logger),
		})
		logger.WithField("dir", cfg.OutputDir).Info("File exporter ready")
	}

	if len(targets) == 0 {
		logger.Warn("No transmitters configured; reports will only be logged")
	}

	svc := app.Services{
		Source:    source,
		Processor: processor,
		Targets:   targets,
		Faults:    cache.NewFaultCache(config.DefaultFaultCacheTTL),
	}
	if cfg.Notify {
		svc.Notifier = notify.NewTermuxNotifier(logger)
	}
	if cfg.WiFi {
		svc.Link = wifi.NewManager(logger)
	}

	// Run application ------------------------------------------------------------
	app.Run(ctx, cfg, svc, logger)

	<-ctx.Done()
	logger.Info("obd-diag stopped")
}

// runCapture processes one captured snapshot, prints the report and returns
// the process exit code.
func runCapture(cfg *config.Config, path string, processor *pipeline.Processor, logger *logrus.Logger) int {
	snap, err := collector.NewFileSource(path).Collect(context.Background())
	if err != nil {
		logger.WithError(err).Error("Failed to read capture")
		return 1
	}

	r := processor.Process(snap)
	if err := report.Validate(&r); err != nil {
		logger.WithError(err).Error("Report failed validation")
		return 1
	}

	out, err := transmission.ExportString(&r, cfg.PrettyJSON)
	if err != nil {
		logger.WithError(err).Error("Failed to encode report")
		return 1
	}
	fmt.Println(out)

	if cfg.HasExport() {
		written, err := transmission.NewFileExporter(cfg.OutputDir, cfg.PrettyJSON, logger).Export(&r, "")
		if err != nil {
			logger.WithError(err).Error("Failed to export report")
			return 1
		}
		logger.WithField("path", written).Info("Report exported")
	}
	return 0
}

// -----------------------------------------------------------------------------
// Helpers & Flags
// -----------------------------------------------------------------------------

func parseFlags() (*config.Config, string) {
	cfg := config.GetDefaultConfig()

	showVersion := flag.Bool("version", false, "Show version and exit")
	capture := flag.String("capture", "", "Process one captured snapshot file, print the report and exit")

	flag.StringVar(&cfg.DeviceID, "device-id", getEnv("OBD_DIAG_DEVICE_ID", cfg.DeviceID), "Device identifier")
	flag.StringVar(&cfg.BridgeURL, "bridge-url", getEnv("OBD_DIAG_BRIDGE_URL", cfg.BridgeURL), "OBD bridge base URL")
	flag.StringVar(&cfg.PIDs, "pids", getEnv("OBD_DIAG_PIDS", cfg.PIDs), "Comma separated PIDs, NAME:0 keeps a PID internal")
	flag.IntVar(&cfg.BridgeTimeout, "bridge-timeout", getEnvInt("OBD_DIAG_BRIDGE_TIMEOUT", cfg.BridgeTimeout), "Bridge timeout in seconds")
	flag.BoolVar(&cfg.InsecureTLS, "insecure-tls", getEnvBool("OBD_DIAG_INSECURE_TLS", cfg.InsecureTLS), "Skip TLS certificate verification")
	flag.BoolVar(&cfg.StrictAbsent, "strict-absent", getEnvBool("OBD_DIAG_STRICT_ABSENT", cfg.StrictAbsent), "Do not read absent sensors as zero")
	flag.BoolVar(&cfg.Verbose, "verbose", getEnvBool("OBD_DIAG_VERBOSE", cfg.Verbose), "Verbose logging")
	flag.BoolVar(&cfg.Notify, "notify", getEnvBool("OBD_DIAG_NOTIFY", cfg.Notify), "Post Termux notifications on health changes")
	flag.BoolVar(&cfg.WiFi, "wifi-watchdog", getEnvBool("OBD_DIAG_WIFI_WATCHDOG", cfg.WiFi), "Re-enable Android Wi-Fi when the bridge stays unreachable")

	flag.StringVar(&cfg.MQTTUrl, "mqtt-url", getEnv("OBD_DIAG_MQTT_URL", cfg.MQTTUrl), "MQTT URL")
	flag.StringVar(&cfg.DiscoveryPrefix, "discovery-prefix", getEnv("OBD_DIAG_DISCOVERY_PREFIX", cfg.DiscoveryPrefix), "HA discovery prefix")
	flag.StringVar(&cfg.NATSUrl, "nats-url", getEnv("OBD_DIAG_NATS_URL", cfg.NATSUrl), "NATS URL")
	flag.StringVar(&cfg.NATSSubjectPrefix, "nats-subject-prefix", getEnv("OBD_DIAG_NATS_SUBJECT_PREFIX", cfg.NATSSubjectPrefix), "NATS subject prefix")
	flag.StringVar(&cfg.WebhookURL, "webhook-url", getEnv("OBD_DIAG_WEBHOOK_URL", cfg.WebhookURL), "Webhook URL receiving report JSON")
	flag.StringVar(&cfg.WebhookToken, "webhook-token", getEnv("OBD_DIAG_WEBHOOK_TOKEN", cfg.WebhookToken), "Webhook bearer token")
	flag.StringVar(&cfg.OutputDir, "output-dir", getEnv("OBD_DIAG_OUTPUT_DIR", cfg.OutputDir), "Directory for JSON report files")
	flag.BoolVar(&cfg.PrettyJSON, "pretty", getEnvBool("OBD_DIAG_PRETTY", cfg.PrettyJSON), "Indent exported JSON")

	durations := []struct {
		name, env, usage string
		dst              *time.Duration
		allowZero        bool
	}{
		{"poll-interval", "OBD_DIAG_POLL_INTERVAL", "Bridge poll interval (e.g. 5s)", &cfg.PollInterval, false},
		{"fast-interval", "OBD_DIAG_FAST_INTERVAL", "Transmit interval while moving or CRITICAL", &cfg.FastInterval, false},
		{"mqtt-interval", "OBD_DIAG_MQTT_INTERVAL", "MQTT interval (e.g. 30s)", &cfg.MQTTInterval, false},
		{"nats-interval", "OBD_DIAG_NATS_INTERVAL", "NATS interval (e.g. 10s)", &cfg.NATSInterval, false},
		{"webhook-interval", "OBD_DIAG_WEBHOOK_INTERVAL", "Webhook interval (e.g. 30s)", &cfg.WebhookInterval, false},
		{"export-interval", "OBD_DIAG_EXPORT_INTERVAL", "File export interval (e.g. 60s)", &cfg.ExportInterval, false},
		{"force-update-interval", "OBD_DIAG_FORCE_UPDATE_INTERVAL", "Re-send unchanged reports at this interval (e.g. 10m, 0 = disabled)", &cfg.ForceUpdateInterval, true},
	}
	raw := make([]*string, len(durations))
	for i, d := range durations {
		raw[i] = flag.String(d.name, getEnv(d.env, ""), d.usage)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("obd-diag %s\n", version)
		os.Exit(0)
	}

	for i, d := range durations {
		if v, ok := parseDuration(*raw[i], d.allowZero); ok {
			*d.dst = v
		}
	}
	return cfg, *capture
}

// parseDuration accepts Go durations ("90s") or plain seconds ("90").
func parseDuration(s string, allowZero bool) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	valid := func(d time.Duration) bool { return d > 0 || (allowZero && d == 0) }
	if d, err := time.ParseDuration(s); err == nil && valid(d) {
		return d, true
	}
	if v, err := strconv.Atoi(s); err == nil && valid(time.Duration(v)) {
		return time.Duration(v) * time.Second, true
	}
	return 0, false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func setupLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
