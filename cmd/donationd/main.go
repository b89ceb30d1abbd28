package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"donorchain/config"
	"donorchain/core/events"
	"donorchain/crypto"
	"donorchain/native/donation"
	"donorchain/native/token"
	"donorchain/observability/logging"
	"donorchain/rpc"
	"donorchain/storage"
)

const envVar = "DONORCHAIN_ENV"

// logEmitter mirrors every ledger event into the structured log.
type logEmitter struct {
	logger *slog.Logger
}

func (l *logEmitter) Emit(evt events.Typed) {
	payload := evt.Event()
	if payload == nil {
		return
	}
	attrs := make([]any, 0, len(payload.Attributes)*2)
	for k, v := range payload.Attributes {
		attrs = append(attrs, k, v)
	}
	l.logger.Info(payload.Type, attrs...)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envVar))
	logger := logging.Setup("donationd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	admin, err := cfg.Admin()
	if err != nil {
		logger.Error("invalid administrator address", "err", err)
		os.Exit(1)
	}
	minimum, err := cfg.MinimumDonationAmount()
	if err != nil {
		logger.Error("invalid minimum donation", "err", err)
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		logger.Error("failed to open database", "err", err, "dir", cfg.DataDir)
		os.Exit(1)
	}
	defer db.Close()

	funds := token.NewLedger(db, "DON", nil)
	credits := token.NewLedger(db, "DCR", nil)
	custody := crypto.ModuleAddress("donation/custody")

	engine := donation.NewEngine(donation.NewLedger(db), funds, credits, admin.Raw(), custody)
	engine.SetEmitter(&logEmitter{logger: logger})
	if err := engine.SetMinimumDonation(admin.Raw(), minimum); err != nil {
		logger.Error("failed to apply minimum donation", "err", err)
		os.Exit(1)
	}

	logger.Info("donation ledger ready",
		"network", cfg.NetworkName,
		"admin", admin.String(),
		"minimum", minimum.String(),
	)

	server := rpc.NewServer(engine, logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("rpc server stopped", "err", err)
		os.Exit(1)
	}
}
