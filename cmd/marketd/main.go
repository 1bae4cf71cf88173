package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"nftmarket/config"
	"nftmarket/core/events"
	"nftmarket/native/market"
	"nftmarket/observability"
	"nftmarket/observability/logging"
	"nftmarket/rpc"
	"nftmarket/rpc/modules"
	"nftmarket/storage/marketdb"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "market.toml", "path to marketd configuration")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.Setup("marketd", "").Error("failed to load configuration", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	logger := logging.SetupWithFile("marketd", cfg.Env, cfg.LogFile, cfg.LogMaxSizeMB)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("failed to create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	store, err := marketdb.Open(filepath.Join(cfg.DataDir, "market.db"))
	if err != nil {
		logger.Error("failed to open market database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// The persisted owner wins over the configured one so ownership
	// transfers survive restarts.
	admin, found, err := store.OwnerGet()
	if err != nil {
		logger.Error("failed to read market owner", "error", err)
		os.Exit(1)
	}
	if !found {
		if admin, err = cfg.Admin(); err != nil {
			logger.Error("invalid admin address", "error", err)
			os.Exit(1)
		}
		if err := store.OwnerPut(admin); err != nil {
			logger.Error("failed to persist market owner", "error", err)
			os.Exit(1)
		}
	}

	allow := market.NewAllowlist(admin)
	allow.SetStore(store)
	engine := market.NewEngine(allow)
	engine.SetState(store)
	recorder := events.NewRecorder()
	engine.SetEmitter(events.Fanout{recorder, observability.Emitter{}})

	// Rebind persisted allow-list membership so a restart keeps serving the
	// contracts registered before it.
	host := newContractHost(engine.Address())
	for _, kind := range []market.ContractKind{market.ContractAsset, market.ContractPayment} {
		addrs, err := store.AllowlistAddresses(kind)
		if err != nil {
			logger.Error("failed to load allow-list", "kind", kind.String(), "error", err)
			os.Exit(1)
		}
		for _, addr := range addrs {
			switch kind {
			case market.ContractAsset:
				registry, err := host.AssetRegistry(addr)
				if err != nil {
					logger.Error("failed to bind asset contract", "error", err)
					os.Exit(1)
				}
				allow.RestoreAsset(addr, registry)
			default:
				ledger, err := host.PaymentLedger(addr)
				if err != nil {
					logger.Error("failed to bind payment contract", "error", err)
					os.Exit(1)
				}
				allow.RestorePayment(addr, ledger)
			}
		}
	}

	server := rpc.NewServer(modules.NewMarketModule(engine, recorder), modules.NewAdminModule(allow, host), logger)
	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("marketd listening", "addr", cfg.RPCAddress, "engine", "market")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("rpc server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
