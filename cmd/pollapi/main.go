// Command pollapi serves the confidential poll API over HTTP.
//
// The API builds unsigned create_new_poll, vote and reveal_result
// transactions for a wallet to sign, encrypts ballots against the
// coordinator key, reads revealed tallies, and archives decoded reveals.
//
// # Configuration File
//
//	http_addr: ":8080"
//	rpc_url: "https://api.devnet.solana.com"
//	log_level: "info"
//	allowed_origins: ["http://localhost:3000"]
//	program:
//	  program_id: "CFbzcvAxXg8kX52gWeDKjWqSMV5v8aMg9csB75KgQYvK"
//	  coordinator_id: "Arcj82pX7HxYKLR92qvgZUAd7vGS1k4hQvAFcPATFdEQ"
//	  cluster_offset: 456
//	encryption:
//	  key_url: ""          # {"publicKey": "<hex>"}
//	  static_key: ""       # hex X25519 key
//	  key_from_mxe: false
//	postgres:              # omit for an in-memory reveal archive
//	  host: "localhost"
//	  port: 5432
//	  user: "postgres"
//	  database: "arcpoll"
//
// # Usage
//
//	go run ./cmd/pollapi --config=pollapi.yaml
//	go run ./cmd/pollapi --addr=:9000 --rpc=http://localhost:8899
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flashbots/arcpoll/api/httpserver"
	"github.com/flashbots/arcpoll/cmd/common"
	"github.com/flashbots/arcpoll/ledger"
	"github.com/flashbots/arcpoll/services"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		addr       = flag.String("addr", "", "HTTP listen address")
		rpcURL     = flag.String("rpc", "", "Solana JSON-RPC endpoint")
		keyURL     = flag.String("key-url", "", "URL serving the coordinator public key")
		logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		logJSON    = flag.Bool("log-json", false, "Log in JSON")
		pprof      = flag.Bool("pprof", false, "Enable pprof under /debug")
	)
	flag.Parse()

	cfg := common.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = common.LoadConfig(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Command-line flags override config file
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *rpcURL != "" {
		cfg.RPCURL = *rpcURL
	}
	if *keyURL != "" {
		cfg.Encryption.KeyURL = *keyURL
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logJSON {
		cfg.LogJSON = true
	}
	if *pprof {
		cfg.EnablePprof = true
	}

	log := common.NewLogger(cfg.LogLevel, cfg.LogJSON)
	transport := ledger.NewRPCTransport(cfg.RPCURL)

	keys, err := common.NewKeySource(cfg.Encryption, cfg.Program, transport)
	if err != nil {
		log.Error("Key source error", "err", err)
		os.Exit(1)
	}
	if keys == nil {
		log.Warn("No coordinator key source configured, ballots will be encrypted in fallback mode")
	}

	reveals, err := common.NewRevealStore(cfg.Postgres)
	if err != nil {
		log.Error("Reveal store error", "err", err)
		os.Exit(1)
	}
	defer reveals.Close()

	svc, err := services.NewPollService(&services.PollServiceConfig{
		Program:   cfg.Program,
		Transport: transport,
		Encryptor: common.NewEncryptor(cfg.Encryption, keys, log),
		Store:     reveals,
		Log:       log,
	})
	if err != nil {
		log.Error("Create service error", "err", err)
		os.Exit(1)
	}

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               cfg.HTTPAddr,
		AllowedOrigins:           cfg.AllowedOrigins,
		EnablePprof:              cfg.EnablePprof,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 10 * time.Second,
		ReadTimeout:              15 * time.Second,
		WriteTimeout:             30 * time.Second,
	}, svc)
	if err != nil {
		log.Error("Create server error", "err", err)
		os.Exit(1)
	}

	log.Info("Poll API configured",
		"program", cfg.Program.ProgramID.String(),
		"coordinator", cfg.Program.CoordinatorID.String(),
		"clusterOffset", cfg.Program.ClusterOffset,
		"rpc", cfg.RPCURL)

	srv.RunInBackground()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down")
	srv.Shutdown()
}
