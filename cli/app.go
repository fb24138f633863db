package cli

import (
	"context"
	"fmt"

	"github.com/speedrun-hq/speedrun-e2e/pkg/chainclient"
	"github.com/speedrun-hq/speedrun-e2e/pkg/config"
	"github.com/speedrun-hq/speedrun-e2e/pkg/health"
	"github.com/speedrun-hq/speedrun-e2e/pkg/logger"
	"github.com/speedrun-hq/speedrun-e2e/pkg/orchestrator"
	"github.com/speedrun-hq/speedrun-e2e/pkg/poller"
	"github.com/speedrun-hq/speedrun-e2e/pkg/statusapi"
	"github.com/speedrun-hq/speedrun-e2e/pkg/submitter"
)

// app bundles the connected harness: configuration, chain clients and the
// orchestrator built on top of them.
type app struct {
	cfg     *config.Config
	logger  logger.Logger
	clients map[int]*chainclient.Client
	orch    *orchestrator.Orchestrator
}

// newApp loads configuration, connects every configured chain and assembles
// the orchestrator. The health and metrics server is started in the
// background when a metrics port is configured.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	log := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	clients := make(map[int]*chainclient.Client, len(cfg.Chains))
	for _, chainCfg := range cfg.Chains {
		client, err := chainclient.Dial(ctx, chainCfg, cfg.PrivateKey, log)
		if err != nil {
			return nil, err
		}
		if _, err := client.UpdateGasPrice(ctx); err != nil {
			log.ErrorWithChain(chainCfg.ChainID, "Failed to refresh gas price: %v", err)
		}
		clients[chainCfg.ChainID] = client
	}

	salts := submitter.NewRandomSaltSource()
	submitters := make(map[int]orchestrator.IntentSubmitter, len(clients))
	for chainID, client := range clients {
		submitters[chainID] = submitter.New(client, salts, log)
	}

	statusClient := statusapi.New(cfg.APIEndpoint, log)
	statusPoller := poller.New(statusClient, cfg.PollInterval, cfg.MaxPollAttempts, log)

	orch := orchestrator.New(cfg, submitters, statusPoller, log)

	if cfg.MetricsPort != "" {
		go health.NewServer(cfg.MetricsPort, clients, orch.Breakers(), log).Start()
	}

	return &app{
		cfg:     cfg,
		logger:  log,
		clients: clients,
		orch:    orch,
	}, nil
}

// Close releases all RPC connections.
func (a *app) Close() {
	for _, client := range a.clients {
		if client.Client != nil {
			client.Client.Close()
		}
	}
}
