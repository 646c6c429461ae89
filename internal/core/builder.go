package core

import (
	"os"

	"yggdrasil/config"
	"yggdrasil/internal/capability"
	"yggdrasil/internal/metrics"
	"yggdrasil/internal/registry"
	"yggdrasil/internal/transport"
	"yggdrasil/util"
)

// Build constructs the Mode the configuration asks for.  cfg must
// already be valid.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	if cfg.Listen {
		return buildListen(cfg, logger, m), nil
	}
	return buildConnect(cfg, logger)
}

// ── mode builders ────────────────────────────────────────────────────

func buildListen(cfg *config.Config, logger *util.Logger, m *metrics.Collector) *ListenMode {
	reg := registry.New()
	m.ObserveRegistry(reg.Directory.Len, reg.Usernames.Len)

	return &ListenMode{
		Address:     cfg.ListenAddr(),
		Path:        cfg.Path,
		StatsPath:   cfg.StatsPath,
		GracePeriod: cfg.GracePeriod,
		Acceptor: transport.NewAcceptor(transport.AcceptorConfig{
			ReadLimit:        cfg.ReadLimit,
			HandshakeTimeout: cfg.HandshakeTimeout,
			Metrics:          m,
			Logger:           logger,
		}),
		Capability: &capability.Matchmaker{
			Registry:    reg,
			Metrics:     m,
			Logger:      logger,
			IdleTimeout: cfg.IdleTimeout,
		},
		Metrics: m,
		Logger:  logger,
	}
}

func buildConnect(cfg *config.Config, logger *util.Logger) (*ConnectMode, error) {
	u, err := config.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	return &ConnectMode{
		Dialer: &transport.WSDialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
			Logger:           logger,
		},
		Capability: &capability.Console{
			Logger:      logger,
			Interactive: util.IsTerminal(os.Stdin),
		},
		URL:      u.String(),
		Attempts: cfg.DialAttempts,
		Logger:   logger,
	}, nil
}
