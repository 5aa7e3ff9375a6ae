package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/config"
	"github.com/tempest-ops/opsdeck/internal/logging"
	"github.com/tempest-ops/opsdeck/internal/signal"
	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// Run wires the console from config and blocks until the operator quits.
// A nonzero waveID or orderID deep-links into that entity's detail screen.
func Run(cfg *config.Config, waveID, orderID int64) error {
	logDir := ""
	if cfg.Logging.Enabled {
		logDir = cfg.Paths.ResolveLogDir()
	}
	logger, err := logging.NewLogger(logDir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()

	wms, err := client.NewWMS(client.Options{
		BaseURL: cfg.Services.WMSBaseURL,
		Token:   cfg.Services.Token,
		Timeout: cfg.Services.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	oms, err := client.NewOMS(client.Options{
		BaseURL: cfg.Services.OMSBaseURL,
		Token:   cfg.Services.Token,
		Timeout: cfg.Services.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	gate, err := workflow.NewGate(workflow.GateOptions{
		OptimisticWhenStepless: cfg.Gate.OptimisticStepless,
		PackStepPattern:        cfg.Gate.PackStepPattern,
	})
	if err != nil {
		return err
	}

	model := NewModel(Options{
		Config:         cfg,
		Logger:         logger,
		Backend:        wms,
		Orders:         oms,
		Dispatcher:     signal.New(wms, oms, logger),
		Gate:           gate,
		InitialWaveID:  waveID,
		InitialOrderID: orderID,
	})

	logger.Info("console starting",
		"wms", cfg.Services.WMSBaseURL, "oms", cfg.Services.OMSBaseURL)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console exited with an error: %w", err)
	}
	return nil
}
