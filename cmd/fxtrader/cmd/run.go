package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantfx/trader/broker"
	"github.com/quantfx/trader/broker/oanda"
	"github.com/quantfx/trader/broker/sim"
	"github.com/quantfx/trader/config"
	"github.com/quantfx/trader/control"
	"github.com/quantfx/trader/engine"
	"github.com/quantfx/trader/journal"
	"github.com/quantfx/trader/sentiment"
	"github.com/quantfx/trader/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop",
	Long: `Start the trading loop against the configured broker.

Credentials for live mode are read from the environment (or a .env file):
  OANDA_API_TOKEN, OANDA_ACCOUNT_ID, OANDA_PRACTICE

Example:
  fxtrader run -f fxtrader.yaml --live`,
	RunE: runRun,
}

var (
	runConfigPath string
	runLive       bool
	runSim        bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to YAML config file")
	runCmd.Flags().BoolVar(&runLive, "live", false, "trade through the live OANDA API")
	runCmd.Flags().BoolVar(&runSim, "sim", false, "paper-trade against the simulation broker")
	runCmd.MarkFlagsMutuallyExclusive("live", "sim")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Missing .env is fine; live credentials may come from the environment.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runLive {
		cfg.Broker.Mode = "live"
	}
	if runSim {
		cfg.Broker.Mode = "sim"
	}
	cfg.ApplyOverrides()

	log := newLogger(cfg.Logging)

	jr, err := newJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jr.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := engine.NewMetrics(registry)

	b, paper, err := newBroker(cfg.Broker)
	if err != nil {
		return err
	}

	ec := cfg.EngineConfig()
	ec.Predictor = strategies.LinearPredictor{}

	eng, err := engine.New(ec, b, sentiment.NewStatic(sentiment.Neutral), jr, metrics, log)
	if err != nil {
		return err
	}
	if paper != nil {
		paper.OnClose(func(ct sim.ClosedTrade) {
			eng.RecordClose(ct.TradeID, ct.Instrument, ct.ExitPrice, ct.RealizedPL, ct.Reason, ct.Time)
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Control.Enabled {
		srv := control.NewServer(eng, registry, log)
		eng.OnDecision(srv.Broadcast)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Control.Addr); err != nil {
				log.Error().Err(err).Msg("control server failed")
			}
		}()
	}

	log.Info().Str("mode", cfg.Broker.Mode).Msg("starting fxtrader")
	err = eng.Run(ctx)

	if paper != nil {
		for _, ct := range paper.CloseAll("Shutdown") {
			log.Info().Str("instrument", ct.Instrument).Float64("pl", ct.RealizedPL).
				Msg("closed paper position on shutdown")
		}
	}
	return err
}

func loadConfig() (*config.Config, error) {
	if runConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(runConfigPath)
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func newJournal(cfg config.JournalConfig) (journal.Journal, error) {
	if cfg.Type == "none" {
		return journal.Noop{}, nil
	}
	return journal.NewSQLite(cfg.DBPath)
}

// newBroker returns the broker plus the paper engine when in sim mode, so
// the caller can wire close notifications and shutdown behavior.
func newBroker(cfg config.BrokerConfig) (broker.Broker, *sim.Engine, error) {
	if cfg.Mode == "live" {
		token := os.Getenv("OANDA_API_TOKEN")
		account := os.Getenv("OANDA_ACCOUNT_ID")
		if token == "" || account == "" {
			return nil, nil, fmt.Errorf("live mode requires OANDA_API_TOKEN and OANDA_ACCOUNT_ID")
		}
		practice, _ := strconv.ParseBool(os.Getenv("OANDA_PRACTICE"))
		return oanda.NewClient(token, account, practice), nil, nil
	}

	paper := sim.NewEngine(cfg.StartingBalance)
	paper.SetCommission(cfg.CommissionPerUnit)
	return paper, paper, nil
}
