package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-threshold/internal/api"
	"github.com/rxtech-lab/argo-threshold/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-threshold/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-threshold/internal/config"
	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/internal/store"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata"
	"github.com/rxtech-lab/argo-threshold/pkg/marketdata/provider"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// app bundles what every command needs after the config is loaded.
type app struct {
	config config.AppConfig
	log    *logger.Logger
}

func loadApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &app{config: cfg, log: log}, nil
}

// newEngine builds an initialized engine wired to the configured provider.
// The returned function releases the provider.
func (a *app) newEngine() (engine.Engine, func(), error) {
	engineConfig, err := a.config.EngineYAML()
	if err != nil {
		return nil, nil, err
	}

	backtest := engine_v1.NewBacktestEngineV1()
	if withLogger, ok := backtest.(interface{ SetLogger(*logger.Logger) }); ok {
		withLogger.SetLogger(a.log)
	}

	if err := backtest.Initialize(engineConfig); err != nil {
		return nil, nil, err
	}

	marketProvider, err := provider.NewMarketDataProvider(a.config.Provider, a.config.ProviderConfig(), a.log)
	if err != nil {
		return nil, nil, err
	}

	release := func() {
		if closer, ok := marketProvider.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				a.log.Warn("Failed to close provider", zap.Error(err))
			}
		}
	}

	if err := backtest.SetProvider(marketProvider); err != nil {
		release()
		return nil, nil, err
	}

	return backtest, release, nil
}

func (a *app) openStore() (*store.DuckDBStore, error) {
	return store.NewDuckDBStore(a.config.StorePath, a.log)
}

// runParamsFromFlags reads the run command flags. Threshold flags only override when set.
func runParamsFromFlags(cmd *cli.Command) engine.RunParams {
	params := engine.RunParams{
		Ticker:        cmd.String("ticker"),
		Indicator:     cmd.String("indicator"),
		Normalization: cmd.String("normalization"),
		StartDate:     cmd.String("start"),
		EndDate:       cmd.String("end"),
		BuyThreshold:  optional.None[float64](),
		SellThreshold: optional.None[float64](),
	}

	if cmd.IsSet("buy-threshold") {
		params.BuyThreshold = optional.Some(cmd.Float("buy-threshold"))
	}

	if cmd.IsSet("sell-threshold") {
		params.SellThreshold = optional.Some(cmd.Float("sell-threshold"))
	}

	return params
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	backtest, release, err := a.newEngine()
	if err != nil {
		return err
	}
	defer release()

	result, err := backtest.Run(ctx, runParamsFromFlags(cmd), engine.LifecycleCallbacks{})
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	if cmd.Bool("save") {
		resultStore, err := a.openStore()
		if err != nil {
			return err
		}
		defer resultStore.Close()

		if err := resultStore.Save(ctx, result); err != nil {
			return err
		}
	}

	if output := cmd.String("output"); output != "" {
		return types.WriteBacktestResult(output, result)
	}

	return printYAML(os.Stdout, result)
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	resultStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer resultStore.Close()

	results, err := resultStore.ListRecent(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	return printHistory(os.Stdout, results)
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	backtest, release, err := a.newEngine()
	if err != nil {
		return err
	}
	defer release()

	resultStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer resultStore.Close()

	server, err := api.NewServer(backtest, resultStore, a.log)
	if err != nil {
		return err
	}

	if origins := cmd.StringSlice("cors-origin"); len(origins) > 0 {
		server.SetAllowedOrigins(origins)
	}

	address := a.config.ListenAddr
	if addr := cmd.String("addr"); addr != "" {
		address = addr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, address)
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	var bar *progressbar.ProgressBar

	onProgress := func(current int, total int, message string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(message),
				progressbar.OptionShowCount(),
			)
		}

		_ = bar.Set(current)
	}

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType: provider.ProviderType(cmd.String("provider")),
		DataPath:     cmd.String("data"),
		Provider:     a.config.ProviderConfig(),
	}, onProgress, a.log)
	if err != nil {
		return err
	}

	path, err := client.Download(ctx, marketdata.DownloadParams{
		Ticker:    cmd.String("ticker"),
		StartDate: cmd.Timestamp("start"),
		EndDate:   cmd.Timestamp("end"),
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Printf("\nDownloaded data to %s\n", path)

	return nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := engine_v1.NewBacktestEngineV1().GetConfigSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func printYAML(w io.Writer, value any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}

func printHistory(w io.Writer, results []types.BacktestResult) error {
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(table, "ID\tTICKER\tINDICATOR\tNORMALIZATION\tSTART\tEND\tCAGR\tSHARPE\tMAX DD\tWIN RATE\tTRADES\tAVG TRADE %\tCREATED")

	for _, result := range results {
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%.2f\t%s\n",
			result.ID,
			result.Ticker,
			result.Indicator,
			result.Normalization,
			result.StartDate,
			result.EndDate,
			result.Cagr,
			result.Sharpe,
			result.MaxDrawdown,
			result.WinRate,
			result.NumberOfTrades,
			averageTradeReturn(result.Trades),
			result.CreatedAt.UTC().Format(api.CreatedAtLayout),
		)
	}

	return table.Flush()
}

// averageTradeReturn is the mean price return of the trades in percent.
func averageTradeReturn(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}

	total := lo.SumBy(trades, func(trade types.Trade) float64 {
		return trade.Return()
	})

	return total / float64(len(trades)) * 100
}
