package main

import (
	"fmt"
	"io"

	"github.com/salonensamuli/pybacktestchain/backtest"
	"github.com/salonensamuli/pybacktestchain/chain"
	"github.com/salonensamuli/pybacktestchain/config"
	"github.com/salonensamuli/pybacktestchain/data"
	"github.com/salonensamuli/pybacktestchain/journal"
	"github.com/salonensamuli/pybacktestchain/schedule"
	"github.com/salonensamuli/pybacktestchain/strategy"
)

// buildStore constructs the configured chain store. The returned closer is
// non-nil for stores that hold a database handle.
func buildStore(cfg config.ChainConfig) (chain.Store, io.Closer, error) {
	switch cfg.Store {
	case "file":
		s, err := chain.NewFileStore(cfg.Dir)
		return s, nil, err
	case "sqlite":
		s, err := chain.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown chain store %q", cfg.Store)
	}
}

func buildJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(cfg.TransactionsFile, cfg.ValuationsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

func buildSource(cfg config.DataConfig) (data.PriceSource, error) {
	switch cfg.Source {
	case "csv":
		return &data.CSVSource{Path: cfg.Path}, nil
	case "yahoo":
		return data.NewYahooSource(), nil
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.Source)
	}
}

// buildDriverConfig wires a file configuration into a runnable driver
// configuration. The caller owns the returned closers.
func buildDriverConfig(cfg *config.Config) (backtest.Config, []io.Closer, error) {
	var closers []io.Closer

	start, end, err := cfg.Run.Dates()
	if err != nil {
		return backtest.Config{}, nil, err
	}

	source, err := buildSource(cfg.Data)
	if err != nil {
		return backtest.Config{}, nil, err
	}

	factory, err := strategy.ByName(cfg.Run.Provider)
	if err != nil {
		return backtest.Config{}, nil, err
	}

	scheduler, err := schedule.ByName(cfg.Run.Scheduler)
	if err != nil {
		return backtest.Config{}, nil, err
	}

	store, storeCloser, err := buildStore(cfg.Chain)
	if err != nil {
		return backtest.Config{}, nil, err
	}
	if storeCloser != nil {
		closers = append(closers, storeCloser)
	}

	jnl, err := buildJournal(cfg.Journal)
	if err != nil {
		closeAll(closers)
		return backtest.Config{}, nil, err
	}
	closers = append(closers, jnl)

	return backtest.Config{
		Universe:    cfg.Run.Universe,
		Start:       start,
		End:         end,
		InitialCash: cfg.Run.InitialCash,
		Source:      source,
		Provider:    factory,
		Scheduler:   scheduler,
		Store:       store,
		Lookback:    cfg.Run.Lookback(),
		ChainName:   cfg.Chain.Name,
		Journal:     jnl,
	}, closers, nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
