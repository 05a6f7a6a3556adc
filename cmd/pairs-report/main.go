package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"quantdesk/internal/config"
	"quantdesk/internal/exporter"
	"quantdesk/internal/infrastructure"
	"quantdesk/internal/marketdata"
	"quantdesk/internal/services"
)

func main() {
	tickersFlag := flag.String("tickers", "", "comma-separated ticker universe (e.g. SPY,IVV,VOO)")
	universeFile := flag.String("universe", "", "file with one ticker per line; # starts a comment")
	lookback := flag.Int("lookback", 0, "lookback window in days (0 uses the configured default)")
	threshold := flag.Float64("threshold", 0, "cointegration p-value threshold (0 uses the configured default)")
	outputDir := flag.String("out", "reports", "output directory for the scan reports")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	tickers, err := resolveUniverse(*tickersFlag, *universeFile)
	if err != nil {
		logger.Error("failed to resolve ticker universe", "error", err)
		os.Exit(1)
	}
	logger.Info("scanning universe",
		"tickers", len(tickers),
		"provider", cfg.MarketData.ProviderName)

	var cache *marketdata.Cache
	if cfg.MarketData.RedisAddr != "" {
		cache = marketdata.NewCache(cfg.MarketData.RedisAddr, cfg.MarketData.RedisPassword,
			cfg.MarketData.RedisDB, cfg.MarketData.CacheTTL, logger)
		defer cache.Close()
	}

	client := marketdata.NewClient(marketdata.Config{
		ProviderName:      cfg.MarketData.ProviderName,
		BaseURL:           cfg.MarketData.BaseURL,
		Timeout:           cfg.MarketData.Timeout,
		RequestsPerSecond: cfg.MarketData.RequestsPerSecond,
		Burst:             cfg.MarketData.Burst,
		FetchConcurrency:  cfg.MarketData.FetchConcurrency,
		RiskFreeRate:      cfg.MarketData.RiskFreeRate,
	}, cache, logger)

	service := services.NewStatArbService(client, cfg.Analytics, nil, logger)

	ctx := context.Background()
	scan, err := service.FindPairs(ctx, tickers, *lookback, *threshold)
	if err != nil {
		logger.Error("pair scan failed", "error", err)
		os.Exit(1)
	}
	logger.Info("pair scan finished",
		"tested", scan.TotalCombinationsTested,
		"cointegrated", scan.CointegratedCount,
		"skipped", scan.Skipped)

	timestamp := time.Now().Format("20060102")
	reports := exporter.NewPairsExporter(*outputDir, logger)

	csvName := fmt.Sprintf("pairs_scan_%s.csv", timestamp)
	if err := reports.ExportCSV(scan, csvName); err != nil {
		logger.Error("failed to write CSV report", "error", err)
		os.Exit(1)
	}

	xlsxName := fmt.Sprintf("pairs_scan_%s.xlsx", timestamp)
	if err := reports.ExportXLSX(scan, xlsxName); err != nil {
		logger.Error("failed to write XLSX report", "error", err)
		os.Exit(1)
	}

	logger.Info("pair scan reports written",
		"csv", csvName,
		"xlsx", xlsxName,
		"pairs", len(scan.Pairs))

	printTopPairs(scan)
}

// resolveUniverse builds the ticker list from the -tickers flag or, when
// that is empty, the -universe file. Entries are trimmed, uppercased, and
// de-duplicated preserving order.
func resolveUniverse(list, file string) ([]string, error) {
	var raw []string
	switch {
	case list != "":
		raw = strings.Split(list, ",")
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open universe file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			raw = append(raw, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read universe file: %w", err)
		}
	default:
		return nil, fmt.Errorf("either -tickers or -universe is required")
	}

	seen := make(map[string]bool, len(raw))
	tickers := make([]string, 0, len(raw))
	for _, entry := range raw {
		ticker := strings.ToUpper(strings.TrimSpace(entry))
		if ticker == "" || strings.HasPrefix(ticker, "#") {
			continue
		}
		if seen[ticker] {
			continue
		}
		seen[ticker] = true
		tickers = append(tickers, ticker)
	}

	if len(tickers) < 2 {
		return nil, fmt.Errorf("at least two tickers are required, got %d", len(tickers))
	}
	return tickers, nil
}

// printTopPairs prints the strongest candidates to stdout. Pairs arrive
// sorted by ascending p-value, so the head of the slice is the headline.
func printTopPairs(scan *services.PairScanResult) {
	if len(scan.Pairs) == 0 {
		fmt.Println("\nNo cointegrated pairs found.")
		return
	}

	limit := len(scan.Pairs)
	if limit > 10 {
		limit = 10
	}

	fmt.Println("\n=== TOP COINTEGRATED PAIRS ===")
	fmt.Println("Pair          | P-Value  | Hedge Ratio | Half-Life | Correlation")
	fmt.Println("--------------|----------|-------------|-----------|------------")

	for _, pair := range scan.Pairs[:limit] {
		halfLife := "n/a"
		if pair.HalfLife != nil {
			halfLife = fmt.Sprintf("%.1fd", *pair.HalfLife)
		}
		fmt.Printf("%-6s/%-6s | %8.5f | %11.4f | %9s | %11.4f\n",
			pair.TickerA, pair.TickerB, pair.PValue, pair.HedgeRatio, halfLife, pair.Correlation)
	}

	fmt.Printf("\nTested %d combinations, %d cointegrated, %d skipped.\n",
		scan.TotalCombinationsTested, scan.CointegratedCount, scan.Skipped)
}
