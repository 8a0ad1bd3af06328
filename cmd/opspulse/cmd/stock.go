package cmd

import (
	"fmt"
	"log/slog"
	"net/url"
	"opspulse/lib/pipeline"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/cobra"
)

var stockApiKey string
var stockOutputDir string

func init() {
	stockCmd.Flags().StringVar(&stockApiKey, "api-key", "", "Alpha Vantage API key (default from config, 'demo' for testing)")
	stockCmd.Flags().StringVarP(&stockOutputDir, "output-dir", "o", "", "directory for the timestamped output file")
	rootCmd.AddCommand(stockCmd)
}

var stockCmd = &cobra.Command{
	Use:   "stock <symbol>",
	Short: "Fetch daily stock data for a ticker symbol and persist it.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		symbol := args[0]

		symbolPattern, err := regexp.Compile(config.Stock.SymbolPattern)
		if err != nil {
			fatal("invalid symbol pattern in config", err)
		}
		if !symbolPattern.MatchString(symbol) {
			fatal("invalid stock symbol", fmt.Errorf("%q does not match %q", symbol, symbolPattern))
		}

		apiKey := config.Stock.ApiKey
		if cmd.Flags().Changed("api-key") {
			apiKey = stockApiKey
		}
		if apiKey == "" || apiKey == "YOUR_API_KEY" {
			slog.Warn("api key looks invalid, using it anyway")
		}

		outputDir := config.Stock.OutputDir
		if cmd.Flags().Changed("output-dir") {
			outputDir = stockOutputDir
		}
		sink := filepath.Join(outputDir, fmt.Sprintf(
			"stock_data_%s_%s.json",
			symbol,
			time.Now().Format("20060102_150405"),
		))

		// Alpha Vantage reports failures in-band: "Error Message" for a
		// bad symbol, "Note" when rate limited.
		rules := []pipeline.Rule{
			pipeline.ForbidKey("Error Message"),
			pipeline.ForbidKey("Note"),
			pipeline.RequireKey("Time Series (Daily)"),
		}

		slog.Info("requesting data", "symbol", symbol)

		start := time.Now()
		p := pipeline.New(pipeline.Options{})
		rec, err := p.Run(cmd.Context(), pipeline.Request{
			Locator: config.Stock.Endpoint,
			Query: url.Values{
				"function": {"TIME_SERIES_DAILY"},
				"symbol":   {symbol},
			},
			Credential:      apiKey,
			CredentialParam: "apikey",
			Timeout:         time.Duration(config.Stock.TimeoutSeconds) * time.Second,
		}, rules, sink)
		journalRun(cmd.Context(), start, config.Stock.Endpoint, sink, rec, err)
		if err != nil {
			fatal("stock pipeline failed", err)
		}

		fmt.Printf("Stock data for %s saved to %q (%d bytes)\n", symbol, sink, rec.Bytes)
	},
}
