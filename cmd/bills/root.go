package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/budgetwise/internal/apiclient"
	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
	"github.com/MrJamesThe3rd/budgetwise/internal/config"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine"
	"github.com/MrJamesThe3rd/budgetwise/internal/engine/memory"
	"github.com/MrJamesThe3rd/budgetwise/internal/logging"
)

var (
	flagAPI     string
	flagToken   string
	flagDemo    bool
	flagTimeout time.Duration

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bills",
	Short: "Track recurring bills and payments",
	Long: "Manage bills against a budgetwise API server, or try the commands on\n" +
		"seeded in-memory data with --demo (changes are not persisted).",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()

		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}

		logging.Setup(cfg.App.LogLevel)

		return nil
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "API base URL (default $API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "API bearer token (default $API_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&flagDemo, "demo", false, "Use seeded in-memory bills instead of the API")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "Timeout for the whole command")
}

// newEngine builds an engine over the API client or the demo backend and loads it.
func newEngine(ctx context.Context) (*engine.Engine, error) {
	baseURL := cmp.Or(flagAPI, cfg.Client.BaseURL)
	token := cmp.Or(flagToken, cfg.Client.Token)

	var backend engine.Backend

	switch {
	case flagDemo || cfg.Client.Demo:
		backend = memory.Demo()
	case baseURL != "":
		backend = apiclient.New(baseURL, token, apiclient.WithTimeout(cfg.Client.Timeout))
	default:
		return nil, errors.New("no API configured: pass --api, set API_BASE_URL, or use --demo")
	}

	e := engine.New(backend)
	if err := e.Load(ctx); err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return nil, errors.New("API rejected the token, check --token or API_TOKEN")
		}

		return nil, fmt.Errorf("load bills: %w", err)
	}

	return e, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), flagTimeout)
}

// resolveBill finds a bill by full id, id prefix or case-insensitive name.
func resolveBill(bills []*bill.Bill, ref string) (*bill.Bill, error) {
	ref = strings.TrimSpace(ref)

	if id, err := uuid.Parse(ref); err == nil {
		for _, b := range bills {
			if b.ID == id {
				return b, nil
			}
		}

		return nil, fmt.Errorf("%s: %w", ref, bill.ErrNotFound)
	}

	var matches []*bill.Bill

	for _, b := range bills {
		if strings.EqualFold(b.Name, ref) || strings.HasPrefix(b.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, b)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%s: %w", ref, bill.ErrNotFound)
	case 1:
		return matches[0], nil
	}

	return nil, fmt.Errorf("%q matches %d bills, use the id instead", ref, len(matches))
}

// warnStale lets a committed change through with a warning when only the
// follow-up reload failed.
func warnStale(cmd *cobra.Command, err error) error {
	if errors.Is(err, engine.ErrStale) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}

	return err
}
