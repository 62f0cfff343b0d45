package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"gmapscrape/internal/browser"
	"gmapscrape/internal/fetcher"
	"gmapscrape/internal/sites/maps"
)

var doctorNavigate bool

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that a browser can be found and launched",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
	cmd.Flags().BoolVar(&doctorNavigate, "navigate", false, "Also load a Google Maps search")
	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg := browserConfig(state.cfg)
	printf(cmd, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	bin, attempts, err := browser.ResolveBin(cfg, state.log)
	printf(cmd, "\nBrowser lookup:\n")
	for _, a := range attempts {
		printf(cmd, "  %s\n", a)
	}
	if err != nil {
		return &browser.SetupError{Attempts: attempts, Err: err}
	}
	printf(cmd, "Using: %s\n", bin)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.Timeout+doctorBudget(doctorNavigate))
	defer cancel()

	cfg.Bin = bin
	printf(cmd, "\nLaunching browser (headless=%v)... ", cfg.Headless)
	sess, err := browser.Open(ctx, cfg, state.log)
	if err != nil {
		printf(cmd, "failed\n")
		return err
	}
	defer sess.Close()
	printf(cmd, "ok\nUser agent: %s\n", sess.UserAgent())

	if doctorNavigate {
		link := maps.SearchURL("coffee", "")
		printf(cmd, "Loading %s... ", link)
		res, err := fetcher.New(sess.Page, state.log).Fetch(ctx, fetcher.Request{
			URL:     link,
			Wait:    fetcher.WaitStrategyLoad,
			Timeout: cfg.Timeout,
			Consent: true,
		})
		if err != nil {
			printf(cmd, "failed\n")
			return fmt.Errorf("navigation check failed: %w", err)
		}
		printf(cmd, "ok (%s, %q)\n", res.LoadTime.Round(time.Millisecond), res.Title)
	}

	printf(cmd, "\nAll checks passed.\n")
	return nil
}

func doctorBudget(navigate bool) time.Duration {
	if navigate {
		return 30 * time.Second
	}
	return 0
}
