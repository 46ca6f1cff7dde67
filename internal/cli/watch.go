package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"valcal/internal/codec"
	"valcal/internal/model"
	"valcal/internal/watch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch <link|token>",
		Short: "Print each day of a shared calendar as it unlocks",
		Long:  "Check the calendar on the configured cron schedule (watch_cron, default midnight) and print every newly unlocked card. Exits once all 14 days are open.",
		Args:  cobra.ExactArgs(1),
		Run:   runWatch,
	}

	cmd.Flags().String("cron", "", "Cron schedule to check on (overrides watch_cron)")

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	data, err := codec.DecodeLink(args[0])
	if err != nil {
		exitErr("watch", errors.New(codec.Message(err, cfg.DefaultLanguage)))
	}

	spec := cfg.WatchCron
	if v, _ := cmd.Flags().GetString("cron"); v != "" {
		spec = v
	}

	engine := newEngine(cfg)
	w, err := watch.New(engine, data, func(card model.DayCard) {
		if formatFlag == "json" {
			printJSON(card)
			return
		}
		printCard(card)
		fmt.Println()
	}, watch.Options{
		Spec:     spec,
		Location: engine.Location(data.Timezone),
	})
	if err != nil {
		exitErr("watch", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		exitErr("watch", err)
	}
}
