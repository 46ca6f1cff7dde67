package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"valcal/internal/codec"
	"valcal/internal/imageuri"
	"valcal/internal/model"
	"valcal/internal/unlock"
)

func init() {
	cmd := &cobra.Command{
		Use:   "open <link|token>",
		Short: "Show a shared calendar as its recipient would see it",
		Long:  "Decode a shared link and list which days are open. With --day, print that day's card if it is unlocked.",
		Args:  cobra.ExactArgs(1),
		Run:   runOpen,
	}

	cmd.Flags().String("at", "", "Evaluate at this RFC 3339 instant instead of now")
	cmd.Flags().String("mode", "receiver", "View mode: receiver, creator or static")
	cmd.Flags().Int("day", 0, "Open this day (1-14)")

	RootCmd.AddCommand(cmd)
}

func runOpen(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	data, err := codec.DecodeLink(args[0])
	if err != nil {
		exitErr("open", errors.New(codec.Message(err, cfg.DefaultLanguage)))
	}

	now := time.Now()
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		now, err = time.Parse(time.RFC3339, at)
		if err != nil {
			exitErr("--at", err)
		}
	}
	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := unlock.ParseMode(modeStr)
	if err != nil {
		exitErr("--mode", err)
	}

	engine := newEngine(cfg)
	set := engine.ComputeFor(now, data, mode)

	if day, _ := cmd.Flags().GetInt("day"); day != 0 {
		if err := unlock.CanOpen(day, set, mode); err != nil {
			exitErr(fmt.Sprintf("day %d", day), err)
		}
		card, ok := data.Card(day)
		if !ok {
			exitErr(fmt.Sprintf("day %d", day), unlock.ErrNoSuchDay)
		}
		if formatFlag == "json" {
			printJSON(card)
			return
		}
		printCard(card)
		return
	}

	next, hasNext := engine.NextUnlock(now, data.Timezone)
	if formatFlag == "json" {
		out := map[string]any{
			"calendar":      data,
			"unlocked_days": set,
			"mode":          mode.String(),
		}
		if hasNext && mode == unlock.ModeReceiver {
			out["next_unlock"] = next
		}
		printJSON(out)
		return
	}

	fmt.Print(summarize(data, set, mode))
	if hasNext && mode == unlock.ModeReceiver {
		fmt.Printf("Next unlock: %s\n", next.Format(time.RFC1123))
	}
}

// summarize renders the text overview of a calendar: a header and one line
// per day, locked days without their content.
func summarize(data *model.CalendarData, set unlock.Set, mode unlock.Mode) string {
	var b strings.Builder
	name := data.RecipientName
	if name == "" {
		name = "(no recipient)"
	}
	fmt.Fprintf(&b, "Calendar %s for %s\n", data.ID, name)
	fmt.Fprintf(&b, "Template: %s  Language: %s  Timezone: %s\n", data.Template, data.EffectiveLanguage(), zoneLabel(data.Timezone))
	fmt.Fprintf(&b, "Unlocked: %d/%d (%s)\n", set.Len(), model.DayCount, mode)

	for _, card := range data.Cards {
		if !set.Contains(card.Day) && mode != unlock.ModeCreatorPreview {
			fmt.Fprintf(&b, "  %2d  locked\n", card.Day)
			continue
		}
		msg := card.Message
		if msg == "" {
			msg = "(empty)"
		}
		if card.ImageURL != "" {
			msg += "  [image]"
		}
		fmt.Fprintf(&b, "  %2d  %s\n", card.Day, msg)
	}
	return b.String()
}

func zoneLabel(tz string) string {
	if tz == "" {
		return "viewer local"
	}
	return tz
}

func printCard(card model.DayCard) {
	fmt.Printf("Day %d\n\n%s\n", card.Day, card.Message)
	if card.ImageURL != "" {
		p := card.ResolvedPosition()
		img := card.ImageURL
		if imageuri.IsDataURI(img) {
			img = "embedded image"
		}
		fmt.Printf("\nImage: %s (x=%.0f y=%.0f scale=%.2f)\n", img, p.X, p.Y, p.Scale)
	}
	if card.HasAnimation {
		fmt.Println("With floating hearts.")
	}
}
