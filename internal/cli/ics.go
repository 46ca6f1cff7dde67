package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"valcal/internal/codec"
	"valcal/internal/ics"
	appLog "valcal/internal/log"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ics <link|token>",
		Short: "Export the unlock schedule as an iCalendar file",
		Long: "Write one all-day reminder per unlock (February 1-14) with the shared link attached. Card contents are not included.\n\n" +
			"With --check the argument is an exported .ics file, which is read back and its unlock events listed.",
		Args:  cobra.ExactArgs(1),
		Run:   runICS,
	}

	cmd.Flags().Int("year", 0, "February of this year (default: current year)")
	cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	cmd.Flags().Bool("check", false, "Read an exported .ics file and list its unlock events")

	RootCmd.AddCommand(cmd)
}

func runICS(cmd *cobra.Command, args []string) {
	if check, _ := cmd.Flags().GetBool("check"); check {
		runICSCheck(args[0])
		return
	}
	cfg := loadConfig()

	token, err := codec.TokenFromLink(args[0])
	if err != nil {
		exitErr("ics", errors.New(codec.Message(err, cfg.DefaultLanguage)))
	}
	data, err := codec.Decode(token)
	if err != nil {
		exitErr("ics", errors.New(codec.Message(err, cfg.DefaultLanguage)))
	}

	loc := newEngine(cfg).Location(data.Timezone)
	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = time.Now().In(loc).Year()
	}

	body, err := ics.Export(data, ics.ExportOptions{
		Year:     year,
		Location: loc,
		Link:     codec.Link(cfg.BaseURL, token),
	})
	if err != nil {
		exitErr("export", err)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		fmt.Print(body)
		return
	}
	if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
		exitErr("write", err)
	}
	appLog.Info("wrote calendar file", "path", out, "year", year, "timezone", loc.String())
}

func runICSCheck(path string) {
	events, err := readSchedule(path)
	if err != nil {
		exitErr("check", err)
	}
	if formatFlag == "json" {
		printJSON(events)
		return
	}
	fmt.Print(formatSchedule(events))
}

// readSchedule parses an exported schedule file. A file without any unlock
// events is an error.
func readSchedule(path string) ([]ics.UnlockEvent, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	events, err := ics.ParseSchedule(b)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%s: no unlock events", path)
	}
	return events, nil
}

func formatSchedule(events []ics.UnlockEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Calendar %s: %d unlock events\n", events[0].CalendarID, len(events))
	for _, ev := range events {
		fmt.Fprintf(&b, "  %2d  %s  %s\n", ev.Day, ev.At.Format("2006-01-02"), ev.Summary)
	}
	if events[0].URL != "" {
		fmt.Fprintf(&b, "Link: %s\n", events[0].URL)
	}
	return b.String()
}
