package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"valcal/internal/codec"
	"valcal/internal/model"
	"valcal/internal/session"
)

func init() {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Author a calendar and print its shareable link",
		Long: "Author a calendar from flags and/or a YAML draft (--from) and print the link.\n" +
			"Flags are applied after the draft, so they override it.\n\n" +
			"  valcal new --recipient Sam --template dreamy-night --tz Europe/Madrid \\\n" +
			"    --message 1='Good morning' --image 1=./us.jpg --animate 1,14\n\n" +
			"With --edit the calendar starts from an existing link instead of a blank one.",
		Args: cobra.NoArgs,
		Run:  runNew,
	}

	cmd.Flags().String("edit", "", "Existing link or token to start from")
	cmd.Flags().String("from", "", "YAML draft to start from")
	cmd.Flags().StringP("recipient", "r", "", "Recipient name")
	cmd.Flags().StringP("template", "t", "", "Template id (see `valcal templates`)")
	cmd.Flags().String("lang", "", "Calendar language: es or en")
	cmd.Flags().String("tz", "", "IANA timezone the recipient unlocks in (default: viewer's local time)")
	cmd.Flags().StringArrayP("message", "m", nil, "Card message as DAY=TEXT (repeatable)")
	cmd.Flags().StringArray("image", nil, "Card image as DAY=PATH or DAY=URL (repeatable)")
	cmd.Flags().StringArray("animate", nil, "Days with the hearts animation, e.g. 1,7,14 (repeatable)")

	RootCmd.AddCommand(cmd)
}

func runNew(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	store := session.NewStore(
		session.WithOrigin(cfg.BaseURL),
		session.WithDefaultLanguage(cfg.DefaultLanguage),
		session.WithMaxImageBytes(cfg.MaxImageBytes),
	)
	edit, _ := cmd.Flags().GetString("edit")
	if err := startCalendar(store, edit); err != nil {
		exitErr("edit", errors.New(codec.Message(err, cfg.DefaultLanguage)))
	}

	if from, _ := cmd.Flags().GetString("from"); from != "" {
		d, err := readDraft(from)
		if err != nil {
			exitErr("read draft", err)
		}
		if err := d.apply(store); err != nil {
			exitErr("apply draft", err)
		}
	}

	if err := applyFlags(cmd, store); err != nil {
		exitErr("new", err)
	}

	c, _ := store.Calendar()
	if err := c.Validate(); err != nil {
		exitErr("invalid calendar", err)
	}

	link, err := store.Link()
	if err != nil {
		exitErr("encode link", err)
	}

	if formatFlag == "json" {
		printJSON(map[string]any{"link": link, "calendar": c})
		return
	}
	fmt.Println(link)
}

// startCalendar puts a blank calendar in store, or the one encoded in
// link when it is set. The loaded calendar keeps its id and createdAt.
func startCalendar(store *session.Store, link string) error {
	if link == "" {
		store.Initialize()
		return nil
	}
	data, err := codec.DecodeLink(link)
	if err != nil {
		return err
	}
	store.Load(data)
	return nil
}

func applyFlags(cmd *cobra.Command, store *session.Store) error {
	flags := cmd.Flags()
	if v, _ := flags.GetString("recipient"); v != "" {
		store.SetRecipientName(v)
	}
	if v, _ := flags.GetString("template"); v != "" {
		store.SetTemplate(model.Template(v))
	}
	if v, _ := flags.GetString("lang"); v != "" {
		store.SetLanguage(model.Language(v))
	}
	if v, _ := flags.GetString("tz"); v != "" {
		store.SetTimezone(v)
	}

	var errs []error

	raw, _ := flags.GetStringArray("message")
	messages, err := parseDayValues(raw)
	if err != nil {
		errs = append(errs, fmt.Errorf("--message %w", err))
	}
	for day, msg := range messages {
		store.UpdateCard(day, session.CardUpdate{Message: &msg})
	}

	raw, _ = flags.GetStringArray("image")
	images, err := parseDayValues(raw)
	if err != nil {
		errs = append(errs, fmt.Errorf("--image %w", err))
	}
	for day, src := range images {
		if err := attachImage(store, day, src, ""); err != nil {
			errs = append(errs, err)
		}
	}

	raw, _ = flags.GetStringArray("animate")
	days, err := parseDayList(raw)
	if err != nil {
		errs = append(errs, fmt.Errorf("--animate %w", err))
	}
	on := true
	for _, day := range days {
		store.UpdateCard(day, session.CardUpdate{HasAnimation: &on})
	}

	return errors.Join(errs...)
}
