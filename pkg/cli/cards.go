package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChoisMath/edutech/pkg/catalog"
	"github.com/ChoisMath/edutech/pkg/core/domain"
)

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List and manage cards",
	}
	cmd.AddCommand(newCardsListCmd(app))
	cmd.AddCommand(newCardsAddCmd(app))
	cmd.AddCommand(newCardsEditCmd(app))
	cmd.AddCommand(newCardsDeleteCmd(app))
	cmd.AddCommand(newCardsReorderCmd(app))
	cmd.AddCommand(newCardsCheckDuplicateCmd(app))
	return cmd
}

func newCardsListCmd(app *App) *cobra.Command {
	var search, category string
	var anyTerm bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := app.capabilities()
			if err != nil {
				return err
			}
			cat, err := catalog.ParseCategory(category)
			if err != nil {
				return err
			}
			q := catalog.Query{Text: search, Category: cat}
			if anyTerm {
				q.Mode = catalog.MatchAny
			}

			a := catalog.NewApp(app.client(), caps, nil)
			if err := a.Load(cmd.Context()); err != nil {
				return err
			}
			a.SetQuery(q)
			return writeOut(cmd, app, a.Visible())
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Search text (words must all match)")
	cmd.Flags().StringVar(&category, "category", "all", "Search scope (all|subject|keyword)")
	cmd.Flags().BoolVar(&anyTerm, "any", false, "Comma separated terms, any may match")
	return cmd
}

// cardFlags are the editable fields shared by add and edit.
type cardFlags struct {
	url, name, summary, meaning, thumbnail, thumbnailFile string
	subjects, keywords                                    string
	hidden                                                bool
}

func (f *cardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "Webpage URL")
	cmd.Flags().StringVar(&f.name, "name", "", "Webpage name")
	cmd.Flags().StringVar(&f.summary, "summary", "", "Short summary")
	cmd.Flags().StringVar(&f.meaning, "meaning", "", "Educational meaning")
	cmd.Flags().StringVar(&f.subjects, "subjects", "", "Comma separated subjects")
	cmd.Flags().StringVar(&f.keywords, "keywords", "", "Comma separated keywords")
	cmd.Flags().StringVar(&f.thumbnail, "thumbnail", "", "Thumbnail URL")
	cmd.Flags().StringVar(&f.thumbnailFile, "thumbnail-file", "", "Image to upload as the thumbnail")
	cmd.Flags().BoolVar(&f.hidden, "hidden", false, "Hide the card from the public listing")
}

// apply copies the flags that were set onto in.
func (f *cardFlags) apply(ctx context.Context, cmd *cobra.Command, app *App, in *domain.CardInput) error {
	set := cmd.Flags().Changed
	if set("url") {
		in.URL = f.url
	}
	if set("name") {
		in.WebpageName = f.name
	}
	if set("summary") {
		in.UserSummary = f.summary
	}
	if set("meaning") {
		in.EducationalMeaning = f.meaning
	}
	if set("subjects") {
		in.UsefulSubjects = domain.ParseTags(f.subjects)
	}
	if set("keywords") {
		in.Keyword = domain.ParseTags(f.keywords)
	}
	if set("thumbnail") {
		in.ThumbnailURL = &f.thumbnail
	}
	if set("hidden") {
		view := domain.ViewVisible
		if f.hidden {
			view = domain.ViewHidden
		}
		in.View = &view
	}
	if f.thumbnailFile != "" {
		data, err := os.ReadFile(f.thumbnailFile)
		if err != nil {
			return err
		}
		thumb, err := app.client().UploadThumbnail(ctx, f.thumbnailFile, data)
		if err != nil {
			return err
		}
		in.ThumbnailURL = &thumb.URL
	}
	return nil
}

func newCardsAddCmd(app *App) *cobra.Command {
	var f cardFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card (public role: submitted hidden for moderation)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := app.capabilities()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var in domain.CardInput
			if err := f.apply(ctx, cmd, app, &in); err != nil {
				return err
			}

			a := catalog.NewApp(app.client(), caps, nil)
			if in.URL != "" {
				dups, err := a.CheckDuplicates(ctx, in.URL)
				if err == nil && len(dups) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "note: %d card(s) already point at this site:\n", len(dups))
					for _, d := range dups {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %d  %s  %s\n", d.ID, d.WebpageName, d.URL)
					}
				}
			}

			card, err := a.Create(ctx, in)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, card)
		},
	}
	f.register(cmd)
	return cmd
}

func newCardsEditCmd(app *App) *cobra.Command {
	var f cardFlags
	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Change fields of a card (edit password)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			caps, err := app.capabilities()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a := catalog.NewApp(app.client(), caps, nil)
			if err := a.Load(ctx); err != nil {
				return err
			}
			current, ok := a.Store().Get(id)
			if !ok {
				return fmt.Errorf("card %d not found", id)
			}

			in := domain.CardInput{
				URL:                current.URL,
				WebpageName:        current.WebpageName,
				UserSummary:        current.UserSummary,
				UsefulSubjects:     current.UsefulSubjects,
				Keyword:            current.Keyword,
				EducationalMeaning: current.EducationalMeaning,
			}
			if err := f.apply(ctx, cmd, app, &in); err != nil {
				return err
			}

			pw, err := app.password(cmd)
			if err != nil {
				return err
			}
			card, err := a.Update(ctx, id, in, pw)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, card)
		},
	}
	f.register(cmd)
	return cmd
}

func newCardsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Hide a card from the public listing (admin password)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			caps, err := app.capabilities()
			if err != nil {
				return err
			}
			pw, err := app.password(cmd)
			if err != nil {
				return err
			}
			a := catalog.NewApp(app.client(), caps, nil)
			if err := a.Delete(cmd.Context(), id, pw); err != nil {
				return err
			}
			return writeOut(cmd, app, "Card deleted successfully")
		},
	}
}

// scriptDragger plays back one complete order given on the command line.
type scriptDragger struct {
	commit func([]int64)
}

func (d *scriptDragger) Attach(ids []int64, onReorderCommitted func([]int64)) {
	d.commit = onReorderCommitted
}

func (d *scriptDragger) Detach() { d.commit = nil }

func (d *scriptDragger) SetEnabled(bool) {}

func newCardsReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <card-id>...",
		Short: "Save a new display order; list every card, first to last (admin password)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, len(args))
			for i, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids[i] = id
			}
			caps, err := app.capabilities()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			drag := &scriptDragger{}
			a := catalog.NewApp(app.client(), caps, drag)
			if err := a.Load(ctx); err != nil {
				return err
			}
			if err := a.ToggleDragMode(); err != nil {
				return err
			}
			drag.commit(ids)
			if !sameOrder(a.Reorder().Draft(), ids) {
				return fmt.Errorf("the order must list each of the %d cards exactly once", len(a.Visible()))
			}

			pw, err := app.password(cmd)
			if err != nil {
				return err
			}
			if err := a.SaveOrder(ctx, pw); err != nil {
				return err
			}
			return writeOut(cmd, app, a.Visible())
		},
	}
}

func newCardsCheckDuplicateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check-duplicate <url>",
		Short: "List public cards on the same site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dups, err := app.client().CheckDuplicates(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, dups)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("card id must be a positive number: " + s)
	}
	return id, nil
}

func sameOrder(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
