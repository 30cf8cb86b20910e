package main

import (
	"strings"

	"livetsstemme/internal/cli"
	"livetsstemme/internal/domain/story"

	"github.com/spf13/cobra"
)

// withApp adapts an App method to a cobra RunE.
func withApp(rt *state, fn func(cmd *cobra.Command, app *cli.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := rt.app(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd, app, args)
	}
}

func newLoginCmd(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "🔑 Logg inn med e-post",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, args []string) error {
			return app.Login(cmd.Context(), args[0])
		}),
	}
}

func newLogoutCmd(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "🚪 Logg ut",
		Args:  cobra.NoArgs,
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, _ []string) error {
			return app.Logout(cmd.Context())
		}),
	}
}

func newWhoAmICmd(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "👤 Vis innlogget bruker",
		Args:  cobra.NoArgs,
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, _ []string) error {
			return app.WhoAmI(cmd.Context())
		}),
	}
}

func newStoriesCmd(rt *state) *cobra.Command {
	storiesCmd := &cobra.Command{
		Use:   "stories",
		Short: "📚 Administrer historiene dine",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "📋 List historiene dine",
		Args:  cobra.NoArgs,
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, _ []string) error {
			search, _ := cmd.Flags().GetString("search")
			category, _ := cmd.Flags().GetString("category")
			sortBy, _ := cmd.Flags().GetString("sort")
			sort, err := story.ParseSort(sortBy)
			if err != nil {
				return err
			}
			return app.ListStories(cmd.Context(), story.Query{Search: search, Category: category, Sort: sort})
		}),
	}
	listCmd.Flags().StringP("search", "s", "", "Search title, description and tags")
	listCmd.Flags().StringP("category", "c", "", "Filter by category")
	listCmd.Flags().String("sort", "newest", "newest, oldest, longest or most-played")

	showCmd := &cobra.Command{
		Use:   "show <story-id>",
		Short: "📖 Vis en historie",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, args []string) error {
			return app.ShowStory(cmd.Context(), args[0])
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <story-id>",
		Short: "🗑️ Slett en historie",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, args []string) error {
			return app.DeleteStory(cmd.Context(), args[0])
		}),
	}

	storiesCmd.AddCommand(listCmd, showCmd, deleteCmd)
	return storiesCmd
}

func newRecordCmd(rt *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <audio-file>",
		Short: "🎙️ Lagre et opptak som en ny historie",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, args []string) error {
			f := cmd.Flags()
			title, _ := f.GetString("title")
			description, _ := f.GetString("description")
			category, _ := f.GetString("category")
			tags, _ := f.GetString("tags")
			duration, _ := f.GetInt("duration")

			opts := cli.RecordOptions{
				Title:       title,
				Description: description,
				Category:    category,
				Duration:    duration,
			}
			for _, t := range strings.Split(tags, ",") {
				if t = strings.TrimSpace(t); t != "" {
					opts.Tags = append(opts.Tags, t)
				}
			}
			return app.Record(cmd.Context(), args[0], opts)
		}),
	}
	cmd.Flags().StringP("title", "t", "", "Story title")
	cmd.Flags().StringP("description", "d", "", "Short description")
	cmd.Flags().StringP("category", "c", "", "Story category")
	cmd.Flags().String("tags", "", "Comma separated tags")
	cmd.Flags().Int("duration", 0, "Length in seconds when the file cannot be analyzed")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newListenCmd(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "listen <story-id>",
		Short: "🎧 Lytt til en historie",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, args []string) error {
			return app.Listen(cmd.Context(), args[0])
		}),
	}
}

func newPromptsCmd(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts [category]",
		Short: "💭 Spørsmål som hjelper deg i gang",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(rt, func(_ *cobra.Command, app *cli.App, args []string) error {
			category := ""
			if len(args) == 1 {
				category = args[0]
			}
			return app.Prompts(category)
		}),
	}
}

func newFamilyCmd(rt *state) *cobra.Command {
	familyCmd := &cobra.Command{
		Use:   "family",
		Short: "👪 Del historier med familien",
	}

	inviteCmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "💌 Inviter et familiemedlem",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, args []string) error {
			relationship, _ := cmd.Flags().GetString("relationship")
			permissions, _ := cmd.Flags().GetStringSlice("permissions")
			return app.FamilyInvite(cmd.Context(), args[0], relationship, permissions)
		}),
	}
	inviteCmd.Flags().StringP("relationship", "r", "", "How you are related")
	inviteCmd.Flags().StringSlice("permissions", []string{"view", "listen"}, "view, listen, download, comment")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "📋 List familiemedlemmer",
		Args:  cobra.NoArgs,
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, _ []string) error {
			return app.FamilyList(cmd.Context())
		}),
	}

	familyCmd.AddCommand(inviteCmd, listCmd)
	return familyCmd
}

func newDashboardCmd(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "🏠 Oversikt over historiene dine",
		Args:  cobra.NoArgs,
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, _ []string) error {
			return app.Dashboard(cmd.Context())
		}),
	}
}

func newVoiceCmd(rt *state) *cobra.Command {
	voiceCmd := &cobra.Command{
		Use:   "voice",
		Short: "🗣️ Stemmekloning",
	}
	voiceCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "📋 Vis tilgjengelige opplesningsstemmer",
		Args:  cobra.NoArgs,
		RunE: withApp(rt, func(_ *cobra.Command, app *cli.App, _ []string) error {
			return app.Voices()
		}),
	}, &cobra.Command{
		Use:   "clone <name> <sample-file>",
		Short: "🎙️ Klon en stemme fra en lydprøve",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, args []string) error {
			return app.CloneVoice(cmd.Context(), args[0], args[1])
		}),
	})
	return voiceCmd
}

func newPurgeCmd(rt *state) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "🧹 Fjern utløpte økter og delinger",
		Args:  cobra.NoArgs,
		RunE: withApp(rt, func(cmd *cobra.Command, app *cli.App, _ []string) error {
			return app.Purge(cmd.Context())
		}),
	}
}
