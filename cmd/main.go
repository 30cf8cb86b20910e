package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"livetsstemme/internal/cli"
	"livetsstemme/internal/cli/scheme/colours"
	"livetsstemme/internal/config"
	"livetsstemme/internal/story/nest"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// state is filled in by the root command before any subcommand runs.
type state struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	nest    *nest.Nest
}

// open builds the service on first use so help output never touches storage.
func (rt *state) open(ctx context.Context) (*nest.Nest, error) {
	if rt.nest != nil {
		return rt.nest, nil
	}
	n, err := nest.FromConfig(ctx, rt.cfg)
	if err != nil {
		return nil, err
	}
	rt.nest = n
	return n, nil
}

func (rt *state) app(ctx context.Context) (*cli.App, error) {
	n, err := rt.open(ctx)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(rt.cfg, n), nil
}

func (rt *state) close() {
	if rt.nest != nil {
		rt.nest.Close()
	}
}

func newRootCmd(rt *state) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "livetsstemme",
		Short: "🎙️ Ta vare på familiens historier",
		Long: `
┌─────────────────────────────────────┐
│  🎙️ Velkommen til Livets Stemme!    │
│  Familiens historier, fortalt av    │
│  dem som levde dem                  │
└─────────────────────────────────────┘

Livets Stemme tar opp, transkriberer og deler historiene til
besteforeldrene dine. Kjør 'livetsstemme serve' for API-et.
		`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load(rt.v, rt.cfgFile)
			if err != nil {
				return err
			}
			if err := config.SetupLogging(cfg.Log); err != nil {
				return err
			}
			rt.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rt.cfgFile, "config", "", "config file (default $HOME/.livetsstemme/livetsstemme.yaml)")
	flags.String("data-dir", "", "directory for stories, recordings and the session")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = rt.v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = rt.v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newServeCmd(rt),
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newWhoAmICmd(rt),
		newStoriesCmd(rt),
		newRecordCmd(rt),
		newListenCmd(rt),
		newPromptsCmd(rt),
		newFamilyCmd(rt),
		newDashboardCmd(rt),
		newVoiceCmd(rt),
		newPurgeCmd(rt),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := &state{v: config.New()}
	defer rt.close()

	err := newRootCmd(rt).ExecuteContext(ctx)
	if ctx.Err() != nil {
		fmt.Println("\n" + colours.Warning.Sprint("👋 Ha det bra!"))
	}
	if err != nil {
		colours.Error.Fprintf(os.Stderr, "❌ Feil: %v\n", err)
		rt.close()
		os.Exit(1)
	}
}
