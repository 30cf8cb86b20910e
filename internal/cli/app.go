// Package cli renders the story service on the terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"livetsstemme/internal/cli/scheme/colours"
	"livetsstemme/internal/config"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/story/audio"
	"livetsstemme/internal/story/nest"
	"livetsstemme/internal/story/tts"
)

var ErrNotSignedIn = errors.New("not signed in, run 'livetsstemme login <email>' first")

// App holds what the commands share.
type App struct {
	cfg  config.Config
	nest *nest.Nest
	out  io.Writer
	in   io.Reader

	newEngine func(tts.Config) (tts.Engine, error)
	play      func(ctx context.Context, path string) error
}

func NewApp(cfg config.Config, n *nest.Nest) *App {
	return &App{
		cfg:       cfg,
		nest:      n,
		out:       os.Stdout,
		in:        os.Stdin,
		newEngine: tts.NewEngine,
		play:      audio.Play,
	}
}

func (a *App) sessionFile() string {
	return a.cfg.SessionFile()
}

func (a *App) readToken() string {
	data, err := os.ReadFile(a.sessionFile())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// currentUser resolves the stored session.
func (a *App) currentUser(ctx context.Context) (*user.User, error) {
	token := a.readToken()
	if token == "" {
		return nil, ErrNotSignedIn
	}
	u, err := a.nest.CurrentUser(ctx, token)
	if errors.Is(err, nest.ErrUnauthorized) {
		return nil, ErrNotSignedIn
	}
	return u, err
}

func (a *App) Login(ctx context.Context, email string) error {
	u, sess, err := a.nest.SignIn(ctx, email)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.sessionFile()), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(a.sessionFile(), []byte(sess.Token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	fmt.Fprintln(a.out)
	colours.Success.Fprintf(a.out, "Velkommen, %s!\n", u.Name)
	colours.Info.Fprintf(a.out, "Innlogget til %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	token := a.readToken()
	if token == "" {
		colours.Warning.Fprintln(a.out, "Du er ikke logget inn.")
		return nil
	}
	if err := a.nest.SignOut(ctx, token); err != nil {
		return err
	}
	if err := os.Remove(a.sessionFile()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	colours.Success.Fprintln(a.out, "Logget ut.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	colours.Title.Fprintln(a.out, u.Name)
	fmt.Fprintf(a.out, "  E-post:      %s\n", u.Email)
	fmt.Fprintf(a.out, "  Abonnement:  %s\n", u.Subscription)
	fmt.Fprintf(a.out, "  Språk:       %s\n", u.Preferences.Language)
	if u.VoiceID != "" {
		fmt.Fprintf(a.out, "  Stemme:      %s\n", u.VoiceID)
	}
	colours.Info.Fprintf(a.out, "  ID: %s\n", u.ID)
	return nil
}
