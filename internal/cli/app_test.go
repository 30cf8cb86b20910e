package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"livetsstemme/internal/config"
	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/store/filestore"
	"livetsstemme/internal/story/audio"
	"livetsstemme/internal/story/nest"
	"livetsstemme/internal/story/transcribe"
	"livetsstemme/internal/story/tts"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voices struct{}

func (voices) AddVoice(_ context.Context, _ string, sample io.Reader) (json.RawMessage, error) {
	_, err := io.ReadAll(sample)
	return json.RawMessage(`{"voice_id":"v-1"}`), err
}

type testApp struct {
	*App
	buf    *bytes.Buffer
	engine *tts.MockTTSEngine
	played []string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	st, err := filestore.New(dir)
	require.NoError(t, err)
	as, err := audio.NewStore(filepath.Join(dir, "audio"))
	require.NoError(t, err)

	cfg := config.Config{DataDir: dir, TTS: config.TTS{Type: "mock"}}
	n := nest.New(nest.Options{Store: st, Audio: as, Voices: voices{}})

	ta := &testApp{App: NewApp(cfg, n), buf: &bytes.Buffer{}}
	ta.out = ta.buf
	ta.in = strings.NewReader("")
	ta.newEngine = func(c tts.Config) (tts.Engine, error) {
		ta.engine = tts.NewMockTTSEngine(c)
		ta.engine.SetDelay(10 * time.Millisecond)
		return ta.engine, nil
	}
	ta.play = func(_ context.Context, path string) error {
		ta.played = append(ta.played, path)
		return nil
	}
	return ta
}

func (ta *testApp) output() string {
	s := ta.buf.String()
	ta.buf.Reset()
	return s
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func webm() []byte {
	return append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 32)...)
}

func TestCommandsRequireLogin(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	assert.ErrorIs(t, ta.WhoAmI(ctx), ErrNotSignedIn)
	assert.ErrorIs(t, ta.ListStories(ctx, story.Query{}), ErrNotSignedIn)

	require.NoError(t, ta.Logout(ctx))
	assert.Contains(t, ta.output(), "ikke logget inn")
}

func TestLoginWhoAmILogout(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, ta.Login(ctx, "kari@example.no"))
	assert.Contains(t, ta.output(), "Velkommen, kari!")

	info, err := os.Stat(ta.cfg.SessionFile())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, ta.WhoAmI(ctx))
	out := ta.output()
	assert.Contains(t, out, "kari@example.no")
	assert.Contains(t, out, "free")

	require.NoError(t, ta.Logout(ctx))
	assert.NoFileExists(t, ta.cfg.SessionFile())
	assert.ErrorIs(t, ta.WhoAmI(ctx), ErrNotSignedIn)
}

func TestLoginRejectsBadEmail(t *testing.T) {
	ta := newTestApp(t)
	err := ta.Login(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, nest.ErrInvalid)
	assert.NoFileExists(t, ta.cfg.SessionFile())
}

func TestRecordListShowDelete(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, ta.Login(ctx, "ola@example.no"))
	ta.output()

	path := writeFile(t, "kaker.webm", webm())
	require.NoError(t, ta.Record(ctx, path, RecordOptions{
		Title:    "Bestemors kaker",
		Category: "Mat & Tradisjoner",
		Tags:     []string{"jul", "bakst"},
		Duration: 125,
	}))
	out := ta.output()
	assert.Contains(t, out, "Historien er lagret!")
	assert.Contains(t, out, "Bestemors kaker")
	assert.Contains(t, out, "2:05")
	assert.Contains(t, out, "#jul #bakst")

	require.NoError(t, ta.ListStories(ctx, story.Query{}))
	out = ta.output()
	assert.Contains(t, out, "1 historier")

	stories, err := ta.nest.ListStories(ctx, mustUser(t, ta).ID, story.Query{})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	id := stories[0].ID

	require.NoError(t, ta.ShowStory(ctx, id))
	out = ta.output()
	assert.Contains(t, out, transcribe.SimulatedTranscript)
	assert.Contains(t, out, "Stemning:")

	require.NoError(t, ta.DeleteStory(ctx, id))
	require.NoError(t, ta.ListStories(ctx, story.Query{}))
	assert.Contains(t, ta.output(), "Ingen historier funnet")
}

func mustUser(t *testing.T, ta *testApp) *user.User {
	t.Helper()
	u, err := ta.currentUser(context.Background())
	require.NoError(t, err)
	return u
}

func recordOne(t *testing.T, ta *testApp) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ta.Record(ctx, writeFile(t, "a.webm", webm()), RecordOptions{
		Title: "Fisketuren", Category: "Barndom", Duration: 60,
	}))
	ta.output()
	stories, err := ta.nest.ListStories(ctx, mustUser(t, ta).ID, story.Query{})
	require.NoError(t, err)
	require.NotEmpty(t, stories)
	return stories[0].ID
}

func TestListenPlaysRecording(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, ta.Login(ctx, "ola@example.no"))
	id := recordOne(t, ta)

	require.NoError(t, ta.Listen(ctx, id))
	require.Len(t, ta.played, 1)
	assert.Equal(t, id+".webm", filepath.Base(ta.played[0]))
	assert.Nil(t, ta.engine)

	s, err := ta.nest.GetStory(ctx, mustUser(t, ta).ID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, s.PlayCount)
}

func TestListenFallsBackToTranscript(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, ta.Login(ctx, "ola@example.no"))
	id := recordOne(t, ta)

	ta.play = func(context.Context, string) error { return audio.ErrUnsupportedFormat }
	require.NoError(t, ta.Listen(ctx, id))

	out := ta.output()
	assert.Contains(t, out, "leser transkripsjonen")
	assert.Contains(t, out, "Ferdig!")
	require.NotNil(t, ta.engine)
	assert.Equal(t, []string{transcribe.SimulatedTranscript}, ta.engine.Spoken())
}

func TestListenStopsOnInput(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, ta.Login(ctx, "ola@example.no"))
	id := recordOne(t, ta)

	ta.play = func(context.Context, string) error { return audio.ErrUnsupportedFormat }
	ta.in = strings.NewReader("x\ns\n")
	inner := ta.newEngine
	ta.newEngine = func(c tts.Config) (tts.Engine, error) {
		e, err := inner(c)
		ta.engine.SetDelay(time.Second)
		return e, err
	}

	require.NoError(t, ta.Listen(ctx, id))
	out := ta.output()
	assert.Contains(t, out, "Bruk 'p'")
	assert.Contains(t, out, "Stoppet")
	assert.NotContains(t, out, "Ferdig!")
}

func TestListenUnknownStory(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, ta.Login(ctx, "ola@example.no"))
	assert.Error(t, ta.Listen(ctx, "missing"))
}

func TestFamilyAndDashboard(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, ta.Login(ctx, "ola@example.no"))
	recordOne(t, ta)

	require.NoError(t, ta.FamilyList(ctx))
	assert.Contains(t, ta.output(), "Ingen familiemedlemmer")

	require.NoError(t, ta.FamilyInvite(ctx, "nora@example.no", "barnebarn", []string{"view", "listen"}))
	assert.Contains(t, ta.output(), "Invitasjon sendt til nora@example.no")

	require.NoError(t, ta.FamilyList(ctx))
	out := ta.output()
	assert.Contains(t, out, "nora <nora@example.no> barnebarn [view,listen] pending")

	require.NoError(t, ta.Dashboard(ctx))
	out = ta.output()
	assert.Contains(t, out, "Hei, ola!")
	assert.Contains(t, out, "Ventende invitasjoner: 1")
	assert.Contains(t, out, "Fisketuren")
}

func TestPrompts(t *testing.T) {
	ta := newTestApp(t)

	require.NoError(t, ta.Prompts(""))
	out := ta.output()
	for _, c := range ta.nest.PromptCategories() {
		assert.Contains(t, out, c)
	}

	require.NoError(t, ta.Prompts("Finnes ikke"))
	assert.Contains(t, ta.output(), "Ingen spørsmål")
}

func TestCloneVoiceAndPurge(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, ta.Login(ctx, "ola@example.no"))
	ta.output()

	require.NoError(t, ta.CloneVoice(ctx, "Farfar", writeFile(t, "sample.wav", []byte("RIFF"))))
	assert.Contains(t, ta.output(), "id v-1")
	assert.Equal(t, "v-1", mustUser(t, ta).VoiceID)

	assert.Error(t, ta.CloneVoice(ctx, "Farfar", filepath.Join(t.TempDir(), "missing.wav")))

	require.NoError(t, ta.Purge(ctx))
	assert.Contains(t, ta.output(), "Fjernet 0 utløpte økter")
}

func TestVoices(t *testing.T) {
	ta := newTestApp(t)
	require.NoError(t, ta.Voices())
	out := ta.output()
	assert.Contains(t, out, "mock")
	assert.Contains(t, out, "mock-voice")
}
