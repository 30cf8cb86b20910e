package tts

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/sirupsen/logrus"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// chunkLimit stays under the 5000 byte request limit of the API.
const chunkLimit = 4800

// GoogleTTSEngine synthesizes MP3 with Cloud Text-to-Speech, caches the
// chunks on disk per story and plays them through beep.
type GoogleTTSEngine struct {
	client       *texttospeech.Client
	ctx          context.Context
	cancel       context.CancelFunc
	voice        string
	language     string
	speed        float64
	cacheRootDir string
	storyID      string

	mu        sync.Mutex
	isPlaying bool
	ctrl      *beep.Ctrl
	speakerOn bool
}

func newGoogleTTSEngine(config Config) (*GoogleTTSEngine, error) {
	ctx, cancel := context.WithCancel(context.Background())
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	cacheDir := config.CachePath
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "livetsstemme-tts")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	speed := config.Speed
	if speed <= 0 {
		speed = 1.0
	}
	voice := config.Voice
	if voice == "default" {
		voice = ""
	}

	return &GoogleTTSEngine{
		client:       client,
		ctx:          ctx,
		cancel:       cancel,
		voice:        voice,
		language:     LanguageCode(config.Language),
		speed:        speed,
		cacheRootDir: cacheDir,
	}, nil
}

// SetStory groups cached audio under the story being read.
func (g *GoogleTTSEngine) SetStory(storyID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.storyID = storyID
}

func (g *GoogleTTSEngine) cacheDirectory() string {
	if g.storyID == "" {
		return g.cacheRootDir
	}
	return filepath.Join(g.cacheRootDir, g.storyID)
}

func (g *GoogleTTSEngine) chunkPath(dir, hash string, i int) string {
	prefix := g.storyID
	if prefix == "" {
		prefix = "audio"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%d.mp3", prefix, hash, i))
}

func (g *GoogleTTSEngine) synthesize(chunk string) ([]byte, error) {
	audioCfg := &texttospeechpb.AudioConfig{
		AudioEncoding: texttospeechpb.AudioEncoding_MP3,
	}
	// Chirp voices reject speaking rate.
	if !strings.Contains(strings.ToLower(g.voice), "chirp") {
		audioCfg.SpeakingRate = g.speed
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.language,
			Name:         g.voice,
		},
		AudioConfig: audioCfg,
	}
	resp, err := g.client.SynthesizeSpeech(g.ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.AudioContent, nil
}

// Speak synthesizes missing chunks and plays all of them in order.
func (g *GoogleTTSEngine) Speak(text string) error {
	g.mu.Lock()
	dir := g.cacheDirectory()
	hash := md5Sum(text + g.voice + g.language)[:8]
	g.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	chunks := splitIntoChunks(text, chunkLimit)
	for i, chunk := range chunks {
		path := g.chunkPath(dir, hash, i)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		audio, err := g.synthesize(chunk)
		if err != nil {
			return fmt.Errorf("failed to synthesize chunk %d: %w", i, err)
		}
		if err := os.WriteFile(path, audio, 0644); err != nil {
			return fmt.Errorf("failed to write MP3 chunk %d to %s: %w", i, path, err)
		}
		logrus.WithFields(logrus.Fields{
			"chunk": i + 1,
			"of":    len(chunks),
			"file":  path,
		}).Debug("Cached synthesized audio")
	}

	g.setPlaying(true)
	defer g.setPlaying(false)
	for i := range chunks {
		if err := g.playChunk(g.chunkPath(dir, hash, i)); err != nil {
			return err
		}
		if g.ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

func (g *GoogleTTSEngine) setPlaying(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.isPlaying = v
}

func (g *GoogleTTSEngine) playChunk(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open cached MP3 %s: %w", path, err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode MP3 %s: %w", path, err)
	}
	defer streamer.Close()

	g.mu.Lock()
	if !g.speakerOn {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			g.mu.Unlock()
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		g.speakerOn = true
	}
	g.ctrl = &beep.Ctrl{Streamer: streamer}
	ctrl := g.ctrl
	g.mu.Unlock()

	done := make(chan struct{})
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() { close(done) })))

	select {
	case <-done:
	case <-g.ctx.Done():
		speaker.Clear()
	}
	return nil
}

func (g *GoogleTTSEngine) SetVoice(voice string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.voice = voice
	return nil
}

func (g *GoogleTTSEngine) SetSpeed(speed float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.speed = speed
	return nil
}

// Stop ends playback; the engine cannot speak again afterwards.
func (g *GoogleTTSEngine) Stop() error {
	g.cancel()
	return nil
}

func (g *GoogleTTSEngine) Pause() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctrl != nil {
		speaker.Lock()
		g.ctrl.Paused = true
		speaker.Unlock()
	}
	return nil
}

func (g *GoogleTTSEngine) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ctrl != nil {
		speaker.Lock()
		g.ctrl.Paused = false
		speaker.Unlock()
	}
	return nil
}

func (g *GoogleTTSEngine) IsPlaying() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isPlaying && (g.ctrl == nil || !g.ctrl.Paused)
}

func (g *GoogleTTSEngine) GetAvailableVoices() ([]string, error) {
	resp, err := g.client.ListVoices(g.ctx, &texttospeechpb.ListVoicesRequest{LanguageCode: g.language})
	if err != nil {
		return nil, err
	}
	voices := make([]string, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voices = append(voices, v.Name)
	}
	return voices, nil
}

func md5Sum(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// splitIntoChunks cuts text into pieces of at most limit runes.
func splitIntoChunks(text string, limit int) []string {
	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); i += limit {
		end := i + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
