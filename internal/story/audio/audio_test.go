package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wavHeader builds a 16-bit PCM WAV whose header claims the given length.
func wavHeader(t *testing.T, sampleRate uint32, channels uint16, seconds int) []byte {
	t.Helper()
	const bits = 16
	blockAlign := channels * bits / 8
	dataSize := uint32(seconds) * sampleRate * uint32(blockAlign)

	var buf bytes.Buffer
	w := func(v any) { require.NoError(t, binary.Write(&buf, binary.LittleEndian, v)) }
	buf.WriteString("RIFF")
	w(uint32(36 + dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	w(uint32(16))
	w(int16(1))
	w(int16(channels))
	w(sampleRate)
	w(sampleRate * uint32(blockAlign))
	w(int16(blockAlign))
	w(int16(bits))
	buf.WriteString("data")
	w(dataSize)
	buf.Write(make([]byte, 64))
	return buf.Bytes()
}

func TestAnalyzeWAV(t *testing.T) {
	tests := []struct {
		name      string
		rate      uint32
		seconds   int
		quality   Quality
		cloneable bool
	}{
		{"studio long", 44100, 180, QualityHigh, true},
		{"studio short", 48000, 60, QualityHigh, false},
		{"phone", 22050, 300, QualityMedium, false},
		{"low", 8000, 200, QualityLow, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Analyze(wavHeader(t, tt.rate, 1, tt.seconds))
			require.NoError(t, err)
			assert.Equal(t, tt.seconds, a.Duration)
			assert.Equal(t, tt.quality, a.Quality)
			assert.Equal(t, int(tt.rate), a.SampleRate)
			assert.Equal(t, tt.cloneable, a.VoiceCloneReady)
		})
	}
}

func TestAnalyzeStereo(t *testing.T) {
	a, err := Analyze(wavHeader(t, 44100, 2, 125))
	require.NoError(t, err)
	assert.Equal(t, 125, a.Duration)
	assert.True(t, a.VoiceCloneReady)
}

func TestAnalyzeUnsupported(t *testing.T) {
	webm := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00, 0x00}
	_, err := Analyze(webm)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	fb := Fallback(95)
	assert.Equal(t, 95, fb.Duration)
	assert.Equal(t, QualityLow, fb.Quality)
	assert.False(t, fb.VoiceCloneReady)
}

func TestAnalyzeCorruptWAV(t *testing.T) {
	_, err := Analyze([]byte("RIFF\x00\x00\x00\x00WAVEjunk"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAnalyzeZeroSampleRate(t *testing.T) {
	data := wavHeader(t, 1000, 1, 2)
	binary.LittleEndian.PutUint32(data[24:28], 0)
	binary.LittleEndian.PutUint32(data[28:32], 0)

	var err error
	require.NotPanics(t, func() { _, err = Analyze(data) })
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestStoreRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Path("s1")
	assert.ErrorIs(t, err, ErrNoRecording)

	data := wavHeader(t, 44100, 1, 1)
	path, err := s.Save("s1", data)
	require.NoError(t, err)
	assert.Equal(t, ".wav", path[len(path)-4:])

	f, gotPath, err := s.Open("s1")
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, data, got)

	webm := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x42, 0x86, 0x81, 0x01}
	path, err = s.Save("s1", webm)
	require.NoError(t, err)
	assert.Equal(t, ".webm", path[len(path)-5:])
	p, err := s.Path("s1")
	require.NoError(t, err)
	assert.Equal(t, path, p, "saving again must replace the old file")

	require.NoError(t, s.Delete("s1"))
	require.NoError(t, s.Delete("s1"))
	_, err = s.Path("s1")
	assert.ErrorIs(t, err, ErrNoRecording)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".mp3", Extension([]byte("ID3\x04\x00\x00")))
	assert.Equal(t, ".ogg", Extension([]byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00\x00\x00")))
}
