package transcribe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsProvider(t *testing.T) {
	tr, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, Mock{}, tr)

	_, err = New(Config{Provider: "whisper"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(Config{Provider: "assemblyai"})
	assert.Error(t, err)
}

func TestMockTranscript(t *testing.T) {
	text, err := Mock{}.Transcribe(context.Background(), strings.NewReader("ignored"), "a.wav", "nb")
	require.NoError(t, err)
	assert.Equal(t, SimulatedTranscript, text)
}

func TestWhisperTranscribe(t *testing.T) {
	var gotPath, gotAuth, gotLang, gotModel, gotAudio string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotLang = r.FormValue("language")
		gotModel = r.FormValue("model")
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		b, _ := io.ReadAll(f)
		gotAudio = string(b)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  Vi bodde på Lofoten.  "}`))
	}))
	defer srv.Close()

	tr, err := New(Config{Provider: "whisper", APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	text, err := tr.Transcribe(context.Background(), strings.NewReader("RIFFdata"), "sample.wav", "nb")
	require.NoError(t, err)
	assert.Equal(t, "Vi bodde på Lofoten.", text)
	assert.Equal(t, "/v1/audio/transcriptions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "no", gotLang)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "RIFFdata", gotAudio)
}

func TestWhisperError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad audio","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	tr, err := NewWhisper(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), strings.NewReader("x"), "a.wav", "en")
	assert.Error(t, err)
}
