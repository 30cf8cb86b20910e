package elevenlabs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/voices/add", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Bestefar", r.FormValue("name"))
		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "sample.wav", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "RIFF....", string(data))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voice_id":"v-123","requires_verification":false}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "secret", BaseURL: srv.URL + "/"})
	body, err := c.AddVoice(context.Background(), "Bestefar", strings.NewReader("RIFF...."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"voice_id":"v-123","requires_verification":false}`, string(body))
	assert.Equal(t, "v-123", VoiceID(body))
}

func TestAddVoiceWithoutKey(t *testing.T) {
	c := New(Config{})
	_, err := c.AddVoice(context.Background(), "x", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.False(t, c.Configured())
}

func TestAddVoiceProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":{"status":"invalid_sample"}}`))
	}))
	defer srv.Close()

	_, err := New(Config{APIKey: "k", BaseURL: srv.URL}).AddVoice(context.Background(), "x", strings.NewReader("a"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.JSONEq(t, `{"detail":{"status":"invalid_sample"}}`, string(apiErr.Body))
}

func TestAddVoiceNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(Config{APIKey: "k", BaseURL: srv.URL}).AddVoice(context.Background(), "x", strings.NewReader("a"))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestVoiceIDMissing(t *testing.T) {
	assert.Empty(t, VoiceID([]byte(`{"other":1}`)))
}
