package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/rentalshop/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUploadPostsBase64(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "k-123", r.URL.Query().Get("key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "iVBORw0KGgo=", r.PostForm.Get("image"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"url":"https://i.example.com/abc.png"}}`))
	}))
	defer srv.Close()

	host := NewImageHost(&config.UploadConfig{Endpoint: srv.URL + "/1/upload", APIKey: "k-123", Timeout: time.Second}, zap.NewNop())
	require.NotNil(t, host)

	got, err := host.Upload(context.Background(), "data:image/png;base64,iVBORw0KGgo=")
	require.NoError(t, err)
	assert.Equal(t, "https://i.example.com/abc.png", got)
}

func TestUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"Invalid API key"}}`))
	}))
	defer srv.Close()

	host := NewImageHost(&config.UploadConfig{Endpoint: srv.URL}, zap.NewNop())
	_, err := host.Upload(context.Background(), "AAAA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestUploadGarbageResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	host := NewImageHost(&config.UploadConfig{Endpoint: srv.URL}, zap.NewNop())
	_, err := host.Upload(context.Background(), "AAAA")
	assert.Error(t, err)
}

func TestNewImageHostDisabled(t *testing.T) {
	assert.Nil(t, NewImageHost(&config.UploadConfig{}, zap.NewNop()))
}
