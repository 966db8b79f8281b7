package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"aiinfra/app/config"
	"aiinfra/internal/domain/entity"
	"aiinfra/internal/infrastructure/metrics"
)

func testConfig(baseURL, model string) config.LLMConfig {
	return config.LLMConfig{
		BaseURL:     baseURL,
		Model:       model,
		Temperature: 0.1,
		NumPredict:  220,
		Timeout:     5 * time.Second,
	}
}

func TestOllamaGenerator_Generate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, false, raw["stream"])
		b, _ := json.Marshal(raw)
		require.NoError(t, json.Unmarshal(b, &got))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":    "phi3:mini",
			"response": "  {\"action\": \"create_vm\"}\n",
			"done":     true,
		})
	}))
	defer srv.Close()

	model := "phi3:generate-test"
	before := testutil.ToFloat64(metrics.LLMRequests.WithLabelValues(model))

	g := NewOllamaGenerator(testConfig(srv.URL+"/", model), zaptest.NewLogger(t))
	text, err := g.Generate(context.Background(), "create a vm", "SYSTEM")
	require.NoError(t, err)

	assert.Equal(t, `{"action": "create_vm"}`, text)
	assert.Equal(t, model, got.Model)
	assert.Equal(t, "SYSTEM\n\nUSER REQUEST:\ncreate a vm", got.Prompt)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
	assert.Equal(t, 220, got.Options.NumPredict)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LLMRequests.WithLabelValues(model)))
}

func TestOllamaGenerator_AcceptsAny2xx(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusCreated, http.StatusAccepted} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
				_, _ = w.Write([]byte(`{"response": "{}", "done": true}`))
			}))
			defer srv.Close()

			g := NewOllamaGenerator(testConfig(srv.URL, "phi3:mini"), zaptest.NewLogger(t))
			text, err := g.Generate(context.Background(), "p", "s")
			require.NoError(t, err)
			assert.Equal(t, "{}", text)
		})
	}
}

func TestOllamaGenerator_TransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "redirect status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotModified)
			},
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g := NewOllamaGenerator(testConfig(srv.URL, "phi3:mini"), zaptest.NewLogger(t))
			_, err := g.Generate(context.Background(), "p", "s")
			assert.ErrorIs(t, err, entity.ErrTransport)
		})
	}
}

func TestOllamaGenerator_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	g := NewOllamaGenerator(testConfig(addr, "phi3:mini"), zaptest.NewLogger(t))
	_, err := g.Generate(context.Background(), "p", "s")
	assert.ErrorIs(t, err, entity.ErrTransport)
}

func TestOllamaGenerator_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL, "phi3:mini")
	cfg.Timeout = 50 * time.Millisecond
	g := NewOllamaGenerator(cfg, zaptest.NewLogger(t))
	_, err := g.Generate(context.Background(), "p", "s")
	assert.ErrorIs(t, err, entity.ErrTransport)
}

func TestIsLoopback(t *testing.T) {
	tests := map[string]bool{
		"localhost":    true,
		"LOCALHOST":    true,
		"127.0.0.1":    true,
		"127.0.1.5":    true,
		"::1":          true,
		"10.0.0.1":     false,
		"ollama.local": false,
	}
	for host, want := range tests {
		assert.Equal(t, want, isLoopback(host), host)
	}
}

func TestProxyUnlessLoopback(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://proxy.invalid:3128")

	req := httptest.NewRequest(http.MethodPost, "http://127.0.0.1:11434/api/generate", nil)
	proxy, err := proxyUnlessLoopback(req)
	require.NoError(t, err)
	assert.Nil(t, proxy)
}
