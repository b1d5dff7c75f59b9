package server

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/logger"
	"github.com/kbukum/pipelinekit/problems"
	"github.com/kbukum/pipelinekit/registry"
	"github.com/kbukum/pipelinekit/security/tlstest"
)

const selfLoop = `{
  "doc_type": "pipeline",
  "version": "3.0",
  "id": "doc",
  "primary_pipeline": "p1",
  "pipelines": [{
    "id": "p1",
    "nodes": [{
      "id": "A",
      "type": "execution_node",
      "op": "run-notebook",
      "app_data": {"label": "Node A", "component_parameters": {"filename": ""}},
      "inputs": [{"id": "in", "links": [{"id": "loop", "node_id_ref": "A", "port_id_ref": "out"}]}]
    }],
    "app_data": {"version": 3},
    "runtime_ref": ""
  }],
  "schemas": []
}`

const legacy = `{
  "doc_type": "pipeline",
  "version": "3.0",
  "id": "doc",
  "primary_pipeline": "p1",
  "pipelines": [{
    "id": "p1",
    "nodes": [{
      "id": "A",
      "type": "pipeline_node",
      "op": "run-notebook",
      "app_data": {"notebook": "work/a.ipynb", "docker_image": "py:3"}
    }],
    "app_data": {"title": "demo"},
    "runtime_ref": ""
  }],
  "schemas": []
}`

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code      string `json:"code"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func newTestServer(t *testing.T, opts ...APIOption) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := registry.FromSpecs([]registry.NodeSpec{{
		Op:    "run-notebook",
		Label: "Notebook",
		Type:  registry.NodeTypeFile,
		Properties: []registry.PropertySpec{
			{ID: "runtime_image", Title: "Runtime Image", Type: registry.TypeString},
		},
	}})
	require.NoError(t, err)

	cfg := Config{MaxBodySize: "4KB"}
	cfg.ApplyDefaults()
	s := New(cfg, logger.Nop())
	s.ApplyMiddleware()
	opts = append([]APIOption{WithLogger(logger.Nop())}, opts...)
	NewAPI(reg, opts...).Register(s.Engine(), "pipelinectl")
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env envelope
	if rr.Header().Get("Content-Type") != "" && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rr.Body.Bytes(), &env)
	}
	return rr, env
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestServer(t)

	rr, _ := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "up", health["status"])
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr, _ = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, float64(flow.CurrentVersion), info["document_version"])
}

func TestNodeTypes(t *testing.T) {
	h := newTestServer(t)
	rr, env := do(t, h, http.MethodGet, "/v1/node-types", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var types []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &types))
	require.Len(t, types, 1)
	assert.Equal(t, "run-notebook", types[0]["op"])
}

func TestValidate(t *testing.T) {
	h := newTestServer(t)
	rr, env := do(t, h, http.MethodPost, "/v1/pipelines/validate", selfLoop)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Problems, 2)
	assert.Equal(t, problems.CircularReference, resp.Problems[0].Info.Type)
	assert.Equal(t, problems.MissingProperty, resp.Problems[1].Info.Type)
	assert.Equal(t, 13, resp.Problems[0].Line)
	assert.Equal(t, 71, resp.Problems[0].Column)
	assert.Empty(t, resp.Supernodes)
}

func TestValidate_MalformedBody(t *testing.T) {
	h := newTestServer(t)
	rr, env := do(t, h, http.MethodPost, "/v1/pipelines/validate", "{not json")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Empty(t, resp.Problems)
}

func TestValidate_BodyTooLarge(t *testing.T) {
	h := newTestServer(t)
	rr, env := do(t, h, http.MethodPost, "/v1/pipelines/validate", strings.Repeat(" ", 8<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestMigrate(t *testing.T) {
	h := newTestServer(t)
	rr, _ := do(t, h, http.MethodPost, "/v1/pipelines/migrate", legacy)
	require.Equal(t, http.StatusOK, rr.Code)

	doc, err := flow.Decode(rr.Body.Bytes())
	require.NoError(t, err)
	v, ok := doc.DocumentVersion()
	require.True(t, ok)
	assert.Equal(t, flow.CurrentVersion, v)

	node := doc.Primary().FindNode("A")
	require.NotNil(t, node)
	assert.Equal(t, flow.ExecutionNode, node.Type)
	assert.Equal(t, "a.ipynb", node.AppData["filename"])
	assert.Equal(t, "py:3", node.AppData["runtime_image"])

	rr, env := do(t, h, http.MethodPost, "/v1/pipelines/migrate", "{")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "INVALID_PIPELINE", env.Error.Code)
}

func TestOpen(t *testing.T) {
	t.Run("current document", func(t *testing.T) {
		h := newTestServer(t)
		rr, env := do(t, h, http.MethodPost, "/v1/pipelines/open", selfLoop)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Document flow.Document `json:"document"`
			Report   struct {
				Problems   []problems.Problem  `json:"problems"`
				NodeErrors map[string][]string `json:"node_errors"`
			} `json:"report"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "p1", resp.Document.PrimaryPipeline)
		assert.Len(t, resp.Report.Problems, 2)
		assert.Equal(t, []string{`property "File" is required`}, resp.Report.NodeErrors["A"])
	})

	t.Run("older document rejected", func(t *testing.T) {
		h := newTestServer(t)
		rr, env := do(t, h, http.MethodPost, "/v1/pipelines/open", legacy)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "PIPELINE_OUT_OF_DATE", env.Error.Code)
	})

	t.Run("older document migrated", func(t *testing.T) {
		h := newTestServer(t, WithMigrateOnOpen(true))
		rr, _ := do(t, h, http.MethodPost, "/v1/pipelines/open", legacy)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("newer document", func(t *testing.T) {
		h := newTestServer(t)
		body := strings.Replace(selfLoop, `"version": 3}`, `"version": 7}`, 1)
		rr, env := do(t, h, http.MethodPost, "/v1/pipelines/open", body)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "EDITOR_OUT_OF_DATE", env.Error.Code)
		assert.Equal(t, rr.Header().Get("X-Request-Id"), env.Error.RequestID)
		assert.NotEmpty(t, env.Error.RequestID)
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Port)

	cfg.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg.Port = 8080
	cfg.TLS.CertFile = "cert.pem"
	assert.Error(t, cfg.Validate(), "cert without key")
}

func TestRecoveryThroughServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(Config{}, logger.Nop())
	s.ApplyMiddleware()
	s.Engine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", bytes.NewReader(nil)))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStartAndStop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	certs := tlstest.GenerateTLSCerts(t)

	tests := []struct {
		name   string
		scheme string
		tls    bool
	}{
		{"plain", "http", false},
		{"tls", "https", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Host: "127.0.0.1"}
			cfg.ApplyDefaults()
			cfg.Port = 0
			if tt.tls {
				cfg.TLS.CertFile = certs.CertFile
				cfg.TLS.KeyFile = certs.KeyFile
			}

			s := New(cfg, logger.Nop())
			s.ApplyMiddleware()
			s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
			require.NoError(t, s.Start(context.Background()))
			defer func() { assert.NoError(t, s.Stop(context.Background())) }()

			client := &http.Client{Transport: &http.Transport{
				TLSClientConfig: &tls.Config{RootCAs: certs.CertPool},
			}}
			resp, err := client.Get(tt.scheme + "://" + s.Addr() + "/ping")
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.tls, resp.TLS != nil)
		})
	}
}

func TestStart_BadTLSConfig(t *testing.T) {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	cfg.TLS.CertFile = "/nonexistent/cert.pem"
	cfg.TLS.KeyFile = "/nonexistent/key.pem"

	s := New(cfg, logger.Nop())
	s.ApplyMiddleware()
	assert.Error(t, s.Start(context.Background()))
}
