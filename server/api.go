package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/pipelinekit/dag"
	"github.com/kbukum/pipelinekit/editor"
	apperrors "github.com/kbukum/pipelinekit/errors"
	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/logger"
	"github.com/kbukum/pipelinekit/migration"
	"github.com/kbukum/pipelinekit/observability"
	"github.com/kbukum/pipelinekit/problems"
	"github.com/kbukum/pipelinekit/registry"
	"github.com/kbukum/pipelinekit/server/endpoint"
)

// API serves the pipeline validation routes.
type API struct {
	reg           *registry.Registry
	pipelineProps []registry.Property
	cycleTimeout  time.Duration
	migrateOnOpen bool
	metrics       *observability.Metrics
	log           *logger.Logger
}

// APIOption configures an API.
type APIOption func(*API)

// WithPipelineProperties sets the pipeline property schema.
func WithPipelineProperties(props []registry.Property) APIOption {
	return func(a *API) { a.pipelineProps = props }
}

// WithCycleTimeout sets the cycle search budget per pipeline.
func WithCycleTimeout(d time.Duration) APIOption {
	return func(a *API) { a.cycleTimeout = d }
}

// WithMigrateOnOpen lets /v1/pipelines/open migrate older documents.
func WithMigrateOnOpen(enabled bool) APIOption {
	return func(a *API) { a.migrateOnOpen = enabled }
}

// WithMetrics records validation and migration metrics.
func WithMetrics(m *observability.Metrics) APIOption {
	return func(a *API) { a.metrics = m }
}

// WithLogger sets the API logger.
func WithLogger(l *logger.Logger) APIOption {
	return func(a *API) { a.log = l }
}

// NewAPI creates the API over a node registry.
func NewAPI(reg *registry.Registry, opts ...APIOption) *API {
	a := &API{reg: reg, cycleTimeout: dag.DefaultCycleTimeout}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Get("server")
	}
	return a
}

// Register mounts the system and pipeline routes.
func (a *API) Register(r gin.IRouter, serviceName string) {
	r.GET("/health", endpoint.Health(serviceName, observability.HealthFunc(a.registryHealth)))
	r.GET("/info", endpoint.Info(serviceName))

	v1 := r.Group("/v1")
	v1.GET("/node-types", a.nodeTypes)
	v1.POST("/pipelines/validate", a.validate)
	v1.POST("/pipelines/migrate", a.migrate)
	v1.POST("/pipelines/open", a.open)
}

func (a *API) registryHealth(context.Context) observability.Health {
	h := observability.Health{
		Name:    "registry",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"node_types": strconv.Itoa(a.reg.Len())},
	}
	if a.reg.Len() == 0 {
		h.Status = observability.HealthStatusDegraded
		h.Message = "no node types registered"
	}
	return h
}

// ProblemView is a problem with its 1-based position in the request body.
type ProblemView struct {
	problems.Problem
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ValidateResponse is the body of /v1/pipelines/validate.
type ValidateResponse struct {
	Problems   []ProblemView       `json:"problems"`
	Supernodes []flow.SupernodeRef `json:"supernodes"`
}

// OpenResponse is the body of /v1/pipelines/open.
type OpenResponse struct {
	Document json.RawMessage `json:"document"`
	Report   editor.Report   `json:"report"`
}

func (a *API) nodeTypes(c *gin.Context) {
	RespondOK(c, a.reg.List())
}

func (a *API) validate(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	ctx, op := observability.StartOperation(c.Request.Context(), observability.SpanValidate, logger.RequestIDFromContext(c.Request.Context()))
	found := problems.Validate(body, a.reg, a.validateOptions()...)

	resp := ValidateResponse{Problems: make([]ProblemView, 0, len(found)), Supernodes: []flow.SupernodeRef{}}
	types := make([]string, 0, len(found))
	for _, p := range found {
		line, col := problems.Position(body, p.Range.Offset)
		resp.Problems = append(resp.Problems, ProblemView{Problem: p, Line: line, Column: col})
		types = append(types, string(p.Info.Type))
	}
	if doc, err := flow.Decode(body); err == nil {
		if refs := problems.AffectedSupernodes(doc, found); refs != nil {
			resp.Supernodes = refs
		}
	}

	op.SetAttributes(attribute.Int(observability.AttrProblemCount, len(found)))
	a.metrics.RecordValidation(ctx, types, op.Duration())
	op.End(nil)
	RespondOK(c, resp)
}

func (a *API) migrate(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	ctx, op := observability.StartOperation(c.Request.Context(), observability.SpanMigrate, logger.RequestIDFromContext(c.Request.Context()))
	out, err := migration.MigrateJSON(body, migration.WithLogger(a.log))
	if err != nil {
		op.End(err)
		RespondWithError(c, apperrors.InvalidPipeline("The pipeline document is not valid JSON.").WithCause(err))
		return
	}

	from := gjson.GetBytes(body, "pipelines.0.app_data.version")
	if from.Type == gjson.Number && from.Int() < flow.CurrentVersion {
		a.metrics.RecordMigration(ctx, int(from.Int()), flow.CurrentVersion)
		op.SetAttributes(
			attribute.Int64(observability.AttrFromVersion, from.Int()),
			attribute.Int(observability.AttrToVersion, flow.CurrentVersion),
		)
	}
	op.End(nil)
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

func (a *API) open(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	_, op := observability.StartOperation(c.Request.Context(), observability.SpanOpen, logger.RequestIDFromContext(c.Request.Context()))
	ctl := editor.New(a.reg,
		editor.WithPipelineProperties(a.pipelineProps),
		editor.WithCycleTimeout(a.cycleTimeout),
		editor.WithMigrateOnOpen(a.migrateOnOpen),
		editor.WithLogger(a.log),
	)
	if err := ctl.Open(body); err != nil {
		op.End(err)
		RespondWithError(c, err)
		return
	}
	doc, err := ctl.Bytes()
	if err != nil {
		op.End(err)
		RespondWithError(c, apperrors.Internal(err))
		return
	}
	report := ctl.Validate()
	op.SetAttributes(attribute.Int(observability.AttrProblemCount, len(report.Problems)))
	op.End(nil)
	RespondOK(c, OpenResponse{Document: doc, Report: report})
}

func (a *API) validateOptions() []problems.Option {
	return []problems.Option{
		problems.WithPipelineProperties(a.pipelineProps),
		problems.WithCycleTimeout(a.cycleTimeout),
		problems.WithLogger(a.log),
	}
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err == nil {
		return body, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "The request body is too large.", http.StatusRequestEntityTooLarge)
	}
	return nil, apperrors.InvalidInput("body", err.Error())
}
