package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pipelinekit/flow"
	"github.com/kbukum/pipelinekit/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// Info returns a handler that reports build information and the pipeline
// document version the service reads and writes.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.GetVersionInfo(flow.CurrentVersion)
		c.JSON(http.StatusOK, gin.H{
			"service":          serviceName,
			"version":          v.Version,
			"git_commit":       v.GitCommit,
			"build_time":       v.BuildTime,
			"go_version":       v.GoVersion,
			"is_release":       v.IsRelease,
			"is_dirty":         v.IsDirty,
			"document_version": v.DocumentVersion,
			"uptime":           time.Since(startTime).String(),
			"timestamp":        time.Now().UTC().Format(time.RFC3339),
		})
	}
}
