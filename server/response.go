package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/pipelinekit/errors"
	"github.com/kbukum/pipelinekit/logger"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError answers with the status and body of err. Errors that are
// not an *apperrors.AppError become a 500. The body carries the request id.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	_ = c.Error(err)

	resp := appErr.ToResponse()
	resp.Error.RequestID = logger.RequestIDFromContext(c.Request.Context())
	c.JSON(appErr.HTTPStatus, resp)
}

// RespondOK answers 200 with data in the success envelope.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
