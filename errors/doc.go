// Package errors provides the structured error type shared by pipelinekit.
//
// Document-level failures (a pipeline that cannot be opened, a version the
// editor does not understand) are AppErrors with a stable code and an HTTP
// status hint. Content issues inside an otherwise readable document are not
// errors; they are reported as problems by the problems package.
package errors
