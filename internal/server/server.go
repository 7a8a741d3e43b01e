/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package server exposes a processor over HTTP.
//
//	POST /configure   engine configuration document
//	POST /analyze     raw little-endian float32 output tensor
//	POST /runmodel    encoded image, run through the model then analyzed
//	POST /annotate    encoded image, answered with a JPEG overlay
//	POST /frames      raw tensor queued for the edge loop
//	GET  /datatype    current output format
//	GET  /metrics     Prometheus metrics
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/mpromonet/gin-postproc/internal/inference"
	"github.com/mpromonet/gin-postproc/internal/params"
	"github.com/mpromonet/gin-postproc/internal/processor"
	"github.com/mpromonet/gin-postproc/internal/sensor"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

// ResultCodeHeader carries the processor result code of a failed request.
const ResultCodeHeader = "X-Result-Code"

// maxBody bounds uploaded tensors and images.
const maxBody = 32 << 20

// ModelRunner runs an image through a model.
type ModelRunner interface {
	Run(img gocv.Mat) ([][]float32, [][]int, error)
}

// Model is the optional inference stage in front of the processor.
type Model struct {
	Runner ModelRunner
	Packer inference.Packer
	Labels []string
}

// Options configures a Server.
type Options struct {
	StaticDir string
	Model     *Model
	// Configure replaces the processor's Configure, e.g. to publish the
	// resulting state.
	Configure func(doc []byte) ([]byte, error)
	// Frames receives tensors posted on /frames.
	Frames FrameQueue
}

// FrameQueue accepts frames without blocking.
type FrameQueue interface {
	Push(f sensor.Frame) bool
}

// Server serves one processor.
type Server struct {
	proc      processor.Processor
	model     *Model
	configure func(doc []byte) ([]byte, error)
	frames    FrameQueue
	router    *gin.Engine
}

// New builds the router.
func New(proc processor.Processor, opts Options) *Server {
	s := &Server{proc: proc, model: opts.Model, configure: opts.Configure, frames: opts.Frames}
	if s.configure == nil {
		s.configure = proc.Configure
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger())
	if opts.StaticDir != "" {
		r.Use(static.Serve("/", static.LocalFile(opts.StaticDir, false)))
	}
	r.POST("/configure", s.handleConfigure)
	r.POST("/analyze", s.handleAnalyze)
	r.POST("/runmodel", s.handleRunModel)
	r.POST("/annotate", s.handleAnnotate)
	r.POST("/frames", s.handleFrame)
	r.GET("/datatype", s.handleDataType)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("processor", s.proc.Name()).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server error: %w", err)
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errc
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return body, true
}

// statusOf maps a processor result code to an HTTP status.
func statusOf(code processor.ResultCode) int {
	switch code {
	case processor.Ok:
		return http.StatusOK
	case processor.InvalidParam, processor.OutOfRange, processor.InvalidParamSetError:
		return http.StatusBadRequest
	case processor.InvalidState:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	code := processor.CodeOf(err)
	c.Header(ResultCodeHeader, code.String())
	c.JSON(statusOf(code), gin.H{"error": err.Error(), "code": code.String()})
}

func (s *Server) handleConfigure(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	out, err := s.configure(body)
	if err != nil {
		code := processor.CodeOf(err)
		c.Header(ResultCodeHeader, code.String())
		if out == nil {
			writeError(c, err)
			return
		}
		c.Data(statusOf(code), "application/json", out)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": processor.Ok.String()})
}

// writeResult answers with a serialized analysis. Binary records are
// base64 encoded.
func writeResult(c *gin.Context, res processor.Result) {
	if res.Format == params.FormatJSON {
		c.Data(http.StatusOK, "application/json", res.Data)
		return
	}
	c.Data(http.StatusOK, "text/plain", []byte(base64.StdEncoding.EncodeToString(res.Data)))
}

func (s *Server) handleAnalyze(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	res, err := s.proc.AnalyzeBytesResult(body)
	if err != nil {
		writeError(c, err)
		return
	}
	writeResult(c, res)
}

func (s *Server) handleDataType(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"format": s.proc.DataType().String()})
}

func (s *Server) handleFrame(c *gin.Context) {
	if s.frames == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame queue"})
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	if !s.frames.Push(sensor.Frame{Tensor: body, Timestamp: time.Now()}) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "frame queue full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"request_id": c.GetString("request_id")})
}
