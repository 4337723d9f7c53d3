// Package reports runs analytics tools in the background and exports their results.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/export"
	"github.com/dvloznov/cashflow-insights/internal/jobs"
	"github.com/dvloznov/cashflow-insights/internal/logger"
	"github.com/dvloznov/cashflow-insights/internal/tools"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoDestination is returned when a request names no destination and no default bucket is set.
	ErrNoDestination = errors.New("no destination and no report bucket configured")

	// ErrExportDisabled is returned by Submit when the service has no writer.
	ErrExportDisabled = errors.New("report export is disabled")
)

// Invoker runs a named tool.
type Invoker interface {
	Invoke(ctx context.Context, name string, raw json.RawMessage) (any, error)
}

// Writer persists a report.
type Writer interface {
	Write(ctx context.Context, dest string, v any) error
}

// Request asks for one tool result to be exported.
type Request struct {
	Tool        string          `json:"tool"`
	Params      json.RawMessage `json:"params,omitempty"`
	Destination string          `json:"destination,omitempty"`
}

// Service submits export jobs and executes them.
type Service struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	tools     Invoker
	writer    Writer
	bucket    string
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger
}

// NewService creates a Service. bucket is the default destination bucket and may be empty.
func NewService(publisher jobs.Publisher, store jobs.JobStore, invoker Invoker, writer Writer, bucket string, log zerolog.Logger) *Service {
	return &Service{
		publisher: publisher,
		store:     store,
		tools:     invoker,
		writer:    writer,
		bucket:    bucket,
		now:       time.Now,
		newID:     uuid.NewString,
		log:       log,
	}
}

// Submit validates the request and enqueues it. Remote callers may only target gs:// URIs.
func (s *Service) Submit(ctx context.Context, req Request) (*jobs.ExportReportJob, error) {
	if s.writer == nil {
		return nil, ErrExportDisabled
	}
	if req.Tool == "" {
		return nil, &tools.ValidationError{Tool: "report", Field: "tool", Reason: "is required"}
	}

	id := s.newID()
	dest := req.Destination
	if dest == "" {
		if s.bucket == "" {
			return nil, ErrNoDestination
		}
		dest = export.ReportURI(s.bucket, req.Tool, s.now(), id)
	}
	if _, _, err := export.ParseGCSURI(dest); err != nil {
		return nil, &tools.ValidationError{Tool: req.Tool, Field: "destination", Reason: err.Error()}
	}

	job := &jobs.ExportReportJob{
		JobID:       id,
		Tool:        req.Tool,
		Params:      req.Params,
		Destination: dest,
	}
	if err := s.publisher.PublishExportReport(ctx, job); err != nil {
		return nil, fmt.Errorf("Service.Submit: publish: %w", err)
	}

	s.log.Info().
		Str("job_id", job.JobID).
		Str("tool", job.Tool).
		Str("destination", job.Destination).
		Msg("Report export queued")
	return job, nil
}

// Get returns a job by ID.
func (s *Service) Get(ctx context.Context, id string) (*jobs.ExportReportJob, error) {
	return s.store.GetJob(ctx, id)
}

// List returns jobs matching filter, newest first.
func (s *Service) List(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExportReportJob, error) {
	return s.store.ListJobs(ctx, filter)
}

// Handle is the queue handler: it runs the tool and writes the result.
// Bad parameters and unknown tools fail permanently.
func (s *Service) Handle(ctx context.Context, job jobs.Job) error {
	ej, ok := job.(*jobs.ExportReportJob)
	if !ok {
		return fmt.Errorf("%w: unexpected job type %T", jobs.ErrPermanent, job)
	}

	log := s.log.With().Str("job_id", ej.JobID).Logger()
	ctx = logger.WithContext(ctx, log)
	log.Info().Str("tool", ej.Tool).Str("destination", ej.Destination).Msg("Processing report export")

	result, err := s.tools.Invoke(ctx, ej.Tool, ej.Params)
	if err != nil {
		log.Error().Err(err).Msg("Tool execution failed")
		if isPermanent(err) {
			return fmt.Errorf("%w: %w", jobs.ErrPermanent, err)
		}
		return err
	}

	if err := s.writer.Write(ctx, ej.Destination, result); err != nil {
		log.Error().Err(err).Msg("Report write failed")
		return err
	}

	log.Info().Msg("Report export completed")
	return nil
}

func isPermanent(err error) bool {
	var verr *tools.ValidationError
	var perr *daterange.ParseError
	return errors.As(err, &verr) || errors.As(err, &perr) || errors.Is(err, tools.ErrUnknownTool)
}
