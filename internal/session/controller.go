// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ManuGH/vidfetch/internal/delivery"
	xglog "github.com/ManuGH/vidfetch/internal/log"
	"github.com/ManuGH/vidfetch/internal/metrics"
	"github.com/ManuGH/vidfetch/internal/service"
	"github.com/ManuGH/vidfetch/internal/telemetry"
)

// Fetcher performs the three remote operations. *service.Client satisfies it.
type Fetcher interface {
	FetchMetadata(ctx context.Context, url string) (*service.VideoMetadata, error)
	FetchDebugReport(ctx context.Context, url string) (*service.DebugReport, error)
	RequestArtifact(ctx context.Context, req service.ArtifactRequest) (*service.Descriptor, error)
}

// Controller drives one Session.
//
// The mutex only serialises writes to the record. It gives no exclusion
// between sub-flows: a download may start while metadata is being refreshed,
// and overlapping requests of one kind resolve last-write-wins.
type Controller struct {
	id         string
	mu         sync.Mutex
	s          Session
	subs       []func(Session)
	fetcher    Fetcher
	deliverer  delivery.Deliverer
	fileOrigin string
	logger     zerolog.Logger
}

// NewController returns a controller for a fresh session. deliverer may be
// nil, in which case completed downloads are only reported.
func NewController(fetcher Fetcher, deliverer delivery.Deliverer, fileOrigin string) *Controller {
	id := uuid.NewString()
	return &Controller{
		id:         id,
		s:          New(id),
		fetcher:    fetcher,
		deliverer:  deliverer,
		fileOrigin: fileOrigin,
		logger:     xglog.WithComponent("session").With().Str(xglog.FieldSessionID, id).Logger(),
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

// Subscribe registers fn to receive the session after every applied event.
// Callbacks run on the goroutine that applied the event.
func (c *Controller) Subscribe(fn func(Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// SetURL records the candidate source URL.
func (c *Controller) SetURL(ctx context.Context, url string) {
	_, _ = c.apply(ctx, URLChanged{URL: url})
}

// SelectFormat switches the container family.
func (c *Controller) SelectFormat(ctx context.Context, f Format) error {
	_, err := c.apply(ctx, FormatSelected{Format: f})
	return err
}

// SelectVideoQuality picks a video token or quality.Best.
func (c *Controller) SelectVideoQuality(ctx context.Context, token string) error {
	_, err := c.apply(ctx, VideoQualitySelected{Token: token})
	return err
}

// SelectAudioQuality picks an audio token or quality.Best.
func (c *Controller) SelectAudioQuality(ctx context.Context, token string) error {
	_, err := c.apply(ctx, AudioQualitySelected{Token: token})
	return err
}

// RequestInfo fetches metadata for the current URL. It blocks until the
// service answers and returns the validation or service error, if any; the
// same error is also recorded in the session.
func (c *Controller) RequestInfo(ctx context.Context) (err error) {
	s, err := c.apply(ctx, InfoRequested{})
	if err != nil {
		return err
	}
	ctx, done := c.track(ctx, SubflowInfo)
	defer func() { done(err) }()

	md, err := c.fetcher.FetchMetadata(ctx, s.URL)
	if err != nil {
		_, _ = c.apply(ctx, InfoFailed{Err: err})
		return err
	}
	_, err = c.apply(ctx, InfoSucceeded{Metadata: md})
	return err
}

// RequestDebug fetches the raw format report for the current URL.
func (c *Controller) RequestDebug(ctx context.Context) (err error) {
	s, err := c.apply(ctx, DebugRequested{})
	if err != nil {
		return err
	}
	ctx, done := c.track(ctx, SubflowDebug)
	defer func() { done(err) }()

	report, err := c.fetcher.FetchDebugReport(ctx, s.URL)
	if err != nil {
		_, _ = c.apply(ctx, DebugFailed{Err: err})
		return err
	}
	_, err = c.apply(ctx, DebugSucceeded{Report: report})
	return err
}

// RequestDownload asks the service for an artifact at the current selection
// and hands a successful result to the deliverer.
func (c *Controller) RequestDownload(ctx context.Context) (err error) {
	s, err := c.apply(ctx, DownloadRequested{})
	if err != nil {
		return err
	}
	req := s.ArtifactRequest()
	ctx, done := c.track(ctx, SubflowDownload, telemetry.ArtifactAttributes(string(req.Format), req.Quality)...)
	defer func() { done(err) }()

	desc, err := c.fetcher.RequestArtifact(ctx, req)
	if err != nil {
		_, _ = c.apply(ctx, DownloadFailed{Err: err})
		return err
	}
	if _, err := c.apply(ctx, DownloadSucceeded{Descriptor: *desc}); err != nil {
		return err
	}
	if c.deliverer != nil && desc.DownloadURL != "" {
		c.deliverer.Deliver(ctx, *desc, c.fileOrigin)
	}
	return nil
}

// track opens the span and in-flight gauge for one remote call. The returned
// context carries the session ID for downstream logs.
func (c *Controller) track(ctx context.Context, sf Subflow, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx = xglog.ContextWithSessionID(ctx, c.id)
	ctx, span := telemetry.StartSubflow(ctx, c.id, string(sf), attrs...)
	metrics.SubflowStarted(string(sf))
	return ctx, func(err error) {
		metrics.SubflowFinished(string(sf))
		telemetry.EndSpan(span, err)
	}
}

func (c *Controller) apply(ctx context.Context, ev Event) (Session, error) {
	c.mu.Lock()
	prev := c.s
	next, err := Apply(prev, ev)

	var verr *ValidationError
	switch {
	case err == nil, errors.As(err, &verr):
		c.s = next
	default:
		next = prev
	}
	subs := make([]func(Session), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	sf := SubflowOf(ev)
	logger := xglog.WithContext(ctx, c.logger)
	switch {
	case verr != nil:
		metrics.RecordValidationRejection(verr.Reason)
		logger.Info().Str(xglog.FieldEvent, ev.Name()).Str("reason", verr.Reason).Msg("intent rejected")
	case err != nil:
		logger.Warn().Err(err).Str(xglog.FieldEvent, ev.Name()).Msg("event not applied")
		return next, err
	default:
		label := string(sf)
		if label == "" {
			label = "selection"
		}
		metrics.RecordTransition(label, ev.Name())
		logger.Debug().
			Str(xglog.FieldEvent, ev.Name()).
			Str(xglog.FieldSubflow, string(sf)).
			Str(xglog.FieldOldState, string(prev.Phase())).
			Str(xglog.FieldNewState, string(next.Phase())).
			Msg("session transition")
	}

	for _, fn := range subs {
		fn(next)
	}
	if verr != nil {
		return next, verr
	}
	return next, nil
}
