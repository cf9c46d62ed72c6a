package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

type ListState int

const (
	ListLoaded ListState = iota
	ListEmpty
	ListFailed
	// ListStale marks a read that was overtaken by a later one. Its
	// result must be discarded.
	ListStale
)

func (s ListState) String() string {
	switch s {
	case ListLoaded:
		return "loaded"
	case ListEmpty:
		return "empty"
	case ListFailed:
		return "failed"
	case ListStale:
		return "stale"
	}
	return fmt.Sprintf("ListState(%d)", int(s))
}

// ListResult is one read of a collection. Message carries the view text
// for the empty and failed states.
type ListResult[T any] struct {
	State   ListState
	Items   []T
	Message string
	Err     error
	Seq     uint64
}

// Collection reads one server-side collection and tags every read with a
// sequence number so a slow read cannot overwrite a newer one.
type Collection[T any] struct {
	transport  ports.Transport
	path       string
	emptyText  string
	failedText string
	logger     *zap.Logger

	seq atomic.Uint64
}

// NewCollection panics when the empty and failed texts are missing or
// identical; the two states must never look alike.
func NewCollection[T any](transport ports.Transport, path, emptyText, failedText string, logger *zap.Logger) *Collection[T] {
	if emptyText == "" || failedText == "" || emptyText == failedText {
		panic(fmt.Sprintf("collection %s: empty and failed texts must be distinct and non-empty", path))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{
		transport:  transport,
		path:       path,
		emptyText:  emptyText,
		failedText: failedText,
		logger:     logger,
	}
}

func (c *Collection[T]) EmptyText() string  { return c.emptyText }
func (c *Collection[T]) FailedText() string { return c.failedText }

// List fetches the collection. Failures are reported in the result, never
// as a panic or a separate error.
func (c *Collection[T]) List(ctx context.Context) ListResult[T] {
	seq := c.seq.Add(1)

	var items []T
	err := c.transport.Do(ctx, ports.Request{Method: http.MethodGet, Path: c.path}, &items)

	if latest := c.seq.Load(); seq < latest {
		c.logger.Debug("discarding stale read",
			zap.String("path", c.path),
			zap.Uint64("seq", seq),
			zap.Uint64("latest", latest))
		return ListResult[T]{State: ListStale, Seq: seq}
	}
	if err != nil {
		c.logger.Warn("list failed", zap.String("path", c.path), zap.Error(err))
		return ListResult[T]{State: ListFailed, Message: c.failedText, Err: err, Seq: seq}
	}
	if len(items) == 0 {
		return ListResult[T]{State: ListEmpty, Message: c.emptyText, Seq: seq}
	}
	return ListResult[T]{State: ListLoaded, Items: items, Seq: seq}
}

// Mutate sends req and, when the server accepts it, returns a fresh List.
// Nothing is patched locally.
func (c *Collection[T]) Mutate(ctx context.Context, req ports.Request) (ListResult[T], error) {
	if err := c.transport.Do(ctx, req, nil); err != nil {
		return ListResult[T]{}, err
	}
	return c.List(ctx), nil
}

// confirm runs the confirmation step that must precede every destructive
// call.
func confirm(ctx context.Context, confirmer ports.Confirmer, prompt string) error {
	if confirmer == nil || !confirmer.Confirm(ctx, prompt) {
		return domain.ErrNotConfirmed
	}
	return nil
}

func required(field, value, message string) error {
	if isBlank(value) {
		return &domain.ValidationError{Field: field, Message: message}
	}
	return nil
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
