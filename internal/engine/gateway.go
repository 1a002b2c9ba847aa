package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Doer - транспорт шлюза. *http.Client подходит как есть.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sender - единственная точка выхода к серверу. Через нее идут и чтения, и записи.
type Sender interface {
	Send(ctx context.Context, req Request, out any) error
}

// Request описывает один вызов сервера.
type Request struct {
	Name   string // метка для метрик и трейсов; по умолчанию Path
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any // []byte уходит как есть, остальное кодируется в JSON
}

func (r Request) label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Path
}

type Gateway struct {
	client  Doer
	baseURL string
	cred    Credential
	guard   *Guard
	metrics *Metrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

type Option func(*Gateway)

func WithClient(d Doer) Option {
	return func(g *Gateway) { g.client = d }
}

func WithGuard(guard *Guard) Option {
	return func(g *Gateway) { g.guard = guard }
}

func WithMetrics(m *Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) { g.tracer = t }
}

// NewGateway создает шлюз к серверу baseURL. Токен передается явно и больше не меняется.
// Таймаута у клиента нет: вызов завершается только ответом или ошибкой.
func NewGateway(baseURL string, cred Credential, logger *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		cred:    cred,
		logger:  logger.Named("gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = NewMetrics(nil)
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer("gardarika-console/engine")
	}
	return g
}

// Send выполняет запрос и декодирует успешный ответ в out.
// Любой сбой возвращается как *RemoteError.
func (g *Gateway) Send(ctx context.Context, req Request, out any) (err error) {
	name := req.label()
	start := time.Now()

	ctx, span := g.tracer.Start(ctx, "gateway "+name, trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.path", req.Path),
	))

	defer func() {
		duration := time.Since(start)
		result := outcome(err)
		g.metrics.RequestDuration.WithLabelValues(req.Method, name, result).Observe(duration.Seconds())
		g.metrics.TotalRequests.WithLabelValues(req.Method, name, result).Inc()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			g.logger.Debug("remote call failed",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.String("kind", result),
				zap.Duration("duration", duration),
				zap.Error(err))
		} else {
			g.logger.Debug("remote call",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Duration("duration", duration))
		}
		span.End()
	}()

	if g.guard == nil {
		return g.roundTrip(ctx, req, out)
	}
	return g.guard.Execute(ctx, func() error {
		return g.roundTrip(ctx, req, out)
	})
}

func (g *Gateway) roundTrip(ctx context.Context, req Request, out any) error {
	httpReq, err := g.newRequest(ctx, req)
	if err != nil {
		return newTransportError(err)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return newTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, err := io.ReadAll(resp.Body)
		if err != nil {
			return newTransportError(err)
		}
		return newStatusError(resp.StatusCode, string(text))
	}

	// Ответы на запись тоже JSON: проверяем, что тело разбирается, и отбрасываем
	if out == nil {
		var discard any
		out = &discard
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{
			Kind:    FailureDecode,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("invalid response from %s: %v", req.Path, err),
			Cause:   err,
		}
	}
	return nil
}

func (g *Gateway) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := g.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body    io.Reader
		hasBody bool
	)
	switch b := req.Body.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(b)
		hasBody = len(b) > 0
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		hasBody = true
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	g.cred.Decorate(httpReq.Header, hasBody)
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set(HeaderTraceID, extractTraceID(ctx))

	return httpReq, nil
}

// Do - типизированная обертка над Sender.Send.
func Do[T any](ctx context.Context, s Sender, req Request) (T, error) {
	var out T
	if err := s.Send(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
