// Package core hosts the single-writer transaction engine, the catalog of
// transaction bodies that run on it and the read-only accessor used beside it.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"sigco/pkg/domain"
)

// ErrEngineClosed is returned for submissions after Close.
var ErrEngineClosed = errors.New("core: engine closed")

// Body mutates the document in place and returns its result. Returning an
// error discards every mutation, including allocated ids.
type Body[T any] func(doc *domain.Document) (T, error)

type request struct {
	ctx   context.Context
	name  string
	run   func(doc *domain.Document) (any, error)
	reply chan response
}

type response struct {
	value any
	err   error
}

// Engine serializes every mutating transaction through one goroutine. Each
// transaction sees a freshly loaded document and commits by replacing it.
//
// Requests travel over an unbuffered channel, so blocked submitters are
// served in arrival order. A body must not submit to the same engine; the
// nested call would wait on the goroutine that is running it.
type Engine struct {
	store   domain.DocumentStore
	rules   *domain.RulesEngine
	logger  *zap.Logger
	metrics *engineMetrics
	reg     prometheus.Registerer

	requests  chan request
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the transaction logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRulesEngine replaces the built-in rule set evaluated before each commit.
func WithRulesEngine(rules *domain.RulesEngine) Option {
	return func(e *Engine) {
		if rules != nil {
			e.rules = rules
		}
	}
}

// WithRegisterer registers the engine metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) { e.reg = reg }
}

// NewEngine starts the writer goroutine over store.
func NewEngine(store domain.DocumentStore, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		rules:    NewDefaultRulesEngine(),
		logger:   zap.NewNop(),
		requests: make(chan request),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.metrics = newEngineMetrics(e.reg)
	go e.loop()
	return e
}

// Store returns the document store the engine writes to.
func (e *Engine) Store() domain.DocumentStore { return e.store }

// Rules returns the rule set evaluated before each commit.
func (e *Engine) Rules() *domain.RulesEngine { return e.rules }

// Close stops the writer after the transaction in flight, if any, completes.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() { close(e.quit) })
	<-e.done
	return nil
}

// Run submits body under name and waits for its outcome. Once submitted the
// transaction always runs to completion: ctx only supplies values, its
// cancellation is ignored so a commit is never abandoned half way.
func Run[T any](ctx context.Context, e *Engine, name string, body Body[T]) (T, error) {
	var zero T
	req := request{
		ctx:   ctx,
		name:  name,
		run:   func(doc *domain.Document) (any, error) { return body(doc) },
		reply: make(chan response, 1),
	}
	e.metrics.queued.Inc()
	select {
	case e.requests <- req:
	case <-e.quit:
		e.metrics.queued.Dec()
		return zero, ErrEngineClosed
	}
	resp := <-req.reply
	if resp.err != nil {
		return zero, resp.err
	}
	value, _ := resp.value.(T)
	return value, nil
}

func (e *Engine) loop() {
	defer close(e.done)
	for {
		select {
		case req := <-e.requests:
			e.metrics.queued.Dec()
			req.reply <- e.execute(req)
		case <-e.quit:
			return
		}
	}
}

func (e *Engine) execute(req request) response {
	start := time.Now()
	txID := uuid.NewString()
	ctx := context.WithoutCancel(req.ctx)
	value, err := e.commit(ctx, req)
	elapsed := time.Since(start)
	e.metrics.observe(req.name, err, elapsed)
	e.log(req.name, txID, err, elapsed)
	return response{value: value, err: err}
}

func (e *Engine) commit(ctx context.Context, req request) (any, error) {
	doc, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	before, err := e.rules.Evaluate(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate rules: %w", err)
	}
	value, err := invoke(req, &doc)
	if err != nil {
		return nil, err
	}
	after, err := e.rules.Evaluate(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate rules: %w", err)
	}
	fresh := after.NewSince(before)
	if fresh.HasBlocking() {
		return nil, domain.RuleViolationError{Result: fresh}
	}
	for _, v := range fresh.Violations {
		e.logger.Warn("rule warning", zap.String("tx", req.name), zap.String("rule", v.Rule), zap.String("message", v.Message))
	}
	if err := e.store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return value, nil
}

func invoke(req request, doc *domain.Document) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = domain.Internalf("", "transaction %s panicked: %v", req.name, r)
		}
	}()
	return req.run(doc)
}

func (e *Engine) log(name, txID string, err error, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("tx", name),
		zap.String("tx_id", txID),
		zap.Duration("duration", elapsed),
	}
	if err == nil {
		e.logger.Debug("transaction committed", fields...)
		return
	}
	kind := domain.KindOf(err)
	fields = append(fields, zap.String("kind", string(kind)), zap.Error(err))
	switch kind {
	case domain.KindNotFound, domain.KindConflict, domain.KindInvalidInput:
		e.logger.Warn("transaction rejected", fields...)
	default:
		e.logger.Error("transaction failed", fields...)
	}
}
