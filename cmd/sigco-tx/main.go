// Command sigco-tx runs one catalog transaction or read query against the
// configured document store and prints the JSON result.
//
//	sigco-tx -tx CreateInvoiceAndSettleVisits -args '{"residentDni":"12345678A","creationDate":"2024-02-01"}'
//	sigco-tx -query audit -args '{"auditId":1}'
//	sigco-tx -list
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"sigco/internal/config"
	"sigco/internal/core"
	"sigco/internal/logging"
	"sigco/pkg/domain"
)

const serviceName = "sigco-tx"

var (
	exitFunc   = os.Exit
	loadConfig = config.Load
)

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

type options struct {
	tx      string
	query   string
	args    string
	list    bool
	metrics bool
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.tx, "tx", "", "catalog transaction to submit")
	fs.StringVar(&opts.query, "query", "", "read query to run")
	fs.StringVar(&opts.args, "args", "{}", "JSON arguments")
	fs.BoolVar(&opts.list, "list", false, "print transaction and query names")
	fs.BoolVar(&opts.metrics, "metrics", false, "print engine metrics to stderr after the transaction")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.list {
		return printJSON(stdout, map[string][]string{
			"transactions": core.TransactionNames(),
			"queries":      core.QueryNames(),
		})
	}
	if (opts.tx == "") == (opts.query == "") {
		fmt.Fprintln(stderr, "exactly one of -tx or -query is required")
		return 2
	}

	out, err := run(context.Background(), opts, stderr)
	if err != nil {
		printJSON(stdout, errorBody(err))
		return 1
	}
	return printJSON(stdout, out)
}

func run(ctx context.Context, opts options, stderr io.Writer) (any, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()
	for _, w := range cfg.Warnings {
		logger.Warn("configuration", zap.String("warning", w))
	}

	store, err := core.OpenDocumentStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}
	defer func() { _ = store.Close() }()

	if opts.query != "" {
		return core.NewReader(store).Query(ctx, opts.query, json.RawMessage(opts.args))
	}

	reg := prometheus.NewRegistry()
	engine := core.NewEngine(store, core.WithLogger(logger), core.WithRegisterer(reg))
	defer func() { _ = engine.Close() }()
	out, err := core.NewService(engine).Submit(ctx, opts.tx, json.RawMessage(opts.args))
	if opts.metrics {
		if merr := writeMetrics(stderr, reg); merr != nil {
			logger.Warn("write metrics", zap.Error(merr))
		}
	}
	return out, err
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

type failure struct {
	Error string      `json:"error"`
	Kind  domain.Kind `json:"kind"`
}

func errorBody(err error) failure {
	return failure{Error: err.Error(), Kind: domain.KindOf(err)}
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return 1
	}
	return 0
}
