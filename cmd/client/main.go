package main

import (
	"chat-analyzer/internal/adapters/exporter"
	"chat-analyzer/internal/adapters/source"
	"chat-analyzer/internal/apiclient"
	"chat-analyzer/internal/collector"
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/log"
	"chat-analyzer/internal/pkg/config"
	"chat-analyzer/internal/pkg/term"
	"chat-analyzer/internal/ports"
	"chat-analyzer/internal/session"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = "Usage: client [-config file] [-server url] [-text s | -stdin] [-format console|json|xlsx] [-out path] [file.txt]"

var errUsage = errors.New(usage)

type options struct {
	configPath string
	server     string
	text       string
	stdin      bool
	format     string
	out        string
	file       string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	readStdin := func() (string, error) { return term.NewTerminal().ReadText() }
	if err := run(ctx, opts, os.Stdout, readStdin); err != nil {
		fmt.Fprintln(os.Stderr, collector.UserMessage(err))
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", config.DefaultConfigFile, "Path to the YAML config file")
	fs.StringVar(&opts.server, "server", "", "Analysis service address (overrides frontend.backend_url)")
	fs.StringVar(&opts.text, "text", "", "Chat text to analyze instead of a file")
	fs.BoolVar(&opts.stdin, "stdin", false, "Read chat text from standard input")
	fs.StringVar(&opts.format, "format", "console", "Output format: console, json or xlsx")
	fs.StringVar(&opts.out, "out", "", "Write the output to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() > 1 {
		return options{}, errUsage
	}
	opts.file = fs.Arg(0)

	sources := 0
	for _, set := range []bool{opts.file != "", opts.text != "", opts.stdin} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return options{}, errUsage
	}
	return opts, nil
}

func newExporter(format string) (ports.Exporter, error) {
	switch format {
	case "console":
		return exporter.NewConsoleExporter(exporter.DefaultBarWidth), nil
	case "json":
		return exporter.NewJSONExporter(), nil
	case "xlsx":
		return exporter.NewExcelExporter(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// run выполняет один запрос к сервису анализа и выводит результат.
func run(ctx context.Context, opts options, stdout io.Writer, readStdin func() (string, error)) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.server != "" {
		cfg.Frontend.BackendURL = opts.server
	}

	exp, err := newExporter(opts.format)
	if err != nil {
		return err
	}
	if opts.format == "xlsx" && opts.out == "" {
		if f, ok := stdout.(*os.File); ok && term.IsTerminal(f.Fd()) {
			return fmt.Errorf("refusing to write a workbook to the terminal, use -out")
		}
	}

	logger := log.New(os.Stderr, cfg.Logging.Level, "text")
	client := apiclient.NewClient(cfg.Frontend.BackendURL,
		apiclient.WithTimeout(cfg.Frontend.RequestTimeout),
		apiclient.WithLogger(logger),
	)
	sess := session.New("cli", client)

	var result *domain.AnalysisResult
	switch {
	case opts.file != "":
		file, err := source.NewFileSource(opts.file).Fetch()
		if err != nil {
			return err
		}
		result, err = sess.AnalyzeFile(ctx, file)
		if err != nil {
			return err
		}
	case opts.stdin:
		text, err := readStdin()
		if err != nil {
			return err
		}
		result, err = sess.AnalyzeText(ctx, text)
		if err != nil {
			return err
		}
	default:
		result, err = sess.AnalyzeText(ctx, opts.text)
		if err != nil {
			return err
		}
	}

	return write(opts.out, stdout, exp, result)
}

func write(path string, stdout io.Writer, exp ports.Exporter, result *domain.AnalysisResult) error {
	if path == "" {
		return exp.Export(stdout, result)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := exp.Export(f, result); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
