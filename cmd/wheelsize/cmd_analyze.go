package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ochairo/wheelsize/internal/config"
	"github.com/ochairo/wheelsize/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/wheelsize/internal/domain-orchestrators"
	"github.com/ochairo/wheelsize/internal/domain/entities"
	"github.com/ochairo/wheelsize/internal/domain/interfaces"
	"github.com/ochairo/wheelsize/internal/domain/services"
	"github.com/ochairo/wheelsize/internal/external-adapters/jsonreport"
	"github.com/ochairo/wheelsize/internal/external-adapters/render"
	"github.com/ochairo/wheelsize/internal/external-adapters/yaml"
)

// analyzeOptions are the flags of the analyze command
type analyzeOptions struct {
	format          string
	output          string
	workers         int
	timeout         time.Duration
	extractTimeout  time.Duration
	stringsFallback string
	scratchDir      string
	integrity       orchestrators.IntegrityOptions
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <wheel-path-or-url>",
		Short: "Report the size composition of a wheel",
		Long: `Report the size composition of a wheel.

The summary lists Python code, one row per CUDA architecture and other
files. The breakdown lists every shared object with the bytes attributed to
each architecture. Objects marked ~ could not be split exactly and are
counted in full for every architecture they contain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "auto", "output format: auto, rich, text, json or yaml")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	f.IntVarP(&opts.workers, "workers", "j", 1, "shared objects analyzed in parallel")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "time limit for each detection tool call")
	f.DurationVar(&opts.extractTimeout, "extract-timeout", 10*time.Minute, "time limit for device code extraction")
	f.StringVar(&opts.stringsFallback, "strings-fallback", "auto", "when to scan raw strings: auto, always or never")
	f.StringVar(&opts.scratchDir, "scratch-dir", "", "parent directory for temporary files")
	f.StringVar(&opts.integrity.SHA256, "sha256", "", "expected SHA-256 of the archive")
	f.StringVar(&opts.integrity.Signature, "signature", "", "detached OpenPGP signature (file or URL)")
	f.StringVar(&opts.integrity.Keyring, "keyring", "", "public keyring file for --signature")
	f.StringVar(&opts.integrity.KeyURL, "key-url", "", "URL of a KEYS file for --signature")

	return cmd
}

// applyFlags overrides configuration with the flags the user actually set
func (o *analyzeOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Output.Format = o.format
	}
	if f.Changed("workers") {
		cfg.Workers = o.workers
	}
	if f.Changed("timeout") {
		cfg.Tools.Timeout = o.timeout
	}
	if f.Changed("extract-timeout") {
		cfg.Tools.ExtractTimeout = o.extractTimeout
	}
	if f.Changed("strings-fallback") {
		cfg.Detector.StringsFallback = o.stringsFallback
	}
	if f.Changed("scratch-dir") {
		cfg.ScratchDir = o.scratchDir
	}
	return cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, source string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.applyFlags(cmd, cfg); err != nil {
		return err
	}

	log, err := root.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	path, cleanup, err := resolveSource(ctx, cfg, source, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.integrity.Enabled() {
		integrity := orchestrators.NewIntegrityOrchestrator(gateways.NewChecksumVerifier(), gateways.NewGPGVerifier(), log)
		if _, err := integrity.VerifyArchive(ctx, path, opts.integrity); err != nil {
			return err
		}
	}

	report, err := newAnalysisOrchestrator(cfg, log).Analyze(ctx, path)
	if err != nil {
		return err
	}

	format := resolveFormat(cfg.Output.Format, cmd.OutOrStdout(), opts.output)

	// tables go straight to stdout so lipgloss can detect the terminal's colors
	if opts.output == "" {
		switch format {
		case "rich":
			return render.Rich(cmd.OutOrStdout(), report)
		case "text":
			return render.Plain(cmd.OutOrStdout(), report)
		}
	}

	data, err := encodeReport(report, format)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := gateways.WriteFileAtomic(opts.output, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Info("report written", interfaces.F("path", opts.output), interfaces.F("format", format))
		return nil
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// resolveSource downloads remote archives into a temporary directory; the
// returned cleanup removes it
func resolveSource(ctx context.Context, cfg *config.Config, source string, log interfaces.Logger) (string, func(), error) {
	downloader := gateways.NewDownloader("wheelsize/" + Version)
	if !downloader.IsRemote(source) {
		return source, func() {}, nil
	}

	dir, err := os.MkdirTemp(cfg.ScratchDir, "wheelsize-download-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	log.Info("downloading archive", interfaces.F("url", source))
	path, err := downloader.Fetch(ctx, source, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// newAnalysisOrchestrator wires the production gateways for one run
func newAnalysisOrchestrator(cfg *config.Config, log interfaces.Logger) *orchestrators.AnalysisOrchestrator {
	executor := gateways.NewToolExecutor(cfg.Tools.Timeout)
	kit := gateways.ResolveToolkit(executor, gateways.ToolPaths{
		Cuobjdump: cfg.Tools.Cuobjdump,
		Nvdisasm:  cfg.Tools.Nvdisasm,
		Strings:   cfg.Tools.Strings,
	}, cfg.Tools.Timeout, cfg.Tools.ExtractTimeout)

	log.Debug("toolkit resolved",
		interfaces.F("cuobjdump", kit.Cuobjdump),
		interfaces.F("nvdisasm", kit.Nvdisasm),
		interfaces.F("strings", kit.Strings))

	return orchestrators.NewAnalysisOrchestrator(
		gateways.NewArchiveReader(),
		gateways.NewArchitectureDetector(executor, kit, gateways.StringsFallback(cfg.Detector.StringsFallback), log),
		gateways.NewSizeAttributor(executor, kit, log),
		gateways.NewChecksumVerifier(),
		services.NewReportService(),
		newScratchWorkspace,
		log,
		orchestrators.AnalysisOrchestratorConfig{
			Workers:    cfg.Workers,
			ScratchDir: cfg.ScratchDir,
		},
	)
}

func newScratchWorkspace(parent string) (orchestrators.Workspace, error) {
	ws, err := gateways.NewScratchWorkspace(parent)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

// resolveFormat turns "auto" into rich for terminals and text otherwise
func resolveFormat(format string, out io.Writer, outputPath string) string {
	if format != "auto" {
		return format
	}
	if outputPath == "" && isTerminal(out) {
		return "rich"
	}
	return "text"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

func encodeReport(report *entities.Report, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := jsonreport.EncodeIndent(report)
		if err != nil {
			return nil, err
		}
		if err := jsonreport.Validate(data); err != nil {
			return nil, fmt.Errorf("report does not match its schema: %w", err)
		}
		return data, nil
	case "yaml":
		return yaml.NewReportEncoder().Encode(report)
	case "rich", "text":
		var buf bytes.Buffer
		write := render.Plain
		if format == "rich" {
			write = render.Rich
		}
		if err := write(&buf, report); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
