package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/fincadocs/internal/bootstrap"
	"github.com/kirillkom/fincadocs/internal/config"
	"github.com/kirillkom/fincadocs/internal/core/classify"
	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/core/extraction"
	"github.com/kirillkom/fincadocs/internal/core/ports"
	"github.com/kirillkom/fincadocs/internal/core/usecase"
	"github.com/kirillkom/fincadocs/internal/core/validation"
	"github.com/kirillkom/fincadocs/internal/observability/logging"
)

type globalFlags struct {
	logLevel    string
	aiProvider  string
	ocrProvider string
	tenant      string
}

type cli struct {
	loadConfig func() config.Config
	flags      globalFlags
}

func newRootCommand(loadConfig func() config.Config) *cobra.Command {
	c := &cli{loadConfig: loadConfig}

	root := &cobra.Command{
		Use:           "docctl",
		Short:         "Extract, classify and validate property-management documents locally",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.flags.aiProvider, "ai-provider", "", "override AI_PROVIDER (ollama, gemini, none)")
	root.PersistentFlags().StringVar(&c.flags.ocrProvider, "ocr-provider", "", "override OCR_PROVIDER (tesseract, gemini, ollama, none)")
	root.PersistentFlags().StringVar(&c.flags.tenant, "tenant", "local", "tenant id for in-memory runs")

	root.AddCommand(
		c.extractCommand(),
		c.classifyCommand(),
		c.processCommand(),
		c.validateCommand(),
		c.schemasCommand(),
	)
	return root
}

func (c *cli) config() config.Config {
	cfg := c.loadConfig()
	if c.flags.aiProvider != "" {
		cfg.AIProvider = strings.ToLower(c.flags.aiProvider)
	}
	if c.flags.ocrProvider != "" {
		cfg.OCRProvider = strings.ToLower(c.flags.ocrProvider)
	}
	return cfg
}

func (c *cli) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), "docctl", c.flags.logLevel, "text")
}

func (c *cli) pipeline(cmd *cobra.Command) (*bootstrap.Pipeline, error) {
	return bootstrap.NewPipeline(cmd.Context(), c.config(), c.logger(cmd))
}

func (c *cli) extractCommand() *cobra.Command {
	var (
		strategy string
		showText bool
	)
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract text with the native/OCR strategy chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.pipeline(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			res, err := extractFile(cmd.Context(), p.Extractor, args[0], data, strategy)
			if err != nil && res.Method != domain.MethodError {
				return err
			}
			extractErr := err
			out := map[string]any{
				"file":       args[0],
				"extraction": res,
				"chars":      len([]rune(res.Text)),
			}
			if showText {
				out["text"] = res.Text
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return extractErr
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "", "run one strategy without fallback (native, ocr)")
	cmd.Flags().BoolVar(&showText, "text", false, "include the extracted text")
	return cmd
}

func (c *cli) classifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>",
		Short: "Extract and classify a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.pipeline(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			res, err := extractFile(cmd.Context(), p.Extractor, args[0], data, "")
			if err != nil {
				return err
			}
			out := p.Classifier.Classify(cmd.Context(), classify.Request{
				Filename:    filepath.Base(args[0]),
				Text:        res.Text,
				ContentHash: usecase.ContentHash(data),
			})
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"file":           args[0],
				"classification": out.Result,
				"usage":          out.Usage,
			})
		},
	}
}

func (c *cli) processCommand() *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Run the pipeline up to a processing level with in-memory storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if level == 0 {
				level = cfg.DefaultLevel
			}
			app, err := bootstrap.New(cmd.Context(), cfg, bootstrap.Options{Logger: c.logger(cmd), InMemory: true})
			if err != nil {
				return err
			}
			defer app.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			doc, err := app.IngestUC.Upload(cmd.Context(), ports.UploadRequest{
				TenantID: c.flags.tenant,
				Filename: filepath.Base(args[0]),
				Level:    domain.ProcessingLevel(level),
				Body:     f,
			})
			if err != nil {
				return err
			}
			result, err := app.ProcessUC.ProcessByID(cmd.Context(), c.flags.tenant, doc.ID, domain.ProcessingLevel(level))
			if err != nil {
				return err
			}
			out := map[string]any{"result": result}
			if result.Fields != nil {
				out["fields"] = result.Fields.Fields()
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("pipeline stopped: %s", result.Error)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "processing level 1-4 (default PROCESSING_LEVEL)")
	return cmd
}

func (c *cli) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <type> <fields.json>",
		Short: "Validate a JSON object of fields against a document type schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType, err := domain.ParseDocumentType(args[0])
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			var values map[string]any
			if err := json.Unmarshal(raw, &values); err != nil {
				return fmt.Errorf("decode %s: %w", args[1], err)
			}
			reg, err := validation.LoadRegistry()
			if err != nil {
				return err
			}
			res, err := reg.ValidateValues(docType, values)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func (c *cli) schemasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the validation schema of every document type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := validation.LoadRegistry()
			if err != nil {
				return err
			}
			for _, line := range reg.Describe() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func extractFile(ctx context.Context, svc *extraction.Service, path string, data []byte, strategy string) (domain.ExtractionResult, error) {
	in := extraction.Input{Filename: filepath.Base(path), Data: data}
	if strategy != "" {
		return svc.ExtractWith(ctx, strategy, in)
	}
	return svc.Extract(ctx, in)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
