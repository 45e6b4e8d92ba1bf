// Command ghostmap runs the GHOSTMAP ghost-endpoint reconnaissance pipeline:
// collect candidate URLs from web archives, sanitize them for safe sharing,
// then audit them against documentation and live probing to assign risk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gauravkdeore/ghostmap-go/internal/config"
	"github.com/gauravkdeore/ghostmap-go/internal/pipeline"
	"github.com/gauravkdeore/ghostmap-go/internal/progress"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ghostmap",
	Short: "Discover undocumented HTTP endpoints on a target web property.",
	Long: `ghostmap harvests candidate URLs from historical web archives and
live JavaScript, correlates them against documented APIs, and actively
probes survivors to score their risk as undocumented ("ghost") endpoints.

Run the three stages in order: collect, sanitize, audit.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootContext() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, cancel
}

// --- collect ---

var collectOpts struct {
	domain          string
	output          string
	limit           int
	skipJS          bool
	skipCommonCrawl bool
	rateLimit       float64
	headers         []string
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Harvest candidate endpoints from archives and live JavaScript.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if collectOpts.domain == "" {
			return fmt.Errorf("--domain is required")
		}
		if collectOpts.rateLimit > 0 {
			cfg.RateLimit = collectOpts.rateLimit
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, kv := range collectOpts.headers {
			k, v, ok := splitHeader(kv)
			if !ok {
				return fmt.Errorf("invalid --header %q, expected K:V", kv)
			}
			cfg.Headers[k] = v
		}

		ctx, cancel := rootContext()
		defer cancel()

		hub := progress.NewHub()
		go hub.Run()

		opts := pipeline.CollectOptions{
			Limit:           collectOpts.limit,
			SkipJS:          collectOpts.skipJS,
			SkipCommonCrawl: collectOpts.skipCommonCrawl,
		}
		doc := pipeline.RunCollect(ctx, cfg, collectOpts.domain, opts, hub)

		out := collectOpts.output
		if out == "" {
			out = fmt.Sprintf("ghostmap-%s-collect.json", sanitizeFilename(collectOpts.domain))
		}
		if err := pipeline.WriteDocument(out, doc); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("collected %d endpoints -> %s\n", doc.Summary.TotalEndpoints, out)
		return nil
	},
}

// --- sanitize ---

var sanitizeOpts struct {
	input  string
	output string
	strict bool
}

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize",
	Short: "Redact sensitive data from a collected endpoint document.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sanitizeOpts.input == "" {
			return fmt.Errorf("--input is required")
		}
		doc, err := pipeline.ReadDocument(sanitizeOpts.input)
		if err != nil {
			return fmt.Errorf("reading %s: %w", sanitizeOpts.input, err)
		}
		doc.Meta.InputFile = sanitizeOpts.input
		doc = pipeline.RunSanitize(doc, sanitizeOpts.strict)

		out := sanitizeOpts.output
		if out == "" {
			out = withSuffix(sanitizeOpts.input, "sanitized")
		}
		if err := pipeline.WriteDocument(out, doc); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("sanitized %d endpoints -> %s\n", doc.Summary.TotalEndpoints, out)
		return nil
	},
}

// --- audit ---

var auditOpts struct {
	input    string
	output   string
	swagger  string
	gitRepo  string
	probe    bool
	baseURL  string
	fuzz     bool
	fuzzMode string
	scanAll  bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Probe, compare against documentation, and score endpoint risk.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if auditOpts.input == "" {
			return fmt.Errorf("--input is required")
		}
		if auditOpts.fuzz && auditOpts.baseURL == "" {
			return fmt.Errorf("--fuzz requires --base-url")
		}
		doc, err := pipeline.ReadDocument(auditOpts.input)
		if err != nil {
			return fmt.Errorf("reading %s: %w", auditOpts.input, err)
		}

		ctx, cancel := rootContext()
		defer cancel()

		hub := progress.NewHub()
		go hub.Run()

		fuzzMode := ""
		if auditOpts.fuzz {
			fuzzMode = auditOpts.fuzzMode
			if fuzzMode == "" {
				fuzzMode = "auto"
			}
		}

		opts := pipeline.AuditOptions{
			BaseURL:    auditOpts.baseURL,
			SourceRoot: auditOpts.gitRepo,
			SpecPath:   auditOpts.swagger,
			FuzzMode:   fuzzMode,
		}
		doc = pipeline.RunAudit(ctx, cfg, doc, opts, hub)

		out := auditOpts.output
		if out == "" {
			out = withSuffix(auditOpts.input, "audit")
		}
		if err := pipeline.WriteDocument(out, doc); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Printf("audited %d endpoints: %d high, %d medium, %d low -> %s\n",
			doc.Summary.TotalEndpoints, doc.Summary.HighRisk, doc.Summary.MediumRisk, doc.Summary.LowRisk, out)
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectOpts.domain, "domain", "", "target domain, e.g. example.com (required)")
	collectCmd.Flags().StringVar(&collectOpts.output, "output", "", "output JSON path")
	collectCmd.Flags().IntVar(&collectOpts.limit, "limit", 0, "maximum endpoints to collect (0 for unlimited)")
	collectCmd.Flags().BoolVar(&collectOpts.skipJS, "skip-js", false, "skip JavaScript analysis")
	collectCmd.Flags().BoolVar(&collectOpts.skipCommonCrawl, "skip-commoncrawl", false, "skip CommonCrawl archive queries")
	collectCmd.Flags().Float64Var(&collectOpts.rateLimit, "rate-limit", 0, "requests per second (0 uses config default)")
	collectCmd.Flags().StringArrayVar(&collectOpts.headers, "header", nil, "extra request header K:V (repeatable)")

	sanitizeCmd.Flags().StringVar(&sanitizeOpts.input, "input", "", "input JSON document (required)")
	sanitizeCmd.Flags().StringVar(&sanitizeOpts.output, "output", "", "output JSON path")
	sanitizeCmd.Flags().BoolVar(&sanitizeOpts.strict, "strict", false, "redact all query values and private IPs")

	auditCmd.Flags().StringVar(&auditOpts.input, "input", "", "input JSON document (required)")
	auditCmd.Flags().StringVar(&auditOpts.output, "output", "", "output JSON path")
	auditCmd.Flags().StringVar(&auditOpts.swagger, "swagger", "", "OpenAPI/Swagger spec path")
	auditCmd.Flags().StringVar(&auditOpts.gitRepo, "git-repo", "", "source tree path to mine for routes")
	auditCmd.Flags().BoolVar(&auditOpts.probe, "probe", false, "has no effect: audit probes every endpoint on each run")
	auditCmd.Flags().StringVar(&auditOpts.baseURL, "base-url", "", "target origin for probing/fuzzing, e.g. https://example.com")
	auditCmd.Flags().BoolVar(&auditOpts.fuzz, "fuzz", false, "fuzz for hidden paths using technology wordlists")
	auditCmd.Flags().StringVar(&auditOpts.fuzzMode, "fuzz-mode", "auto", "fuzz wordlist selection: auto|all")
	auditCmd.Flags().BoolVar(&auditOpts.scanAll, "scan-all", false, "has no effect: audit probes every endpoint, including ones marked dead earlier")

	rootCmd.AddCommand(collectCmd, sanitizeCmd, auditCmd)
}

func splitHeader(kv string) (string, string, bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == ':' {
			return kv[:i], trimLeadingSpace(kv[i+1:]), true
		}
	}
	return "", "", false
}

func trimLeadingSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func withSuffix(path, suffix string) string {
	ext := ".json"
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			ext = path[i:]
			base = path[:i]
			break
		}
		if path[i] == '/' {
			break
		}
	}
	return fmt.Sprintf("%s.%s%s", base, suffix, ext)
}
