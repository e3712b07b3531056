// Package main provides the entry point for the camelguard runtime.
// camelguard is a capability-tracking execution layer for LLM agents: a
// privileged Planner emits a restricted-language program over a fixed
// tool catalogue, a quarantined Extractor reads untrusted data without
// ever seeing the user's original instructions, and every value flowing
// between them carries a capability label a policy engine can act on
// before a tool call is allowed to run.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/camelguard/camelguard/internal/api"
	"github.com/camelguard/camelguard/internal/approval"
	"github.com/camelguard/camelguard/internal/audit"
	"github.com/camelguard/camelguard/internal/config"
	"github.com/camelguard/camelguard/internal/interpreter"
	"github.com/camelguard/camelguard/internal/lang"
	"github.com/camelguard/camelguard/internal/llm"
	"github.com/camelguard/camelguard/internal/orchestrator"
	"github.com/camelguard/camelguard/internal/policy"
	"github.com/camelguard/camelguard/internal/registry"
	"github.com/camelguard/camelguard/internal/repository/postgres"
	"github.com/camelguard/camelguard/internal/telemetry"
	"github.com/camelguard/camelguard/internal/tools"
	"github.com/camelguard/camelguard/pkg/opa"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "camelguard",
		Short: "Capability-tracking execution runtime for LLM agents",
		Long: `camelguard executes a user query through a dual-principal pipeline:
a privileged Planner writes a restricted-language program against a
known tool catalogue; a quarantined Extractor reads untrusted tool
output without seeing the plan; a capability tracker stamps every
value with where it came from and whether it can be trusted; and a
policy engine refuses any tool call a data flow shouldn't be allowed
to reach.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the camelguard API server",
		RunE:  runServer,
	}
	serveCmd.Flags().StringP("config", "c", "", "Path to configuration file")
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Run a single query through the planner/interpreter pipeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
	runCmd.Flags().StringP("config", "c", "", "Path to configuration file")
	runCmd.Flags().Bool("debug", false, "Enable debug logging")

	demoCmd := &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Run a built-in prompt-injection demo scenario",
		Long: `Runs one of the reference prompt-injection scenarios against the
seeded demo tool set, printing the plan, the capability trail, and the
outcome. Scenarios: injection, atlassian, capability-trace (no LLM
required — seeds an untrusted variable and traces it through a passthrough
tool call).`,
		Args: cobra.ExactArgs(1),
		RunE: runDemo,
	}
	demoCmd.Flags().StringP("config", "c", "", "Path to configuration file")

	validateCmd := &cobra.Command{
		Use:   "validate [program-file]",
		Short: "Parse a restricted-language program and report errors",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	rootCmd.AddCommand(serveCmd, runCmd, demoCmd, validateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, debug bool) (*config.Config, error) {
	configureLogging(debug)
	configPath, _ := cmd.Flags().GetString("config")
	return config.Load(configPath)
}

func configureLogging(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// buildProvider constructs the llm.Provider a PrincipalConfig names.
func buildProvider(cfg config.PrincipalConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "", "anthropic":
		return llm.NewAnthropicProvider(llm.AnthropicConfig{APIKey: cfg.APIKey, Model: cfg.Model})
	case "openai":
		return llm.NewOpenAIProvider(llm.OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model})
	case "bedrock":
		return llm.NewBedrockProvider(llm.BedrockConfig{ModelID: cfg.Model})
	default:
		return nil, fmt.Errorf("unknown principal provider %q", cfg.Provider)
	}
}

// buildOracle constructs the approval.Oracle an ApprovalConfig names.
func buildOracle(cfg config.ApprovalConfig) approval.Oracle {
	switch cfg.Kind {
	case "dialog":
		return approval.NewDialogOracle(cfg.Title)
	case "always_approve":
		return approval.AlwaysApprove{}
	case "always_deny":
		return approval.AlwaysDeny{}
	case "", "cli":
		return approval.NewCLIOracle(os.Stdin, os.Stdout)
	default:
		log.Warn().Str("kind", cfg.Kind).Msg("unknown approval oracle kind, defaulting to always-deny")
		return approval.AlwaysDeny{}
	}
}

// buildPolicyConfig folds config.PoliciesConfig (and its optional YAML
// manifest override) into policy.DefaultConfig.
func buildPolicyConfig(cfg config.PoliciesConfig) (policy.DefaultConfig, error) {
	if cfg.ManifestPath != "" {
		return policy.LoadManifest(cfg.ManifestPath)
	}
	return policy.DefaultConfig{
		TrustedDomains:      cfg.TrustedDomains,
		AllowedPathPrefixes: cfg.AllowedPathPrefixes,
		RateLimits:          cfg.RateLimits,
		DenyPatterns:        cfg.DenyPatterns,
		ExfiltrationOps:     cfg.ExfiltrationOps,
		SensitiveIndicators: cfg.SensitiveIndicators,
		MaxExfiltrations:    cfg.MaxExfiltrations,
	}, nil
}

// buildSystem wires a full orchestrator.System out of configuration: the
// two LLM-backed principals, the seeded demo tool registry, the approval
// oracle, the reference policy set, and (if configured) a
// PostgreSQL-backed audit sink. The OPA engine, when enabled, is returned
// for the API's pre-invoke hook; it is not part of the System's policy
// chain.
func buildSystem(cfg *config.Config) (*orchestrator.System, *opa.Engine, *postgres.ExecutionRepository, func(), error) {
	plannerProvider, err := buildProvider(cfg.Planner)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("building planner provider: %w", err)
	}
	extractorProvider, err := buildProvider(cfg.Extractor)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("building extractor provider: %w", err)
	}

	oracle := buildOracle(cfg.Approval)

	toolSet := tools.NewSet(log.Logger)
	reg := registry.New(oracle)
	if err := tools.RegisterDefaults(reg, toolSet); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("registering tools: %w", err)
	}

	var opaEngine *opa.Engine
	if cfg.OPA.Enabled {
		opaEngine, err = opa.NewEngine()
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("creating OPA engine: %w", err)
		}
		if cfg.OPA.BundlePath != "" {
			if err := opaEngine.LoadPolicyBundle(context.Background(), cfg.OPA.BundlePath); err != nil {
				log.Warn().Err(err).Str("path", cfg.OPA.BundlePath).Msg("failed to load OPA bundle, continuing without it")
				opaEngine = nil
			}
		}
	}

	policyCfg, err := buildPolicyConfig(cfg.Policies)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading policy config: %w", err)
	}

	var execRepo *postgres.ExecutionRepository
	var closeDB func()
	if cfg.Database.Host != "" && cfg.Database.User != "" {
		db, err := postgres.New(context.Background(), postgres.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: int32(cfg.Database.MaxConns),
		})
		if err != nil {
			log.Warn().Err(err).Msg("database connection failed, running without an audit repository")
		} else {
			execRepo = postgres.NewExecutionRepository(db)
			closeDB = db.Close
		}
	}

	var auditSink *audit.Sink
	if execRepo != nil {
		auditSink = audit.NewSink(log.Logger, execRepo)
	} else {
		auditSink = audit.NewSink(log.Logger, nil)
	}

	system := orchestrator.NewSystem(orchestrator.Config{
		PlannerProvider:   plannerProvider,
		ExtractorProvider: extractorProvider,
		Tools:             reg,
		Approval:          oracle,
		Audit:             auditSink,
		Policies:          policyCfg,
		Log:               log.Logger,
	})

	cleanup := func() {
		if closeDB != nil {
			closeDB()
		}
	}
	return system, opaEngine, execRepo, cleanup, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, err := loadConfig(cmd, debug)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	port, _ := cmd.Flags().GetString("port")
	if port != "" {
		cfg.Server.Port = port
	}

	log.Info().Str("version", version).Str("port", cfg.Server.Port).Msg("starting camelguard server")

	system, opaEngine, execRepo, cleanup, err := buildSystem(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	deps := &api.RouterDeps{System: system, PolicyEngine: opaEngine}
	// Only assign when non-nil: a nil *postgres.ExecutionRepository boxed
	// into the repository.ExecutionRepository interface would compare
	// non-nil, defeating RouterDeps' nil checks.
	if execRepo != nil {
		deps.Executions = execRepo
	}

	var telProvider *telemetry.Provider
	if cfg.OTEL.Enabled {
		telProvider, err = telemetry.NewProvider(telemetry.Config{
			ServiceName:    cfg.OTEL.ServiceName,
			ServiceVersion: cfg.OTEL.ServiceVersion,
			OTLPEndpoint:   cfg.OTEL.Endpoint,
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize telemetry, continuing without it")
		}
	}

	router := api.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down server...")
		if deps.StopRateLimiter != nil {
			deps.StopRateLimiter()
		}
		if telProvider != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = telProvider.Shutdown(shutdownCtx)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, err := loadConfig(cmd, debug)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	system, _, _, cleanup, err := buildSystem(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := system.Execute(context.Background(), args[0])
	if err != nil {
		fmt.Printf("refused: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("result: %v\n", result)
	return nil
}

// runDemo reproduces the reference implementation's two canonical
// prompt-injection walkthroughs: an attacker-planted instruction inside a
// fetched document/meeting-notes tool output, and a malicious MCP support
// ticket trying to hijack a follow-up action. Both run against the
// always-on tools.NewSet demo data rather than a live LLM connection, so
// the planner/extractor still need a real provider configured — this
// subcommand exists to exercise the capability trail and policy refusal,
// not to avoid needing credentials. A third scenario, capability-trace,
// needs no LLM at all: it seeds an untrusted variable directly and runs a
// fixed program through System.Run to show taint surviving a passthrough
// call.
func runDemo(cmd *cobra.Command, args []string) error {
	if args[0] == "capability-trace" {
		configureLogging(false)
		return runCapabilityTraceDemo()
	}

	debug := false
	cfg, err := loadConfig(cmd, debug)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	system, _, _, cleanup, err := buildSystem(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var query string
	switch args[0] {
	case "injection":
		query = "Can you check my last email and read the attached meeting notes, then follow up on anything mentioned?"
	case "atlassian":
		query = "Check support ticket TICKET-001 and post a reply confirming we've reviewed it."
	default:
		return fmt.Errorf("unknown scenario %q (expected injection, atlassian, or capability-trace)", args[0])
	}

	fmt.Printf("running scenario %q\nquery: %s\n\n", args[0], query)
	result, err := system.Execute(context.Background(), query)
	if err != nil {
		fmt.Printf("runtime refused the plan or a step within it: %v\n", err)
		fmt.Println("this is the expected outcome when the attacker's injected instruction is correctly denied")
		return nil
	}
	fmt.Printf("result: %v\n", result)
	return nil
}

// runCapabilityTraceDemo seeds src as UNTRUSTED/"ext" and runs a program
// that passes it through a no-op registered tool, then prints whether the
// result still carries the taint — the capability algebra's core claim,
// independent of anything an LLM decides.
func runCapabilityTraceDemo() error {
	reg := registry.New(approval.AlwaysApprove{})
	if err := reg.Register(registry.Binding{
		Name:   "identity",
		Source: "builtin",
		Schema: registry.Schema{Description: "passthrough", Params: map[string]string{"value": "any"}, Returns: "any"},
		Fn: func(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
			return args[0], nil
		},
	}); err != nil {
		return err
	}

	// Neither the Planner nor the Extractor is invoked by this scenario's
	// program, so both providers are left nil — System.Run bypasses the
	// Planner entirely, and "dst = identity(src)" never calls
	// query_quarantined_llm.
	traced := orchestrator.NewSystem(orchestrator.Config{Tools: reg})

	fmt.Println("running scenario \"capability-trace\"")
	fmt.Println("seeding src = \"payload\" as UNTRUSTED/\"ext\"; program: dst = identity(src)")
	result, tracker, err := traced.Run(context.Background(), "dst = identity(src)\nreturn dst",
		orchestrator.SeedUntrusted("src", "payload", "ext"))
	if err != nil {
		return err
	}
	fmt.Printf("result: %v\n", result)
	if caps := tracker.Get("dst"); caps != nil && caps.IsUntrusted() {
		fmt.Println("tracker[dst] is UNTRUSTED: taint survived the passthrough call, as required")
	} else {
		fmt.Println("tracker[dst] is not untrusted: this would be a capability-tracking defect")
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	configureLogging(false)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening program file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	var src string
	for sc.Scan() {
		src += sc.Text() + "\n"
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading program file: %w", err)
	}

	mod, err := lang.Parse(src)
	if err != nil {
		fmt.Printf("invalid: %v\n", err)
		os.Exit(1)
	}
	if err := interpreter.Validate(mod); err != nil {
		fmt.Printf("invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("program parses and contains no forbidden constructs")
	return nil
}
