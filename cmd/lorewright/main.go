package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/lorewright/internal/card"
	"github.com/stellarlinkco/lorewright/internal/config"
	"github.com/stellarlinkco/lorewright/internal/engine"
	"github.com/stellarlinkco/lorewright/internal/search"
	"github.com/stellarlinkco/lorewright/internal/session"
)

// Runtime is the command surface over the session manager (allows mocking in
// tests).
type Runtime interface {
	Generate(ctx context.Context, message string) (string, *engine.Result, error)
	Resume(ctx context.Context, id, answer string) (*engine.Result, error)
	Sessions(ctx context.Context) ([]*session.Session, error)
	Export(ctx context.Context, id string) (*card.GenerationOutput, error)
	Close()
}

// RuntimeFactory creates a Runtime instance
type RuntimeFactory func(cfg *config.Config) (Runtime, error)

type runtime struct {
	store   session.Store
	manager *engine.Manager
	llm     session.LLMConfig
	closeFn func()
}

// DefaultRuntimeFactory wires the sqlite store and the real model client.
func DefaultRuntimeFactory(cfg *config.Config) (Runtime, error) {
	if cfg.Provider.APIKey == "" && cfg.Provider.BaseURL == "" {
		return nil, fmt.Errorf("API key not set. Run 'lorewright onboard' or set LOREWRIGHT_API_KEY / ANTHROPIC_API_KEY")
	}

	store, err := session.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	searchClient := search.Unconfigured()
	if cfg.Tools.BraveAPIKey != "" {
		searchClient = search.NewBrave(cfg.Tools.BraveAPIKey, nil)
	}

	mgr, err := engine.NewManager(store, searchClient, &engine.ManagerOptions{
		Engine: engine.Options{MaxIterations: cfg.Agent.MaxIterations},
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &runtime{
		store:   store,
		manager: mgr,
		llm: session.LLMConfig{
			Provider:     cfg.Provider.Type,
			Model:        cfg.Agent.Model,
			APIKey:       cfg.Provider.APIKey,
			BaseURL:      cfg.Provider.BaseURL,
			Temperature:  cfg.Agent.Temperature,
			SearchAPIKey: cfg.Tools.BraveAPIKey,
		},
		closeFn: func() {
			mgr.Stop()
			_ = store.Close()
		},
	}, nil
}

func (r *runtime) Generate(ctx context.Context, message string) (string, *engine.Result, error) {
	eng, err := r.manager.Create(ctx, sessionTitle(message), r.llm)
	if err != nil {
		return "", nil, err
	}
	res, err := eng.Run(ctx, message)
	if err != nil {
		return eng.SessionID(), nil, err
	}
	return eng.SessionID(), res, nil
}

func (r *runtime) Resume(ctx context.Context, id, answer string) (*engine.Result, error) {
	eng, err := r.manager.Attach(ctx, id, r.llm)
	if err != nil {
		return nil, err
	}
	return eng.Resume(ctx, answer)
}

func (r *runtime) Sessions(ctx context.Context) ([]*session.Session, error) {
	return r.store.ListSessions(ctx)
}

func (r *runtime) Export(ctx context.Context, id string) (*card.GenerationOutput, error) {
	sess, err := r.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Output == nil {
		return nil, fmt.Errorf("session %s has no output yet", id)
	}
	return sess.Output, nil
}

func (r *runtime) Close() {
	if r.closeFn != nil {
		r.closeFn()
	}
}

func sessionTitle(message string) string {
	title := strings.TrimSpace(message)
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:60])
	}
	if title == "" {
		title = "untitled session"
	}
	return title
}

// CommandOptions for running commands with custom dependencies
type CommandOptions struct {
	RuntimeFactory RuntimeFactory
	Stdout         io.Writer
	Stderr         io.Writer
}

func (o *CommandOptions) fill() {
	if o.RuntimeFactory == nil {
		o.RuntimeFactory = DefaultRuntimeFactory
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

var rootCmd = &cobra.Command{
	Use:   "lorewright",
	Short: "lorewright - character card and worldbook generator",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Start a generation session",
	RunE:  runGenerate,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Answer a pending question and continue a paused session",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions",
	RunE:  runSessions,
}

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write character.json and worldbook.json for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show lorewright status",
	RunE:  runStatus,
}

var (
	messageFlag string
	outDirFlag  string
)

func init() {
	generateCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "The character request to start from")
	resumeCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Your answer to the pending question")
	exportCmd.Flags().StringVarP(&outDirFlag, "out", "o", ".", "Directory to write the export files to")
	rootCmd.AddCommand(generateCmd, resumeCmd, sessionsCmd, exportCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	return generateWithOptions(CommandOptions{}, messageFlag)
}

func generateWithOptions(opts CommandOptions, message string) error {
	opts.fill()
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("a message is required: lorewright generate -m \"a cyberpunk detective\"")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := opts.RuntimeFactory(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	id, res, err := rt.Generate(context.Background(), message)
	if err != nil {
		return err
	}
	fmt.Fprintf(opts.Stdout, "Session: %s\n", id)
	printResult(opts.Stdout, id, res)
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	return resumeWithOptions(CommandOptions{}, args[0], messageFlag)
}

func resumeWithOptions(opts CommandOptions, id, answer string) error {
	opts.fill()
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("an answer is required: lorewright resume %s -m \"fantasy\"", id)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := opts.RuntimeFactory(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.Resume(context.Background(), id, answer)
	if err != nil {
		return err
	}
	printResult(opts.Stdout, id, res)
	return nil
}

func runSessions(cmd *cobra.Command, args []string) error {
	return sessionsWithOptions(CommandOptions{})
}

func sessionsWithOptions(opts CommandOptions) error {
	opts.fill()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := opts.RuntimeFactory(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	sessions, err := rt.Sessions(context.Background())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(opts.Stdout, "No sessions yet.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(opts.Stdout, "%s  %-16s  %s\n", s.ID, s.Status, s.Title)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	return exportWithOptions(CommandOptions{}, args[0], outDirFlag)
}

func exportWithOptions(opts CommandOptions, id, outDir string) error {
	opts.fill()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	rt, err := opts.RuntimeFactory(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	out, err := rt.Export(context.Background(), id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, "character.json"), out.Character); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "worldbook.json"), out.Worldbook); err != nil {
		return err
	}

	fmt.Fprintf(opts.Stdout, "Exported character.json and worldbook.json to %s\n", outDir)
	if err := out.Worldbook.Validate(); err != nil {
		fmt.Fprintf(opts.Stderr, "Warning: worldbook is incomplete: %v\n", err)
	}
	if missing := out.Character.MissingFields(); len(missing) > 0 {
		fmt.Fprintf(opts.Stderr, "Warning: character fields missing: %s\n", strings.Join(missing, ", "))
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set your API key\n", cfgPath)
	fmt.Println("  2. Or set LOREWRIGHT_API_KEY environment variable")
	fmt.Println("  3. Run 'lorewright generate -m \"a stoic android librarian\"'")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Model: %s\n", cfg.Agent.Model)
	fmt.Printf("Provider: %s\n", providerDisplay(cfg.Provider.Type))
	fmt.Printf("Max iterations: %d\n", cfg.Agent.MaxIterations)
	fmt.Printf("Database: %s\n", cfg.Storage.DBPath)
	if cfg.Provider.APIKey != "" && len(cfg.Provider.APIKey) > 8 {
		masked := cfg.Provider.APIKey[:4] + "..." + cfg.Provider.APIKey[len(cfg.Provider.APIKey)-4:]
		fmt.Printf("API Key: %s\n", masked)
	} else if cfg.Provider.APIKey != "" {
		fmt.Println("API Key: set")
	} else {
		fmt.Println("API Key: not set")
	}
	if cfg.Tools.BraveAPIKey != "" {
		fmt.Println("Web search: enabled")
	} else {
		fmt.Println("Web search: disabled (set LOREWRIGHT_BRAVE_API_KEY)")
	}
	return nil
}

func providerDisplay(t string) string {
	if t == "" {
		return "anthropic (default)"
	}
	return t
}

func printResult(w io.Writer, id string, res *engine.Result) {
	switch {
	case res.NeedsUserInput:
		fmt.Fprintf(w, "\n%s\n\n", res.Question)
		fmt.Fprintf(w, "Answer with: lorewright resume %s -m \"your answer\"\n", id)
	case res.Success:
		fmt.Fprintln(w, "Generation complete.")
		if res.Output != nil {
			fmt.Fprintf(w, "Character: %s\n", res.Output.Character.Name)
			fmt.Fprintf(w, "Worldbook entries: %d\n", len(res.Output.Worldbook.Entries))
		}
		fmt.Fprintf(w, "Export with: lorewright export %s\n", id)
	default:
		fmt.Fprintf(w, "Generation failed: %s\n", res.Err)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
