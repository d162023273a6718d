package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a220prep/a220prep/internal/bank"
	"github.com/a220prep/a220prep/internal/handler"
	"github.com/a220prep/a220prep/internal/progress"
	"github.com/a220prep/a220prep/internal/selection"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "a220prep",
		Short: "A220 type-rating exam preparation server",
	}

	serve := serveCmd()
	root.AddCommand(serve, setsCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `a220prep --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "a220prep.db", "SQLite progress database path")
	f.StringP("bank", "b", "data/quizData.json", "Path to the question bank JSON file")
	f.String("explanations", "data/explanations.json", "Path to the explanations JSON file")
	f.String("page-refs", "data/page_references.json", "Path to the page references JSON file")
	f.IntP("questions-per-quiz", "q", 100, "Questions per generated quiz set")
	f.Float64("seed", 12345, "Seed for the deterministic quiz-set partition")
	f.IntP("random-count", "n", 100, "Questions in a random attempt")
	f.Int("time-limit", 0, "Attempt time limit in minutes (0 = use bank value)")
	f.StringSlice("cors-origins", []string{"http://localhost:3000"}, "Allowed CORS origins for the frontend")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Export the deterministic quiz-set partition as JSON",
		RunE:  runSets,
	}
	f := cmd.Flags()
	f.StringP("bank", "b", "data/quizData.json", "Path to the question bank JSON file")
	f.IntP("questions-per-quiz", "q", 100, "Questions per generated quiz set")
	f.Float64("seed", 12345, "Seed for the deterministic quiz-set partition")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("A220PREP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("a220prep")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/a220prep")
	v.AddConfigPath("/etc/a220prep")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	store, err := progress.NewSQLite(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open progress database: %w", err)
	}
	defer store.Close()

	b := bank.Load(v.GetString("bank"))
	if b.Count() == 0 {
		slog.Warn("question bank is empty", "path", v.GetString("bank"))
	}
	resources := bank.LoadResources(v.GetString("explanations"), v.GetString("page-refs"))

	sets := selection.GenerateSeededQuizSets(b, v.GetInt("questions-per-quiz"), v.GetFloat64("seed"))
	tracker := progress.NewTracker(store)

	h := handler.New(b, resources, sets, tracker, handler.Config{
		RandomCount: v.GetInt("random-count"),
		TimeLimit:   v.GetInt("time-limit"),
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: v.GetStringSlice("cors-origins"),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"bank", v.GetString("bank"),
		"questions", b.Count(),
		"chapters", len(b.Quizzes),
		"quiz_sets", len(sets),
		"questions_per_quiz", v.GetInt("questions-per-quiz"),
		"seed", v.GetFloat64("seed"),
	)
	return http.ListenAndServe(addr, r)
}

func runSets(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	b := bank.Load(v.GetString("bank"))
	if b.Count() == 0 {
		return fmt.Errorf("question bank is empty: %s", v.GetString("bank"))
	}

	sets := selection.GenerateSeededQuizSets(b, v.GetInt("questions-per-quiz"), v.GetFloat64("seed"))

	data, err := json.MarshalIndent(sets, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}
