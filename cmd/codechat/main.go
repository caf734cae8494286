// Package main implements the codechat CLI: index a codebase, ask questions
// against it, chat interactively, or serve the assistant over HTTP.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codechat/internal/server"
	"github.com/fyrsmithlabs/codechat/internal/watch"
)

var (
	configPath string
	watchMode  bool
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codechat",
	Short: "Chat with your codebase",
	Long: `codechat indexes a codebase into searchable chunks and answers
questions about it using hybrid keyword and semantic retrieval plus a
tool-calling LLM loop.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&watchMode, "watch", false, "reindex automatically when source folders change")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the search index from the configured folders",
	RunE:  runIndex,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant over HTTP",
	RunE:  runServe,
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}

	stats, err := a.Reindex(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d files into %d chunks (%d bytes)\n",
		stats.FileCount, stats.ChunkCount, stats.TotalBytes)
	for ext, count := range stats.ByExtension {
		fmt.Printf("  %s: %d\n", ext, count)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	if err := a.loadIndex(); err != nil {
		return fmt.Errorf("no usable index, run `codechat index` first: %w", err)
	}

	question := strings.Join(args, " ")
	answer := a.Ask(cmd.Context(), question)
	printAnswer(answer.Text, answer.Sources, answer.Confidence)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	if err := a.loadIndex(); err != nil {
		return fmt.Errorf("no usable index, run `codechat index` first: %w", err)
	}

	fmt.Println("codechat interactive session. Type 'exit' or Ctrl-D to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		answer := a.Ask(cmd.Context(), question)
		printAnswer(answer.Text, answer.Sources, answer.Confidence)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	if a.store.Exists() {
		if err := a.loadIndex(); err != nil {
			a.logger.Warn("persisted index unreadable, serving without retrieval")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchMode {
		w, err := watch.NewWatcher(
			a.cfg.Index.Folders,
			a.cfg.Index.ExcludeFolders,
			watch.DefaultDebounce,
			func() {
				if _, err := a.Reindex(context.Background()); err != nil {
					a.logger.Error("automatic reindex failed", zap.Error(err))
				}
			},
			a.logger,
		)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	srv := server.NewServer(a.cfg.Server, a, a.crmStore, a.taskStore, a.logger)
	a.logger.Info("serving", zap.Int("port", a.cfg.Server.Port))
	if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func printAnswer(text string, sources []string, confidence float64) {
	fmt.Println()
	fmt.Println(text)
	if len(sources) > 0 {
		fmt.Printf("\nSources (confidence %.1f):\n", confidence)
		for _, s := range sources {
			fmt.Printf("  - %s\n", s)
		}
	}
	fmt.Println()
}
