// Package main provides the CLI entry point for the Nicolette stock
// assistant.
//
// Nicolette is a conversational finance assistant: user utterances are
// dispatched to an LLM which either streams prose or invokes one of a
// fixed roster of stock tools (trending stocks, price quotes, purchase
// tickets, market events), with chat history persisted per user.
//
// # Basic Usage
//
// Start an interactive chat:
//
//	nicolette chat
//
// Chat with a configuration file and a signed-in user:
//
//	nicolette chat --config nicolette.yaml --user alice
//
// # Environment Variables
//
//   - OPENAI_API_KEY: OpenAI API key; without it the offline demo
//     provider is used
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "nicolette",
		Short: "Conversational stock assistant",
		Long: `Nicolette is a text-based conversational stock assistant.

It answers market questions with streamed prose and renders rich views
for trending stocks, price quotes, purchase tickets, and market events.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		buildChatCmd(),
		buildChatsCmd(),
		buildVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("nicolette %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
