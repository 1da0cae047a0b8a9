// commands.go contains the cobra command definitions and their flag
// configurations. Each builder creates a command and wires it to its
// handler in handlers.go.
package main

import (
	"github.com/spf13/cobra"
)

// buildChatCmd creates the "chat" command that starts an interactive
// conversation.
func buildChatCmd() *cobra.Command {
	var (
		configPath string
		user       string
		chatID     string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the stock assistant.

Each line you type is dispatched as one turn. Rich tool output is
rendered as text cards; purchase tickets can be completed with the
/confirm command.

Without --user the session is anonymous and history is not saved.`,
		Example: `  # Anonymous demo session
  nicolette chat

  # Signed-in session with persisted history
  nicolette chat --user alice

  # Resume a saved conversation
  nicolette chat --user alice --chat 4f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), configPath, user, chatID, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to YAML configuration file")
	cmd.Flags().StringVarP(&user, "user", "u", "",
		"User id to sign in as (empty = anonymous, no persistence)")
	cmd.Flags().StringVar(&chatID, "chat", "",
		"Chat id to resume (requires --user)")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false,
		"Enable debug logging")

	return cmd
}

// buildChatsCmd creates the "chats" command that lists saved
// conversations for a user.
func buildChatsCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List saved chats for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChats(cmd.Context(), configPath, user)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Path to YAML configuration file")
	cmd.Flags().StringVarP(&user, "user", "u", "",
		"User id whose chats to list")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
