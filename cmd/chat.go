package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/infrachat/internal/orchestrator"
)

var (
	chatSession string
	chatUser    string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session in the terminal",
	Long: `Starts an interactive conversation with the assistant. Besides free text,
the session understands:

  /status            show the requirements collection status
  /feedback <0-1>    rate the last answer
  /session           print the session id
  /quit              leave the chat`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "resume an existing session id")
	chatCmd.Flags().StringVar(&chatUser, "user", "", "user id for preferences and profile")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	fmt.Printf("infrachat %s (session %s). Type /quit to leave.\n\n", Version, sessionID)

	prompt := promptui.Prompt{Label: "you"}
	for {
		line, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runChatCommand(ctx, a, sessionID, line); quit {
				return nil
			}
			continue
		}

		printReply(a.engine.ProcessQuery(ctx, line, sessionID, chatUser))
	}
}

// runChatCommand handles a slash command and reports whether the chat should
// end.
func runChatCommand(ctx context.Context, a *app, sessionID, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/session":
		fmt.Println(sessionID)
	case "/status":
		status, err := a.collector.Status(ctx, sessionID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		if !status.Active {
			if status.Completed {
				fmt.Println("Requirements collection is complete.")
			} else {
				fmt.Println("No requirements collection in progress.")
			}
			break
		}
		fmt.Printf("%.0f%% complete", status.CompletionPercentage)
		if status.CurrentQuestion != nil {
			fmt.Printf(", question %d: %s", status.QuestionNumber, status.CurrentQuestion.Text)
		}
		fmt.Println()
	case "/feedback":
		if len(fields) != 2 {
			fmt.Println("Usage: /feedback <score between 0 and 1>")
			break
		}
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			fmt.Printf("Invalid score %q\n", fields[1])
			break
		}
		if err := a.memory.RecordSatisfaction(ctx, sessionID, score); err != nil {
			fmt.Printf("Error: %v\n", err)
			break
		}
		fmt.Println("Thanks for the feedback.")
	default:
		fmt.Printf("Unknown command %s\n", fields[0])
	}
	return false
}

func printReply(resp orchestrator.Response) {
	fmt.Println()
	fmt.Println(resp.ResponseText)
	if verbose {
		fmt.Printf("\n[%s via %s, confidence %.2f, %dms]\n", resp.Intent, resp.Route, resp.Confidence, resp.ResponseTimeMS)
	}
	if len(resp.Suggestions) > 0 {
		fmt.Println("\nYou could also try:")
		for _, s := range resp.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
	fmt.Println()
}
