package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// streamEvent mirrors the service's SSE event payload.
type streamEvent struct {
	MessageID string `json:"id"`
	Content   string `json:"content"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
}

func init() {
	var noStream bool
	chatCmd := &cobra.Command{
		Use:   "chat CONVERSATION_ID MESSAGE",
		Short: "Send a message and print the assistant reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noStream {
				return runBlockingChat(args[0], args[1])
			}
			return runStreamingChat(args[0], args[1])
		},
	}
	chatCmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for the complete reply instead of streaming")
	rootCmd.AddCommand(chatCmd)
}

func runBlockingChat(conversationID, message string) error {
	resp, err := newClient().R().
		SetBody(map[string]string{"content": message}).
		Post("/api/conversations/" + conversationID + "/completions")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	printBody(resp.Body())
	return nil
}

func runStreamingChat(conversationID, message string) error {
	resp, err := newClient().R().
		SetHeader("Accept", "text/event-stream").
		SetBody(map[string]string{"content": message}).
		SetDoNotParseResponse(true).
		Post("/api/conversations/" + conversationID + "/completions")
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()
	if resp.IsError() {
		return fmt.Errorf("http %d", resp.StatusCode())
	}

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			return fmt.Errorf("malformed event: %w", err)
		}
		if ev.Error != "" {
			fmt.Println()
			return fmt.Errorf("stream failed: %s", ev.Error)
		}
		if ev.Done {
			fmt.Println()
			return nil
		}
		_, _ = fmt.Fprint(os.Stdout, ev.Content)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream ended without terminal event")
}
