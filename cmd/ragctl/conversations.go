package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	convCmd := &cobra.Command{Use: "conversations", Short: "Conversation operations"}

	var title string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().
				SetBody(map[string]string{"title": title}).
				Post("/api/conversations")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			printBody(resp.Body())
			return nil
		},
	}
	createCmd.Flags().StringVarP(&title, "title", "t", "", "Conversation title")
	convCmd.AddCommand(createCmd)

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient().R()
			if limit > 0 {
				req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
			}
			resp, err := req.Get("/api/conversations")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			printBody(resp.Body())
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Max conversations to return")
	convCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get CONVERSATION_ID",
		Short: "Get a conversation with its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/api/conversations/" + args[0])
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			printBody(resp.Body())
			return nil
		},
	}
	convCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete CONVERSATION_ID",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Delete("/api/conversations/" + args[0])
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			fmt.Println("deleted")
			return nil
		},
	}
	convCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(convCmd)
}
