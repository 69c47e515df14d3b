package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	var metadataJSON string
	addCmd := &cobra.Command{
		Use:   "add-document CONTENT",
		Short: "Add a document to the retrieval corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"content": args[0]}
			if metadataJSON != "" {
				var md map[string]interface{}
				if err := json.Unmarshal([]byte(metadataJSON), &md); err != nil {
					return fmt.Errorf("invalid --metadata JSON: %w", err)
				}
				payload["metadata"] = md
			}
			resp, err := newClient().R().SetBody(payload).Post("/api/documents")
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
	addCmd.Flags().StringVarP(&metadataJSON, "metadata", "m", "", "Document metadata as a JSON object")
	rootCmd.AddCommand(addCmd)

	var limit int
	var threshold float32
	searchCmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the retrieval corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"query": args[0]}
			if limit > 0 {
				payload["limit"] = limit
			}
			if threshold > 0 {
				payload["threshold"] = threshold
			}
			resp, err := newClient().R().SetBody(payload).Post("/api/search")
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
	searchCmd.Flags().IntVarP(&limit, "limit", "k", 0, "Max results")
	searchCmd.Flags().Float32VarP(&threshold, "threshold", "t", 0, "Minimum similarity score")
	rootCmd.AddCommand(searchCmd)
}
