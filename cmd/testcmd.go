package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verification helpers",
}

var testConnectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Test connectivity to the Cerb database and the Zendesk API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.TestConnections(context.Background()); err != nil {
			return err
		}

		fmt.Println("Connection tests successful")
		return nil
	},
}

var testTicketCmd = &cobra.Command{
	Use:   "ticket <mask>",
	Short: "Look up a migrated ticket on Zendesk by its Cerb5 mask",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one argument (ticket mask)")
		}

		t, err := client.ZendeskClient.FindTicketByExternalId(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("an error occured finding the ticket: %w", err)
		}

		if t == nil {
			fmt.Println("No ticket found for mask", args[0])
			return nil
		}

		fmt.Println("Zendesk ID:", t.Id)
		fmt.Println("Subject:", t.Subject)
		fmt.Println("Status:", t.Status)
		fmt.Println("Created At:", t.CreatedAt)
		return nil
	},
}

func init() {
	testCmd.AddCommand(testConnectionCmd)
	testCmd.AddCommand(testTicketCmd)
}
