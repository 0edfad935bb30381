package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/inboxpilot/internal/credential"
)

var credentialKeys = []string{
	credential.KeyAnthropicAPIKey,
	credential.KeyEmbeddingAPIKey,
	credential.KeyMailboxPassword,
}

func validCredentialKey(key string) bool {
	for _, k := range credentialKeys {
		if k == key {
			return true
		}
	}
	return false
}

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage secrets in the system keyring",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store a credential",
	Long:  fmt.Sprintf("Stores a credential in the system keyring. Keys: %v", credentialKeys),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !validCredentialKey(key) {
			return fmt.Errorf("unknown credential key %q, expected one of %v",
				key, credentialKeys)
		}

		var value string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(key).
					EchoMode(huh.EchoModePassword).
					Value(&value),
			),
		)
		if err := form.RunWithContext(cmd.Context()); err != nil {
			return fmt.Errorf("reading credential value: %w", err)
		}

		if err := credential.Set(key, value); err != nil {
			return err
		}
		fmt.Printf("Credential %q stored.\n", key)
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if !validCredentialKey(key) {
			return fmt.Errorf("unknown credential key %q, expected one of %v",
				key, credentialKeys)
		}

		if err := credential.Delete(key); err != nil {
			return err
		}
		fmt.Printf("Credential %q removed.\n", key)
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}
