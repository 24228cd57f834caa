package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/kbs/internal/record"
	"github.com/PolarWolf314/kbs/internal/utils"
	"github.com/PolarWolf314/kbs/internal/workflows"
	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"
)

var (
	encryptLabel    string
	encryptKind     string
	encryptUsername string
	encryptVariable string
)

func init() {
	recordEncryptCmd.Flags().StringVarP(&encryptLabel, "label", "l", "", "label for the record (required)")
	recordEncryptCmd.Flags().StringVarP(&encryptKind, "kind", "k", "login", "record kind: login, environment, or unstructured")
	recordEncryptCmd.Flags().StringVarP(&encryptUsername, "username", "u", "", "username for a login record")
	recordEncryptCmd.Flags().StringVar(&encryptVariable, "variable", "", "variable name for an environment record")
	_ = recordEncryptCmd.MarkFlagRequired("label")
}

func resetRecordEncryptState() {
	encryptLabel = ""
	encryptKind = "login"
	encryptUsername = ""
	encryptVariable = ""
}

var recordEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a record and print the envelope",
	Long: `Builds a record from flags and secret input, encrypts it to your public
key, and prints the ASCII-armored envelope to stdout.

Secrets are read from the terminal without echo. Unstructured contents are
read from stdin.

Examples:
  # Encrypt a login
  kbs record encrypt --label github --username octocat

  # Encrypt an environment variable
  kbs record encrypt --label api --kind environment --variable API_TOKEN

  # Encrypt a file's contents
  kbs record encrypt --label notes --kind unstructured < notes.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting record encrypt command")
		Logger.Debugf("Flags: label=%s, kind=%s", encryptLabel, encryptKind)

		rec, err := buildRecord(cmd.Context())
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to build record: %v", err)
		}
		if err := rec.Validate(); err != nil {
			return Logger.ErrorfAndReturn("Invalid record: %v", err)
		}

		config, err := loadConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load config: %v", err)
		}

		envelope, err := workflows.Encrypt(cmd.Context(), workflows.EncryptOptions{
			Config: config,
			Record: rec,
			Logger: Logger,
		})
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), failureMessage("Failed to encrypt "+encryptLabel, err))
			return reported(err)
		}

		fmt.Fprint(cmd.OutOrStdout(), envelope)
		return nil
	},
}

var recordKinds = map[string]record.Kind{
	"login":        record.KindLogin,
	"environment":  record.KindEnvironment,
	"unstructured": record.KindUnstructured,
}

func buildRecord(ctx context.Context) (*record.Record, error) {
	switch recordKinds[strings.ToLower(encryptKind)] {
	case record.KindLogin:
		if encryptUsername == "" {
			return nil, fmt.Errorf("--username is required for a login record")
		}
		password, err := utils.PromptPassword(ctx, "Password: ")
		if err != nil {
			return nil, err
		}
		defer memguard.WipeBytes(password)
		return record.NewLogin(encryptLabel, encryptUsername, string(password)), nil

	case record.KindEnvironment:
		if encryptVariable == "" {
			return nil, fmt.Errorf("--variable is required for an environment record")
		}
		value, err := utils.PromptPassword(ctx, "Value: ")
		if err != nil {
			return nil, err
		}
		defer memguard.WipeBytes(value)
		return record.NewEnvironment(encryptLabel, encryptVariable, string(value)), nil

	case record.KindUnstructured:
		contents, err := utils.ReadStdin()
		if err != nil {
			return nil, err
		}
		defer memguard.WipeBytes(contents)
		return record.NewUnstructured(encryptLabel, string(contents)), nil

	default:
		return nil, fmt.Errorf("unknown record kind %q", encryptKind)
	}
}
