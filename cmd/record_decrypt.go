package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/PolarWolf314/kbs/internal/record"
	"github.com/PolarWolf314/kbs/internal/utils"
	"github.com/PolarWolf314/kbs/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	decryptFile string
	decryptJSON bool
)

func init() {
	recordDecryptCmd.Flags().StringVarP(&decryptFile, "file", "f", "", "read the envelope from a file instead of stdin")
	recordDecryptCmd.Flags().BoolVar(&decryptJSON, "json", false, "output the record as JSON")
}

func resetRecordDecryptState() {
	decryptFile = ""
	decryptJSON = false
}

var recordDecryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt an envelope and print the record",
	Long: `Decrypts an ASCII-armored envelope read from stdin (or --file) and prints
the record it contains.

Examples:
  kbs record decrypt < github.age
  kbs record decrypt --file github.age --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting record decrypt command")

		envelope, err := readEnvelope()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to read envelope: %v", err)
		}

		config, err := loadConfig()
		if err != nil {
			return Logger.ErrorfAndReturn("Failed to load config: %v", err)
		}

		rec, err := workflows.Decrypt(cmd.Context(), workflows.DecryptOptions{
			Config:   config,
			Envelope: string(envelope),
			Logger:   Logger,
		})
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), failureMessage("Failed to decrypt record", err))
			return reported(err)
		}

		return printRecord(cmd.OutOrStdout(), rec)
	},
}

func readEnvelope() ([]byte, error) {
	if decryptFile != "" {
		Logger.Debugf("Reading envelope from %s", decryptFile)
		return os.ReadFile(decryptFile)
	}
	return utils.ReadStdin()
}

func printRecord(w io.Writer, rec *record.Record) error {
	if decryptJSON {
		data, err := rec.Marshal()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "Label: %s\n", rec.Label)
	switch fields := rec.Body.Fields.(type) {
	case record.Login:
		fmt.Fprintf(w, "Username: %s\nPassword: %s\n", fields.Username, fields.Password)
	case record.Environment:
		fmt.Fprintf(w, "Variable: %s\nValue: %s\n", fields.Variable, fields.Value)
	case record.Unstructured:
		fmt.Fprint(w, fields.Contents)
		if len(fields.Contents) > 0 && fields.Contents[len(fields.Contents)-1] != '\n' {
			fmt.Fprintln(w)
		}
	}
	return nil
}
