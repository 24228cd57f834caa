package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/kbs/cmd"
	"github.com/PolarWolf314/kbs/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "kbs",
	Short: "kbs - A personal secret store backed by age.",
	Long: `kbs is a command-line secret store that encrypts records to your own age
public key.

Usage:
  kbs <command> [flags]

Available Commands:
  key       Create, rewrap, and unwrap your keypair
  record    Encrypt and decrypt records
  config    Inspect the configuration

Run 'kbs help <command>' for more details on a specific command.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(c *cobra.Command, args []string) {
		figure.NewColorFigure("kbs", "alligator2", "green", true).Print()
		fmt.Println()
		fmt.Println("Run 'kbs --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.KeyCmd)
	rootCmd.AddCommand(cmd.RecordCmd)
	rootCmd.AddCommand(cmd.ConfigCmd)
}

func main() {
	// An interrupt cancels the command context so in-flight work can clean up.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		// A second interrupt terminates immediately.
		stop()
	}()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	memguard.Purge()
	if err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, ui.Error.Sprint("Error: ")+err.Error())
		}
		os.Exit(1)
	}
}
