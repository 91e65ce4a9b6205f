package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/scan"
	"github.com/checkam/scanverifier/internal/verify"
)

// verify <code>: skip acquisition and OCR, submit a code directly. The
// confirmation gate still applies: the code the user typed IS the
// confirmation.
func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <code>",
		Short: "Verify a code without scanning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := verify.NewClient(cfg.Verify, logger)
			out, err := client.Verify(cmd.Context(), args[0])
			if err != nil {
				fmt.Println(constants.TransportMessage)
				return err
			}
			dest := scan.Route(out)
			if dest == scan.DestNone {
				fmt.Println(constants.UnknownMessage)
				return common.ErrUnknownStatus
			}
			printResult(scan.Result{Destination: dest, Outcome: out})
			return nil
		},
	}
}
