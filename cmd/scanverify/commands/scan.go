package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/acquire"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/scan"
)

// scan <image>: run the full pipeline on an image file, with an interactive
// confirm step before anything is submitted.
func scanCmd() *cobra.Command {
	var useCamera bool
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Extract a code from an image, confirm it, and verify it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selector.path = args[0]

			src := acquire.SourceGallery
			if useCamera && probe.Capabilities().HasCamera {
				src = acquire.SourceCamera
			}

			sess := scan.NewSession()
			candidate, err := pipeline.Acquire(cmd.Context(), sess, src)
			if err != nil {
				if errors.Is(err, common.ErrAcquisitionCancelled) {
					return nil
				}
				fmt.Println(constants.RemediationMessage)
				return err
			}

			edited, ok := promptConfirm(candidate)
			if !ok {
				_ = pipeline.Dismiss(sess)
				fmt.Println("cancelled")
				return nil
			}

			res, err := pipeline.Confirm(cmd.Context(), sess, edited)
			if err != nil {
				switch {
				case errors.Is(err, common.ErrUnknownStatus):
					fmt.Println(constants.UnknownMessage)
				case errors.Is(err, common.ErrTransport):
					fmt.Println(constants.TransportMessage)
				}
				return err
			}
			printResult(res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&useCamera, "camera", false, "prefer the camera capture surface when available")
	return cmd
}

// promptConfirm shows the detected code and waits for the user. Enter keeps
// the candidate, any text replaces it, "-" dismisses.
func promptConfirm(candidate string) (string, bool) {
	fmt.Printf("Detected code: %s\n", candidate)
	fmt.Print(`Press Enter to confirm, type a correction, or "-" to cancel: `)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", false
	}
	line = strings.TrimRight(line, "\r\n")
	switch line {
	case "":
		return candidate, true
	case "-":
		return "", false
	default:
		return line, true
	}
}

func printResult(res scan.Result) {
	switch res.Destination {
	case scan.DestVerified:
		fmt.Printf("VERIFIED: %s\n", res.Outcome.Code)
	case scan.DestWarning:
		fmt.Printf("NOT FOUND: %s", res.Outcome.Code)
		if res.Outcome.Name != "" {
			fmt.Printf(" (closest match: %s)", res.Outcome.Name)
		}
		fmt.Println()
	case scan.DestCritical:
		fmt.Printf("DANGER: flagged as %s: %s\n", res.Outcome.Status, res.Outcome.Code)
	}

	keys := make([]string, 0, len(res.Outcome.Record))
	for k := range res.Outcome.Record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %v\n", k, res.Outcome.Record[k])
	}
}
