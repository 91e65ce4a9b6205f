package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/acquire"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/scan"
)

// watch <dir>: treat a directory as a drop zone. Every image file dropped
// into it enters the pipeline; anything else is ignored. Each file gets its
// own session and its own confirm prompt.
func watchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a drop-zone directory for images to scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			drops, errs, err := acquire.WatchDrops(ctx, acquire.DropConfig{
				Root:     args[0],
				Debounce: debounce,
			})
			if err != nil {
				return err
			}
			fmt.Printf("watching %s (ctrl-c to stop)\n", args[0])

			for {
				select {
				case <-ctx.Done():
					return nil
				case werr, ok := <-errs:
					if ok && werr != nil {
						logger.Warn("drop watcher error", "error", werr)
					}
				case path, ok := <-drops:
					if !ok {
						return nil
					}
					scanDropped(cmd, path)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "coalesce rapid file events")
	return cmd
}

func scanDropped(cmd *cobra.Command, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read dropped file failed", "path", path, "error", err)
		return
	}

	sess := scan.NewSession()
	fmt.Printf("\ndropped: %s\n", path)
	candidate, err := pipeline.Drop(cmd.Context(), sess, path, "", data)
	if err != nil {
		fmt.Println(constants.RemediationMessage)
		return
	}
	if candidate == "" {
		// Non-image payload: ignored without comment, like a web drop zone.
		return
	}

	edited, ok := promptConfirm(candidate)
	if !ok {
		_ = pipeline.Dismiss(sess)
		fmt.Println("cancelled")
		return
	}
	res, err := pipeline.Confirm(cmd.Context(), sess, edited)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnknownStatus):
			fmt.Println(constants.UnknownMessage)
		case errors.Is(err, common.ErrTransport):
			fmt.Println(constants.TransportMessage)
		default:
			fmt.Println(err)
		}
		return
	}
	printResult(res)
}
