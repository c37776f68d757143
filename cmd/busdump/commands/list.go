package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list <capture>",
		Short: "Print the messages of a capture",
		Long: `Print one line per recorded message: index, receive time, type, serial and
header fields.

Examples:
  # Every message
  busdump list session.cap

  # Only PropertiesChanged signals
  busdump list session.cap --interface org.freedesktop.DBus.Properties --member PropertiesChanged`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openCapture(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			shown, failed := 0, 0
			for rec, err := range a.selected(r) {
				if err != nil {
					failed++
					a.logger.Warn().Err(err).Int("index", rec.Index).Msg("skipping unreadable message")

					continue
				}

				fmt.Fprintf(out, "%6d %s %s\n", rec.Index, rec.Time.UTC().Format(time.RFC3339Nano), rec.Message)
				shown++
				if limit > 0 && shown >= limit {
					break
				}
			}

			a.logger.Debug().Int("shown", shown).Int("failed", failed).Msg("list done")

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many messages (0 for no limit)")

	return cmd
}
