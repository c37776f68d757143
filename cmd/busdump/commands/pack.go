package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/dbuswire/capture"
	"github.com/arloliu/dbuswire/message"
)

func newPackCmd(a *app) *cobra.Command {
	var (
		compression string
		memberNames bool
	)

	cmd := &cobra.Command{
		Use:   "pack <raw-stream> <capture>",
		Short: "Build a capture from a stream of raw messages",
		Long: `Read back-to-back marshalled messages, as written by a bus monitor, and store
them in a capture. Every message is stamped with the input file's modification time.
The configured filter applies.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if compression == "" {
				compression = a.cfg.Compression
			}
			ct, err := ParseCompression(compression)
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			info, err := in.Stat()
			if err != nil {
				return err
			}
			at := info.ModTime()

			w, err := capture.NewWriter(at,
				capture.WithCompression(ct),
				capture.WithMemberNames(memberNames || a.cfg.MemberNames),
			)
			if err != nil {
				return err
			}

			if err := a.packStream(bufio.NewReader(in), w, at); err != nil {
				return err
			}

			data, err := w.Finish()
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0o644); err != nil { //nolint:gosec
				return err
			}

			a.logger.Info().
				Str("file", args[1]).
				Int("bytes", len(data)).
				Int("members", len(w.Members())).
				Stringer("compression", ct).
				Msg("capture written")

			return nil
		},
	}

	cmd.Flags().StringVar(&compression, "compression", "", "Data codec (none|zstd|s2|lz4), overrides the config file")
	cmd.Flags().BoolVar(&memberNames, "member-names", false, "Store the table of distinct interface members")

	return cmd
}

// packStream appends every message read from r that passes the filter.
func (a *app) packStream(r io.Reader, w *capture.Writer, at time.Time) error {
	for {
		msg, err := message.ReadMessage(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", w.Len(), err)
		}

		ok, err := a.cfg.Filter.matches(capture.Record{Message: msg})
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := w.Append(msg, at); err != nil {
			return err
		}
	}

	a.logger.Debug().Int("messages", w.Len()).Msg("stream packed")

	return nil
}
