package commands

import (
	"cmp"
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/arloliu/dbuswire/capture"
	"github.com/arloliu/dbuswire/format"
)

// Summary aggregates a capture's selected messages.
type Summary struct {
	Messages int
	Failed   int
	Bytes    int
	ByType   map[format.MessageType]int
	ByMember map[string]int
}

// Summarize counts the records produced by seq.
func Summarize(seq iter.Seq2[capture.Record, error]) Summary {
	s := Summary{
		ByType:   make(map[format.MessageType]int),
		ByMember: make(map[string]int),
	}

	for rec, err := range seq {
		if err != nil {
			s.Failed++
			continue
		}

		msg := rec.Message
		s.Messages++
		s.Bytes += msg.Size()
		s.ByType[msg.Type()]++

		member, ok, err := msg.Member()
		if err != nil {
			s.Failed++
			continue
		}
		if ok {
			iface, _, _ := msg.Interface()
			s.ByMember[string(iface)+"."+string(member)]++
		}
	}

	return s
}

// TopMembers returns up to n "interface.member" keys, busiest first.
func (s Summary) TopMembers(n int) []string {
	keys := slices.Collect(maps.Keys(s.ByMember))
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(s.ByMember[b], s.ByMember[a]); c != 0 {
			return c
		}

		return cmp.Compare(a, b)
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}

	return keys
}

func (s Summary) print(w io.Writer, top int) {
	fmt.Fprintf(w, "messages: %d (%d bytes)\n", s.Messages, s.Bytes)
	if s.Failed > 0 {
		fmt.Fprintf(w, "unreadable: %d\n", s.Failed)
	}

	for _, t := range []format.MessageType{format.TypeMethodCall, format.TypeMethodReturn, format.TypeError, format.TypeSignal} {
		if n := s.ByType[t]; n > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", t, n)
		}
	}

	if len(s.ByMember) > 0 {
		fmt.Fprintln(w, "members:")
		for _, k := range s.TopMembers(top) {
			fmt.Fprintf(w, "  %6d %s\n", s.ByMember[k], k)
		}
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats <capture>",
		Short: "Summarize a capture",
		Long: `Count messages by type and by interface member, and report how well the
capture's data section compressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openCapture(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stats := r.CompressionStats()
			fmt.Fprintf(out, "start: %s\n", r.StartTime().UTC().Format("2006-01-02T15:04:05.000000Z07:00"))
			fmt.Fprintf(out, "compression: %s %d -> %d bytes (%.1f%% saved)\n",
				stats.Algorithm, stats.OriginalSize, stats.CompressedSize, stats.SpaceSavings())

			if members := r.Members(); members != nil {
				fmt.Fprintf(out, "member table: %d names\n", len(members))
			}

			Summarize(a.selected(r)).print(out, top)

			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Number of members to show (0 for all)")

	return cmd
}
