package commands

import (
	"fmt"
	"iter"
	"os"

	"github.com/arloliu/dbuswire/capture"
	"github.com/arloliu/dbuswire/names"
)

func (a *app) openCapture(path string) (*capture.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}

	r, err := capture.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}

	stats := r.CompressionStats()
	a.logger.Debug().
		Str("file", path).
		Int("messages", r.Len()).
		Stringer("compression", stats.Algorithm).
		Float64("ratio", stats.CompressionRatio()).
		Msg("capture opened")

	return r, nil
}

// selected returns the records matching the configured filter. With both interface and
// member set, the capture's member index is used; otherwise every message is checked.
func (a *app) selected(r *capture.Reader) iter.Seq2[capture.Record, error] {
	f := a.cfg.Filter
	if f.Interface != "" && f.Member != "" {
		return r.ByMember(names.InterfaceName(f.Interface), names.MemberName(f.Member))
	}

	return func(yield func(capture.Record, error) bool) {
		for rec, err := range r.All() {
			if err == nil {
				ok, ferr := f.matches(rec)
				if ferr == nil && !ok {
					continue
				}
				err = ferr
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}

func (f FilterConfig) matches(rec capture.Record) (bool, error) {
	if f.Interface != "" {
		iface, _, err := rec.Message.Interface()
		if err != nil || string(iface) != f.Interface {
			return false, err
		}
	}
	if f.Member != "" {
		member, _, err := rec.Message.Member()
		if err != nil || string(member) != f.Member {
			return false, err
		}
	}

	return true, nil
}
