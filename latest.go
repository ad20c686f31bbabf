package fantasy11

import "github.com/MrEthical07/fantasy11/view"

// NewLatest returns a [view.Latest] whose discarded results are counted under
// [MetricStaleResponseDiscarded].
func NewLatest[T any](c *Client, opts ...view.Option) *view.Latest[T] {
	hook := view.WithDiscardHook(func(seq uint64, _ error) {
		if c == nil {
			return
		}
		c.metrics.Inc(MetricStaleResponseDiscarded)
		c.log.Debug("stale response discarded", "seq", seq)
	})
	return view.NewLatest[T](append([]view.Option{hook}, opts...)...)
}
