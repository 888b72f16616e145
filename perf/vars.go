package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	ProcessLatency     = metric.NewHistogram("1m1s")
	SubmitsPerSecond   = metric.NewCounter("10s1s")
	DeliveredPerSecond = metric.NewCounter("10s1s")
	DroppedPerSecond   = metric.NewCounter("10s1s")
	IcmpPerSecond      = metric.NewCounter("10s1s")
	ReplayedPerSecond  = metric.NewCounter("10s1s")
	GeneratedPerSecond = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("fabricsim:Submits/s", SubmitsPerSecond)
	expvar.Publish("fabricsim:Delivered/s", DeliveredPerSecond)
	expvar.Publish("fabricsim:Dropped/s", DroppedPerSecond)
	expvar.Publish("fabricsim:Icmp/s", IcmpPerSecond)
	expvar.Publish("fabricsim:Replayed/s", ReplayedPerSecond)
	expvar.Publish("fabricsim:Generated/s", GeneratedPerSecond)
	expvar.Publish("fabricsim:ProcessLatency (µs)", ProcessLatency)
}
