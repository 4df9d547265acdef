package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const (
	statsViewAddr = "localhost:12600"
	statsViewURL  = "/debug/statsview"
)

// launchStatsView serves the runtime metrics dashboard in a new goroutine. The
// returned function shuts it down.
func launchStatsView(w io.Writer) (stop func()) {
	viewer.SetConfiguration(viewer.WithAddr(statsViewAddr))
	mgr := statsview.New()
	go mgr.Start()

	fmt.Fprintf(w, "stats server available at http://%s%s\n", statsViewAddr, statsViewURL)
	return mgr.Stop
}
