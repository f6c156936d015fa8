// sse_load opens many concurrent connections against the cycle SSE
// stream and reports how many cycle events each connection receives.
// Useful for checking that the dashboard endpoint holds up when a lot
// of browsers are watching the same advisor.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

type counters struct {
	connected   int64
	connectErrs int64
	streamErrs  int64
	cycleEvents int64
	heartbeats  int64
}

func main() {
	var (
		targetURL    string
		connections  int
		testDuration time.Duration
		rampUp       time.Duration
	)

	flag.StringVar(&targetURL, "url", "http://localhost:8080/cycles/stream", "cycle stream URL")
	flag.IntVar(&connections, "conns", 500, "number of concurrent connections to open")
	flag.DurationVar(&testDuration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	flag.DurationVar(&rampUp, "ramp", 0, "ramp-up duration (spread connection starts across this window)")
	flag.Parse()

	if connections <= 0 {
		log.Fatalf("invalid conns: %d", connections)
	}
	if rampUp == 0 && connections > 100 {
		rampUp = time.Duration(connections/250) * time.Second
		if rampUp < time.Second {
			rampUp = time.Second
		}
		log.Printf("no ramp-up given, defaulting to %s", rampUp)
	}

	log.Printf("starting cycle stream load: url=%s conns=%d duration=%s ramp=%s", targetURL, connections, testDuration, rampUp)

	transport := &http.Transport{
		MaxConnsPerHost:     connections + 100,
		MaxIdleConns:        connections + 100,
		MaxIdleConnsPerHost: connections + 100,
		DisableCompression:  true,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	client := &http.Client{Transport: transport} // no timeout, connections stream

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if testDuration > 0 {
		var timedCancel context.CancelFunc
		ctx, timedCancel = context.WithTimeout(ctx, testDuration)
		defer timedCancel()
	}

	var stats counters
	var wg sync.WaitGroup

	start := time.Now()

	var interval time.Duration
	if rampUp > 0 {
		interval = rampUp / time.Duration(connections)
	}

	for i := 0; i < connections; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			watch(ctx, client, targetURL, &stats)
		}()
	}

	ticker := time.NewTicker(5 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Printf("status: connected=%d connect_errs=%d stream_errs=%d cycles=%d heartbeats=%d elapsed=%s",
					atomic.LoadInt64(&stats.connected),
					atomic.LoadInt64(&stats.connectErrs),
					atomic.LoadInt64(&stats.streamErrs),
					atomic.LoadInt64(&stats.cycleEvents),
					atomic.LoadInt64(&stats.heartbeats),
					time.Since(start).Truncate(time.Second),
				)
			}
		}
	}()

	wg.Wait()
	cancel()

	elapsed := time.Since(start)
	if elapsed == 0 {
		elapsed = time.Millisecond
	}
	fmt.Printf("done: connected=%d connect_errs=%d stream_errs=%d cycles=%d heartbeats=%d elapsed=%s cycles/s=%.2f\n",
		atomic.LoadInt64(&stats.connected),
		atomic.LoadInt64(&stats.connectErrs),
		atomic.LoadInt64(&stats.streamErrs),
		atomic.LoadInt64(&stats.cycleEvents),
		atomic.LoadInt64(&stats.heartbeats),
		elapsed.Truncate(time.Millisecond),
		float64(atomic.LoadInt64(&stats.cycleEvents))/elapsed.Seconds(),
	)
}

func watch(ctx context.Context, client *http.Client, url string, stats *counters) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		atomic.AddInt64(&stats.connectErrs, 1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		atomic.AddInt64(&stats.connectErrs, 1)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		atomic.AddInt64(&stats.connectErrs, 1)
		return
	}

	atomic.AddInt64(&stats.connected, 1)
	reader := bufio.NewReader(resp.Body)

	for {
		if ctx.Err() != nil {
			return
		}
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() == nil {
				atomic.AddInt64(&stats.streamErrs, 1)
			}
			return
		}
		switch {
		case strings.HasPrefix(line, "event: cycle"):
			atomic.AddInt64(&stats.cycleEvents, 1)
		case strings.HasPrefix(line, ":"):
			atomic.AddInt64(&stats.heartbeats, 1)
		}
	}
}
