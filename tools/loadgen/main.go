// Command loadgen floods the webhook ingest endpoint with signed Shopify
// deliveries. It exercises signature verification, the dedup ledger and the
// mirror upserts under concurrency, and reports outcome counts and latency
// percentiles when it finishes.
//
// Usage:
//
//	loadgen -url http://localhost:8080/api/v1/webhooks/shopify \
//	        -shop dev-store.myshopify.com -secret shpss_... \
//	        -total 5000 -concurrency 16 -duplicate-pct 20
package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"
)

var topics = []string{
	"products/create",
	"products/update",
	"orders/create",
	"orders/updated",
}

type options struct {
	url          string
	shopDomain   string
	secret       string
	total        int
	concurrency  int
	duplicatePct int
	badSigPct    int
	timeout      time.Duration
}

type result struct {
	status  int
	latency time.Duration
	err     error
}

func main() {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: opts.timeout}

	jobs := make(chan []byte, opts.concurrency*2)
	results := make(chan result, opts.concurrency*2)

	var wg sync.WaitGroup
	for i := 0; i < opts.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, client, opts, jobs, results)
		}()
	}

	go func() {
		defer close(jobs)
		produce(ctx, opts, jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	report(collect(results))
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.url, "url", "http://localhost:8080/api/v1/webhooks/shopify", "ingest endpoint URL")
	flag.StringVar(&opts.shopDomain, "shop", "", "shop domain sent in X-Shopify-Shop-Domain (required)")
	flag.StringVar(&opts.secret, "secret", "", "webhook signing secret (required)")
	flag.IntVar(&opts.total, "total", 1000, "number of deliveries to send")
	flag.IntVar(&opts.concurrency, "concurrency", 8, "number of concurrent senders")
	flag.IntVar(&opts.duplicatePct, "duplicate-pct", 10, "percent of deliveries retransmitted verbatim")
	flag.IntVar(&opts.badSigPct, "bad-sig-pct", 0, "percent of deliveries sent with a broken signature")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	if opts.shopDomain == "" || opts.secret == "" {
		fmt.Fprintln(os.Stderr, "loadgen: -shop and -secret are required")
		flag.Usage()
		os.Exit(2)
	}
	if opts.total <= 0 || opts.concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "loadgen: -total and -concurrency must be positive")
		os.Exit(2)
	}
	return opts
}

// produce generates payloads and feeds the send queue. A slice of recent
// payloads is kept so duplicates are byte-identical retransmits, which is
// what the dedup fingerprint keys on.
func produce(ctx context.Context, opts options, jobs chan<- []byte) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	recent := make([][]byte, 0, 256)

	for i := 0; i < opts.total; i++ {
		var payload []byte
		if len(recent) > 0 && rng.Intn(100) < opts.duplicatePct {
			payload = recent[rng.Intn(len(recent))]
		} else {
			payload = buildPayload(rng, i)
			if len(recent) < cap(recent) {
				recent = append(recent, payload)
			} else {
				recent[rng.Intn(len(recent))] = payload
			}
		}

		select {
		case jobs <- payload:
		case <-ctx.Done():
			return
		}
	}
}

func buildPayload(rng *rand.Rand, seq int) []byte {
	upstreamID := rng.Int63n(1_000_000_000)
	switch rng.Intn(2) {
	case 0:
		return fmt.Appendf(nil,
			`{"admin_graphql_api_id":"gid://shopify/Product/%d","id":%d,"title":"Load Product %d","status":"active","variants":[{"price":"%d.00","inventory_quantity":%d,"inventory_management":"shopify"}]}`,
			upstreamID, upstreamID, seq, 5+rng.Intn(95), rng.Intn(200))
	default:
		return fmt.Appendf(nil,
			`{"admin_graphql_api_id":"gid://shopify/Order/%d","id":%d,"order_number":%d,"name":"#%d","financial_status":"paid","currency":"USD","subtotal_price":"%d.00","total_price":"%d.00","processed_at":%q,"line_items":[]}`,
			upstreamID, upstreamID, seq, seq, 20+rng.Intn(180), 25+rng.Intn(200),
			time.Now().UTC().Format(time.RFC3339))
	}
}

func worker(ctx context.Context, client *http.Client, opts options, jobs <-chan []byte, results chan<- result) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for payload := range jobs {
		if ctx.Err() != nil {
			return
		}

		topic := topics[rng.Intn(len(topics))]
		signature := sign(opts.secret, payload)
		if opts.badSigPct > 0 && rng.Intn(100) < opts.badSigPct {
			signature = sign(opts.secret+"-broken", payload)
		}

		start := time.Now()
		status, err := send(ctx, client, opts, topic, payload, signature)
		results <- result{status: status, latency: time.Since(start), err: err}
	}
}

func send(ctx context.Context, client *http.Client, opts options, topic string, payload []byte, signature string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Topic", topic)
	req.Header.Set("X-Shopify-Shop-Domain", opts.shopDomain)
	req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	req.Header.Set("X-Shopify-Webhook-Id", fmt.Sprintf("loadgen-%d", time.Now().UnixNano()))

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

type summary struct {
	byStatus  map[int]int64
	errors    int64
	latencies []time.Duration
}

func collect(results <-chan result) summary {
	s := summary{byStatus: make(map[int]int64)}
	var sent int64
	for r := range results {
		sent++
		if sent%500 == 0 {
			fmt.Printf("sent %d deliveries\n", sent)
		}
		if r.err != nil {
			s.errors++
			continue
		}
		s.byStatus[r.status]++
		s.latencies = append(s.latencies, r.latency)
	}
	return s
}

func report(s summary) {
	fmt.Println("--- loadgen results ---")

	statuses := make([]int, 0, len(s.byStatus))
	for code := range s.byStatus {
		statuses = append(statuses, code)
	}
	sort.Ints(statuses)
	for _, code := range statuses {
		fmt.Printf("  HTTP %d: %d\n", code, s.byStatus[code])
	}
	if s.errors > 0 {
		fmt.Printf("  transport errors: %d\n", s.errors)
	}

	if len(s.latencies) == 0 {
		return
	}
	sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
	fmt.Printf("  latency p50=%s p95=%s p99=%s max=%s\n",
		percentile(s.latencies, 0.50),
		percentile(s.latencies, 0.95),
		percentile(s.latencies, 0.99),
		s.latencies[len(s.latencies)-1])
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	idx := int(float64(len(sorted)-1) * q)
	return sorted[idx]
}
