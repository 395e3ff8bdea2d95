package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	butterytoast "github.com/jefferyq2/ButteryToast"
	"github.com/jefferyq2/ButteryToast/internal/config"
	"github.com/jefferyq2/ButteryToast/pkg/protocol"
)

const (
	gib = int64(1024 * 1024 * 1024)
)

type profile struct {
	Name          string
	Clients       int
	Duration      time.Duration
	RPS           float64
	Linger        time.Duration
	PayloadBytes  int
	MaxProcs      int
	MemLimitBytes int64
}

var profiles = map[string]profile{
	"fast": {
		Name:         "fast",
		Clients:      50,
		Duration:     10 * time.Second,
		RPS:          2,
		Linger:       500 * time.Millisecond,
		PayloadBytes: 24,
	},
	"standard": {
		Name:         "standard",
		Clients:      200,
		Duration:     30 * time.Second,
		RPS:          5,
		Linger:       500 * time.Millisecond,
		PayloadBytes: 24,
	},
	"stress": {
		Name:          "stress",
		Clients:       500,
		Duration:      60 * time.Second,
		RPS:           10,
		Linger:        250 * time.Millisecond,
		PayloadBytes:  24,
		MaxProcs:      4,
		MemLimitBytes: 2 * gib,
	},
}

type benchConfig struct {
	Profile        string
	Clients        int
	Duration       time.Duration
	RPS            float64
	Linger         time.Duration
	PayloadBytes   int
	MaxProcs       int
	MemLimitBytes  int64
	JSONOutput     string
	TriggerTimeout time.Duration
}

type benchCounters struct {
	triggersSent  atomic.Uint64
	toastsMounted atomic.Uint64
	triggerBytes  atomic.Uint64
	tapsSent      atomic.Uint64
	tapBytes      atomic.Uint64
	opBytes       atomic.Uint64
	opFrames      atomic.Uint64
	opsTotal      atomic.Uint64
}

type benchErrors struct {
	handshakeFailures   atomic.Uint64
	triggerFailures     atomic.Uint64
	tapWriteFailures    atomic.Uint64
	frameDecodeFailures atomic.Uint64
	opsDecodeFailures   atomic.Uint64
	serverErrorFrames   atomic.Uint64
	mountMissing        atomic.Uint64
	totalErrors         atomic.Uint64
}

type opTypeCounts struct {
	counts [256]atomic.Uint64
}

func (o *opTypeCounts) add(op protocol.OpType) {
	o.counts[uint8(op)].Add(1)
}

func (o *opTypeCounts) snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	for i := range o.counts {
		count := o.counts[i].Load()
		if count == 0 {
			continue
		}
		name := protocol.OpType(uint8(i)).String()
		if name == "Unknown" {
			name = fmt.Sprintf("0x%02x", i)
		}
		out[name] = count
	}
	return out
}

func main() {
	log.SetFlags(0)

	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}
	if cfg.MemLimitBytes > 0 {
		debug.SetMemoryLimit(cfg.MemLimitBytes)
	}

	debug.SetGCPercent(100)

	app := butterytoast.New(config.Default(),
		butterytoast.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		butterytoast.WithDevMode(true),
	)

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("listen: %v", err)
	}

	httpServer := &http.Server{Handler: app.Handler()}
	go func() {
		_ = httpServer.Serve(ln)
	}()
	defer func() {
		_ = httpServer.Shutdown(context.Background())
	}()

	addr := ln.Addr().String()
	wsURL := "ws://" + addr + "/ws"
	baseURL := "http://" + addr

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Clients * 2,
			MaxIdleConnsPerHost: cfg.Clients * 2,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	samplesCh := make(chan time.Duration, sampleBuffer(cfg.Clients))
	var samples []time.Duration
	var samplesMu sync.Mutex
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for rtt := range samplesCh {
			samplesMu.Lock()
			samples = append(samples, rtt)
			samplesMu.Unlock()
		}
	}()

	var counters benchCounters
	var errCounts benchErrors
	var opKinds opTypeCounts

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	beforeMetrics := readRuntimeMetrics()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Clients)
	for i := 0; i < cfg.Clients; i++ {
		clientID := i
		go func() {
			defer wg.Done()
			if err := runClient(ctx, wsURL, baseURL, httpClient, clientID, cfg, &counters, &errCounts, &opKinds, samplesCh); err != nil {
				errCounts.totalErrors.Add(1)
			}
		}()
	}

	wg.Wait()
	close(samplesCh)
	<-collectorDone

	elapsed := time.Since(start)

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)
	afterMetrics := readRuntimeMetrics()

	samplesMu.Lock()
	latencies := append([]time.Duration(nil), samples...)
	samplesMu.Unlock()
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	report := buildReport(cfg, elapsed, latencies, &counters, &errCounts, &opKinds, before, after, beforeMetrics, afterMetrics)

	writeSummary(os.Stderr, report)
	if err := writeJSON(cfg.JSONOutput, report); err != nil {
		log.Fatalf("write json: %v", err)
	}
}

func sampleBuffer(clients int) int {
	if clients < 1 {
		return 1024
	}
	buf := clients * 4
	if buf < 1024 {
		buf = 1024
	}
	return buf
}

func parseConfig() (benchConfig, error) {
	profileFlag := flag.String("profile", "standard", "profile: fast|standard|stress")
	clientsFlag := flag.Int("clients", -1, "number of concurrent websocket sessions")
	durationFlag := flag.String("duration", "", "benchmark duration, e.g. 30s")
	rpsFlag := flag.Float64("rps", -1, "target toasts/sec per session")
	lingerFlag := flag.String("linger", "", "per-toast auto-dismiss, e.g. 500ms (0 taps each toast away)")
	payloadFlag := flag.Int("payload-bytes", -1, "bytes of toast body per trigger")
	maxProcsFlag := flag.Int("max-procs", -1, "GOMAXPROCS cap (0 to leave unchanged)")
	memLimitFlag := flag.String("mem-limit", "", "GOMEMLIMIT (e.g. 2GiB)")
	jsonFlag := flag.String("json", "-", "JSON output path ('-' for stdout)")
	flag.Parse()

	name := strings.ToLower(strings.TrimSpace(*profileFlag))
	if name == "" {
		name = "standard"
	}

	base, ok := profiles[name]
	if !ok {
		return benchConfig{}, fmt.Errorf("unknown profile %q", name)
	}

	cfg := benchConfig{
		Profile:       base.Name,
		Clients:       base.Clients,
		Duration:      base.Duration,
		RPS:           base.RPS,
		Linger:        base.Linger,
		PayloadBytes:  base.PayloadBytes,
		MaxProcs:      base.MaxProcs,
		MemLimitBytes: base.MemLimitBytes,
		JSONOutput:    strings.TrimSpace(*jsonFlag),
	}

	if *clientsFlag != -1 {
		cfg.Clients = *clientsFlag
	}
	if *durationFlag != "" {
		d, err := time.ParseDuration(*durationFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -duration: %w", err)
		}
		cfg.Duration = d
	}
	if *rpsFlag != -1 {
		cfg.RPS = *rpsFlag
	}
	if *lingerFlag != "" {
		d, err := time.ParseDuration(*lingerFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -linger: %w", err)
		}
		cfg.Linger = d
	}
	if *payloadFlag != -1 {
		cfg.PayloadBytes = *payloadFlag
	}
	if *maxProcsFlag != -1 {
		cfg.MaxProcs = *maxProcsFlag
	}
	if *memLimitFlag != "" {
		limit, err := parseBytes(*memLimitFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -mem-limit: %w", err)
		}
		cfg.MemLimitBytes = limit
	}
	if cfg.JSONOutput == "" {
		cfg.JSONOutput = "-"
	}

	if cfg.Clients <= 0 {
		return benchConfig{}, errors.New("-clients must be > 0")
	}
	if cfg.Duration <= 0 {
		return benchConfig{}, errors.New("-duration must be > 0")
	}
	if cfg.RPS <= 0 {
		return benchConfig{}, errors.New("-rps must be > 0")
	}
	if cfg.Linger < 0 {
		return benchConfig{}, errors.New("-linger must be >= 0")
	}
	if cfg.PayloadBytes <= 0 {
		return benchConfig{}, errors.New("-payload-bytes must be > 0")
	}
	if cfg.MaxProcs < 0 {
		return benchConfig{}, errors.New("-max-procs must be >= 0")
	}
	if cfg.MemLimitBytes < 0 {
		return benchConfig{}, errors.New("-mem-limit must be >= 0")
	}

	cfg.TriggerTimeout = triggerTimeout(cfg.RPS)
	return cfg, nil
}

func triggerTimeout(rps float64) time.Duration {
	if rps <= 0 {
		return 0
	}
	period := time.Duration(float64(time.Second) / rps)
	timeout := period * 10
	if timeout < 2*time.Second {
		timeout = 2 * time.Second
	}
	return timeout
}

func parseBytes(input string) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, errors.New("empty size")
	}

	var i int
	for i < len(s) {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q", input)
	}

	numPart := strings.TrimSpace(s[:i])
	suffix := strings.ToLower(strings.TrimSpace(s[i:]))

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, err
	}

	multiplier := float64(1)
	switch suffix {
	case "", "b":
		multiplier = 1
	case "kb":
		multiplier = 1e3
	case "mb":
		multiplier = 1e6
	case "gb":
		multiplier = 1e9
	case "tb":
		multiplier = 1e12
	case "kib":
		multiplier = 1024
	case "mib":
		multiplier = 1024 * 1024
	case "gib":
		multiplier = 1024 * 1024 * 1024
	case "tib":
		multiplier = 1024 * 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix %q", suffix)
	}

	bytes := value * multiplier
	if bytes < 0 {
		return 0, fmt.Errorf("invalid size %q", input)
	}

	return int64(bytes + 0.5), nil
}

func runClient(
	ctx context.Context,
	wsURL string,
	baseURL string,
	httpClient *http.Client,
	clientID int,
	cfg benchConfig,
	counters *benchCounters,
	errCounts *benchErrors,
	opKinds *opTypeCounts,
	samples chan<- time.Duration,
) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		errCounts.handshakeFailures.Add(1)
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	enc := protocol.NewEncoder()
	protocol.EncodeClientHello(enc, &protocol.ClientHello{
		Version:   protocol.Version,
		ViewportW: 1280,
		ViewportH: 720,
	})
	helloFrame := &protocol.Frame{Type: protocol.FrameHello, Payload: enc.Bytes()}
	helloData, err := helloFrame.Encode()
	if err != nil {
		errCounts.handshakeFailures.Add(1)
		return fmt.Errorf("handshake encode: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, helloData); err != nil {
		errCounts.handshakeFailures.Add(1)
		return fmt.Errorf("handshake write: %w", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		errCounts.handshakeFailures.Add(1)
		return fmt.Errorf("handshake read: %w", err)
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		errCounts.handshakeFailures.Add(1)
		return fmt.Errorf("handshake frame decode: %w", err)
	}
	if frame.Type != protocol.FrameHello {
		errCounts.handshakeFailures.Add(1)
		return fmt.Errorf("handshake: expected FrameHello, got %v", frame.Type)
	}
	sh, err := protocol.DecodeServerHello(protocol.NewDecoder(frame.Payload))
	if err != nil {
		errCounts.handshakeFailures.Add(1)
		return fmt.Errorf("handshake server hello decode: %w", err)
	}
	if sh.Status != protocol.HandshakeOK {
		errCounts.handshakeFailures.Add(1)
		return fmt.Errorf("handshake refused: %s", sh.Status.String())
	}

	triggerURL := baseURL + "/sessions/" + sh.SessionID + "/toasts"
	linger := "0"
	if cfg.Linger > 0 {
		linger = cfg.Linger.String()
	}
	period := time.Duration(float64(time.Second) / cfg.RPS)
	var seq uint64

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		seq++
		token := makeToken(clientID, seq, cfg.PayloadBytes)

		start := time.Now()

		body, err := json.Marshal(butterytoast.TriggerRequest{
			Title:       "bench",
			Body:        token,
			AutoDismiss: linger,
		})
		if err != nil {
			errCounts.triggerFailures.Add(1)
			return fmt.Errorf("trigger encode: %w", err)
		}

		target, status, err := sendTrigger(ctx, httpClient, triggerURL, body)
		// The session registers just after the handshake reply; the
		// first trigger can land inside that window.
		for attempt := 0; err != nil && status == http.StatusNotFound && seq == 1 && attempt < 50; attempt++ {
			time.Sleep(2 * time.Millisecond)
			target, status, err = sendTrigger(ctx, httpClient, triggerURL, body)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			errCounts.triggerFailures.Add(1)
			return fmt.Errorf("trigger: %w", err)
		}

		counters.triggersSent.Add(1)
		counters.triggerBytes.Add(uint64(len(body)))

		if cfg.TriggerTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(cfg.TriggerTimeout))
		}
		mountCtx, cancel := context.WithTimeout(ctx, cfg.TriggerTimeout)
		found, err := waitForMount(mountCtx, conn, target, counters, errCounts, opKinds)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || isTimeout(err) {
				errCounts.mountMissing.Add(1)
				return fmt.Errorf("mount not observed for %s", target)
			}
			return fmt.Errorf("wait for mount: %w", err)
		}
		if !found {
			errCounts.mountMissing.Add(1)
			return fmt.Errorf("mount not observed for %s", target)
		}

		rtt := time.Since(start)
		counters.toastsMounted.Add(1)
		samples <- rtt

		if cfg.Linger == 0 {
			if err := sendTap(conn, target, counters); err != nil {
				errCounts.tapWriteFailures.Add(1)
				return fmt.Errorf("tap write: %w", err)
			}
		}

		elapsed := time.Since(start)
		if sleep := period - elapsed; sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

func sendTrigger(ctx context.Context, httpClient *http.Client, url string, body []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", resp.StatusCode, fmt.Errorf("trigger status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var tr butterytoast.TriggerResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return "", resp.StatusCode, fmt.Errorf("trigger response decode: %w", err)
	}
	return tr.Target, resp.StatusCode, nil
}

func sendTap(conn *websocket.Conn, target string, counters *benchCounters) error {
	enc := protocol.NewEncoder()
	protocol.EncodeEvent(enc, &protocol.Event{Type: protocol.EventTap, Target: target})
	frame := &protocol.Frame{Type: protocol.FrameEvent, Payload: enc.Bytes()}
	data, err := frame.Encode()
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	counters.tapsSent.Add(1)
	counters.tapBytes.Add(uint64(len(data)))
	return nil
}

func sendPong(conn *websocket.Conn, seq uint32) error {
	enc := protocol.NewEncoder()
	protocol.EncodeControl(enc, &protocol.Control{Type: protocol.CtrlPong, Seq: seq})
	frame := &protocol.Frame{Type: protocol.FrameControl, Payload: enc.Bytes()}
	data, err := frame.Encode()
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

func waitForMount(
	ctx context.Context,
	conn *websocket.Conn,
	target string,
	counters *benchCounters,
	errCounts *benchErrors,
	opKinds *opTypeCounts,
) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return false, err
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			errCounts.frameDecodeFailures.Add(1)
			return false, err
		}

		switch frame.Type {
		case protocol.FrameOps:
			counters.opFrames.Add(1)
			counters.opBytes.Add(uint64(len(msg)))
			ops, err := protocol.DecodeOps(protocol.NewDecoder(frame.Payload))
			if err != nil {
				errCounts.opsDecodeFailures.Add(1)
				return false, err
			}
			for _, op := range ops {
				opKinds.add(op.OpType())
				counters.opsTotal.Add(1)
				if op.OpType() == protocol.OpMount && op.Target() == target {
					return true, nil
				}
			}

		case protocol.FrameControl:
			ctl, err := protocol.DecodeControl(protocol.NewDecoder(frame.Payload))
			if err != nil {
				errCounts.frameDecodeFailures.Add(1)
				return false, err
			}
			if ctl.Type == protocol.CtrlPing {
				if err := sendPong(conn, ctl.Seq); err != nil {
					return false, fmt.Errorf("pong write: %w", err)
				}
			}

		case protocol.FrameError:
			errCounts.serverErrorFrames.Add(1)
			return false, fmt.Errorf("server error frame")

		default:
			// Ignore hello echoes.
		}
	}
}

func makeToken(clientID int, seq uint64, payloadBytes int) string {
	if payloadBytes <= 0 {
		return ""
	}
	seed := (uint64(clientID) << 32) ^ seq
	base := strings.ToLower(strconv.FormatUint(seed, 36))
	if len(base) >= payloadBytes {
		return base[len(base)-payloadBytes:]
	}
	pad := strings.Repeat("x", payloadBytes-len(base))
	return base + pad
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

type runtimeMetricsSnapshot struct {
	cpuTotalSeconds float64
	cpuGCSeconds    float64

	heapAllocsBytes   uint64
	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeMetricsSnapshot {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:bytes"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	var out runtimeMetricsSnapshot
	for _, s := range samples {
		switch s.Name {
		case "/cpu/classes/total:cpu-seconds":
			out.cpuTotalSeconds = s.Value.Float64()
		case "/cpu/classes/gc/total:cpu-seconds":
			out.cpuGCSeconds = s.Value.Float64()
		case "/gc/heap/allocs:bytes":
			out.heapAllocsBytes = s.Value.Uint64()
		case "/gc/heap/allocs:objects":
			out.heapAllocsObjects = s.Value.Uint64()
		}
	}
	return out
}

func cpuFraction(after, before runtimeMetricsSnapshot) float64 {
	total := after.cpuTotalSeconds - before.cpuTotalSeconds
	if total <= 0 {
		return 0
	}
	gc := after.cpuGCSeconds - before.cpuGCSeconds
	if gc < 0 {
		return 0
	}
	return gc / total
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func avgPause(after, before runtime.MemStats) time.Duration {
	gcCount := after.NumGC - before.NumGC
	if gcCount == 0 {
		return 0
	}
	return time.Duration((after.PauseTotalNs - before.PauseTotalNs) / uint64(gcCount))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyMS  latencyInfo    `json:"latency_ms"`
	Throughput throughputInfo `json:"throughput"`
	GC         gcInfo         `json:"gc"`
	Protocol   protocolInfo   `json:"protocol"`
	Errors     errorInfo      `json:"errors"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	GitCommit string `json:"git_commit,omitempty"`
}

type workloadInfo struct {
	Profile          string  `json:"profile"`
	Clients          int     `json:"clients"`
	DurationMS       int64   `json:"duration_ms"`
	RPSPerClient     float64 `json:"rps_per_client"`
	LingerMS         int64   `json:"linger_ms"`
	PayloadBytes     int     `json:"payload_bytes"`
	MaxProcs         int     `json:"max_procs"`
	MemLimitBytes    int64   `json:"mem_limit_bytes"`
	TriggerTimeoutMS int64   `json:"trigger_timeout_ms"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	ToastsTotal        uint64  `json:"toasts_total"`
	ToastsPerSec       float64 `json:"toasts_per_sec"`
	ToastsPerSecClient float64 `json:"toasts_per_sec_per_client"`
}

type gcInfo struct {
	AllocMB       float64 `json:"alloc_mb"`
	HeapLiveMB    float64 `json:"heap_live_mb"`
	NumGC         uint32  `json:"num_gc"`
	PauseTotalMS  float64 `json:"pause_total_ms"`
	PauseAvgMS    float64 `json:"pause_avg_ms"`
	GCCPUFraction float64 `json:"gc_cpu_fraction"`
	AllocsObjects uint64  `json:"allocs_objects"`
}

type protocolInfo struct {
	TriggerBytesTotal uint64            `json:"trigger_bytes_total"`
	TapBytesTotal     uint64            `json:"tap_bytes_total"`
	OpBytesTotal      uint64            `json:"op_bytes_total"`
	OpFramesTotal     uint64            `json:"op_frames_total"`
	OpsTotal          uint64            `json:"ops_total"`
	AvgTriggerBytes   float64           `json:"avg_trigger_bytes"`
	AvgOpBytes        float64           `json:"avg_op_bytes"`
	OpsPerToast       float64           `json:"ops_per_toast"`
	Ops               map[string]uint64 `json:"ops"`
}

type errorInfo struct {
	TotalErrors         uint64 `json:"total_errors"`
	HandshakeFailures   uint64 `json:"handshake_failures"`
	TriggerFailures     uint64 `json:"trigger_failures"`
	TapWriteFailures    uint64 `json:"tap_write_failures"`
	FrameDecodeFailures uint64 `json:"frame_decode_failures"`
	OpsDecodeFailures   uint64 `json:"ops_decode_failures"`
	ServerErrorFrames   uint64 `json:"server_error_frames"`
	MountMissing        uint64 `json:"mount_missing"`
}

func buildReport(
	cfg benchConfig,
	elapsed time.Duration,
	latencies []time.Duration,
	counters *benchCounters,
	errCounts *benchErrors,
	opKinds *opTypeCounts,
	before runtime.MemStats,
	after runtime.MemStats,
	beforeMetrics runtimeMetricsSnapshot,
	afterMetrics runtimeMetricsSnapshot,
) benchReport {
	toastsTotal := counters.toastsMounted.Load()
	triggersSent := counters.triggersSent.Load()
	opsTotal := counters.opsTotal.Load()
	opFrames := counters.opFrames.Load()
	triggerBytes := counters.triggerBytes.Load()
	tapBytes := counters.tapBytes.Load()
	opBytes := counters.opBytes.Load()

	elapsedSeconds := math.Max(0.001, elapsed.Seconds())
	toastsPerSec := float64(toastsTotal) / elapsedSeconds
	toastsPerSecClient := toastsPerSec / float64(cfg.Clients)

	latency := latencyInfo{}
	if len(latencies) > 0 {
		latency = latencyInfo{
			Min: ms(latencies[0]),
			P50: ms(percentile(latencies, 0.50)),
			P95: ms(percentile(latencies, 0.95)),
			P99: ms(percentile(latencies, 0.99)),
			Max: ms(latencies[len(latencies)-1]),
		}
	}

	avgTriggerBytes := 0.0
	if triggersSent > 0 {
		avgTriggerBytes = float64(triggerBytes) / float64(triggersSent)
	}
	avgOpBytes := 0.0
	if opFrames > 0 {
		avgOpBytes = float64(opBytes) / float64(opFrames)
	}
	opsPerToast := 0.0
	if toastsTotal > 0 {
		opsPerToast = float64(opsTotal) / float64(toastsTotal)
	}

	pauseTotal := time.Duration(after.PauseTotalNs - before.PauseTotalNs)
	pauseAvg := avgPause(after, before)

	report := benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			GitCommit: gitCommit(),
		},
		Workload: workloadInfo{
			Profile:          cfg.Profile,
			Clients:          cfg.Clients,
			DurationMS:       cfg.Duration.Milliseconds(),
			RPSPerClient:     cfg.RPS,
			LingerMS:         cfg.Linger.Milliseconds(),
			PayloadBytes:     cfg.PayloadBytes,
			MaxProcs:         cfg.MaxProcs,
			MemLimitBytes:    cfg.MemLimitBytes,
			TriggerTimeoutMS: cfg.TriggerTimeout.Milliseconds(),
		},
		LatencyMS: latency,
		Throughput: throughputInfo{
			ToastsTotal:        toastsTotal,
			ToastsPerSec:       toastsPerSec,
			ToastsPerSecClient: toastsPerSecClient,
		},
		GC: gcInfo{
			AllocMB:       float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			HeapLiveMB:    float64(after.HeapAlloc) / (1024 * 1024),
			NumGC:         after.NumGC - before.NumGC,
			PauseTotalMS:  ms(pauseTotal),
			PauseAvgMS:    ms(pauseAvg),
			GCCPUFraction: cpuFraction(afterMetrics, beforeMetrics),
			AllocsObjects: afterMetrics.heapAllocsObjects - beforeMetrics.heapAllocsObjects,
		},
		Protocol: protocolInfo{
			TriggerBytesTotal: triggerBytes,
			TapBytesTotal:     tapBytes,
			OpBytesTotal:      opBytes,
			OpFramesTotal:     opFrames,
			OpsTotal:          opsTotal,
			AvgTriggerBytes:   avgTriggerBytes,
			AvgOpBytes:        avgOpBytes,
			OpsPerToast:       opsPerToast,
			Ops:               opKinds.snapshot(),
		},
		Errors: errorInfo{
			TotalErrors:         errCounts.totalErrors.Load(),
			HandshakeFailures:   errCounts.handshakeFailures.Load(),
			TriggerFailures:     errCounts.triggerFailures.Load(),
			TapWriteFailures:    errCounts.tapWriteFailures.Load(),
			FrameDecodeFailures: errCounts.frameDecodeFailures.Load(),
			OpsDecodeFailures:   errCounts.opsDecodeFailures.Load(),
			ServerErrorFrames:   errCounts.serverErrorFrames.Load(),
			MountMissing:        errCounts.mountMissing.Load(),
		},
	}

	return report
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== ButteryToast Macro Benchmark ===")
	fmt.Fprintf(w, "Profile: %s\n", report.Workload.Profile)
	fmt.Fprintf(w, "Clients: %d\n", report.Workload.Clients)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "Target per-client rate: %.2f toasts/s\n", report.Workload.RPSPerClient)
	if report.Workload.LingerMS == 0 {
		fmt.Fprintln(w, "Linger: 0 (tap-dismissed)")
	} else {
		fmt.Fprintf(w, "Linger: %s\n", time.Duration(report.Workload.LingerMS)*time.Millisecond)
	}
	fmt.Fprintf(w, "Payload bytes: %d\n", report.Workload.PayloadBytes)
	if report.Workload.MaxProcs > 0 {
		fmt.Fprintf(w, "GOMAXPROCS cap: %d\n", report.Workload.MaxProcs)
	}
	if report.Workload.MemLimitBytes > 0 {
		fmt.Fprintf(w, "GOMEMLIMIT cap: %.2f GiB\n", float64(report.Workload.MemLimitBytes)/float64(gib))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total toasts: %d\n", report.Throughput.ToastsTotal)
	fmt.Fprintf(w, "Throughput: %.1f toasts/s (%.2f per client)\n", report.Throughput.ToastsPerSec, report.Throughput.ToastsPerSecClient)
	fmt.Fprintf(w, "Errors: %d\n", report.Errors.TotalErrors)
	fmt.Fprintln(w)

	if report.LatencyMS.Max == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "RTT (HTTP trigger -> server present -> client mount+decode):")
		fmt.Fprintf(w, "  min: %.2f ms\n", report.LatencyMS.Min)
		fmt.Fprintf(w, "  p50: %.2f ms\n", report.LatencyMS.P50)
		fmt.Fprintf(w, "  p95: %.2f ms\n", report.LatencyMS.P95)
		fmt.Fprintf(w, "  p99: %.2f ms\n", report.LatencyMS.P99)
		fmt.Fprintf(w, "  max: %.2f ms\n", report.LatencyMS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Protocol (avg):")
	fmt.Fprintf(w, "  trigger bytes: %.1f\n", report.Protocol.AvgTriggerBytes)
	fmt.Fprintf(w, "  op frame bytes: %.1f\n", report.Protocol.AvgOpBytes)
	fmt.Fprintf(w, "  ops/toast: %.2f\n", report.Protocol.OpsPerToast)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC (process-wide):")
	fmt.Fprintf(w, "  alloc:     %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  heap_live: %.2f MB\n", report.GC.HeapLiveMB)
	fmt.Fprintf(w, "  num_gc:    %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (total)\n", report.GC.PauseTotalMS)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (avg)\n", report.GC.PauseAvgMS)
	fmt.Fprintf(w, "  gc_cpu:    %.2f%%\n", report.GC.GCCPUFraction*100)
}

func writeJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func gitCommit() string {
	if val := strings.TrimSpace(os.Getenv("BUTTERYTOAST_GIT_COMMIT")); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv("GIT_COMMIT")); val != "" {
		return val
	}
	cmd := exec.Command("git", "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
