package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

// healthStatus mirrors the fields of /api/v1/health the check acts on.
type healthStatus struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func main() {
	os.Exit(check(os.Getenv("UNREADWATCH_LISTEN_ADDR"), os.Stderr))
}

// check calls the health endpoint and returns the process exit code. The
// service is healthy only when it answers 200 with status "ok", i.e. its
// state store is readable.
func check(rawAddr string, stderr io.Writer) int {
	addr := normalizeAddr(rawAddr)

	client := &http.Client{Timeout: 2 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/api/v1/health", addr), nil)
	if err != nil {
		fmt.Fprintf(stderr, "healthcheck: %v\n", err)
		return 1
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(stderr, "healthcheck: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	var hs healthStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&hs); err != nil {
		fmt.Fprintf(stderr, "healthcheck: HTTP %d, unreadable body: %v\n", resp.StatusCode, err)
		return 1
	}

	if resp.StatusCode != http.StatusOK || hs.Status != "ok" {
		fmt.Fprintf(stderr, "healthcheck: HTTP %d, status=%q store=%q\n", resp.StatusCode, hs.Status, hs.Store)
		return 1
	}

	return 0
}

// normalizeAddr ensures the healthcheck connects to loopback rather than the
// bind-all address. Docker containers bind 0.0.0.0 but the healthcheck runs
// inside the same container, so loopback is reachable and more correct.
func normalizeAddr(raw string) string {
	if raw == "" {
		return "127.0.0.1:8080"
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return "127.0.0.1:8080"
	}

	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}

	return net.JoinHostPort(host, port)
}
