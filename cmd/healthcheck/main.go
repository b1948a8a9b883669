// Package main is a minimal container health probe.
// It exits 0 when the local server answers its liveness (or, with -ready,
// readiness) endpoint, and 1 otherwise.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	ready := flag.Bool("ready", false, "probe /ready instead of /healthz")
	flag.Parse()

	port := os.Getenv("PORT")
	if port == "" {
		port = "10000"
	}

	endpoint := "/healthz"
	if *ready {
		endpoint = "/ready"
	}

	client := &http.Client{Timeout: 8 * time.Second}
	url := fmt.Sprintf("http://localhost:%s%s", port, endpoint)

	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}

	os.Exit(0)
}
