package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const okStatusLine = "HTTP/1.1 200 OK"

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	totalRequests := flag.Int("n", 50, "number of create requests")
	flag.Parse()

	// Tag this run so its rows can be found afterwards
	runID := uuid.NewString()

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			body := fmt.Sprintf(`{"sabor":"stress-%s-%d","stock":"high"}`, runID, n)
			resp, err := roundTrip(*addr, "POST /helados HTTP/1.1\r\nHost: "+*addr+"\r\n\r\n"+body)
			if err == nil && strings.HasPrefix(resp, okStatusLine) {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Run ID:           %s\n", runID)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Verify every created row is listed
	resp, err := roundTrip(*addr, "GET /helados HTTP/1.1\r\nHost: "+*addr+"\r\n\r\n")
	if err != nil {
		log.Fatalf("list failed: %v", err)
	}
	listed := strings.Count(resp, "stress-"+runID+"-")
	fmt.Printf("Listed rows:      %d\n", listed)

	if int32(listed) == success {
		fmt.Println("PASS: every successful create is listed")
	} else {
		fmt.Printf("FAIL: Expected %d listed rows, got %d\n", success, listed)
	}
}

func roundTrip(addr, raw string) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if _, err := io.WriteString(conn, raw); err != nil {
		return "", err
	}
	resp, err := io.ReadAll(conn)
	if err != nil {
		return "", err
	}
	return string(resp), nil
}
