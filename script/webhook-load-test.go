package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sort"
	"sync"
	"time"
)

// WebhookRequest is the body of POST /payment/:category
type WebhookRequest struct {
	Action        string `json:"action"`
	Amount        int64  `json:"amount,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	App           string `json:"app,omitempty"`
	Notification  string `json:"notification,omitempty"`
}

// Response is the success envelope returned by the gateway
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		TransactionID string `json:"transactionId"`
		Amount        int64  `json:"amount"`
		Status        string `json:"status"`
	} `json:"data"`
}

// TestResult contains metrics for a single create and optional settle
type TestResult struct {
	Scenario     string
	Amount       int64
	Success      bool
	Settled      bool
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	SettledPayments    int
	TotalTime          time.Duration
	ResponseTimes      []time.Duration
	ErrorCounts        map[string]int
	ScenarioStats      map[string]int
	PendingAmounts     map[int64]int // amounts of created payments left pending
	Lock               sync.Mutex
}

// PaymentScenario is one kind of payment intent
type PaymentScenario struct {
	Name     string
	Category string
	Amount   int64
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of payments to create")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the gateway")
	apiKey := flag.String("key", "", "Merchant API key")
	method := flag.String("method", "", "Payment method id, empty picks the first available")
	settleRatio := flag.Float64("settle", 0.5, "Share of created payments that receive a matching notification")
	delayMs := flag.Int("delay", 50, "Delay between requests in milliseconds")
	flag.Parse()

	if *apiKey == "" {
		fmt.Println("an API key is required (-key)")
		return
	}

	scenarios := []PaymentScenario{
		{"Bank Small", "bank", 25000},
		{"Bank Large", "bank", 750000},
		{"Ewallet", "ewallet", 50000},
		{"QRIS", "qris", 100000},
	}

	fmt.Printf("Load testing %s with %d goroutines, %d payments\n", *baseURL, *concurrency, *totalRequests)

	stats := &TestStats{
		TotalRequests:  *totalRequests,
		ErrorCounts:    make(map[string]int),
		ScenarioStats:  make(map[string]int),
		PendingAmounts: make(map[int64]int),
		ResponseTimes:  make([]time.Duration, 0, *totalRequests),
	}

	jobs := make(chan int, *totalRequests)
	for i := 0; i < *totalRequests; i++ {
		jobs <- i
	}
	close(jobs)

	client := &http.Client{Timeout: 15 * time.Second}
	startTime := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if *delayMs > 0 {
					time.Sleep(time.Duration(*delayMs) * time.Millisecond)
				}
				scenario := scenarios[rand.IntN(len(scenarios))]
				result := runPayment(client, *baseURL, *apiKey, *method, scenario, rand.Float64() < *settleRatio)
				record(stats, result)
			}
		}()
	}
	wg.Wait()

	stats.TotalTime = time.Since(startTime)
	printResults(stats)
}

// runPayment creates a payment and, when settle is set, posts a bank
// notification carrying the exact amount the gateway allocated
func runPayment(client *http.Client, baseURL, apiKey, method string, scenario PaymentScenario, settle bool) TestResult {
	result := TestResult{Scenario: scenario.Name}
	url := fmt.Sprintf("%s/payment/%s", baseURL, scenario.Category)

	start := time.Now()
	created, status, err := post(client, url, apiKey, WebhookRequest{
		Action:        "create",
		Amount:        scenario.Amount,
		PaymentMethod: method,
	})
	result.ResponseTime = time.Since(start)
	result.StatusCode = status
	if err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	result.Amount = created.Data.Amount

	if !settle {
		return result
	}
	settled, _, err := post(client, url, apiKey, WebhookRequest{
		Action:       "update",
		App:          "loadtest",
		Notification: fmt.Sprintf("Dana masuk Rp%d dari LOADTEST", created.Data.Amount),
	})
	if err != nil {
		result.Error = fmt.Errorf("settle: %w", err)
		result.Success = false
		return result
	}
	result.Settled = settled.Data.Status == "sukses"
	return result
}

func post(client *http.Client, url, apiKey string, body WebhookRequest) (*Response, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: undecodable body", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, out.Message)
	}
	return &out, resp.StatusCode, nil
}

func record(stats *TestStats, result TestResult) {
	stats.Lock.Lock()
	defer stats.Lock.Unlock()

	stats.ScenarioStats[result.Scenario]++
	stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
	if result.Success {
		stats.SuccessfulRequests++
	} else {
		stats.FailedRequests++
		msg := "unknown"
		if result.Error != nil {
			msg = result.Error.Error()
		}
		stats.ErrorCounts[msg]++
	}
	if result.Settled {
		stats.SettledPayments++
	} else if result.Success {
		stats.PendingAmounts[result.Amount]++
	}
}

func printResults(stats *TestStats) {
	tps := float64(stats.SuccessfulRequests) / stats.TotalTime.Seconds()

	sorted := append([]time.Duration(nil), stats.ResponseTimes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	percentile := func(p int) time.Duration {
		if len(sorted) == 0 {
			return 0
		}
		return sorted[len(sorted)*p/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Payments:      %d\n", stats.TotalRequests)
	fmt.Printf("Created:             %d\n", stats.SuccessfulRequests)
	fmt.Printf("Failed:              %d\n", stats.FailedRequests)
	fmt.Printf("Settled:             %d\n", stats.SettledPayments)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Create TPS:          %.2f\n", tps)

	fmt.Println("\n----------------- CREATE LATENCY -----------------")
	fmt.Printf("P50:                 %v\n", percentile(50))
	fmt.Printf("P90:                 %v\n", percentile(90))
	fmt.Printf("P99:                 %v\n", percentile(99))

	// one merchant never holds two pending payments with the same amount
	duplicates := 0
	for amount, count := range stats.PendingAmounts {
		if count > 1 {
			duplicates++
			fmt.Printf("DUPLICATE pending amount %d (%d payments)\n", amount, count)
		}
	}
	fmt.Printf("Duplicate amounts:   %d\n", duplicates)

	fmt.Println("\n----------------- SCENARIOS -----------------")
	for name, count := range stats.ScenarioStats {
		fmt.Printf("%-15s: %d\n", name, count)
	}

	if stats.FailedRequests > 0 {
		fmt.Println("\n----------------- ERRORS -----------------")
		for msg, count := range stats.ErrorCounts {
			fmt.Printf("%-50s: %d\n", msg, count)
		}
	}
}
