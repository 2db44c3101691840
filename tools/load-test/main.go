package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	url := flag.String("url", "http://localhost:8080/api/v1/attendance/check-in-out", "check-in/out endpoint")
	employees := flag.Int("employees", 5000, "employee ids 1..n, must exist in the employee service")
	perEmployee := flag.Int("requests", 2, "requests per employee; 2 is one check-in and one check-out")
	workers := flag.Int("concurrency", 50, "concurrent requests")
	flag.Parse()

	contentType := "application/json"
	numEmployees, requestsPerEmployee, concurrency := *employees, *perEmployee, *workers
	totalRequests := numEmployees * requestsPerEmployee

	fmt.Printf("Starting load test: %d employees (%d requests each) to %s with concurrency %d\n", numEmployees, requestsPerEmployee, *url, concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for i := 0; i < numEmployees; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		employeeID := int64(i + 1)

		go func(empID int64) {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			payload := []byte(fmt.Sprintf(`{"employee_id": %d}`, empID))

			for j := 0; j < requestsPerEmployee; j++ {
				// Create a new request for each iteration
				resp, err := http.Post(*url, contentType, bytes.NewBuffer(payload))
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					// fmt.Printf("Connection error: %v\n", err)
					continue
				}

				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					atomic.AddInt64(&successCount, 1)
				} else {
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
		}(employeeID)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
