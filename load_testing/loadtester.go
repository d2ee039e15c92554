package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL     = "http://localhost:8080"
	numRequests = 1000
	concurrent  = 50
	targetRPS   = 100
	duration    = 30 * time.Second

	numTrainees = 5
)

type LoadTestResult struct {
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	TotalDuration      time.Duration
	AvgResponseTime    time.Duration
	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	P50ResponseTime    time.Duration
	P95ResponseTime    time.Duration
	P99ResponseTime    time.Duration
	ErrorRate          float64
	RequestsPerSecond  float64
	ResponseTimes      []time.Duration
	StatusCodes        map[int]int64
	EndpointStats      map[string]*EndpointStat
}

type EndpointStat struct {
	Total       int64
	Success     int64
	Failed      int64
	StatusCodes map[int]int64
}

type RequestResult struct {
	Success      bool
	ResponseTime time.Duration
	StatusCode   int
	Error        error
	Endpoint     string
}

func main() {
	fmt.Println("=== SERVICE LOAD TEST ===")
	fmt.Printf("Base URL: %s\n", baseURL)
	fmt.Printf("Requests: %d\n", numRequests)
	fmt.Printf("Concurrency: %d\n", concurrent)
	fmt.Printf("Target RPS: %d\n", targetRPS)
	fmt.Printf("Duration: %v\n\n", duration)

	fmt.Println("Seeding test data...")
	createTestData()
	fmt.Println("Test data ready.")
	fmt.Println()

	result := runLoadTest()

	printResults(result)
}

func traineeUsername(i int) string {
	return fmt.Sprintf("load_trainee_%d", i)
}

func assessmentName(i int) string {
	return fmt.Sprintf("Load Assessment %d", i)
}

func seedCommit(i int) string {
	return fmt.Sprintf("seed_commit_%d", i)
}

// createTestData registers trainees and reviewers, upserts one
// assessment per trainee, opens entries and records a passing commit,
// so that every endpoint in the mix has live data to hit.
func createTestData() {
	client := &http.Client{Timeout: 5 * time.Second}

	post := func(path string, payload map[string]interface{}) map[string]interface{} {
		body, _ := json.Marshal(payload)
		req, _ := http.NewRequest("POST", baseURL+path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil || resp == nil {
			return nil
		}
		defer resp.Body.Close()
		var decoded map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
		return decoded
	}

	for i := 0; i < 3; i++ {
		username := fmt.Sprintf("load_reviewer_%d", i)
		post("/users/register", map[string]interface{}{
			"githubUsername": username,
			"name":           fmt.Sprintf("Reviewer %d", i),
			"email":          username + "@example.com",
		})
		post("/reviewers/add", map[string]interface{}{
			"username": username,
		})
	}

	for i := 0; i < numTrainees; i++ {
		username := traineeUsername(i)
		userResp := post("/users/register", map[string]interface{}{
			"githubUsername": username,
			"name":           fmt.Sprintf("Trainee %d", i),
			"email":          username + "@example.com",
		})
		assessmentResp := post("/assessments/upsert", map[string]interface{}{
			"name":           assessmentName(i),
			"reviewRequired": true,
		})

		userID := nestedString(userResp, "user", "userId")
		assessmentID := nestedString(assessmentResp, "assessment", "assessmentId")
		if userID == "" || assessmentID == "" {
			continue
		}

		post("/tracker/init", map[string]interface{}{
			"userId":       userID,
			"assessmentId": assessmentID,
		})
		post("/tracker/commit", map[string]interface{}{
			"username":       username,
			"assessmentName": assessmentName(i),
			"commit":         seedCommit(i),
			"log":            "seed commit",
		})
		post("/tracker/check", map[string]interface{}{
			"commit": seedCommit(i),
			"passed": true,
		})

		if i < numTrainees-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func nestedString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys[:len(keys)-1] {
		next, ok := m[key].(map[string]interface{})
		if !ok {
			return ""
		}
		m = next
	}
	s, _ := m[keys[len(keys)-1]].(string)
	return s
}

func runLoadTest() *LoadTestResult {
	var (
		totalRequests   int64
		successful      int64
		failed          int64
		responseTimes   = make([]time.Duration, 0, numRequests)
		statusCodes     = make(map[int]int64)
		endpointStats   = make(map[string]*EndpointStat)
		responseTimesMu sync.Mutex
		statusCodesMu   sync.Mutex
		endpointStatsMu sync.Mutex
		wg              sync.WaitGroup
	)

	semaphore := make(chan struct{}, concurrent)
	ticker := time.NewTicker(time.Second / time.Duration(targetRPS))
	defer ticker.Stop()

	startTime := time.Now()

	stopCh := make(chan struct{})
	go func() {
		<-time.After(duration)
		close(stopCh)
	}()

	requestNum := int64(0)

	for {
		select {
		case <-stopCh:
			ticker.Stop()
			goto waitForCompletion
		case <-ticker.C:
			atomic.AddInt64(&requestNum, 1)
			if atomic.LoadInt64(&requestNum) > numRequests {
				ticker.Stop()
				goto waitForCompletion
			}

			wg.Add(1)
			semaphore <- struct{}{}

			go func(reqNum int64) {
				defer wg.Done()
				defer func() { <-semaphore }()

				result := makeRequest(reqNum)
				atomic.AddInt64(&totalRequests, 1)

				responseTimesMu.Lock()
				responseTimes = append(responseTimes, result.ResponseTime)
				responseTimesMu.Unlock()

				statusCodesMu.Lock()
				statusCodes[result.StatusCode]++
				statusCodesMu.Unlock()

				endpointStatsMu.Lock()
				if endpointStats[result.Endpoint] == nil {
					endpointStats[result.Endpoint] = &EndpointStat{
						StatusCodes: make(map[int]int64),
					}
				}
				stat := endpointStats[result.Endpoint]
				stat.Total++
				stat.StatusCodes[result.StatusCode]++
				if result.Success {
					stat.Success++
					atomic.AddInt64(&successful, 1)
				} else {
					stat.Failed++
					atomic.AddInt64(&failed, 1)
				}
				endpointStatsMu.Unlock()
			}(requestNum)
		}
	}

waitForCompletion:
	wg.Wait()
	totalTime := time.Since(startTime)

	responseTimesMu.Lock()
	sort.Slice(responseTimes, func(i, j int) bool {
		return responseTimes[i] < responseTimes[j]
	})
	responseTimesMu.Unlock()

	result := &LoadTestResult{
		TotalRequests:      totalRequests,
		SuccessfulRequests: successful,
		FailedRequests:     failed,
		TotalDuration:      totalTime,
		ResponseTimes:      responseTimes,
		StatusCodes:        statusCodes,
		EndpointStats:      endpointStats,
	}

	if totalRequests > 0 {
		var totalDuration int64
		for _, rt := range responseTimes {
			totalDuration += rt.Nanoseconds()
		}
		result.AvgResponseTime = time.Duration(totalDuration / totalRequests)
		result.ErrorRate = float64(failed) / float64(totalRequests)
		result.RequestsPerSecond = float64(totalRequests) / totalTime.Seconds()

		if len(responseTimes) > 0 {
			result.MinResponseTime = responseTimes[0]
			result.MaxResponseTime = responseTimes[len(responseTimes)-1]
			result.P50ResponseTime = percentile(responseTimes, 50)
			result.P95ResponseTime = percentile(responseTimes, 95)
			result.P99ResponseTime = percentile(responseTimes, 99)
		}
	}

	return result
}

func makeRequest(reqNum int64) RequestResult {
	start := time.Now()

	endpoint := selectEndpoint(reqNum)
	method, url, body := endpoint()

	endpointPath := extractEndpointPath(url)

	var req *http.Request
	var err error

	if body != nil {
		req, err = http.NewRequest(method, url, bytes.NewBuffer(body))
		if err != nil {
			return RequestResult{
				Success:      false,
				ResponseTime: time.Since(start),
				Error:        err,
			}
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, url, nil)
		if err != nil {
			return RequestResult{
				Success:      false,
				ResponseTime: time.Since(start),
				Error:        err,
			}
		}
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	resp, err := client.Do(req)
	responseTime := time.Since(start)

	if err != nil {
		return RequestResult{
			Success:      false,
			ResponseTime: responseTime,
			Error:        err,
			StatusCode:   0,
			Endpoint:     endpointPath,
		}
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	return RequestResult{
		Success:      success,
		ResponseTime: responseTime,
		StatusCode:   resp.StatusCode,
		Endpoint:     endpointPath,
	}
}

func extractEndpointPath(url string) string {

	if idx := strings.Index(url, "://"); idx != -1 {
		url = url[idx+3:]
	}

	if idx := strings.Index(url, "/"); idx != -1 {
		path := url[idx:]
		if queryIdx := strings.Index(path, "?"); queryIdx != -1 {
			return path[:queryIdx]
		}
		return path
	}
	return url
}

type EndpointFunc func() (method string, url string, body []byte)

func selectEndpoint(reqNum int64) EndpointFunc {
	trainee := int(reqNum % numTrainees)
	mod := reqNum % 10

	switch mod {
	case 0, 1, 2:
		// GET /tracker/entry - 30%
		return func() (string, string, []byte) {
			return "GET", fmt.Sprintf("%s/tracker/entry?commit=%s", baseURL, seedCommit(trainee)), nil
		}
	case 3, 4:
		// POST /tracker/commit - 20%, re-records the seeded commit
		return func() (string, string, []byte) {
			req := map[string]interface{}{
				"username":       traineeUsername(trainee),
				"assessmentName": assessmentName(trainee),
				"commit":         seedCommit(trainee),
				"log":            fmt.Sprintf("load push #%d", reqNum),
			}
			body, _ := json.Marshal(req)
			return "POST", fmt.Sprintf("%s/tracker/commit", baseURL), body
		}
	case 5, 6:
		// POST /tracker/check - 20%
		return func() (string, string, []byte) {
			req := map[string]interface{}{
				"commit": seedCommit(trainee),
				"passed": true,
			}
			body, _ := json.Marshal(req)
			return "POST", fmt.Sprintf("%s/tracker/check", baseURL), body
		}
	case 7:
		// POST /tracker/requestReview - 10%, conflicts after the first
		// success are part of the expected traffic shape
		return func() (string, string, []byte) {
			req := map[string]interface{}{
				"commit": seedCommit(trainee),
			}
			body, _ := json.Marshal(req)
			return "POST", fmt.Sprintf("%s/tracker/requestReview", baseURL), body
		}
	case 8:
		// GET /reviewers/list - 10%
		return func() (string, string, []byte) {
			return "GET", fmt.Sprintf("%s/reviewers/list", baseURL), nil
		}
	case 9:
		// GET /assessments/list - 10%
		return func() (string, string, []byte) {
			return "GET", fmt.Sprintf("%s/assessments/list", baseURL), nil
		}
	default:
		return func() (string, string, []byte) {
			return "GET", fmt.Sprintf("%s/assessments/list", baseURL), nil
		}
	}
}

func percentile(sortedTimes []time.Duration, p int) time.Duration {
	if len(sortedTimes) == 0 {
		return 0
	}
	index := (p * len(sortedTimes)) / 100
	if index >= len(sortedTimes) {
		index = len(sortedTimes) - 1
	}
	return sortedTimes[index]
}

func printResults(result *LoadTestResult) {
	fmt.Println("=== LOAD TEST RESULTS ===")
	fmt.Println()

	fmt.Printf("Overall:\n")
	fmt.Printf("  Total requests:      %d\n", result.TotalRequests)
	fmt.Printf("  Successful:          %d\n", result.SuccessfulRequests)
	fmt.Printf("  Failed:              %d\n", result.FailedRequests)
	fmt.Printf("  Error rate:          %.2f%%\n", result.ErrorRate*100)
	fmt.Printf("  Total duration:      %v\n", result.TotalDuration)
	fmt.Printf("  Requests per second: %.2f RPS\n\n", result.RequestsPerSecond)

	fmt.Printf("Response time:\n")
	fmt.Printf("  Min:          %v\n", result.MinResponseTime)
	fmt.Printf("  Avg:          %v\n", result.AvgResponseTime)
	fmt.Printf("  Max:          %v\n", result.MaxResponseTime)
	fmt.Printf("  P50 (median): %v\n", result.P50ResponseTime)
	fmt.Printf("  P95:          %v\n", result.P95ResponseTime)
	fmt.Printf("  P99:          %v\n\n", result.P99ResponseTime)

	fmt.Printf("HTTP status code distribution:\n")
	sortedCodes := make([]int, 0, len(result.StatusCodes))
	for code := range result.StatusCodes {
		sortedCodes = append(sortedCodes, code)
	}
	sort.Ints(sortedCodes)
	for _, code := range sortedCodes {
		count := result.StatusCodes[code]
		percentage := float64(count) / float64(result.TotalRequests) * 100
		fmt.Printf("  %d: %d (%.2f%%)\n", code, count, percentage)
	}
	fmt.Println()

	fmt.Printf("Per endpoint:\n")
	sortedEndpoints := make([]string, 0, len(result.EndpointStats))
	for endpoint := range result.EndpointStats {
		sortedEndpoints = append(sortedEndpoints, endpoint)
	}
	sort.Strings(sortedEndpoints)
	for _, endpoint := range sortedEndpoints {
		stat := result.EndpointStats[endpoint]
		successRate := float64(stat.Success) / float64(stat.Total) * 100
		fmt.Printf("  %s:\n", endpoint)
		fmt.Printf("    Total: %d, Success: %d, Failed: %d (%.2f%% success)\n",
			stat.Total, stat.Success, stat.Failed, successRate)
		sortedStatCodes := make([]int, 0, len(stat.StatusCodes))
		for code := range stat.StatusCodes {
			sortedStatCodes = append(sortedStatCodes, code)
		}
		sort.Ints(sortedStatCodes)
		for _, code := range sortedStatCodes {
			fmt.Printf("      %d: %d\n", code, stat.StatusCodes[code])
		}
	}
	fmt.Println()

	fmt.Println("=== PERFORMANCE ASSESSMENT ===")
	fmt.Println()

	if result.P95ResponseTime < 300*time.Millisecond {
		fmt.Printf("PASS response time (P95 < 300ms): %.2fms\n", float64(result.P95ResponseTime.Nanoseconds())/1e6)
	} else {
		fmt.Printf("FAIL response time (P95 < 300ms): %.2fms\n", float64(result.P95ResponseTime.Nanoseconds())/1e6)
	}

	if result.ErrorRate < 0.001 {
		fmt.Printf("PASS success rate (> 99.9%%): %.4f%% errors\n", result.ErrorRate*100)
	} else {
		fmt.Printf("FAIL success rate (> 99.9%%): %.4f%% errors\n", result.ErrorRate*100)
	}

	if result.RequestsPerSecond >= float64(targetRPS)*0.8 {
		fmt.Printf("PASS throughput: %.2f RPS\n", result.RequestsPerSecond)
	} else {
		fmt.Printf("FAIL throughput: %.2f RPS (target: %.2f RPS)\n", result.RequestsPerSecond, float64(targetRPS))
	}

	fmt.Println()
	fmt.Println("=== TEST COMPLETE ===")
}
