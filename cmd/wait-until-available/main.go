package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// Polls the health endpoint of a locally running notebook until it answers with 200 OK. The
// port is taken from the PORT environment variable and defaults to 8080.
//
// Usage example on the command line:
// > PORT=8080 go run main.go
func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := resty.New().SetTimeout(5 * time.Second)

	totalWaitTime := 0
	for {
		res, err := client.R().Get(url)
		if err == nil {
			fmt.Println(url, res.Status(), res.String())
			if res.StatusCode() == http.StatusOK {
				break
			}
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds\n", totalWaitTime)
		time.Sleep(5 * time.Second)
	}
}
