package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Measures the average latency in microseconds of the notebook's endpoints. Every round creates
// the given number of people through the HTML form endpoint, then updates, reads (JSON API) and
// finally deletes them in random order.
//
// Usage example on the command line:
// > PORT=8080 go run main.go
func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	client := resty.New().
		SetBaseURL("http://localhost:" + port).
		SetTimeout(10 * time.Second).
		// form submissions answer with a redirect that we want to see ourselves
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))

	form := map[string]string{
		"first_name":  "Marcus",
		"last_name":   "Antonius",
		"phone":       "+39 999 777 555",
		"birth_day":   "14",
		"birth_month": "1",
	}

	fmt.Println()
	fmt.Println("  Elements    CREATE    UPDATE       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	for _, loops := range []int{100, 500, 1000, 5000} {
		fmt.Printf("%10d", loops)
		ids := make([]int64, 0, loops)
		{
			var duration int64
			for i := 0; i < loops; i++ {
				id, d := createPerson(client, form)
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		callInLoop(ids, func(id int64) int64 {
			return send(client.R().SetFormData(form), http.MethodPost, fmt.Sprintf("/person/%d/update", id))
		})
		callInLoop(ids, func(id int64) int64 {
			return send(client.R(), http.MethodGet, fmt.Sprintf("/api/people/%d", id))
		})
		callInLoop(ids, func(id int64) int64 {
			return send(client.R(), http.MethodPost, fmt.Sprintf("/person/%d/delete", id))
		})
		fmt.Println()
	}
}

func callInLoop(ids []int64, f func(id int64) int64) {
	shuffled := append([]int64{}, ids...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

// createPerson submits the person form and reads the new id from the redirect location.
func createPerson(client *resty.Client, form map[string]string) (int64, int64) {
	before := time.Now().UnixNano()
	res, err := client.R().SetFormData(form).Post("/person/create")
	after := time.Now().UnixNano()
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	location := res.Header().Get("Location")
	id, err := strconv.ParseInt(strings.TrimPrefix(location, "/person/"), 10, 64)
	if err != nil {
		fmt.Println("unexpected redirect location", res.Status(), location)
		panic(err)
	}
	return id, after - before
}

func send(req *resty.Request, method string, url string) int64 {
	before := time.Now().UnixNano()
	res, err := req.Execute(method, url)
	after := time.Now().UnixNano()
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	if res.StatusCode() >= 400 {
		fmt.Println("unexpected status", method, url, res.Status())
		panic(res.Status())
	}
	return after - before
}
