package httputil

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

// NewHTTPRequest performs an http call and returns the status code with the
// raw response body. The REST providers only ever read, so GET is the single
// supported verb.
func NewHTTPRequest(method string, url string, bodyString string, header map[string]string) (int, string, error) {
	switch method {
	case "GET":
		return get(url, header)
	default:
		return 0, "", fmt.Errorf("verb not supported %s", method)
	}
}

func get(url string, header map[string]string) (int, string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, "", err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := ioutil.ReadAll(rs.Body)
	if err != nil {
		return 0, "", err
	}

	return rs.StatusCode, string(bodyBytes), nil
}
