package ipaddress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

var ErrMalformedResponse = errors.New("malformed ip lookup response")

// Service looks up the caller's public IP from an ipify-style endpoint
type Service struct {
	url    string
	client *http.Client
}

func NewService(url string, client *http.Client) *Service {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Service{url: url, client: client}
}

type ipResponse struct {
	IP string `json:"ip"`
}

// GetIPAddress returns the public IP. Any transport failure, non-2xx status
// or unparsable body is reported as an error; it never panics.
func (s *Service) GetIPAddress(ctx context.Context) (string, error) {
	ip, err := s.lookup(ctx)
	if err != nil {
		log.Printf("Failed to fetch IP address: %v", err)
		return "", err
	}
	return ip, nil
}

func (s *Service) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("building ip lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ip lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ip lookup responded %d", resp.StatusCode)
	}

	var body ipResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	ip := strings.TrimSpace(body.IP)
	if ip == "" {
		return "", fmt.Errorf("%w: empty ip", ErrMalformedResponse)
	}
	return ip, nil
}
