package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const transportTimeout = 10 * time.Second

type BatchNotification struct {
	NotificationID string `json:"notificationId"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	TargetURL      string `json:"targetUrl"`
	Token          string `json:"token"`
}

type BatchRequest struct {
	Notifications []BatchNotification `json:"notifications"`
}

type BatchSuccess struct {
	NotificationID string `json:"notificationId"`
}

type BatchFailure struct {
	NotificationID string `json:"notificationId"`
	Error          string `json:"error"`
}

// BatchResult is the destination's per-entry verdict on one batch.
type BatchResult struct {
	Successes []BatchSuccess `json:"successes"`
	Failures  []BatchFailure `json:"failures"`
}

// Sender delivers one batch to a destination URL.
type Sender interface {
	SendBatch(ctx context.Context, url string, batch BatchRequest) (*BatchResult, error)
}

// TransportClient posts notification batches to per-user destination
// endpoints. A non-2xx status or an unparseable body is a batch-level error;
// the dispatcher treats every entry in the batch as failed in that case.
type TransportClient struct {
	client *http.Client
}

func NewTransportClient() *TransportClient {
	return &TransportClient{
		client: &http.Client{Timeout: transportTimeout},
	}
}

func (t *TransportClient) SendBatch(ctx context.Context, url string, batch BatchRequest) (*BatchResult, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	var result BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode notification response: %w", err)
	}
	return &result, nil
}
