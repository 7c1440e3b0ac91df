package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"farmpulse/internal/models"
	"farmpulse/internal/scheduler"
)

// Client talks to a running farmpulse daemon's operational API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient() (*Client, error) {
	baseURL := os.Getenv("FARMPULSE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	token := os.Getenv("FARMPULSE_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("FARMPULSE_API_TOKEN environment variable is not set")
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (c *Client) SchedulerStatus() (*scheduler.Status, error) {
	var status scheduler.Status
	if err := c.do(http.MethodGet, "/api/v1/scheduler/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) StartScheduler() (*scheduler.Status, error) {
	var status scheduler.Status
	if err := c.do(http.MethodPost, "/api/v1/scheduler/start", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) StopScheduler() (*scheduler.Status, error) {
	var status scheduler.Status
	if err := c.do(http.MethodPost, "/api/v1/scheduler/stop", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) RunSchedule(id uint) (*scheduler.Result, error) {
	var res scheduler.Result
	if err := c.do(http.MethodPost, fmt.Sprintf("/api/v1/scheduler/run/%d", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListSchedules() ([]models.ReportSchedule, error) {
	var scheds []models.ReportSchedule
	if err := c.do(http.MethodGet, "/api/v1/schedules", nil, &scheds); err != nil {
		return nil, err
	}
	return scheds, nil
}

func (c *Client) ScheduleHistory(id uint, limit int) ([]models.ReportHistoryEntry, error) {
	path := fmt.Sprintf("/api/v1/schedules/%d/history", id)
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var entries []models.ReportHistoryEntry
	if err := c.do(http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) ScheduleAnalytics(id uint) (*models.ReportAnalyticsSnapshot, error) {
	var snap models.ReportAnalyticsSnapshot
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/schedules/%d/analytics", id), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
