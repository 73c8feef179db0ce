package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mailrelay-systems/mailrelay-stack/common/models"
)

// APIClient talks to the relay API service.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SendMessage submits one message record with the given token and returns the
// queue-assigned message ID.
func (c *APIClient) SendMessage(token string, record map[string]string) (string, error) {
	data := make(map[string]json.RawMessage, len(record))
	for k, v := range record {
		raw, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		data[k] = raw
	}

	body, err := json.Marshal(models.Envelope{
		Data:  data,
		Token: &token,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/message", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return "", fmt.Errorf("send failed with status %d: %s", resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("send failed with status %d", resp.StatusCode)
	}

	var submitResp models.SubmitResponse
	if err := json.Unmarshal(respBody, &submitResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return submitResp.MessageID, nil
}

// Health checks the API health endpoint.
func (c *APIClient) Health() error {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}
