package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Client talks to the FCM legacy HTTP API. BaseURL is overridable so the
// mock provider can stand in during local runs.
type Client struct {
	ServerKey string
	HTTP      *http.Client
	BaseURL   string
}

type SendRequest struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type sendPayload struct {
	To           string            `json:"to"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type SendResponse struct {
	Success int          `json:"success"`
	Failure int          `json:"failure"`
	Results []SendResult `json:"results"`
}

type SendResult struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

func (c *Client) Send(ctx context.Context, req SendRequest) (SendResponse, int, []byte, error) {
	payload := sendPayload{
		To:           req.Token,
		Notification: notification{Title: req.Title, Body: req.Body},
		Data:         req.Data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return SendResponse{}, 0, nil, err
	}

	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://fcm.googleapis.com"
	}
	endpoint := baseURL + "/fcm/send"
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "key="+c.ServerKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return SendResponse{}, 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)

	var out SendResponse
	_ = json.Unmarshal(b, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, resp.StatusCode, b, errors.New("fcm send failed")
	}
	if out.Failure > 0 && out.Success == 0 {
		reason := "fcm rejected message"
		if len(out.Results) > 0 && out.Results[0].Error != "" {
			reason = out.Results[0].Error
		}
		return out, resp.StatusCode, b, errors.New(reason)
	}
	return out, resp.StatusCode, b, nil
}
