package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/julianstephens/roadplan/internal/constants"
)

// WebhookPublisher POSTs events as JSON to an HTTP endpoint.
type WebhookPublisher struct {
	URL    string
	Secret string
	Client *http.Client
}

func (w *WebhookPublisher) Name() string { return "webhook" }

func (w *WebhookPublisher) Publish(ctx context.Context, e Event) error {
	jsonData, err := json.Marshal(e)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Secret != "" {
		req.Header.Set(constants.NotifySecretHeader, w.Secret)
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
}

func (w *WebhookPublisher) Close() error { return nil }
