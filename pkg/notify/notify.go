package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// StatusChange is sent when an evaluation moves a batch to a new status.
type StatusChange struct {
	BatchID      uint      `json:"batch_id"`
	BatchCode    string    `json:"batch_code"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	EvaluationID uint      `json:"evaluation_id"`
	Result       string    `json:"result"`
	ActorID      string    `json:"actor_id"`
	At           time.Time `json:"at"`
}

type Notifier interface {
	BatchStatusChanged(ctx context.Context, ev StatusChange) error
}

type logNotifier struct{}

func NewLog() Notifier { return logNotifier{} }

func (logNotifier) BatchStatusChanged(_ context.Context, ev StatusChange) error {
	log.Printf("[notify] batch %d (%s) %s -> %s by evaluation %d", ev.BatchID, ev.BatchCode, ev.FromStatus, ev.ToStatus, ev.EvaluationID)
	return nil
}

type webhook struct {
	url  string
	http *http.Client
}

// NewWebhook posts each event as JSON to url.
func NewWebhook(url string) Notifier {
	return &webhook{url: strings.TrimSpace(url), http: &http.Client{Timeout: 5 * time.Second}}
}

func (w *webhook) BatchStatusChanged(ctx context.Context, ev StatusChange) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("webhook %s: status %d", w.url, resp.StatusCode)
	}
	return nil
}

type async struct{ next Notifier }

// Async delivers in a background goroutine and only logs failures; callers
// never wait for delivery.
func Async(n Notifier) Notifier { return async{next: n} }

func (a async) BatchStatusChanged(_ context.Context, ev StatusChange) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.next.BatchStatusChanged(ctx, ev); err != nil {
			log.Printf("[notify] batch %d: %v", ev.BatchID, err)
		}
	}()
	return nil
}
