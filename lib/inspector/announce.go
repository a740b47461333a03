package inspector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// AnnouncePresence posts the one-shot startup signal to whatever listener is
// registered at url. Fire and forget: a few retries, then errors are dropped.
func AnnouncePresence(ctx context.Context, url string, log *slog.Logger) {
	if url == "" {
		return
	}

	body, err := json.Marshal(map[string]bool{"setInPage": true})
	if err != nil {
		return
	}

	err = retry.New(
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	).Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("announce returned %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		log.Debug("[inspector] presence announce failed", "err", err)
	}
}
