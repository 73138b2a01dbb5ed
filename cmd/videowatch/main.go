// Command videowatch submits a prompt to a running adMat service and polls
// its progress endpoint until the generation finishes, printing status
// changes to the terminal.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fozagtx/adMat/internal/domain"
	"github.com/fozagtx/adMat/internal/poller"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", "http://localhost:8080", "base URL of the adMat service")
	prompt := flag.String("prompt", "", "prompt to submit; omit to watch an existing id")
	id := flag.String("id", "", "existing video id to watch")
	interval := flag.Duration("interval", time.Second, "polling cadence")
	flag.Parse()

	if *prompt == "" && *id == "" {
		fmt.Fprintln(os.Stderr, "either -prompt or -id is required")
		os.Exit(2)
	}

	api := &apiClient{baseURL: strings.TrimRight(*server, "/"), http: &http.Client{}}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	videoID := *id
	if *prompt != "" {
		rec, err := api.submit(ctx, *prompt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
			os.Exit(1)
		}
		videoID = rec.ID
		fmt.Printf("Submitted %s (%s)\n", rec.ID, rec.Status)
	}

	done := make(chan error, 1)
	var lastLine string
	p := poller.New(api, *interval, poller.Observer{
		OnProgress: func(progress domain.GenerationProgress) {
			line := fmt.Sprintf("Status: %s (%d%%) %s", progress.Status, progress.Progress, progress.CurrentStep)
			if line != lastLine {
				fmt.Println(line)
				lastLine = line
			}
		},
		OnComplete: func(progress domain.GenerationProgress) {
			fmt.Printf("Done: %s/download?id=%s\n", api.baseURL, url.QueryEscape(progress.ID))
			done <- nil
		},
		OnError: func(err error) {
			if errors.Is(err, poller.ErrGenerationFailed) {
				done <- err
				return
			}
			fmt.Fprintf(os.Stderr, "poll error: %v\n", err)
		},
	})

	p.Start(videoID)
	defer p.Stop()

	select {
	case <-ctx.Done():
		fmt.Println("interrupted")
	case err := <-done:
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
}

// apiClient is a thin client for the service's own HTTP surface. It doubles
// as the poller's Fetcher.
type apiClient struct {
	baseURL string
	http    *http.Client
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *apiClient) submit(ctx context.Context, prompt string) (*domain.VideoRecord, error) {
	body, err := json.Marshal(domain.VideoGenerationRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var rec domain.VideoRecord
	if err := c.call(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *apiClient) FetchProgress(ctx context.Context, id string) (*domain.GenerationProgress, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/progress?id="+url.QueryEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var progress domain.GenerationProgress
	if err := c.call(req, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (c *apiClient) call(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = envelope.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s", msg)
	}
	return json.Unmarshal(envelope.Data, out)
}
