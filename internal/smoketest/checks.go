package smoketest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// check is one named smoke check. It returns a short detail on success.
type check struct {
	name string
	run  func(ctx context.Context, c *client, cfg *Config) (string, error)
}

func checks() []check {
	return []check{
		{name: "upload and analyze", run: checkUploadAndAnalyze},
		{name: "invalid api key", run: checkInvalidKey},
		{name: "invalid file type", run: checkInvalidType},
		{name: "fake image content", run: checkFakeContent},
		{name: "unknown image id", run: checkUnknownID},
		{name: "file too large", run: checkTooLarge},
		{name: "concurrent uploads", run: checkConcurrentUploads},
	}
}

func checkUploadAndAnalyze(ctx context.Context, c *client, cfg *Config) (string, error) {
	id, err := uploadPNG(ctx, c, cfg.APIKey, "test_image.png")
	if err != nil {
		return "", err
	}

	resp, err := c.analyze(ctx, cfg.APIKey, id)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", fmt.Errorf("%w: analyze returned %d: %s", ErrUnexpected, resp.status, truncate(resp.body))
	}
	var result analysisResponse
	if err := resp.decode(&result); err != nil {
		return "", err
	}
	if result.ImageID != id || result.SkinType == "" || len(result.Issues) == 0 || result.Confidence <= 0 {
		return "", fmt.Errorf("%w: malformed analysis: %s", ErrUnexpected, truncate(resp.body))
	}
	return fmt.Sprintf("image %s: %s, %s, confidence %.2f",
		id, result.SkinType, strings.Join(result.Issues, ", "), result.Confidence), nil
}

func checkInvalidKey(ctx context.Context, c *client, _ *Config) (string, error) {
	resp, err := c.upload(ctx, "wrong-key", "", nil)
	if err != nil {
		return "", err
	}
	return expectError(resp, http.StatusForbidden, "unauthorized", "Could not validate credentials")
}

func checkInvalidType(ctx context.Context, c *client, cfg *Config) (string, error) {
	resp, err := c.upload(ctx, cfg.APIKey, "test.txt", []byte("This is not an image"))
	if err != nil {
		return "", err
	}
	return expectError(resp, http.StatusBadRequest, "unsupported_type", "Invalid file type")
}

func checkFakeContent(ctx context.Context, c *client, cfg *Config) (string, error) {
	resp, err := c.upload(ctx, cfg.APIKey, "fake.jpg", []byte("This is definitely not a JPEG image"))
	if err != nil {
		return "", err
	}
	return expectError(resp, http.StatusBadRequest, "content_mismatch", "Invalid file content")
}

func checkUnknownID(ctx context.Context, c *client, cfg *Config) (string, error) {
	resp, err := c.analyze(ctx, cfg.APIKey, "non_existent_id_123")
	if err != nil {
		return "", err
	}
	return expectError(resp, http.StatusNotFound, "not_found", "not found")
}

func checkTooLarge(ctx context.Context, c *client, cfg *Config) (string, error) {
	resp, err := c.upload(ctx, cfg.APIKey, "large_test.jpg", make([]byte, cfg.MaxSize+1))
	if err != nil {
		return "", err
	}
	return expectError(resp, http.StatusBadRequest, "file_too_large", "File too large")
}

// checkConcurrentUploads uploads cfg.Uploads images through cfg.Workers
// workers and verifies every id is distinct and immediately analyzable.
func checkConcurrentUploads(ctx context.Context, c *client, cfg *Config) (string, error) {
	if cfg.Uploads <= 0 {
		return "skipped", nil
	}

	jobs := make(chan int, cfg.Workers*2)
	var (
		mu       sync.Mutex
		ids      = make(map[string]struct{}, cfg.Uploads)
		firstErr error
		wg       sync.WaitGroup
	)

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				id, err := uploadPNG(ctx, c, cfg.APIKey, fmt.Sprintf("burst_%d.png", i))
				if err == nil {
					var resp response
					resp, err = c.analyze(ctx, cfg.APIKey, id)
					if err == nil && resp.status != http.StatusOK {
						err = fmt.Errorf("%w: analyze %s returned %d", ErrUnexpected, id, resp.status)
					}
				}

				mu.Lock()
				switch {
				case err != nil:
					if firstErr == nil {
						firstErr = err
					}
				default:
					if _, dup := ids[id]; dup && firstErr == nil {
						firstErr = fmt.Errorf("%w: duplicate image id %s", ErrUnexpected, id)
					}
					ids[id] = struct{}{}
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Uploads; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	if firstErr != nil {
		return "", firstErr
	}
	if len(ids) != cfg.Uploads {
		return "", fmt.Errorf("%w: %d of %d uploads completed", ErrUnexpected, len(ids), cfg.Uploads)
	}
	return fmt.Sprintf("%d distinct ids with %d workers", len(ids), cfg.Workers), nil
}

func uploadPNG(ctx context.Context, c *client, key, filename string) (string, error) {
	resp, err := c.upload(ctx, key, filename, testPNG)
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", fmt.Errorf("%w: upload returned %d: %s", ErrUnexpected, resp.status, truncate(resp.body))
	}
	var body struct {
		ImageID string `json:"image_id"`
	}
	if err := resp.decode(&body); err != nil {
		return "", err
	}
	if body.ImageID == "" {
		return "", fmt.Errorf("%w: upload returned no image_id", ErrUnexpected)
	}
	return body.ImageID, nil
}

func expectError(resp response, status int, code, substr string) (string, error) {
	if resp.status != status {
		return "", fmt.Errorf("%w: want %d, got %d: %s", ErrUnexpected, status, resp.status, truncate(resp.body))
	}
	var body errorResponse
	if err := resp.decode(&body); err != nil {
		return "", err
	}
	if body.Code != code || !strings.Contains(body.Message, substr) {
		return "", fmt.Errorf("%w: want %s containing %q, got %s: %q", ErrUnexpected, code, substr, body.Code, body.Message)
	}
	return fmt.Sprintf("%d %s", resp.status, body.Code), nil
}
