package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/camsentry/camsentry/domain/monitor"
)

const (
	personClass         = "person"
	confidenceThreshold = 0.5
)

// Detection is one raw detection as returned by the inference service.
type Detection struct {
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Class      string  `json:"class"`
	Confidence float32 `json:"confidence"`
}

// Client performs person detection through an external inference service over
// HTTP. Frames are posted as PNG; results below the confidence threshold or
// of a non-person class are filtered out. Implements monitor.PersonDetector.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient returns a detector client for the service at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
	}
}

// Detect posts frame to the inference service and returns the person boxes.
func (c *Client) Detect(frame *image.RGBA) ([]monitor.Box, error) {
	if frame == nil {
		return nil, errors.New("detect: nil frame")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "frame.png")
	if err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if err := png.Encode(part, frame); err != nil {
		return nil, errors.Wrap(err, "encode frame")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "finalize form")
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/detect", body)
	if err != nil {
		return nil, errors.Wrap(err, "create detect request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send detect request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Errorf("detect request failed with status %d", resp.StatusCode)
	}

	var result struct {
		Detections []Detection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode detect response")
	}

	var boxes []monitor.Box
	for _, d := range result.Detections {
		if d.Class != personClass || d.Confidence < confidenceThreshold {
			continue
		}
		boxes = append(boxes, monitor.Box{X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2})
	}
	if c.logger != nil {
		c.logger.Debug("detect", "raw", len(result.Detections), "persons", len(boxes))
	}
	return boxes, nil
}

// Health probes the inference service health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return errors.Wrap(err, "create health request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "detector health check")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("detector unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
