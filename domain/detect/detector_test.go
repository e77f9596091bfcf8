package detect

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testFrame() *image.RGBA { return image.NewRGBA(image.Rect(0, 0, 16, 16)) }

func TestClient_FiltersNonPersonsAndLowConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/detect" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing frame file: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string][]Detection{
			"detections": {
				{X1: 10, Y1: 20, X2: 110, Y2: 220, Class: "person", Confidence: 0.92},
				{X1: 1, Y1: 2, X2: 3, Y2: 4, Class: "person", Confidence: 0.31},
				{X1: 5, Y1: 6, X2: 7, Y2: 8, Class: "dog", Confidence: 0.99},
				{X1: 30, Y1: 40, X2: 50, Y2: 60, Class: "person", Confidence: 0.55},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	boxes, err := c.Detect(testFrame())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(boxes) != 2 {
		t.Fatalf("expected 2 person boxes, got %d: %v", len(boxes), boxes)
	}
	if boxes[0].X1 != 10 || boxes[0].Y2 != 220 {
		t.Fatalf("unexpected first box %+v", boxes[0])
	}
}

func TestClient_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"detections":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	boxes, err := c.Detect(testFrame())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(boxes) != 0 {
		t.Fatalf("expected empty result, got %v", boxes)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.Detect(testFrame()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestClient_NilFrame(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil)
	if _, err := c.Detect(nil); err == nil {
		t.Fatal("expected error for nil frame")
	}
}

func TestClient_Health(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil) // trailing slash must be tolerated
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	healthy = false
	if err := c.Health(context.Background()); err == nil {
		t.Fatal("expected unhealthy error")
	}
}
