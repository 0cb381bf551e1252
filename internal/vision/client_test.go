package vision

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestRecognizeFlatResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		prompt, _ := payload["prompt"].(string)
		if !strings.HasPrefix(prompt, "[img]") || !strings.Contains(prompt, "[/img]") {
			t.Errorf("prompt missing image markers: %.60s", prompt)
		}
		if payload["stream"] != false {
			t.Error("expected stream=false")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response": "Invoice #42\nTotal: $100",
			"done":     true,
		})
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Model: "test-vision"})
	defer client.Close()

	text, err := client.Recognize(context.Background(), testImage(), "read the page")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Invoice #42\nTotal: $100" {
		t.Fatalf("text = %q", text)
	}
}

func TestRecognizeSegmentedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"description": "Header text", "confidence": 0.98},
				{"description": "Body text", "confidence": 0.91},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Model: "test-vision"})
	defer client.Close()

	text, err := client.Recognize(context.Background(), testImage(), "read the page")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Header text\nBody text" {
		t.Fatalf("text = %q", text)
	}
}

func TestRecognizeErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "model not loaded"})
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Model: "test-vision"})
	defer client.Close()

	if _, err := client.Recognize(context.Background(), testImage(), "read"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRecognizeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{Endpoint: srv.URL, Model: "test-vision"})
	defer client.Close()

	if _, err := client.Recognize(context.Background(), testImage(), "read"); err == nil {
		t.Fatal("expected error")
	}
}
