package preview

import (
	"image"
	"testing"

	"github.com/camsentry/camsentry/domain/monitor"
)

func TestPublisher_LatestBeforeFirstFrame(t *testing.T) {
	p := NewPublisher(100, 100)
	if s := p.Latest(); s.Image != nil || s.Sequence != 0 {
		t.Fatalf("expected zero snapshot, got %+v", s)
	}
	if _, err := p.EncodePNG(); err == nil {
		t.Fatal("expected error encoding before first frame")
	}
}

func TestPublisher_AnnotatesAndStores(t *testing.T) {
	p := NewPublisher(100, 100)
	frame := image.NewRGBA(image.Rect(0, 0, 40, 30))
	boxes := []monitor.Box{{X1: 5, Y1: 5, X2: 20, Y2: 15}}
	p.OnFrame(frame, boxes)

	s := p.Latest()
	if s.Sequence != 1 {
		t.Fatalf("expected sequence 1, got %d", s.Sequence)
	}
	if len(s.Boxes) != 1 {
		t.Fatalf("expected boxes retained, got %v", s.Boxes)
	}
	rgba, ok := s.Image.(*image.RGBA)
	if !ok {
		t.Fatalf("small frame should not be resized, got %T", s.Image)
	}
	if got := rgba.RGBAAt(10, 5); got != boxColor {
		t.Fatalf("expected box outline at (10,5), got %v", got)
	}
	// The original frame must be untouched.
	if got := frame.RGBAAt(10, 5); got == boxColor {
		t.Fatal("source frame was mutated")
	}
	if data, err := p.EncodePNG(); err != nil || len(data) == 0 {
		t.Fatalf("encode png: %v (%d bytes)", err, len(data))
	}
}

func TestPublisher_DownscalesLargeFrames(t *testing.T) {
	p := NewPublisher(100, 50)
	p.OnFrame(image.NewRGBA(image.Rect(0, 0, 400, 100)), nil)
	s := p.Latest()
	b := s.Image.Bounds()
	if b.Dx() > 100 || b.Dy() > 50 {
		t.Fatalf("expected preview within 100x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPublisher_SequenceAdvances(t *testing.T) {
	p := NewPublisher(0, 0) // defaults
	frame := image.NewRGBA(image.Rect(0, 0, 8, 8))
	p.OnFrame(frame, nil)
	p.OnFrame(frame, nil)
	p.OnFrame(nil, nil) // ignored
	if s := p.Latest(); s.Sequence != 2 {
		t.Fatalf("expected sequence 2, got %d", s.Sequence)
	}
}

func TestDrawBox_ClipsToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	// A box reaching outside the frame must clip, not panic.
	drawBox(img, monitor.Box{X1: -5, Y1: 4, X2: 20, Y2: 25})
	if got := img.RGBAAt(5, 4); got != boxColor {
		t.Fatalf("expected clipped top edge drawn at (5,4), got %v", got)
	}
	if got := img.RGBAAt(5, 9); got == boxColor {
		t.Fatalf("bottom edge lies outside the frame and must not be drawn")
	}
}
