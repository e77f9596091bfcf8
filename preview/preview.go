// Package preview keeps the latest annotated frame available for polling by
// a front end: detection boxes drawn on, downscaled to a display bound.
package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/camsentry/camsentry/domain/monitor"
)

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

const boxThickness = 2

// Snapshot is one annotated frame with its detections.
type Snapshot struct {
	Image      image.Image
	Boxes      []monitor.Box
	CapturedAt time.Time
	Sequence   uint64
}

// Publisher implements monitor.FrameConsumer. OnFrame never blocks; it
// replaces the latest snapshot and lets slow readers simply miss frames.
type Publisher struct {
	maxW, maxH int
	latest     atomic.Pointer[Snapshot]
	frames     atomic.Uint64
}

// NewPublisher bounds the stored preview at maxW x maxH pixels.
func NewPublisher(maxW, maxH int) *Publisher {
	if maxW <= 0 {
		maxW = 800
	}
	if maxH <= 0 {
		maxH = 600
	}
	return &Publisher{maxW: maxW, maxH: maxH}
}

// OnFrame annotates and stores the frame as the latest snapshot.
func (p *Publisher) OnFrame(frame *image.RGBA, boxes []monitor.Box) {
	if frame == nil {
		return
	}
	annotated := cloneRGBA(frame)
	for _, b := range boxes {
		drawBox(annotated, b)
	}
	var img image.Image = annotated
	if b := annotated.Bounds(); b.Dx() > p.maxW || b.Dy() > p.maxH {
		img = imaging.Fit(annotated, p.maxW, p.maxH, imaging.NearestNeighbor)
	}
	p.latest.Store(&Snapshot{
		Image:      img,
		Boxes:      append([]monitor.Box(nil), boxes...),
		CapturedAt: time.Now(),
		Sequence:   p.frames.Add(1),
	})
}

// Latest returns the most recent snapshot, or a zero Snapshot before the
// first frame.
func (p *Publisher) Latest() Snapshot {
	if s := p.latest.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

// EncodePNG renders the latest snapshot as PNG bytes.
func (p *Publisher) EncodePNG() ([]byte, error) {
	s := p.latest.Load()
	if s == nil || s.Image == nil {
		return nil, errors.New("no frame published yet")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Image); err != nil {
		return nil, errors.Wrap(err, "encode preview")
	}
	return buf.Bytes(), nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := &image.RGBA{
		Pix:    append([]uint8(nil), src.Pix...),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	return dst
}

// drawBox outlines b on img, clipped to the image bounds.
func drawBox(img *image.RGBA, b monitor.Box) {
	for t := 0; t < boxThickness; t++ {
		hline(img, b.X1, b.X2, b.Y1+t)
		hline(img, b.X1, b.X2, b.Y2-t)
		vline(img, b.Y1, b.Y2, b.X1+t)
		vline(img, b.Y1, b.Y2, b.X2-t)
	}
}

func hline(img *image.RGBA, x1, x2, y int) {
	bounds := img.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := max(x1, bounds.Min.X); x <= min(x2, bounds.Max.X-1); x++ {
		img.SetRGBA(x, y, boxColor)
	}
}

func vline(img *image.RGBA, y1, y2, x int) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X {
		return
	}
	for y := max(y1, bounds.Min.Y); y <= min(y2, bounds.Max.Y-1); y++ {
		img.SetRGBA(x, y, boxColor)
	}
}
