package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/hailam/chress/internal/board"
)

func TestSVG(t *testing.T) {
	b := board.NewBoard()
	var buf bytes.Buffer
	if err := SVG(&buf, &b, Options{Size: 320}); err != nil {
		t.Fatalf("SVG: %v", err)
	}
	out := buf.String()

	if strings.Count(out, "<rect") != 65 {
		t.Errorf("%d rects, want 64 squares and a background", strings.Count(out, "<rect"))
	}
	if strings.Count(out, "<circle") != 32 {
		t.Errorf("%d piece discs, want 32", strings.Count(out, "<circle"))
	}
	if !strings.Contains(out, board.StartFEN) {
		t.Error("title does not carry the FEN")
	}

	// The document must be well-formed XML.
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
	}
}

func TestLayout(t *testing.T) {
	l := newLayout(Options{Size: 400})
	if x, y := l.origin(board.A8); x != l.margin || y != l.margin {
		t.Errorf("a8 at (%d, %d), want top-left", x, y)
	}
	if x, y := l.origin(board.H1); x != l.margin+7*l.square || y != l.margin+7*l.square {
		t.Errorf("h1 at (%d, %d), want bottom-right", x, y)
	}

	f := newLayout(Options{Size: 400, Flipped: true})
	if x, y := f.origin(board.A1); x != f.margin+7*f.square || y != f.margin {
		t.Errorf("flipped a1 at (%d, %d), want top-right", x, y)
	}

	if l.squareColor(board.A1) != darkSquare || l.squareColor(board.H1) != lightSquare {
		t.Error("a1 must be dark and h1 light")
	}
	h := newLayout(Options{Highlight: []board.Square{board.E2, board.E4}})
	if h.size != DefaultSize || h.squareColor(board.E4) != highlightSquare {
		t.Error("highlight or default size not applied")
	}
}

func TestPNG(t *testing.T) {
	b := board.NewBoard()
	var buf bytes.Buffer
	if err := PNG(&buf, &b, Options{Size: 240}); err != nil {
		t.Fatalf("PNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bounds := img.Bounds(); bounds.Dx() != 240 || bounds.Dy() != 240 {
		t.Fatalf("image is %v, want 240x240", bounds)
	}

	l := newLayout(Options{Size: 240})
	// Sample an empty square near its corner, away from any disc.
	x, y := l.origin(board.E4)
	got := color.RGBAModel.Convert(img.At(x+2, y+2)).(color.RGBA)
	want := color.RGBA{0xf0, 0xd9, 0xb5, 0xff} // e4 is light
	if absDiff(got.R, want.R) > 8 || absDiff(got.G, want.G) > 8 || absDiff(got.B, want.B) > 8 {
		t.Errorf("e4 corner pixel %v, want about %v", got, want)
	}

	// A black piece disc is dark away from its letter.
	x, y = l.origin(board.D8)
	c := color.RGBAModel.Convert(img.At(x+l.square/2-l.square/3, y+l.square/2)).(color.RGBA)
	if c.R > 0x60 || c.G > 0x60 || c.B > 0x60 {
		t.Errorf("black disc pixel %v is not dark", c)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
