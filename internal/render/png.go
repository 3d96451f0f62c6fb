package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"

	svg "github.com/ajstarks/svgo"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/chress/internal/board"
)

var (
	regularFont = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(goregular.TTF) })
	boldFont    = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(gobold.TTF) })
)

func newFace(f *opentype.Font, size int) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Image renders b into an RGBA image. Squares and piece discs are drawn
// from the SVG diagram; letters are drawn with the Go fonts.
func Image(b *board.Board, opts Options) (*image.RGBA, error) {
	l := newLayout(opts)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(l.size, l.size)
	canvas.Rect(0, 0, l.size, l.size, "fill:#ffffff")
	l.drawShapes(canvas, b)
	canvas.End()

	icon, err := oksvg.ReadIconStream(&buf, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}
	icon.SetTarget(0, 0, float64(l.size), float64(l.size))

	rgba := image.NewRGBA(image.Rect(0, 0, l.size, l.size))
	scanner := rasterx.NewScannerGV(l.size, l.size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(l.size, l.size, scanner)
	icon.Draw(raster, 1.0)

	if err := l.drawLetters(rgba, b); err != nil {
		return nil, err
	}
	return rgba, nil
}

func (l layout) drawLetters(dst *image.RGBA, b *board.Board) error {
	bold, err := boldFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	regular, err := regularFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	pieceFace, err := newFace(bold, l.square/2)
	if err != nil {
		return err
	}
	defer pieceFace.Close()
	labelFace, err := newFace(regular, max(6, l.margin*2/3))
	if err != nil {
		return err
	}
	defer labelFace.Close()

	for sq := board.A1; sq <= board.H8; sq++ {
		p := b.PieceAt(sq)
		if p == board.NoPiece {
			continue
		}
		x, y := l.origin(sq)
		ink := color.RGBA{0x22, 0x22, 0x22, 0xff}
		if p.Color() == board.Black {
			ink = color.RGBA{0xff, 0xff, 0xff, 0xff}
		}
		drawCentered(dst, pieceFace, ink, pieceLetter(p), x+l.square/2, y+l.square*2/3)
	}

	gray := color.RGBA{0x55, 0x55, 0x55, 0xff}
	for i := 0; i < 8; i++ {
		file, rank := i, i
		if l.flipped {
			file, rank = 7-i, 7-i
		}
		drawCentered(dst, labelFace, gray, string(rune('a'+file)), l.margin+i*l.square+l.square/2, l.size-l.margin/4)
		drawCentered(dst, labelFace, gray, string(rune('1'+rank)), l.margin/2, l.margin+(7-i)*l.square+l.square/2+l.margin/4)
	}
	return nil
}

// drawCentered draws s with its baseline at y, horizontally centered on x.
func drawCentered(dst *image.RGBA, face font.Face, c color.Color, s string, x, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	width := d.MeasureString(s).Round()
	d.Dot = fixed.P(x-width/2, y)
	d.DrawString(s)
}

// PNG writes the diagram of b to w as a PNG image.
func PNG(w io.Writer, b *board.Board, opts Options) error {
	img, err := Image(b, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
