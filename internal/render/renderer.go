package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/Cheese-chessroom-bot/internal/chess"
	"github.com/park285/Cheese-chessroom-bot/internal/obslog"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type Options struct {
	// Caption is drawn centred in the top margin, e.g. "White to move".
	Caption string
}

// Image is the product of one render call.
type Image struct {
	PNG     []byte
	SVGPath string
	PNGPath string
}

type BoardRenderer interface {
	Render(ctx context.Context, board *chess.Board, opts Options) (*Image, error)
}

// ScratchRenderer converts the board's vector image into a PNG through two
// fixed scratch files. Both files are overwritten on every call.
type ScratchRenderer struct {
	size    int
	svgPath string
	pngPath string

	mu sync.Mutex
}

func NewScratchRenderer(size int, svgPath, pngPath string) *ScratchRenderer {
	if strings.TrimSpace(svgPath) == "" {
		svgPath = filepath.Join("images", "chess.svg")
	}
	if strings.TrimSpace(pngPath) == "" {
		pngPath = filepath.Join("images", "chess.png")
	}
	return &ScratchRenderer{size: chess.GeometryFor(size).Size, svgPath: svgPath, pngPath: pngPath}
}

func (r *ScratchRenderer) Render(ctx context.Context, board *chess.Board, opts Options) (*Image, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeFile(r.svgPath, board.SVG(r.size)); err != nil {
		return nil, fmt.Errorf("write svg: %w", err)
	}

	img, err := rasterizeFile(r.svgPath, r.size)
	if err != nil {
		return nil, err
	}
	geo := chess.GeometryFor(r.size)
	drawCoordinates(img, geo)
	drawCaption(img, geo, opts.Caption)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	if err := writeFile(r.pngPath, pngBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("write png: %w", err)
	}

	obslog.L().Debug("render_done",
		zap.String("svg_path", r.svgPath),
		zap.String("png_path", r.pngPath),
		zap.Int("bytes", pngBuf.Len()),
	)
	return &Image{PNG: pngBuf.Bytes(), SVGPath: r.svgPath, PNGPath: r.pngPath}, nil
}

func rasterizeFile(path string, size int) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read svg: %w", err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG(data)))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, imagedraw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

var (
	coordinateTextColor = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	captionTextColor    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
)

func drawCoordinates(dst imagedraw.Image, geo chess.Geometry) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()

	for i := 0; i < 8; i++ {
		rank := nchess.Rank(7 - i)
		file := nchess.File(i)

		rankCenter := geo.Margin + i*geo.Square + geo.Square/2
		drawCenteredText(drawer, rank.String(), geo.Margin/2, rankCenter+ascent/2)

		fileCenter := geo.Margin + i*geo.Square + geo.Square/2
		fileBaseline := geo.Margin + 8*geo.Square + (geo.Margin+ascent)/2
		drawCenteredText(drawer, file.String(), fileCenter, fileBaseline)
	}
}

func drawCaption(dst imagedraw.Image, geo chess.Geometry, caption string) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return
	}
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(captionTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	drawCenteredText(drawer, caption, geo.Size/2, (geo.Margin+ascent)/2)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
