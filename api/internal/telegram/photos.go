package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tamil-inscription/api/internal/pipeline"
)

const maxDownloadBytes = 20 << 20

// acceptPhoto collects album pages and runs the pipeline once the album
// stops growing for Debounce.
func (r *Router) acceptPhoto(msg *tgbotapi.Message, fileID string) {
	cid := msg.Chat.ID
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		r.SendError(cid, err)
		return
	}
	img, err := download(context.Background(), url)
	if err != nil {
		r.SendError(cid, fmt.Errorf("download: %w", err))
		return
	}

	key := fmt.Sprintf("chat:%d", cid)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}
	debounce := r.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	var first bool
	for {
		bi, _ := r.batches.LoadOrStore(key, &photoBatch{ChatID: cid, Key: key, images: make([][]byte, 0, 4)})
		b := bi.(*photoBatch)

		b.mu.Lock()
		if b.closed {
			// already handed to the pipeline; start a new batch
			b.mu.Unlock()
			r.batches.CompareAndDelete(key, b)
			continue
		}
		b.images = append(b.images, img)
		first = len(b.images) == 1
		if b.timer != nil {
			b.timer.Stop()
		}
		b.timer = time.AfterFunc(debounce, func() { r.processBatch(b) })
		b.mu.Unlock()
		break
	}

	if first {
		r.send(cid, "Photo received, reading the inscription…")
	}
}

func (r *Router) processBatch(b *photoBatch) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	images := append([][]byte(nil), b.images...)
	r.batches.CompareAndDelete(b.Key, b)
	b.mu.Unlock()

	if len(images) == 0 {
		return
	}
	img := images[0]
	if len(images) > 1 {
		merged, err := combineAsOne(images)
		if err != nil {
			r.SendError(b.ChatID, fmt.Errorf("merge album: %w", err))
			return
		}
		img = merged
	}
	r.translate(context.Background(), b.ChatID, pipeline.ImageInput(img))
}

// combineAsOne stacks pages vertically, centred on a white canvas, and
// scales the result below maxPixels.
func combineAsOne(images [][]byte) ([]byte, error) {
	decoded := make([]image.Image, 0, len(images))
	maxW, sumH := 0, 0
	for _, b := range images {
		img, err := tryDecodeStrict(b)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, img)
		maxW = max(maxW, img.Bounds().Dx())
		sumH += img.Bounds().Dy()
	}
	if maxW == 0 || sumH == 0 {
		return nil, errors.New("empty images")
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, sumH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	y := 0
	for _, img := range decoded {
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		x := (maxW - w) / 2
		draw.Draw(dst, image.Rect(x, y, x+w, y+h), img, img.Bounds().Min, draw.Over)
		y += h
	}

	final := image.Image(dst)
	if total := maxW * sumH; total > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(total))
		newW := max(1, int(float64(maxW)*scale+0.5))
		newH := max(1, int(float64(sumH)*scale+0.5))
		final = scaleDownNN(dst, newW, newH)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, final, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func tryDecodeStrict(b []byte) (image.Image, error) {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return jpeg.Decode(bytes.NewReader(b))
	}
	if len(b) >= 8 && bytes.Equal(b[:8], []byte("\x89PNG\r\n\x1a\n")) {
		return png.Decode(bytes.NewReader(b))
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	return img, err
}

func scaleDownNN(src image.Image, newW, newH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()
	for y := 0; y < newH; y++ {
		sy := sb.Min.Y + (y*srcH)/newH
		for x := 0; x < newW; x++ {
			sx := sb.Min.X + (x*srcW)/newW
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

func download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
}
