// Package screenshot saves rendered previews as timestamped PNG files.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capture writes images to dir as <prefix>_<timestamp>.png.
type Capture struct {
	dir    string
	prefix string
	now    func() time.Time
}

// New creates a capture handler. An empty dir means the working directory.
func New(dir, prefix string) *Capture {
	return &Capture{dir: dir, prefix: prefix, now: time.Now}
}

// SetPrefix changes the file name prefix, usually to the current model.
func (c *Capture) SetPrefix(prefix string) {
	c.prefix = prefix
}

// Save encodes img and returns the path written. Captures within the same
// second get a numeric suffix instead of overwriting each other.
func (c *Capture) Save(img image.Image) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("screenshot: empty image")
	}
	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	stem := fmt.Sprintf("%s_%s", c.prefix, c.now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(c.dir, stem+".png")
	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(c.dir, fmt.Sprintf("%s_%d.png", stem, i))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return path, nil
}
