package ring

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/coffee-ring/internal/config"
	"github.com/ironsheep/coffee-ring/internal/imaging"
	"github.com/ironsheep/coffee-ring/internal/synth"
)

// testConfig returns defaults tuned to the 400x400 synthetic droplets: a
// small smoothing scale keeps the 10 px band edges sharp and a smaller
// padding keeps the crops quick.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Localizer.CannySigma = 3
	cfg.Localizer.CropPadding = 40
	return cfg
}

// cropAroundCenter crops a droplet raster to a square of the given half-width
// around its true center.
func cropAroundCenter(t *testing.T, d synth.Droplet, half int) *mat.Dense {
	t.Helper()
	cx, cy := int(d.CX), int(d.CY)
	region, err := imaging.Crop(d.Raster(), image.Rect(cx-half, cy-half, cx+half, cy+half))
	if err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	return region
}

// writePNG encodes img into dir and returns its path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}
