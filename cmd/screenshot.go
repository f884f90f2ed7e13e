package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/mj1618/winmatch/internal/imaging"
	"github.com/mj1618/winmatch/internal/output"
	"github.com/mj1618/winmatch/internal/platform"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a window's client area",
	Long: `Capture the client area of a window the same way a session does. Use it
to cut template images: crop the saved PNG and drop it into the profile's
template directory.

Examples:
  winmatch screenshot --window "Fantasy Game" --output shot.png
  winmatch screenshot --profile fight --luma --output luma.png`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().String("window", "", "Capture window by title substring")
	screenshotCmd.Flags().String("profile", "", "Capture the window of this profile")
	screenshotCmd.Flags().String("capture", "", "Capture method: window, screen (default: profile's, else window)")
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().String("format", "png", "Output format: png, jpg")
	screenshotCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
	screenshotCmd.Flags().Float64("scale", 1.0, "Scale factor 0.1-1.0 (templates must be cut at 1.0)")
	screenshotCmd.Flags().Bool("luma", false, "Save the grayscale luma plane the matcher sees")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetString("window")
	profile, _ := cmd.Flags().GetString("profile")
	captureFlag, _ := cmd.Flags().GetString("capture")
	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")
	scale, _ := cmd.Flags().GetFloat64("scale")
	luma, _ := cmd.Flags().GetBool("luma")

	if scale < 0.1 || scale > 1.0 {
		return fmt.Errorf("--scale must be between 0.1 and 1.0")
	}
	method, err := platform.ParseCaptureMethod(captureFlag)
	if err != nil {
		return err
	}
	if profile != "" {
		if window != "" {
			return fmt.Errorf("--window and --profile are mutually exclusive")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, opts, err := profileOptions(cfg, profile)
		if err != nil {
			return err
		}
		window = opts.WindowName
		if captureFlag == "" {
			method = opts.Capture
		}
	}

	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	win, err := findWindow(provider, window)
	if err != nil {
		return err
	}
	frame, err := provider.Capturer.CaptureClient(win.Handle, method)
	if err != nil {
		return fmt.Errorf("failed to capture window: %w", err)
	}

	var img image.Image = frame
	if luma {
		img = imaging.FromRGBA(frame).Gray()
	}
	img = scaleImage(img, scale)
	data, err := encodeImage(img, format, quality)
	if err != nil {
		return err
	}

	// Default: write to stdout as base64 for easy agent consumption
	if outPath == "" {
		return writeBase64(data)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return err
	}
	b := img.Bounds()
	return output.Print(output.ScreenshotResult{
		Window: win.Title,
		Path:   outPath,
		Width:  b.Dx(),
		Height: b.Dy(),
		Luma:   luma,
	})
}

// scaleImage resizes img by factor using Catmull-Rom resampling. A factor of
// 1 returns img unchanged.
func scaleImage(img image.Image, factor float64) image.Image {
	if factor >= 1.0 {
		return img
	}
	b := img.Bounds()
	w := max(int(float64(b.Dx())*factor), 1)
	h := max(int(float64(b.Dy())*factor), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// encodeImage encodes img as png or jpg.
func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
	case "jpg", "jpeg":
		if quality < 1 || quality > 100 {
			return nil, fmt.Errorf("--quality must be between 1 and 100")
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported image format: %s (expected png or jpg)", format)
	}
	return buf.Bytes(), nil
}

func writeBase64(data []byte) error {
	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
