package export

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// wmfMagic holds the two magic-byte prefixes WMF files come with
// (placeable and standard headers).
var wmfMagic = [][]byte{
	{0xd7, 0xcd, 0xc6, 0x9a},
	{0x01, 0x00, 0x09, 0x00},
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

// IsWMF reports whether data looks like a Windows Metafile.
func IsWMF(data []byte) bool {
	for _, magic := range wmfMagic {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	return false
}

// extForContentType maps a sniffed content type to a file extension.
func extForContentType(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "jpg"
	case strings.Contains(contentType, "gif"):
		return "gif"
	default:
		return "png"
	}
}

// writeImage saves image bytes to dir as image_NNN.<ext>. WMF data is run
// through the external conversion chain when the tools are present; the raw
// bytes are kept when they are not. Returns the final filename.
func writeImage(dir string, index int, data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create pictures dir: %w", err)
	}

	ext := extForContentType(contentType)
	name := fmt.Sprintf("image_%03d.%s", index, ext)
	path := filepath.Join(dir, name)

	if IsWMF(data) {
		pngName := fmt.Sprintf("image_%03d.png", index)
		pngPath := filepath.Join(dir, pngName)
		if convertWMF(data, pngPath) {
			return pngName, nil
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// convertWMF converts WMF bytes to PNG via LibreOffice and ImageMagick.
// Returns false when the tools are missing or the chain fails; the caller
// then keeps the original bytes.
func convertWMF(data []byte, outPath string) bool {
	soffice, err := exec.LookPath("soffice")
	if err != nil {
		if soffice, err = exec.LookPath("libreoffice"); err != nil {
			return convertWMFMagick(data, outPath)
		}
	}

	tmpDir, err := os.MkdirTemp("", "bookbuild-wmf-")
	if err != nil {
		return false
	}
	defer os.RemoveAll(tmpDir)

	wmfPath := filepath.Join(tmpDir, "image.wmf")
	if err := os.WriteFile(wmfPath, data, 0o644); err != nil {
		return false
	}

	cmd := exec.Command(soffice, "--headless", "--convert-to", "pdf", "--outdir", tmpDir, wmfPath)
	if err := runWithTimeout(cmd, 30*time.Second); err != nil {
		return convertWMFMagick(data, outPath)
	}

	pdfs, _ := filepath.Glob(filepath.Join(tmpDir, "*.pdf"))
	if len(pdfs) == 0 {
		return convertWMFMagick(data, outPath)
	}

	magick := magickCommand("-density", "150", pdfs[0], "-flatten", "-trim", "+repage", "png:"+outPath)
	if magick == nil {
		return false
	}
	if err := runWithTimeout(magick, 30*time.Second); err != nil {
		return false
	}
	return isPNGFile(outPath)
}

// convertWMFMagick is the direct ImageMagick fallback; it needs WMF
// delegates installed to succeed.
func convertWMFMagick(data []byte, outPath string) bool {
	tmp, err := os.CreateTemp("", "bookbuild-wmf-*.wmf")
	if err != nil {
		return false
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return false
	}
	tmp.Close()

	cmd := magickCommand(tmpPath, "png:"+outPath)
	if cmd == nil {
		return false
	}
	if err := runWithTimeout(cmd, 30*time.Second); err != nil {
		return false
	}
	return isPNGFile(outPath)
}

func magickCommand(args ...string) *exec.Cmd {
	if path, err := exec.LookPath("magick"); err == nil {
		return exec.Command(path, args...)
	}
	if path, err := exec.LookPath("convert"); err == nil {
		return exec.Command(path, args...)
	}
	return nil
}

func runWithTimeout(cmd *exec.Cmd, timeout time.Duration) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		cmd.Process.Kill()
		<-done
		return fmt.Errorf("timeout after %s", timeout)
	}
}

func isPNGFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	header := make([]byte, 4)
	if _, err := f.Read(header); err != nil {
		return false
	}
	return bytes.Equal(header, pngMagic)
}
