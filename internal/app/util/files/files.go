package files

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"meeting-summarizer/internal/app/model"
)

// audioExtensions are the input formats the pipeline accepts. Everything is
// run through ffmpeg anyway, so this is a gate against obviously wrong files,
// not a codec check.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".ogg":  true,
	".flac": true,
	".mp4":  true,
	".webm": true,
}

// IsAudioFile reports whether the path has a supported audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// ListAudioFiles returns all audio files in inputDir, oldest first.
func ListAudioFiles(inputDir string) ([]model.FileInfo, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var fileInfos []model.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		fileInfos = append(fileInfos, model.FileInfo{
			FullPath: filepath.Join(inputDir, entry.Name()),
			ModTime:  info.ModTime(),
			Name:     entry.Name(),
		})
	}

	sort.Slice(fileInfos, func(i, j int) bool {
		return fileInfos[i].ModTime.Before(fileInfos[j].ModTime)
	})

	return fileInfos, nil
}

// ReadOutputFile reads a subprocess output capture file and returns its
// trimmed text content.
func ReadOutputFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

// EnsureDir creates the directory if it does not exist yet.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Sha256File computes the hex-encoded SHA256 digest of a file.
func Sha256File(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FindGoModRoot walks up from path until it finds a directory containing
// go.mod. Used to anchor default data paths during development.
func FindGoModRoot(path string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path, nil
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", fmt.Errorf("go.mod not found above %s", path)
		}
		path = parent
	}
}
