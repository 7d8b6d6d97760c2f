// Package ocr is the traditional extraction engine: a tesseract adapter
// used as the fallback when the AI service fails or times out.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/extract"
)

// Engine runs tesseract over receipt images. It satisfies
// extract.TextRecognizer.
type Engine struct {
	cfg    common.OCRConfig
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg common.OCRConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "ara+eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.TmpDir == "" {
		cfg.TmpDir = os.TempDir()
	}
	return &Engine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize runs tesseract on the file and returns the raw text with a
// heuristic confidence. In-memory files are spilled to a temp path first.
func (e *Engine) Recognize(ctx context.Context, file *entity.SourceFile) (extract.Result, error) {
	start := time.Now()

	path := file.Path
	if path == "" {
		tmp, cleanup, err := e.spill(file)
		if err != nil {
			return extract.Result{}, err
		}
		defer cleanup()
		path = tmp
	}

	args := []string{
		path,
		"stdout",
		"-l", e.cfg.Languages,
		"--psm", strconv.Itoa(e.cfg.PSM),
	}
	stdout, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		e.logger.Error("ocr.recognize.failed", "file", file.Name, "error", err)
		return extract.Result{}, fmt.Errorf("tesseract: %w", err)
	}

	text := strings.TrimSpace(string(stdout))
	conf := heuristicConfidence(text)

	e.logger.Info("ocr.recognize.ok",
		"file", file.Name,
		"text_len", len(text),
		"confidence", conf,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return extract.Result{
		Text:       text,
		Confidence: conf,
		Method:     constants.MethodOCR,
	}, nil
}

func (e *Engine) spill(file *entity.SourceFile) (string, func(), error) {
	if len(file.Data) == 0 {
		return "", nil, fmt.Errorf("source file has neither data nor path")
	}
	ext := constants.NormalizeExt(filepath.Ext(file.Name))
	if ext == "" {
		ext = "png"
	}
	tmp := filepath.Join(e.cfg.TmpDir, uuid.New().String()+"."+ext)
	if err := os.WriteFile(tmp, file.Data, 0600); err != nil {
		return "", nil, fmt.Errorf("spill image: %w", err)
	}
	return tmp, func() { _ = os.Remove(tmp) }, nil
}
