package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

type stubRunner struct {
	stdout []byte
	err    error

	name string
	args []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	return s.stdout, nil, s.err
}

func TestRecognizeInvokesTesseract(t *testing.T) {
	stub := &stubRunner{stdout: []byte("رقم الوصل: 123456\nهاتف: 07701234567\n")}
	e := NewEngine(common.OCRConfig{Tesseract: "tesseract", Languages: "ara+eng", PSM: 6}, nil)
	e.runner = stub

	res, err := e.Recognize(context.Background(), &entity.SourceFile{Name: "r.jpg", Path: "/tmp/r.jpg"})
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if stub.name != "tesseract" {
		t.Errorf("binary = %q", stub.name)
	}
	if stub.args[0] != "/tmp/r.jpg" || stub.args[1] != "stdout" {
		t.Errorf("args = %v", stub.args)
	}
	if res.Method != constants.MethodOCR {
		t.Errorf("method = %q", res.Method)
	}
	if res.Text == "" || res.Confidence <= 20 {
		t.Errorf("expected text and boosted confidence, got %d", res.Confidence)
	}
}

func TestRecognizeCommandFailure(t *testing.T) {
	e := NewEngine(common.OCRConfig{}, nil)
	e.runner = &stubRunner{err: errors.New("exit status 1")}

	_, err := e.Recognize(context.Background(), &entity.SourceFile{Name: "r.jpg", Path: "/tmp/r.jpg"})
	if err == nil {
		t.Fatal("expected error from failing command")
	}
}

func TestHeuristicConfidence(t *testing.T) {
	rich := "وصل رقم 1234567\nهاتف 07701234567\nالمبلغ 25,000 دينار للتوصيل الى بغداد الجديدة حي الاعلام شارع الرئيسي قرب المدرسة"
	if got := heuristicConfidence(rich); got < 80 {
		t.Errorf("rich receipt text should score high, got %d", got)
	}
	if got := heuristicConfidence("x"); got != 20 {
		t.Errorf("bare text should score the base only, got %d", got)
	}
}
