package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/batch"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/common"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/fingerprint"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/records"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/store"
)

func newGate(t *testing.T) *Gate {
	t.Helper()
	fps, err := fingerprint.NewStore(store.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("fingerprint store: %v", err)
	}
	queue := batch.NewQueue()
	sched := batch.NewScheduler(queue, func(context.Context, batch.Item) constants.ExtractionMethod {
		return constants.MethodOCR
	}, batch.WithDelay(0))
	return NewGate(records.NewCollection(nil), fps, queue, sched, nil, nil)
}

func img(name string) *entity.SourceFile {
	return &entity.SourceFile{
		Name:         name,
		Size:         1024,
		MIMEType:     "image/jpeg",
		LastModified: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSubmitAcceptsImages(t *testing.T) {
	g := newGate(t)

	res := g.Submit(context.Background(), []*entity.SourceFile{img("a.jpg"), img("b.jpg")})
	if len(res.Accepted) != 2 {
		t.Fatalf("accepted = %d, want 2", len(res.Accepted))
	}
	if len(res.Rejected) != 0 || res.Dropped != 0 {
		t.Fatalf("unexpected rejections: %+v", res)
	}
	for _, rec := range res.Accepted {
		if rec.Status != constants.StatusPending {
			t.Errorf("record %s status = %s, want pending", rec.ID, rec.Status)
		}
	}
}

func TestSubmitRejectsUnsupportedType(t *testing.T) {
	g := newGate(t)

	pdf := &entity.SourceFile{Name: "doc.pdf", MIMEType: "application/pdf"}
	res := g.Submit(context.Background(), []*entity.SourceFile{pdf, img("ok.jpg")})

	if len(res.Accepted) != 1 {
		t.Fatalf("accepted = %d, want 1", len(res.Accepted))
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Name != "doc.pdf" {
		t.Fatalf("rejected = %+v, want doc.pdf", res.Rejected)
	}
	if res.Rejected[0].Reason == "" {
		t.Error("rejection must carry a reason")
	}
	if !errors.Is(res.Rejected[0].Err, common.ErrUnsupportedType) {
		t.Errorf("rejection err = %v, want ErrUnsupportedType", res.Rejected[0].Err)
	}
}

func TestSubmitCapsAtTen(t *testing.T) {
	g := newGate(t)

	files := make([]*entity.SourceFile, 12)
	for i := range files {
		files[i] = img(fmt.Sprintf("r%02d.jpg", i))
	}
	res := g.Submit(context.Background(), files)

	if len(res.Accepted) != constants.MaxFilesPerSubmit {
		t.Fatalf("accepted = %d, want %d", len(res.Accepted), constants.MaxFilesPerSubmit)
	}
	if res.Dropped != 2 {
		t.Fatalf("dropped = %d, want 2", res.Dropped)
	}
}

func TestSubmitDeduplicates(t *testing.T) {
	g := newGate(t)

	first := g.Submit(context.Background(), []*entity.SourceFile{img("same.jpg")})
	if len(first.Accepted) != 1 {
		t.Fatalf("first submit accepted = %d, want 1", len(first.Accepted))
	}

	second := g.Submit(context.Background(), []*entity.SourceFile{img("same.jpg")})
	if len(second.Accepted) != 0 {
		t.Fatalf("second submit accepted = %d, want 0", len(second.Accepted))
	}
	if len(second.Rejected) != 1 {
		t.Fatalf("second submit rejected = %d, want 1", len(second.Rejected))
	}
	if !errors.Is(second.Rejected[0].Err, common.ErrDuplicate) {
		t.Errorf("rejection err = %v, want ErrDuplicate", second.Rejected[0].Err)
	}

	third := g.Submit(context.Background(), []*entity.SourceFile{img("same.jpg")})
	if len(third.Accepted) != 0 {
		t.Fatal("resubmitting a known file must stay a no-op")
	}
}

func TestReprocessRotatesProcessingID(t *testing.T) {
	g := newGate(t)

	res := g.Submit(context.Background(), []*entity.SourceFile{img("redo.jpg")})
	if len(res.Accepted) != 1 {
		t.Fatal("initial submit failed")
	}
	rec := res.Accepted[0]

	// Only finished records can be re-queued.
	if err := g.Reprocess(context.Background(), rec.ID); err == nil {
		t.Fatal("reprocessing a pending record must fail")
	}
	if err := g.records.MarkError(rec.ID, rec.ProcessingID, "فشل الاستخراج"); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	if err := g.Reprocess(context.Background(), rec.ID); err != nil {
		t.Fatalf("reprocess: %v", err)
	}

	// A completion from the first pass must now be stale.
	after, err := g.records.ApplyExtraction(rec.ID, rec.ProcessingID, "text", 50, constants.MethodAI, entity.ShipmentFields{
		Code: "X", SenderName: "Y", PhoneNumber: "07700000000",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if after.Status == constants.StatusCompleted {
		t.Fatal("stale completion landed after reprocess")
	}
}

func TestRemoveReleasesFingerprint(t *testing.T) {
	g := newGate(t)

	res := g.Submit(context.Background(), []*entity.SourceFile{img("again.jpg")})
	if len(res.Accepted) != 1 {
		t.Fatal("initial submit failed")
	}
	if err := g.Remove(res.Accepted[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	retry := g.Submit(context.Background(), []*entity.SourceFile{img("again.jpg")})
	if len(retry.Accepted) != 1 {
		t.Fatalf("resubmit after removal accepted = %d, want 1", len(retry.Accepted))
	}
}

func TestSubmitAssignsPreviewRef(t *testing.T) {
	g := newGate(t)

	disk := &entity.SourceFile{Name: "on-disk.jpg", MIMEType: "image/jpeg", Path: "/tmp/on-disk.jpg"}
	mem := img("in-mem.jpg")
	res := g.Submit(context.Background(), []*entity.SourceFile{disk, mem})
	if len(res.Accepted) != 2 {
		t.Fatalf("accepted = %d, want 2", len(res.Accepted))
	}

	if disk.PreviewRef != "file:///tmp/on-disk.jpg" {
		t.Errorf("disk preview = %q, want file:///tmp/on-disk.jpg", disk.PreviewRef)
	}
	if !strings.HasPrefix(mem.PreviewRef, "mem://") || mem.PreviewRef == "mem://" {
		t.Errorf("in-memory preview = %q, want a mem:// handle", mem.PreviewRef)
	}
	for _, rec := range res.Accepted {
		if rec.File.PreviewRef == "" {
			t.Errorf("record %s has no preview reference", rec.ID)
		}
	}
}

func TestSubmitNamelessFilesAreNotConflated(t *testing.T) {
	g := newGate(t)

	a := &entity.SourceFile{MIMEType: "image/png", Data: []byte("receipt-a")}
	b := &entity.SourceFile{MIMEType: "image/png", Data: []byte("receipt-b")}
	res := g.Submit(context.Background(), []*entity.SourceFile{a, b})
	if len(res.Accepted) != 2 {
		t.Fatalf("accepted = %d, want 2 (rejected: %+v)", len(res.Accepted), res.Rejected)
	}
	if a.PreviewRef == b.PreviewRef {
		t.Errorf("distinct nameless uploads share preview %q", a.PreviewRef)
	}

	// Identical bytes are still one logical receipt.
	dup := &entity.SourceFile{MIMEType: "image/png", Data: []byte("receipt-a")}
	again := g.Submit(context.Background(), []*entity.SourceFile{dup})
	if len(again.Accepted) != 0 || len(again.Rejected) != 1 {
		t.Fatalf("resubmitted bytes: %+v", again)
	}
	if !errors.Is(again.Rejected[0].Err, common.ErrDuplicate) {
		t.Errorf("rejection err = %v, want ErrDuplicate", again.Rejected[0].Err)
	}
}
