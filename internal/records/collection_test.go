package records

import (
	"testing"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

func newFile(name string) *entity.SourceFile {
	return &entity.SourceFile{Name: name, MIMEType: "image/jpeg", Size: 100}
}

func TestCreateAssignsOrdinals(t *testing.T) {
	c := NewCollection(nil)
	a := c.Create(newFile("a.jpg"))
	b := c.Create(newFile("b.jpg"))
	if a.Number != 1 || b.Number != 2 {
		t.Errorf("ordinals = %d, %d", a.Number, b.Number)
	}
	if a.Status != constants.StatusPending {
		t.Errorf("status = %q", a.Status)
	}
}

func TestStatusAutoCompletionOnLastEdit(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))

	r1, err := c.EditField(rec.ID, "code", "12345")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if r1.Status == constants.StatusCompleted {
		t.Fatal("one field must not complete the record")
	}

	r2, _ := c.EditField(rec.ID, "sender_name", "احمد")
	if r2.Status == constants.StatusCompleted {
		t.Fatal("two fields must not complete the record")
	}

	r3, _ := c.EditField(rec.ID, "phone_number", "07701234567")
	if r3.Status != constants.StatusCompleted {
		t.Errorf("the edit filling the last mandatory field must complete the record, got %q", r3.Status)
	}
}

func TestApplyExtractionPromotesWhenComplete(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))
	proc, _ := c.BeginProcessing(rec.ID)

	got, err := c.ApplyExtraction(rec.ID, proc.ProcessingID, "raw", 90, constants.MethodAI, entity.ShipmentFields{
		Code: "1", SenderName: "x", PhoneNumber: "07700000000",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Status != constants.StatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.Method != constants.MethodAI || got.Confidence != 90 {
		t.Errorf("method/confidence not recorded: %+v", got)
	}
}

func TestApplyExtractionPartialStaysProcessing(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))
	proc, _ := c.BeginProcessing(rec.ID)

	got, _ := c.ApplyExtraction(rec.ID, proc.ProcessingID, "raw", 40, constants.MethodOCR, entity.ShipmentFields{Code: "1"})
	if got.Status != constants.StatusProcessing {
		t.Errorf("incomplete extraction should leave status processing, got %q", got.Status)
	}
}

func TestApplyExtractionStaleProcessingIDDropped(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))
	proc, _ := c.BeginProcessing(rec.ID)

	// Fail the first pass, then reprocess; the rotated processing id
	// makes the old attempt stale.
	if err := c.MarkError(rec.ID, proc.ProcessingID, "فشل"); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	if _, err := c.Reprocess(rec.ID); err != nil {
		t.Fatalf("reprocess: %v", err)
	}

	got, err := c.ApplyExtraction(rec.ID, proc.ProcessingID, "stale text", 99, constants.MethodAI, entity.ShipmentFields{
		Code: "1", SenderName: "x", PhoneNumber: "07700000000",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.ExtractedText == "stale text" || got.Status == constants.StatusCompleted {
		t.Errorf("stale completion must be dropped: %+v", got)
	}
}

func TestReprocessRequiresFinishedRecord(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))

	if _, err := c.Reprocess(rec.ID); err == nil {
		t.Fatal("reprocessing a pending record must fail")
	}

	proc, _ := c.BeginProcessing(rec.ID)
	if _, err := c.Reprocess(rec.ID); err == nil {
		t.Fatal("reprocessing a record mid-extraction must fail")
	}

	if err := c.MarkError(rec.ID, proc.ProcessingID, "فشل"); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	if _, err := c.Reprocess(rec.ID); err != nil {
		t.Fatalf("reprocessing an errored record: %v", err)
	}
}

func TestExtractionDoesNotClobberUserEdits(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))
	proc, _ := c.BeginProcessing(rec.ID)

	if _, err := c.EditField(rec.ID, "sender_name", "تصحيح المستخدم"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	got, _ := c.ApplyExtraction(rec.ID, proc.ProcessingID, "raw", 50, constants.MethodAI, entity.ShipmentFields{SenderName: "من المحرك"})
	if got.SenderName != "تصحيح المستخدم" {
		t.Errorf("user edit must win over engine value, got %q", got.SenderName)
	}
}

func TestMarkSubmittedOneWay(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))
	if err := c.MarkSubmitted(rec.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Edits stay possible after submission.
	got, err := c.EditField(rec.ID, "price", "5,000")
	if err != nil {
		t.Fatalf("edit after submit: %v", err)
	}
	if !got.Submitted {
		t.Errorf("submitted flag must never revert")
	}
}

func TestMarkErrorKeepsFile(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))
	proc, _ := c.BeginProcessing(rec.ID)
	if err := c.MarkError(rec.ID, proc.ProcessingID, "كلا المحركين فشل"); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	got, _ := c.Get(rec.ID)
	if got.Status != constants.StatusError || got.ErrorMessage == "" {
		t.Errorf("error state not recorded: %+v", got)
	}
	if got.File == nil {
		t.Errorf("file must be preserved for retry")
	}
}

func TestDeleteRemoves(t *testing.T) {
	c := NewCollection(nil)
	rec := c.Create(newFile("a.jpg"))
	if _, err := c.Delete(rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(rec.ID); err == nil {
		t.Errorf("deleted record should be gone")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d", c.Len())
	}
}
