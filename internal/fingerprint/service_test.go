package fingerprint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/daehwan-oh/coverfact/internal/model"
)

type fakeCounter struct {
	pages int
	err   error
}

func (f fakeCounter) PageCount(path string) (int, error) {
	return f.pages, f.err
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestComputeDeterministic(t *testing.T) {
	svc := NewService(fakeCounter{pages: 12})
	path := writeTemp(t, "proposal.pdf", []byte("%PDF-1.7 sample proposal content"))

	a, err := svc.Compute(path)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := svc.Compute(path)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !model.FingerprintsMatch(a, b) {
		t.Errorf("identical bytes produced different fingerprints:\n%+v\n%+v", a, b)
	}
	if a.PageCount != 12 {
		t.Errorf("page count = %d, want 12", a.PageCount)
	}
	if a.SourceBasename != "proposal.pdf" {
		t.Errorf("basename = %q, want proposal.pdf", a.SourceBasename)
	}
}

func TestComputeSensitiveToSingleByte(t *testing.T) {
	svc := NewService(fakeCounter{pages: 3})
	a, err := svc.Compute(writeTemp(t, "a.pdf", []byte("%PDF content A")))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := svc.Compute(writeTemp(t, "a.pdf", []byte("%PDF content B")))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if a.ContentHash == b.ContentHash {
		t.Error("one-byte change did not change the content hash")
	}
	if model.FingerprintsMatch(a, b) {
		t.Error("different bytes matched")
	}
}

func TestComputeMissingFile(t *testing.T) {
	svc := NewService(fakeCounter{pages: 1})
	_, err := svc.Compute(filepath.Join(t.TempDir(), "absent.pdf"))
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestComputeUnreadableDocument(t *testing.T) {
	svc := NewService(fakeCounter{err: errors.New("not a pdf")})
	path := writeTemp(t, "broken.pdf", []byte("not a pdf at all"))

	_, err := svc.Compute(path)
	if !model.IsGateError(err) {
		t.Fatalf("error = %v, want gate error", err)
	}
	var ge *model.GateError
	errors.As(err, &ge)
	if ge.Reason != model.GateUnreadableDocument {
		t.Errorf("reason = %s, want unreadable_document", ge.Reason)
	}
}

func TestFingerprintDiffItemizes(t *testing.T) {
	a := model.Fingerprint{FileSizeBytes: 10, PageCount: 2, ContentHash: "aa", SourceBasename: "x.pdf"}
	b := model.Fingerprint{FileSizeBytes: 11, PageCount: 2, ContentHash: "bb", SourceBasename: "x.pdf"}
	diff := model.FingerprintDiff(a, b)
	if len(diff) != 2 {
		t.Errorf("diff = %v, want 2 entries (size, hash)", diff)
	}
}
