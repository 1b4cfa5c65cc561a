// Package fingerprint computes the deterministic content identity of a
// source document: size, page count, partial content hash, basename.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/daehwan-oh/coverfact/internal/model"
	"github.com/daehwan-oh/coverfact/internal/pdfdoc"
)

// HashWindow is the maximum number of leading bytes hashed. Hashing the
// head of the file is enough for change detection and keeps fingerprinting
// cheap on large proposals.
const HashWindow = 2 << 20 // 2 MiB

// PageCounter obtains the page count of a document. The production
// implementation is pdfcpu-backed; tests inject a fake.
type PageCounter interface {
	PageCount(path string) (int, error)
}

// PDFPageCounter counts pages via pdfcpu, which validates the document
// structure on the way.
type PDFPageCounter struct{}

// PageCount implements PageCounter.
func (PDFPageCounter) PageCount(path string) (int, error) {
	return pdfdoc.PageCountOf(path)
}

// Service computes fingerprints.
type Service struct {
	pages PageCounter
}

// NewService creates a fingerprint service with the given page counter.
func NewService(pages PageCounter) *Service {
	return &Service{pages: pages}
}

// Compute returns the fingerprint of the document at path. Identical bytes
// always yield an identical fingerprint. A missing path returns
// model.ErrNotFound; a document whose page count cannot be obtained returns
// an unreadable-document gate error.
func (s *Service) Compute(path string) (model.Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Fingerprint{}, fmt.Errorf("%s: %w", path, model.ErrNotFound)
		}
		return model.Fingerprint{}, fmt.Errorf("stat %s: %w", path, err)
	}

	hash, err := hashHead(path)
	if err != nil {
		return model.Fingerprint{}, err
	}

	pages, err := s.pages.PageCount(path)
	if err != nil {
		return model.Fingerprint{}, model.NewGateError(model.GateUnreadableDocument,
			fmt.Sprintf("cannot obtain page count of %s: %v", path, err))
	}

	return model.Fingerprint{
		FileSizeBytes:  info.Size(),
		PageCount:      pages,
		ContentHash:    hash,
		SourceBasename: filepath.Base(path),
	}, nil
}

func hashHead(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, io.LimitReader(f, HashWindow)); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
