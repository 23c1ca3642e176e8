package pdfops

import (
	fitz "github.com/gen2brain/go-fitz"
)

// Doc is the little we need from an opened PDF.
type Doc interface {
	NumPage() int
	Close() error
}

// Opener abstracts opening a PDF path into a Doc.
type Opener interface {
	Open(path string) (Doc, error)
}

// fitzOpener implements Opener using github.com/gen2brain/go-fitz.
// MuPDF repairs many files pdfcpu refuses to read.
type fitzOpener struct{}

func (fitzOpener) Open(path string) (Doc, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
