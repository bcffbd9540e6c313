package view

import (
	"context"
	"io"
	"strings"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

// MaxUploadSize is the largest file accepted for upload.
const MaxUploadSize = 10 * 1024 * 1024

// Upload rejection messages.
const (
	MsgTitleRequired   = "Title is required"
	MsgFileRequired    = "Please select a file to upload"
	MsgUnsupportedType = "Only PDF and TXT files are supported"
	MsgFileTooLarge    = "File size exceeds the 10MB limit"
)

// DocumentService is implemented by *taxapi.DocumentsClient.
type DocumentService interface {
	List(ctx context.Context) ([]taxapi.Document, error)
	Get(ctx context.Context, id int64) (taxapi.Document, error)
	Upload(ctx context.Context, up taxapi.DocumentUpload) (taxapi.Document, error)
	Update(ctx context.Context, id int64, title, description string) (taxapi.Document, error)
	Delete(ctx context.Context, id int64) error
}

// UploadFile is the file picked for upload.
type UploadFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// UploadForm is the upload dialog.
type UploadForm struct {
	Title       string
	Description string
	File        *UploadFile
}

// ValidateUpload checks the form the way the upload dialog does, before
// anything is sent.
func ValidateUpload(form UploadForm) error {
	if strings.TrimSpace(form.Title) == "" {
		return &ValidationError{Field: "title", Message: MsgTitleRequired}
	}
	if form.File == nil || form.File.Name == "" {
		return &ValidationError{Field: "file", Message: MsgFileRequired}
	}
	switch fileExtension(form.File.Name) {
	case "pdf", "txt":
	default:
		return &ValidationError{Field: "file", Message: MsgUnsupportedType}
	}
	if form.File.Size > MaxUploadSize {
		return &ValidationError{Field: "file", Message: MsgFileTooLarge}
	}
	return nil
}

func fileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Documents is the document list page.
type Documents struct {
	svc   DocumentService
	items []taxapi.Document
}

func NewDocuments(svc DocumentService) *Documents {
	return &Documents{svc: svc}
}

// Items returns the documents loaded so far.
func (d *Documents) Items() []taxapi.Document { return d.items }

func (d *Documents) Load(ctx context.Context) error {
	items, err := d.svc.List(ctx)
	if err != nil {
		return fail("Failed to load documents", err)
	}
	d.items = items
	return nil
}

// Upload validates form and, only if it passes, uploads the file. A
// rejected form returns a *ValidationError.
func (d *Documents) Upload(ctx context.Context, form UploadForm) (taxapi.Document, error) {
	if err := ValidateUpload(form); err != nil {
		return taxapi.Document{}, err
	}
	doc, err := d.svc.Upload(ctx, taxapi.DocumentUpload{
		Title:       strings.TrimSpace(form.Title),
		Description: form.Description,
		FileName:    form.File.Name,
		File:        form.File.Content,
	})
	if err != nil {
		return taxapi.Document{}, fail("Failed to upload document. Please try again.", err)
	}
	d.items = append(d.items, doc)
	return doc, nil
}

func (d *Documents) Rename(ctx context.Context, id int64, title, description string) (taxapi.Document, error) {
	if strings.TrimSpace(title) == "" {
		return taxapi.Document{}, &ValidationError{Field: "title", Message: MsgTitleRequired}
	}
	doc, err := d.svc.Update(ctx, id, title, description)
	if err != nil {
		return taxapi.Document{}, fail("Failed to update document. Please try again.", err)
	}
	for i := range d.items {
		if d.items[i].ID == id {
			d.items[i] = doc
		}
	}
	return doc, nil
}

func (d *Documents) Delete(ctx context.Context, id int64) error {
	if err := d.svc.Delete(ctx, id); err != nil {
		return fail("Failed to delete document. Please try again.", err)
	}
	kept := d.items[:0]
	for _, doc := range d.items {
		if doc.ID != id {
			kept = append(kept, doc)
		}
	}
	d.items = kept
	return nil
}
