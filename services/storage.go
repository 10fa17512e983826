package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// StoredDocument is the metadata the store hands back for one upload.
type StoredDocument struct {
	FileName   string    `json:"file_name"`
	StoredPath string    `json:"stored_path"`
	URL        string    `json:"url"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentStore accepts binary attachments tied to an owning request and
// returns stored metadata. The workflow only depends on this contract.
type DocumentStore interface {
	Save(requestID int, file *multipart.FileHeader) (*StoredDocument, error)
}

// LocalDocumentStore keeps uploads on the local filesystem under
// basePath/requests/<request id>/, one uuid-named file per upload.
type LocalDocumentStore struct {
	basePath string
	baseURL  string
}

// NewLocalDocumentStore builds a store rooted at UPLOAD_PATH (./uploads when
// unset), serving files under /uploads.
func NewLocalDocumentStore() *LocalDocumentStore {
	basePath := os.Getenv("UPLOAD_PATH")
	if basePath == "" {
		basePath = "./uploads"
	}
	return &LocalDocumentStore{basePath: basePath, baseURL: "/uploads"}
}

// NewLocalDocumentStoreAt builds a store rooted at an explicit directory.
func NewLocalDocumentStoreAt(basePath string) *LocalDocumentStore {
	return &LocalDocumentStore{basePath: basePath, baseURL: "/uploads"}
}

// Save stores one uploaded file. The original name survives only in the
// returned metadata; on disk the file gets a uuid name so two uploads of
// receipt.pdf cannot collide.
func (s *LocalDocumentStore) Save(requestID int, file *multipart.FileHeader) (*StoredDocument, error) {
	dir := filepath.Join(s.basePath, "requests", fmt.Sprintf("%d", requestID))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	storedName := uuid.New().String() + filepath.Ext(file.Filename)
	storedPath := filepath.Join(dir, storedName)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create stored file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("failed to write stored file: %w", err)
	}

	return &StoredDocument{
		FileName:   file.Filename,
		StoredPath: storedPath,
		URL:        fmt.Sprintf("%s/requests/%d/%s", s.baseURL, requestID, storedName),
		FileSize:   written,
		UploadedAt: time.Now(),
	}, nil
}
