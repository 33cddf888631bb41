package gstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const opTimeout = 50 * time.Second

var ErrObjectNotExist = storage.ErrObjectNotExist

// GStorage uploads/downloads sqlite backups to a GCS bucket.
type GStorage struct {
	storageClient *storage.Client
	prefix        string
}

func NewGStorage(credentialsFilePath, prefix string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(context.Background(), option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(context.Background())
	}

	if err != nil {
		return nil, fmt.Errorf("NewGStorage: %v", err)
	}

	return &GStorage{storageClient: client, prefix: prefix}, nil
}

// UploadFile uploads the file at 'filePath' as an object named after
// its base name, under the configured prefix.
func (gs *GStorage) UploadFile(bucket, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("os.Open: %v", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	object := gs.objectName(filepath.Base(filePath))
	wc := gs.storageClient.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		return fmt.Errorf("io.Copy: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %v", err)
	}

	return nil
}

// DownloadFile downloads an object into 'destFileName'.
func (gs *GStorage) DownloadFile(bucket, object, destFileName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rc, err := gs.storageClient.Bucket(bucket).Object(gs.objectName(object)).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return err
	}
	if err != nil {
		return fmt.Errorf("Object(%q).NewReader: %v", object, err)
	}
	defer rc.Close()

	f, err := os.Create(destFileName)
	if err != nil {
		return fmt.Errorf("os.Create: %v", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		return fmt.Errorf("io.Copy: %v", err)
	}

	return nil
}

func (gs *GStorage) objectName(name string) string {
	if gs.prefix == "" {
		return name
	}

	return path.Join(gs.prefix, name)
}
