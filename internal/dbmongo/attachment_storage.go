package dbmongo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatdesk/internal/common"
)

// AttachmentStorage persists message attachments in GridFS. The
// storage ref is the GridFS ObjectID hex; the public URL is the
// download route served by the HTTP layer.
type AttachmentStorage struct {
	gridFS *gridfs.Bucket
}

func NewAttachmentStorage(mongoClient *MongoClient) *AttachmentStorage {
	return &AttachmentStorage{
		gridFS: mongoClient.GridFS,
	}
}

var _ common.AttachmentStorage = (*AttachmentStorage)(nil)

func (as *AttachmentStorage) Store(ctx context.Context, filename, mimeType string, content io.Reader) (*common.StoredFile, error) {
	metadata := bson.M{
		"mime_type":   mimeType,
		"uploaded_at": time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := as.gridFS.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("attachment upload failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		return nil, fmt.Errorf("attachment copy failed: %w", err)
	}

	ref := stream.FileID.(primitive.ObjectID).Hex()
	return &common.StoredFile{
		URL:        DownloadURL(ref),
		SizeBytes:  size,
		MimeType:   mimeType,
		StorageRef: ref,
	}, nil
}

// Open returns a read stream plus filename and mime type for the
// stored attachment.
func (as *AttachmentStorage) Open(ctx context.Context, storageRef string) (io.ReadCloser, string, string, error) {
	objectID, err := primitive.ObjectIDFromHex(storageRef)
	if err != nil {
		return nil, "", "", common.NotFound("attachment not found")
	}

	stream, err := as.gridFS.OpenDownloadStream(objectID)
	if err != nil {
		return nil, "", "", common.NotFound("attachment not found")
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	return stream, fileInfo.Name, getStringFromMap(metadata, "mime_type"), nil
}

func (as *AttachmentStorage) Delete(ctx context.Context, storageRef string) error {
	objectID, err := primitive.ObjectIDFromHex(storageRef)
	if err != nil {
		return fmt.Errorf("invalid storage ref: %w", err)
	}
	return as.gridFS.Delete(objectID)
}

// DownloadURL builds the public URL for a stored attachment.
func DownloadURL(storageRef string) string {
	return "/attachments/" + storageRef
}

func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
