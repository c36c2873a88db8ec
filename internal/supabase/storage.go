package supabase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	baseURL       string
	serviceKey    string
	imagesBucket  string
	avatarsBucket string
}

func NewStorageClient(supabaseURL, serviceRoleKey, imagesBucket, avatarsBucket string) *StorageClient {
	return &StorageClient{
		baseURL:       strings.TrimSuffix(supabaseURL, "/"),
		serviceKey:    serviceRoleKey,
		imagesBucket:  imagesBucket,
		avatarsBucket: avatarsBucket,
	}
}

// client returns a fresh storage client. Upload options are stored in the
// client's shared headers, so concurrent uploads must not share one.
func (s *StorageClient) client() *storage.Client {
	return storage.NewClient(s.baseURL+"/storage/v1", s.serviceKey, nil)
}

// GeneratedImagePath is where a generated image is stored:
// {user_id}/{session_id}/{filename}.
func GeneratedImagePath(userID, sessionID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", userID.String(), sessionID.String(), filename)
}

// UploadGeneratedImage stores a JPEG in the images bucket and returns its
// public URL. Existing objects are never overwritten.
func (s *StorageClient) UploadGeneratedImage(storagePath string, data []byte) (string, error) {
	contentType := "image/jpeg"
	cacheControl := "3600"
	upsert := false
	_, err := s.client().UploadFile(s.imagesBucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.PublicURL(s.imagesBucket, storagePath), nil
}

// UploadAvatar stores a profile picture at avatars/{user_id}-{unix_ms}.{ext}.
func (s *StorageClient) UploadAvatar(userID uuid.UUID, ext, contentType string, data []byte, unixMilli int64) (string, error) {
	storagePath := fmt.Sprintf("avatars/%s-%d.%s", userID.String(), unixMilli, ext)

	upsert := true
	_, err := s.client().UploadFile(s.avatarsBucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.PublicURL(s.avatarsBucket, storagePath), nil
}

func (s *StorageClient) PublicURL(bucket, storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, bucket, storagePath)
}

// RemoveFile deletes one object from the images bucket.
func (s *StorageClient) RemoveFile(storagePath string) error {
	_, err := s.client().RemoveFile(s.imagesBucket, []string{storagePath})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// RemoveSessionFiles deletes every object under the session's prefix.
func (s *StorageClient) RemoveSessionFiles(userID, sessionID uuid.UUID) error {
	prefix := fmt.Sprintf("%s/%s", userID.String(), sessionID.String())

	client := s.client()
	files, err := client.ListFiles(s.imagesBucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) == 0 {
		return nil
	}

	// Listed names are relative to the prefix.
	filePaths := make([]string, len(files))
	for i, file := range files {
		filePaths[i] = prefix + "/" + file.Name
	}
	if _, err := client.RemoveFile(s.imagesBucket, filePaths); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	return nil
}
