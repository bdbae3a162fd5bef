package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"jobportal/internal/config"
)

// StorageGateway uploads resume and cover letter binaries to a
// Supabase-compatible object store and hands back public URLs. Removal
// is best-effort: it is only ever used as a compensating action, so
// failures are logged, never propagated.
type StorageGateway interface {
	Upload(ctx context.Context, data []byte, contentType, bucket, objectPath string) (string, error)
	PublicURL(bucket, objectPath string) string
	Remove(ctx context.Context, bucket string, objectPaths ...string)
}

type storageGateway struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewStorageGateway(cfg config.StorageConfig) StorageGateway {
	return &storageGateway{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores the object with upsert semantics: re-uploading the same
// path replaces prior content.
func (g *storageGateway) Upload(ctx context.Context, data []byte, contentType, bucket, objectPath string) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", g.baseURL, bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("file upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorText, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("file upload failed with status %d: %s", resp.StatusCode, string(errorText))
	}

	return g.PublicURL(bucket, objectPath), nil
}

func (g *storageGateway) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", g.baseURL, bucket, objectPath)
}

// Remove deletes objects by path. Used to clean up orphaned blobs after
// a failed submission; the caller has already given up on the request,
// so errors are only logged.
func (g *storageGateway) Remove(ctx context.Context, bucket string, objectPaths ...string) {
	if len(objectPaths) == 0 {
		return
	}

	body, err := json.Marshal(map[string][]string{"prefixes": objectPaths})
	if err != nil {
		log.Printf("⚠️  Failed to encode storage delete request: %v", err)
		return
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s", g.baseURL, bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️  Failed to build storage delete request: %v", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+g.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Printf("⚠️  Failed to clean up files %v: %v", objectPaths, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("⚠️  Cleanup of files %v returned status %d", objectPaths, resp.StatusCode)
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

// SanitizeFilename lower-cases a client-supplied filename and replaces
// anything outside [a-z0-9.-_] so it is safe as an object path segment.
func SanitizeFilename(filename string) string {
	return strings.ToLower(unsafeFilenameChars.ReplaceAllString(filename, "_"))
}

// BuildObjectPath namespaces an upload per applicant and job and
// timestamps it so concurrent or repeated submissions never collide.
func BuildObjectPath(applicantID, jobID uint, filename string, now time.Time) string {
	return fmt.Sprintf("user_%d_job_%d/%d_%s", applicantID, jobID, now.UnixMilli(), SanitizeFilename(filename))
}
