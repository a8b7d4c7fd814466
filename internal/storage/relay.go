package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"boardshoot-server/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultMIME      = "image/jpeg"
	defaultExtension = ".jpg"
	apiPath          = "/storage/v1"
)

var (
	ErrEmptyImage = errors.New("image data is empty")
	ErrNotRemote  = errors.New("image reference is not a remote object")
	ErrDisabled   = errors.New("object storage is not configured")
)

type Config struct {
	URL        string
	APIKey     string
	ServiceKey string
	Bucket     string
	Timeout    time.Duration
}

// Relay stores note images in a remote bucket, falling back to data URLs
// whenever the remote store cannot take the upload.
type Relay struct {
	cfg          Config
	client       *http.Client
	logger       zerolog.Logger
	bucketExists atomic.Bool
}

func NewRelay(cfg Config, logger zerolog.Logger) *Relay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Relay{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "image_relay").Logger(),
	}
}

func (r *Relay) enabled() bool {
	return r.cfg.URL != ""
}

func (r *Relay) storageURL() string {
	return strings.TrimRight(r.cfg.URL, "/") + apiPath
}

func (r *Relay) publicPrefix() string {
	return fmt.Sprintf("%s/object/public/%s/", r.storageURL(), r.cfg.Bucket)
}

// Upload never fails for non-empty data: any remote error degrades to an embedded reference.
// Every call uses a fresh object name so retries cannot collide.
func (r *Relay) Upload(ctx context.Context, data []byte, noteID int64) (domain.ImageRef, error) {
	if len(data) == 0 {
		return domain.ImageRef{}, ErrEmptyImage
	}

	mime, ext := detect(data)

	if !r.enabled() {
		return domain.EmbeddedImage(data, mime), nil
	}

	name := fmt.Sprintf("note_%d_%s%s", noteID, uuid.New().String(), ext)
	url, err := r.put(ctx, name, mime, data)
	if err != nil {
		r.logger.Warn().Err(err).Int64("note_id", noteID).Msg("remote upload failed, embedding image")
		return domain.EmbeddedImage(data, mime), nil
	}

	r.logger.Info().Int64("note_id", noteID).Str("url", url).Msg("image uploaded")
	return domain.RemoteImage(url), nil
}

// Delete removes a remote object. Embedded references are rejected with ErrNotRemote.
func (r *Relay) Delete(ctx context.Context, ref domain.ImageRef) error {
	if !ref.IsRemote() {
		return ErrNotRemote
	}
	if !r.enabled() {
		return ErrDisabled
	}

	name := r.objectName(ref.Value)
	if name == "" {
		return fmt.Errorf("cannot derive object name from %q", ref.Value)
	}

	url := fmt.Sprintf("%s/object/%s/%s", r.storageURL(), r.cfg.Bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to delete object %s: status %d", name, resp.StatusCode)
	}
	return nil
}

func (r *Relay) put(ctx context.Context, name, mime string, data []byte) (string, error) {
	if err := r.ensureBucket(ctx); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/object/%s/%s", r.storageURL(), r.cfg.Bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	r.authorize(req)
	req.Header.Set("Content-Type", mime)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload rejected: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return r.publicPrefix() + name, nil
}

// ensureBucket checks the bucket once per process and creates it when the check fails.
func (r *Relay) ensureBucket(ctx context.Context) error {
	if r.bucketExists.Load() {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/bucket/%s", r.storageURL(), r.cfg.Bucket), nil)
	if err != nil {
		return err
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			r.bucketExists.Store(true)
			return nil
		}
		r.logger.Warn().Int("status", resp.StatusCode).Str("bucket", r.cfg.Bucket).Msg("bucket check failed")
	} else {
		r.logger.Warn().Err(err).Str("bucket", r.cfg.Bucket).Msg("bucket check failed")
	}

	body, err := json.Marshal(map[string]any{"name": r.cfg.Bucket, "public": true})
	if err != nil {
		return err
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, r.storageURL()+"/bucket", bytes.NewReader(body))
	if err != nil {
		return err
	}
	r.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err = r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to create bucket %s: status %d", r.cfg.Bucket, resp.StatusCode)
	}

	r.logger.Info().Str("bucket", r.cfg.Bucket).Msg("bucket created")
	r.bucketExists.Store(true)
	return nil
}

func (r *Relay) authorize(req *http.Request) {
	key := r.cfg.ServiceKey
	if key == "" {
		key = r.cfg.APIKey
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
}

// objectName returns the object path inside the bucket for a URL this relay produced,
// or the last path segment for anything else.
func (r *Relay) objectName(url string) string {
	if name, ok := strings.CutPrefix(url, r.publicPrefix()); ok {
		return name
	}
	if i := strings.LastIndex(url, "/"); i >= 0 && i < len(url)-1 {
		return url[i+1:]
	}
	return ""
}

// detect picks the MIME type and extension; anything that does not sniff as an image is treated as JPEG.
func detect(data []byte) (string, string) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return defaultMIME, defaultExtension
	}
	mime := strings.SplitN(mt.String(), ";", 2)[0]
	ext := mt.Extension()
	if ext == "" {
		ext = defaultExtension
	}
	return mime, ext
}
