package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// fetchLimit caps how many bytes a single artifact download may occupy.
const fetchLimit = 64 << 20

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Cloudinary implements ArtifactStore on top of the Cloudinary API. Uploads
// go through the SDK; fetches read the secure URL the upload returned.
type Cloudinary struct {
	client *cloudinary.Cloudinary
	http   *http.Client
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary-backed artifact store.
func New(cfg Config, logger zerolog.Logger) (*Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Cloudinary{
		client: cld,
		http:   &http.Client{Timeout: 30 * time.Second},
		folder: cfg.Folder,
		logger: logger.With().Str("component", "artifact_store").Logger(),
	}, nil
}

// Upload sends the file to Cloudinary and returns its secure URL as the
// stored-artifact reference.
func (s *Cloudinary) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	folder := strings.Trim(s.folder, "/")
	publicID := buildPublicID(name)

	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("artifact stored")

	return result.SecureURL, nil
}

// Fetch downloads a stored artifact by its reference.
func (s *Cloudinary) Fetch(ctx context.Context, ref string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build artifact request: %w", err)
	}

	response, err := s.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch artifact: unexpected status %d", response.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, fetchLimit))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	return data, nil
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix())
}
