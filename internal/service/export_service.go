package service

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/export"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/slug"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/storage"
)

// Export formats accepted by the kartu-history endpoint.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       string
	ExpiresAt    time.Time
}

// ExportService renders a student's recitation history into downloadable
// files and signs the download links.
type ExportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.TokenSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(store fileStorage, signer *storage.TokenSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		storage: store,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the student's card history in the requested format,
// stores the file and returns a signed download link. Cards are emitted
// newest first regardless of the caller's ordering.
func (s *ExportService) Generate(santri models.Santri, kelasNama string, cards []models.Kartu, format string) (*ExportResult, error) {
	dataset := buildKartuDataset(cards)

	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatCSV:
		payload, err = s.csv.Render(dataset)
	case FormatPDF:
		title := fmt.Sprintf("Kartu Ngaji %s", santri.Nama)
		subtitle := kelasNama
		payload, err = s.pdf.Render(dataset, title, subtitle)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, err
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("kartu/%s-%s.%s", slug.Generate(santri.Nama), exportID[:8], format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and returns the stored file.
func (s *ExportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export no longer available")
	}
	return file, nil
}

// Cleanup removes exports older than the configured TTL.
func (s *ExportService) Cleanup() {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
}

func buildKartuDataset(cards []models.Kartu) export.Dataset {
	sorted := make([]models.Kartu, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tanggal.After(sorted[j].Tanggal)
	})

	headers := []string{"Tanggal", "Bab", "Halaman", "Pengampu", "Catatan"}
	rows := make([]map[string]string, 0, len(sorted))
	for _, card := range sorted {
		rows = append(rows, map[string]string{
			"Tanggal":  card.Tanggal.Format("2006-01-02"),
			"Bab":      card.Bab,
			"Halaman":  card.Halaman,
			"Pengampu": card.Pengampu,
			"Catatan":  card.Catatan,
		})
	}
	return export.Dataset{
		Headers: headers,
		Rows:    rows,
		Weights: []float64{1.2, 1.5, 1, 1.3, 3},
	}
}
