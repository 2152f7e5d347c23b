package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/storage"
)

// openShareResource marks a link that needs no passcode. Protected links
// carry the bcrypt hash of the passcode inside the signed token instead,
// so no share state is stored server side.
const openShareResource = "open"

// ShareLink is a guardian-facing read-only link to one class.
type ShareLink struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	Protected bool      `json:"protected"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ShareService issues and validates guardian share links.
type ShareService struct {
	signer    *storage.TokenSigner
	apiPrefix string
	logger    *zap.Logger
}

// NewShareService constructs a ShareService.
func NewShareService(signer *storage.TokenSigner, apiPrefix string, logger *zap.Logger) *ShareService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareService{signer: signer, apiPrefix: apiPrefix, logger: logger}
}

// Create issues a share link for the class. An empty passcode yields an
// open link; otherwise viewers must present the passcode.
func (s *ShareService) Create(slug, passcode string) (*ShareLink, error) {
	resource := openShareResource
	if passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not protect share link")
		}
		resource = string(hash)
	}

	token, expiresAt, err := s.signer.Generate(slug, resource)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not create share link")
	}

	prefix := strings.TrimRight(s.apiPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ShareLink{
		Token:     token,
		URL:       fmt.Sprintf("%s/public/kelas/%s?token=%s", prefix, slug, token),
		Protected: resource != openShareResource,
		ExpiresAt: expiresAt,
	}, nil
}

// Authorize validates a share token against the requested class and, for
// protected links, the presented passcode.
func (s *ShareService) Authorize(token, slug, passcode string) error {
	subject, resource, _, err := s.signer.Parse(token, false)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "share link invalid or expired")
	}
	if subject != slug {
		return appErrors.Clone(appErrors.ErrForbidden, "share link does not grant access to this class")
	}
	if resource == openShareResource {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(resource), []byte(passcode)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "wrong passcode")
	}
	return nil
}
