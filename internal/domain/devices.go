package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeviceInfo is what DevPulse can infer from a User-Agent header.
type DeviceInfo struct {
	Kind    string `json:"kind"`
	OS      string `json:"os"`
	Browser string `json:"browser"`
}

// ClassifyUserAgent applies simple substring heuristics; order matters because
// most browsers advertise several engines.
func ClassifyUserAgent(ua string) DeviceInfo {
	lower := strings.ToLower(ua)
	info := DeviceInfo{Kind: "desktop", OS: "unknown", Browser: "unknown"}

	switch {
	case lower == "":
		info.Kind = "unknown"
	case containsAny(lower, "bot", "crawler", "spider", "curl/", "wget/", "python-requests", "go-http-client"):
		info.Kind = "bot"
	case containsAny(lower, "ipad", "tablet") || (strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")):
		info.Kind = "tablet"
	case containsAny(lower, "mobile", "iphone", "ipod"):
		info.Kind = "mobile"
	}

	switch {
	case containsAny(lower, "iphone", "ipad", "ipod"):
		info.OS = "iOS"
	case strings.Contains(lower, "android"):
		info.OS = "Android"
	case strings.Contains(lower, "windows"):
		info.OS = "Windows"
	case strings.Contains(lower, "mac os x") || strings.Contains(lower, "macintosh"):
		info.OS = "macOS"
	case strings.Contains(lower, "cros"):
		info.OS = "ChromeOS"
	case strings.Contains(lower, "linux"):
		info.OS = "Linux"
	}

	switch {
	case strings.Contains(lower, "edg/"):
		info.Browser = "Edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		info.Browser = "Opera"
	case strings.Contains(lower, "firefox/"):
		info.Browser = "Firefox"
	case strings.Contains(lower, "chrome/") || strings.Contains(lower, "crios/"):
		info.Browser = "Chrome"
	case strings.Contains(lower, "safari/"):
		info.Browser = "Safari"
	case strings.Contains(lower, "curl/"):
		info.Browser = "curl"
	}
	return info
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Fingerprint derives a stable device identifier from the user agent and an optional client hint.
func Fingerprint(userAgent, hint string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(userAgent) + "|" + strings.TrimSpace(hint)))
	return hex.EncodeToString(sum[:16])
}

// DeviceService manages the device monitor.
type DeviceService struct {
	repo DeviceRepository
	now  func() time.Time
}

// NewDeviceService constructs a DeviceService.
func NewDeviceService(repo DeviceRepository) *DeviceService {
	return &DeviceService{repo: repo, now: time.Now}
}

// Register records the device a request came from. Repeat registrations refresh last_seen_at.
func (s *DeviceService) Register(ctx context.Context, userID, userAgent, hint, name string) (*Device, bool, error) {
	if strings.TrimSpace(userAgent) == "" && strings.TrimSpace(hint) == "" {
		return nil, false, fmt.Errorf("%w: user agent or client hint required", ErrValidation)
	}
	info := ClassifyUserAgent(userAgent)
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("%s on %s", info.Browser, info.OS)
	}
	now := s.now().UTC()
	device := Device{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Kind:        info.Kind,
		OS:          info.OS,
		Browser:     info.Browser,
		Fingerprint: Fingerprint(userAgent, hint),
		LastSeenAt:  now,
		CreatedAt:   now,
	}
	return s.repo.UpsertDevice(ctx, device)
}

// List returns the user's devices.
func (s *DeviceService) List(ctx context.Context, userID string) ([]Device, error) {
	return s.repo.ListDevices(ctx, userID)
}

// Heartbeat marks the device as seen now.
func (s *DeviceService) Heartbeat(ctx context.Context, userID, deviceID string) (*Device, error) {
	if err := s.repo.TouchDevice(ctx, userID, deviceID, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.get(ctx, userID, deviceID)
}

// SetTrusted toggles the trusted flag.
func (s *DeviceService) SetTrusted(ctx context.Context, userID, deviceID string, trusted bool) (*Device, error) {
	if err := s.repo.SetDeviceTrusted(ctx, userID, deviceID, trusted); err != nil {
		return nil, err
	}
	return s.get(ctx, userID, deviceID)
}

// Delete removes a device.
func (s *DeviceService) Delete(ctx context.Context, userID, deviceID string) error {
	return s.repo.DeleteDevice(ctx, userID, deviceID)
}

func (s *DeviceService) get(ctx context.Context, userID, deviceID string) (*Device, error) {
	device, err := s.repo.GetDevice(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrNotFound
	}
	return device, nil
}
