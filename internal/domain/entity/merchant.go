package entity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// apiKeyBytes is the amount of random data behind a merchant API key
const apiKeyBytes = 24

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

// TelegramSettings holds the bot used to notify a merchant about paid transactions
type TelegramSettings struct {
	BotToken string
	ChatID   string
}

// Enabled reports whether both the bot token and the chat id are configured
func (t TelegramSettings) Enabled() bool {
	return strings.TrimSpace(t.BotToken) != "" && strings.TrimSpace(t.ChatID) != ""
}

// StoreProfile is the public checkout page of a merchant
type StoreProfile struct {
	Name    string
	LogoURL string
}

// Enabled reports whether the merchant opened its public store
func (s StoreProfile) Enabled() bool {
	return strings.TrimSpace(s.Name) != ""
}

// Merchant represents an account accepting payments through the gateway
type Merchant struct {
	ID                uint64           // Unique identifier for the merchant
	Username          string           // Unique login and store slug
	Email             string           // Contact address for success notifications
	APIKeyHash        string           // SHA256 of the API key, the plain key is never stored
	Verified          bool             // Only verified merchants may call the API
	DailyRequestLimit int64            // Maximum API calls per day, 0 means unlimited
	NotifyEmail       bool             // Send an email for each successful payment
	Telegram          TelegramSettings // Optional Telegram notifier settings
	Store             StoreProfile     // Optional public store
	CreatedAt         time.Time        // When the merchant was created
	UpdatedAt         time.Time        // When the merchant was last updated
}

// NewMerchant creates a merchant and issues its first API key.
// The plain API key is returned once and must be handed to the merchant.
func NewMerchant(username, email string, timeProvider coreport.TimeProvider) (*Merchant, string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return nil, "", errs.NewValidationError("username", "must be 3-32 lowercase letters, digits or underscores", nil)
	}

	apiKey, err := GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}

	now := timeProvider.Now()
	return &Merchant{
		Username:   username,
		Email:      strings.TrimSpace(email),
		APIKeyHash: HashAPIKey(apiKey),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, apiKey, nil
}

// RotateAPIKey replaces the API key and returns the new plain key
func (m *Merchant) RotateAPIKey(timeProvider coreport.TimeProvider) (string, error) {
	apiKey, err := GenerateAPIKey()
	if err != nil {
		return "", err
	}
	m.APIKeyHash = HashAPIKey(apiKey)
	m.UpdatedAt = timeProvider.Now()
	return apiKey, nil
}

// CanUseAPI checks the account state required before any API call
func (m *Merchant) CanUseAPI() error {
	if !m.Verified {
		return errs.ErrMerchantNotVerified
	}
	return nil
}

// GenerateAPIKey returns 24 random bytes encoded as hex
func GenerateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashAPIKey returns the lookup hash stored for an API key
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(apiKey)))
	return hex.EncodeToString(sum[:])
}
