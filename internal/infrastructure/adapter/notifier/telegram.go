package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
)

// DefaultTelegramAPIBase is the public Bot API endpoint
const DefaultTelegramAPIBase = "https://api.telegram.org"

// TelegramNotifier sends a Markdown message through the merchant's own bot
type TelegramNotifier struct {
	apiBase      string
	client       *http.Client
	timeProvider coreport.TimeProvider
}

var _ gateway.PaymentNotifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier creates a notifier. An empty apiBase uses the public Bot API.
func NewTelegramNotifier(apiBase string, client *http.Client, timeProvider coreport.TimeProvider) *TelegramNotifier {
	if apiBase == "" {
		apiBase = DefaultTelegramAPIBase
	}
	if client == nil {
		client = &http.Client{}
	}
	return &TelegramNotifier{
		apiBase:      strings.TrimRight(apiBase, "/"),
		client:       client,
		timeProvider: timeProvider,
	}
}

// Name implements gateway.PaymentNotifier
func (n *TelegramNotifier) Name() string { return "telegram" }

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NotifyPaymentReceived posts to sendMessage when both bot token and chat id are set
func (n *TelegramNotifier) NotifyPaymentReceived(ctx context.Context, merchant *entity.Merchant, tx *entity.Transaction) error {
	if !merchant.Telegram.Enabled() {
		return nil
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    merchant.Telegram.ChatID,
		Text:      PaymentMessage(tx, n.paidAt(tx)),
		ParseMode: "Markdown",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, merchant.Telegram.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// the URL carries the bot token
		return fmt.Errorf("telegram sendMessage: %w", unwrapURLError(err))
	}
	defer resp.Body.Close()

	var body sendMessageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil && resp.StatusCode == http.StatusOK {
		return fmt.Errorf("telegram sendMessage: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !body.OK {
		return fmt.Errorf("telegram sendMessage: status %d: %s", resp.StatusCode, body.Description)
	}
	return nil
}

func (n *TelegramNotifier) paidAt(tx *entity.Transaction) time.Time {
	if tx.FinalizedAt != nil {
		return *tx.FinalizedAt
	}
	return n.timeProvider.Now()
}

// markdownEscaper escapes the entity markers of Telegram's legacy Markdown.
// Descriptions come from store customers.
var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// PaymentMessage renders the Markdown text sent for a paid transaction
func PaymentMessage(tx *entity.Transaction, paidAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Pembayaran %s Berhasil Diterima*\n\n", tx.Category)
	fmt.Fprintf(&b, "*ID Transaksi:* `%s`\n", tx.TransactionID)
	fmt.Fprintf(&b, "*Jumlah:* *%s*\n", entity.FormatRupiah(tx.Amount))
	if tx.Description != "" {
		fmt.Fprintf(&b, "*Keterangan:* %s\n", markdownEscaper.Replace(tx.Description))
	}
	fmt.Fprintf(&b, "*Tanggal:* %s\n\nTerima kasih!", paidAt.Format("02/01/2006 15:04:05"))
	return b.String()
}
