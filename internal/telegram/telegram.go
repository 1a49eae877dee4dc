// Package telegram pushes trade notifications to the configured chat.
// Delivery is best effort: a failed or unconfigured send is logged and
// never fails the trading cycle that triggered it.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

var hc = &http.Client{Timeout: 10 * time.Second}

// Notify sends a Markdown message to the configured Telegram chat.
func Notify(text string) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		return
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", token)
	payload := map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, _ := json.Marshal(payload)
	resp, err := hc.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		log.Printf("Telegram notify failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("Telegram API error: status %s", resp.Status)
	}
}
