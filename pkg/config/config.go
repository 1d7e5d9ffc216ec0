// Package config builds the static runtime configuration from the
// environment. All values are inputs to the core; nothing here is
// re-read after startup.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/carismo/shopmail/pkg/classify"
)

// Config holds everything the bot needs: the shop mailbox identity, the
// watched Slack channel, the fixed forward recipient list and the
// credentials for both platform boundaries.
type Config struct {
	ShopAddress  string
	WatchChannel string

	// ForwardChoices is the fixed set of team addresses offered in the
	// forward recipient picker.
	ForwardChoices []string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	SlackBotToken string
	SlackAppToken string
}

const defaultShopAddress = "shop@carismodesign.com"

// Load reads configuration from the environment. Secrets are required;
// the shop address falls back to the default mailbox.
func Load() (*Config, error) {
	cfg := &Config{
		ShopAddress:       strings.ToLower(envOrDefault("SHOP_FROM_EMAIL", defaultShopAddress)),
		WatchChannel:      firstNonEmpty(os.Getenv("WATCH_CHANNEL_ID"), os.Getenv("FORWARD_CHANNEL_ID")),
		GmailClientID:     os.Getenv("GMAIL_CLIENT_ID"),
		GmailClientSecret: os.Getenv("GMAIL_CLIENT_SECRET"),
		GmailRedirectURI:  os.Getenv("GMAIL_REDIRECT_URI"),
		GmailRefreshToken: os.Getenv("GMAIL_REFRESH_TOKEN"),
		SlackBotToken:     os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken:     os.Getenv("SLACK_APP_TOKEN"),
	}

	cfg.ForwardChoices = classify.ParseAddressList(envOrDefault("FORWARD_CHOICES", defaultForwardChoices))
	if len(cfg.ForwardChoices) == 0 {
		return nil, fmt.Errorf("FORWARD_CHOICES contains no valid addresses")
	}

	if cfg.WatchChannel == "" {
		return nil, fmt.Errorf("WATCH_CHANNEL_ID not set")
	}
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" || cfg.GmailRedirectURI == "" {
		return nil, fmt.Errorf("missing Gmail OAuth env: GMAIL_CLIENT_ID/SECRET/REDIRECT_URI")
	}
	if cfg.GmailRefreshToken == "" {
		return nil, fmt.Errorf("GMAIL_REFRESH_TOKEN not set")
	}
	if cfg.SlackBotToken == "" || cfg.SlackAppToken == "" {
		return nil, fmt.Errorf("missing Slack env: SLACK_BOT_TOKEN/SLACK_APP_TOKEN")
	}

	return cfg, nil
}

const defaultForwardChoices = "kenny@carismodesign.com," +
	"kevinl@carismodesign.com," +
	"irish@carismodesign.com," +
	"k@carismodesign.com," +
	"shop@carismodesign.com," +
	"nicholas@carismodesign.com"

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
