package rocketchat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/chat-login/internal/core/domain"
)

// Public setting IDs read into domain.AuthSettings
const (
	settingShowFormLogin    = "Accounts_ShowFormLogin"
	settingRegistrationForm = "Accounts_RegistrationForm"
	settingCasEnabled       = "CAS_enabled"
	settingCasLoginURL      = "CAS_login_url"
	settingLdapEnabled      = "LDAP_Enable"
	settingFavicon          = "Assets_favicon"
	settingWideTile         = "Assets_tile_310_wide"
)

var oauthSettings = map[string]domain.OAuthProvider{
	"Accounts_OAuth_Github":   domain.OAuthGitHub,
	"Accounts_OAuth_Google":   domain.OAuthGoogle,
	"Accounts_OAuth_Linkedin": domain.OAuthLinkedIn,
	"Accounts_OAuth_Gitlab":   domain.OAuthGitLab,
	"Accounts_OAuth_Facebook": domain.OAuthFacebook,
	"Accounts_OAuth_Twitter":  domain.OAuthTwitter,
	"Accounts_OAuth_Meteor":   domain.OAuthMeteor,
}

const settingsPageSize = 100

type publicSetting struct {
	ID    string          `json:"_id"`
	Value json.RawMessage `json:"value"`
}

type publicSettingsResponse struct {
	Settings []publicSetting `json:"settings"`
	Count    int             `json:"count"`
	Offset   int             `json:"offset"`
	Total    int             `json:"total"`
}

// PublicSettings returns the server's public authentication settings.
// Settings the server does not send keep their zero value.
func (c *Client) PublicSettings(ctx context.Context) (*domain.AuthSettings, error) {
	settings := &domain.AuthSettings{OAuth: make(map[domain.OAuthProvider]bool)}

	for offset := 0; ; {
		query := url.Values{}
		query.Set("count", strconv.Itoa(settingsPageSize))
		query.Set("offset", strconv.Itoa(offset))

		var resp publicSettingsResponse
		if err := c.do(ctx, http.MethodGet, "/api/v1/settings.public?"+query.Encode(), nil, false, &resp); err != nil {
			return nil, err
		}
		for _, setting := range resp.Settings {
			if err := applySetting(settings, setting); err != nil {
				c.logger.Debug("skipping malformed public setting", "id", setting.ID, "error", err)
			}
		}

		offset += len(resp.Settings)
		if len(resp.Settings) == 0 || offset >= resp.Total {
			break
		}
	}
	return settings, nil
}

func applySetting(settings *domain.AuthSettings, setting publicSetting) error {
	if provider, ok := oauthSettings[setting.ID]; ok {
		enabled, err := boolValue(setting.Value)
		if err != nil {
			return err
		}
		settings.OAuth[provider] = enabled
		return nil
	}

	var err error
	switch setting.ID {
	case settingShowFormLogin:
		settings.LoginFormEnabled, err = boolValue(setting.Value)
	case settingRegistrationForm:
		var form string
		form, err = stringValue(setting.Value)
		settings.RegistrationEnabled = form == "Public"
	case settingCasEnabled:
		settings.CasEnabled, err = boolValue(setting.Value)
	case settingCasLoginURL:
		settings.CasLoginURL, err = stringValue(setting.Value)
	case settingLdapEnabled:
		settings.LdapEnabled, err = boolValue(setting.Value)
	case settingFavicon:
		settings.Favicon, err = assetValue(setting.Value)
	case settingWideTile:
		settings.WideTile, err = assetValue(setting.Value)
	}
	return err
}

func boolValue(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, fmt.Errorf("expected bool: %w", err)
	}
	return b, nil
}

func stringValue(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected string: %w", err)
	}
	return s, nil
}

// assetValue reads an asset setting ({"url": ..., "defaultUrl": ...}).
// The uploaded url wins over the default.
func assetValue(raw json.RawMessage) (*string, error) {
	var asset struct {
		URL        string `json:"url"`
		DefaultURL string `json:"defaultUrl"`
	}
	if err := json.Unmarshal(raw, &asset); err != nil {
		return nil, fmt.Errorf("expected asset: %w", err)
	}
	path := asset.URL
	if path == "" {
		path = asset.DefaultURL
	}
	if path == "" {
		return nil, nil
	}
	return &path, nil
}
