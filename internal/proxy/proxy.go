package proxy

import (
	"math/rand"
	"net/http"
	"net/url"

	"github.com/pagedigest/webpage-digest/internal/config"
)

// Manager handles proxy selection for outbound thumbnail downloads. Page
// loads go through the browser session and are not routed here.
type Manager struct {
	Config *config.ProxyConfig
}

// NewManager creates a new proxy manager
func NewManager(config *config.ProxyConfig) *Manager {
	return &Manager{
		Config: config,
	}
}

// GetProxyURL returns a proxy URL from the configuration, or nil when
// proxying is disabled or no proxies are listed.
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if !m.Config.Enabled || len(m.Config.List) == 0 {
		return nil, nil
	}

	proxyStr := m.Config.List[0]
	if m.Config.Rotate && len(m.Config.List) > 1 {
		proxyStr = m.Config.List[rand.Intn(len(m.Config.List))]
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, err
	}

	if m.Config.Auth.Username != "" && m.Config.Auth.Password != "" {
		proxyURL.User = url.UserPassword(m.Config.Auth.Username, m.Config.Auth.Password)
	}

	return proxyURL, nil
}

// ApplyToTransport applies the selected proxy to an HTTP transport and
// returns the proxy address that was applied, if any.
func (m *Manager) ApplyToTransport(transport *http.Transport) (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil {
		return "", err
	}

	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
		return proxyURL.String(), nil
	}

	return "", nil
}
