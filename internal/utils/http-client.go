package utils

import (
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/publicsuffix"
)

// DriveHTTPClient issues requests with the configured user agent, extra headers and cookie
// jar. It never retries; retry decisions belong to the download engine.
type DriveHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewDriveHTTPClient(cfg HTTPClientConfig) *DriveHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = DefaultKATimeout
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.Timeout,
		ResponseHeaderTimeout: cfg.Timeout,
		IdleConnTimeout:       cfg.KATimeout,
		MaxIdleConns:          10,
		DisableCompression:    true,
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err == nil {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}
	return &DriveHTTPClient{
		// No overall client timeout: bodies can be several GB. Inactivity is bounded by the
		// transport timeouts above and by the engine's read watchdog.
		client: &http.Client{Transport: transport},
		config: cfg,
	}
}

func (d *DriveHTTPClient) Timeout() time.Duration {
	return d.config.Timeout
}

// SetCookies attaches cookies for rawURL's host through a fresh public-suffix aware jar,
// replacing any previous jar.
func (d *DriveHTTPClient) SetCookies(rawURL string, cookies map[string]string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid cookie URL: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return fmt.Errorf("error creating cookie jar: %w", err)
	}
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	jar.SetCookies(u, httpCookies)
	d.client.Jar = jar
	return nil
}

func (d *DriveHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if d.config.UserAgent != "" {
		req.Header.Set("User-Agent", d.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", DefaultUserAgent)
	}
	for k, v := range d.config.Headers {
		req.Header.Set(k, v)
	}
	return d.client.Do(req)
}
