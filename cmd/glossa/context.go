package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"glossa/internal/config"
	"glossa/internal/server"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string
	ownerFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	client *http.Client
}

func newCommandContext(apiFlag, configFlag, ownerFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
		configFlag: configFlag,
		ownerFlag:  ownerFlag,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiBase resolves the daemon's base URL: the --api flag, then GLOSSA_API,
// then the configured bind address.
func (c *commandContext) apiBase() (string, error) {
	if c.apiFlag != nil {
		if base := strings.TrimSpace(*c.apiFlag); base != "" {
			return strings.TrimRight(base, "/"), nil
		}
	}
	if base := strings.TrimSpace(os.Getenv("GLOSSA_API")); base != "" {
		return strings.TrimRight(base, "/"), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return "http://" + cfg.Paths.APIBind, nil
}

func (c *commandContext) owner() string {
	if c.ownerFlag != nil {
		if owner := strings.TrimSpace(*c.ownerFlag); owner != "" {
			return owner
		}
	}
	return strings.TrimSpace(os.Getenv("GLOSSA_OWNER"))
}

func (c *commandContext) apiURL(path string) (string, error) {
	base, err := c.apiBase()
	if err != nil {
		return "", err
	}
	return base + path, nil
}

// getJSON issues a GET and decodes the JSON payload into out.
func (c *commandContext) getJSON(path string, out any) error {
	url, err := c.apiURL(path)
	if err != nil {
		return err
	}
	resp, err := c.client.Get(url)
	if err != nil {
		return wrapDialError(err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

// postJSON issues a bodyless POST and decodes the JSON payload into out.
func (c *commandContext) postJSON(path string, out any) error {
	url, err := c.apiURL(path)
	if err != nil {
		return err
	}
	resp, err := c.client.Post(url, "", nil)
	if err != nil {
		return wrapDialError(err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}

// apiError converts an error response into a readable CLI error.
func apiError(resp *http.Response) error {
	var payload server.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("daemon: %s", payload.Error)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}

func wrapDialError(err error) error {
	return fmt.Errorf("connect to daemon: %w (is glossad running? start it with `glossa serve`)", err)
}
