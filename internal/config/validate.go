package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.UploadDir == "" {
		return errors.New("paths.upload_dir must be set")
	}
	if c.Paths.WorkspaceDir == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	if c.Paths.UploadDir == c.Paths.WorkspaceDir {
		return errors.New("paths.upload_dir and paths.workspace_dir must differ: the workspace is cleared before every run")
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.ScriptDir == "" {
		return errors.New("pipeline.script_dir must be set")
	}
	if c.Pipeline.Interpreter == "" {
		return errors.New("pipeline.interpreter must be set")
	}
	if c.Pipeline.StageTimeout < 0 {
		return fmt.Errorf("pipeline.stage_timeout must not be negative, got %d", c.Pipeline.StageTimeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
