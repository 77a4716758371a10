package config

const (
	defaultUploadDir    = "~/.local/share/glossa/uploads"
	defaultWorkspaceDir = "~/.local/share/glossa/workspace"
	defaultDataDir      = "~/.local/share/glossa/data"
	defaultLogDir       = "~/.local/share/glossa/logs"
	defaultAPIBind      = "127.0.0.1:8731"
	defaultScriptDir    = "~/.local/share/glossa/stages"
	defaultInterpreter  = "python3"
	defaultStageTimeout = 0
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir:    defaultUploadDir,
			WorkspaceDir: defaultWorkspaceDir,
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Pipeline: Pipeline{
			ScriptDir:    defaultScriptDir,
			Interpreter:  defaultInterpreter,
			StageTimeout: defaultStageTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
