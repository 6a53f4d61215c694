package logger

// Configure applies settings-driven logging options: a minimum level by name
// and, when filePath is non-empty, an additional size-rotated file sink.
// Unknown level names keep the current level.
func Configure(levelName, filePath string) {
	if levelName != "" {
		if level, ok := ParseLogLevel(levelName); ok {
			defaultLevel.SetLevel(level)
		}
	}

	if filePath != "" {
		SetLogger(NewWithRotatingFile(defaultLevel, filePath))
	}
}
