package config

import "github.com/spf13/viper"

// Logger logger config struct
type Logger struct {
	Level       int
	Path        string
	Format      string
	Output      string
	OutputFile  string
	Desensitize bool
}

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:       intSetting(v, "logger.level", 4),
		Format:      stringSetting(v, "logger.format", "text"),
		Path:        v.GetString("logger.path"),
		Output:      stringSetting(v, "logger.output", "stdout"),
		OutputFile:  v.GetString("logger.output_file"),
		Desensitize: v.GetBool("logger.desensitize"),
	}
}
