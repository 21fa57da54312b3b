package config

import "os"

func IsDebug() bool {
	return os.Getenv("SOLACE_DEBUG") == "1"
}

func GetRuntimePath() string {
	path := os.Getenv("SOLACE_RUNTIME_PATH")
	if path == "" {
		path = ".solace"
	}
	return path
}
