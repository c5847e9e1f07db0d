// Package config loads typed configuration structs from environment
// variables (github.com/caarlos0/env) with optional .env support for local
// development (github.com/joho/godotenv). Each config type is parsed once
// per process and cached.
package config
