// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command storefront runs the 5thJohnson storefront backend.
//
// Configuration comes from environment variables.
//
// # Environment Variables
//
//   - PORT: HTTP server port (default: 5000)
//   - MONGODB_URI: MongoDB connection string (required)
//   - MONGODB_DATABASE: database name (default: storefront)
//   - JWT_SECRET: account token signing key (required)
//   - ADMIN_API_KEY: key for /v1/admin routes (empty disables them)
//   - GIN_MODE: gin mode - debug, release, test
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_DIR: enables JSON file logging when set
//   - PRODUCT_CACHE_TTL_SECONDS: product listing cache TTL (default: 3600)
//   - COLLECTION_CACHE_TTL_SECONDS: collection listing cache TTL (default: 7200)
//   - RATE_LIMIT_RPS / RATE_LIMIT_BURST: per-IP limiter settings
//   - SMTP_HOST / SMTP_PORT / SMTP_USER / SMTP_PASSWORD / SMTP_FROM
//   - WHATSAPP_PHONE_ID / WHATSAPP_ACCESS_TOKEN / ALERT_PHONE
//   - CLOUDINARY_CLOUD_NAME / CLOUDINARY_API_KEY / CLOUDINARY_API_SECRET
//
// # Usage
//
//	# Run the API server
//	storefront serve
//
//	# Load sample catalog data (development only)
//	storefront seed
//	storefront seed --drop
package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fifthjohnson/storefront/services/catalog"
	"github.com/fifthjohnson/storefront/services/catalog/imagestore"
	"github.com/fifthjohnson/storefront/services/catalog/notify"
	"github.com/fifthjohnson/storefront/services/catalog/seed"
	"github.com/fifthjohnson/storefront/services/catalog/store"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "5thJohnson storefront backend",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := catalog.New(cmd.Context(), configFromEnv())
		if err != nil {
			return err
		}
		return svc.Run()
	},
}

var seedDrop bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample catalog data into MongoDB",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromEnv()
		if cfg.MongoURI == "" {
			return errMissingEnv("MONGODB_URI")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		client, err := store.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		db := client.Database(cfg.Database)
		return seed.Run(ctx, db, seed.Options{Drop: seedDrop})
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDrop, "drop", false, "drop catalog collections before seeding")
	rootCmd.AddCommand(serveCmd, seedCmd)
}

// configFromEnv assembles the service configuration from the process
// environment.
func configFromEnv() catalog.Config {
	return catalog.Config{
		Port:        getEnvInt("PORT", 5000),
		MongoURI:    os.Getenv("MONGODB_URI"),
		Database:    getEnvString("MONGODB_DATABASE", "storefront"),
		GinMode:     os.Getenv("GIN_MODE"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
		LogLevel:    getEnvString("LOG_LEVEL", "info"),
		LogDir:      os.Getenv("LOG_DIR"),

		ProductCacheTTL:    time.Duration(getEnvInt("PRODUCT_CACHE_TTL_SECONDS", 3600)) * time.Second,
		CollectionCacheTTL: time.Duration(getEnvInt("COLLECTION_CACHE_TTL_SECONDS", 7200)) * time.Second,
		RateLimitPerSecond: float64(getEnvInt("RATE_LIMIT_RPS", 20)),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),

		SMTP: notify.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		WhatsApp: notify.WhatsAppConfig{
			PhoneID:     os.Getenv("WHATSAPP_PHONE_ID"),
			AccessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		},
		AlertPhone: os.Getenv("ALERT_PHONE"),

		Cloudinary: imagestore.Config{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
	}
}

type errMissingEnv string

func (e errMissingEnv) Error() string {
	return "required environment variable " + string(e) + " is not set"
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
