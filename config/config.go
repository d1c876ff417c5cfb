// config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server  ServerConfiguration
	Gateway GatewayConfiguration
	Cache   CacheConfiguration
	Cart    CartConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// GatewayConfiguration stores data for the remote service gateway
type GatewayConfiguration struct {
	BaseURL string
	Timeout string
}

// CacheConfiguration stores settings for the server-state cache
type CacheConfiguration struct {
	StaleAfter string
}

// CartConfiguration stores settings for the persisted cart store
type CartConfiguration struct {
	StorageDir string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("gateway.baseURL", "http://localhost:9000")
	viper.SetDefault("gateway.timeout", "10s")
	viper.SetDefault("cache.staleAfter", "0") // 0 => entries only go stale via invalidation
	viper.SetDefault("cart.storageDir", ".jeevan")
	viper.SetDefault("identity.principal", "anonymous")
	viper.SetDefault("log.dir", "")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
