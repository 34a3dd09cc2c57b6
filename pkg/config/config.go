package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"wakelight/pkg/govee"
)

// Default Govee endpoints. Both stay overridable because the app has always
// treated them as part of the stored credentials.
const (
	defaultControlURL = "https://openapi.api.govee.com/router/api/v1/device/control"
	defaultDevicesURL = "https://openapi.api.govee.com/router/api/v1/user/devices"
)

// Init reads the config file and matching environment variables.
func Init(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".wakelight" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wakelight")
	}

	viper.SetEnvPrefix("wakelight")
	viper.AutomaticEnv()

	viper.SetDefault("listen", "127.0.0.1:8089")
	viper.SetDefault("tick_interval", "1s")
	viper.SetDefault("url_post", defaultControlURL)
	viper.SetDefault("url_get", defaultDevicesURL)
	viper.SetDefault("store_path", filepath.Join(dataDir(), "store.json"))
	viper.SetDefault("sound_dir", filepath.Join(dataDir(), "sounds"))

	// Missing config file is fine; credentials then come from env or login.
	_ = viper.ReadInConfig()
}

func dataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "wakelight")
}

// StorePath returns the alarm store file path.
func StorePath() string {
	return viper.GetString("store_path")
}

// SoundDir returns the directory holding bundled alarm sounds.
func SoundDir() string {
	return viper.GetString("sound_dir")
}

// ListenAddr returns the control API listen address.
func ListenAddr() string {
	return viper.GetString("listen")
}

// TickInterval returns the foreground scheduler cadence.
func TickInterval() time.Duration {
	return viper.GetDuration("tick_interval")
}

// Gateway builds the Govee client configuration from the stored credentials.
func Gateway() (govee.Config, error) {
	apiKey := viper.GetString("api_key")
	if apiKey == "" {
		return govee.Config{}, fmt.Errorf("no API key configured; run 'wakelight login' first")
	}
	return govee.Config{
		APIKey:     apiKey,
		ControlURL: viper.GetString("url_post"),
		DevicesURL: viper.GetString("url_get"),
		Timeout:    15 * time.Second,
	}, nil
}

// SaveCredentials persists the API key and endpoint URLs to the config file.
func SaveCredentials(apiKey, urlGet, urlPost string) error {
	viper.Set("api_key", apiKey)
	if urlGet != "" {
		viper.Set("url_get", urlGet)
	}
	if urlPost != "" {
		viper.Set("url_post", urlPost)
	}

	if err := viper.WriteConfig(); err != nil {
		// If the file doesn't exist yet, create it.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return viper.SafeWriteConfig()
		}
		home, _ := os.UserHomeDir()
		path := filepath.Join(home, ".wakelight.yaml")
		return viper.WriteConfigAs(path)
	}
	return nil
}
