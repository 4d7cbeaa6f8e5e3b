// Package config provides the configuration keys, defaults and helpers to
// load a pagerscot configuration backed by github.com/spf13/viper
package config

import (
	"fmt"
	"github.com/spf13/viper"
	"time"
)

// PluginConfig is the configuration sub-tree of a single plugin
type PluginConfig = viper.Viper

// Configuration keys
const (
	TokenKey                    = "token"                     // Slack bot token, string value
	DebugKey                    = "debug"                     // Debug mode, boolean value
	UserInfoCacheSizeKey        = "userInfoCacheSize"         // The number of entries to keep in the user info cache, int value. 0 disables caching
	TimeLocationKey             = "timeLocation"              // The time location to use for scheduled actions, string value (i.e. "America/Los_Angeles")
	ThreadedRepliesKey          = "replyBehavior.threadedReplies"
	BroadcastThreadedRepliesKey = "replyBehavior.broadcast"
	StorageBackendKey           = "storage.backend"             // One of "leveldb" or "datastore"
	StoragePathKey              = "storage.path"                // Directory for leveldb databases
	GCloudProjectIDKey          = "storage.gcloudProjectID"     // Google Cloud project for the datastore backend
	GCloudCredentialsFileKey    = "storage.gcloudCredentialsFile"
	PluginsKey                  = "plugins"
)

// Storage backends
const (
	LevelDBBackend   = "leveldb"
	DatastoreBackend = "datastore"
)

const (
	defaultTimeLocation      = "Local"
	defaultUserInfoCacheSize = 0
	defaultStoragePath       = "~/.pagerscot"
)

// NewViperWithDefaults creates a new viper instance with the default values set
func NewViperWithDefaults() (v *viper.Viper) {
	v = viper.New()
	setDefaults(v)

	return v
}

// LayerConfigWithDefaults layers the default values under an existing viper instance.
// Values already set take precedence over the defaults
func LayerConfigWithDefaults(v *viper.Viper) *viper.Viper {
	setDefaults(v)

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(DebugKey, false)
	v.SetDefault(UserInfoCacheSizeKey, defaultUserInfoCacheSize)
	v.SetDefault(TimeLocationKey, defaultTimeLocation)
	v.SetDefault(ThreadedRepliesKey, false)
	v.SetDefault(BroadcastThreadedRepliesKey, false)
	v.SetDefault(StorageBackendKey, LevelDBBackend)
	v.SetDefault(StoragePathKey, defaultStoragePath)
}

// GetTimeLocation returns the time location from the configuration
func GetTimeLocation(v *viper.Viper) (timeLoc *time.Location, err error) {
	timeLoc, err = time.LoadLocation(v.GetString(TimeLocationKey))
	if err != nil {
		return nil, fmt.Errorf("Unable to load time location [%s]: %v", v.GetString(TimeLocationKey), err)
	}

	return timeLoc, nil
}

// GetPluginConfig returns the viper sub-tree for a plugin configuration. If the configuration
// for the given plugin is missing, an error is returned along with a nil PluginConfig
func GetPluginConfig(v *viper.Viper, name string) (pc *PluginConfig, err error) {
	pluginKey := fmt.Sprintf("%s.%s", PluginsKey, name)

	if pc = v.Sub(pluginKey); pc == nil {
		return nil, fmt.Errorf("Missing plugin configuration for plugin [%s]", name)
	}

	return pc, nil
}
