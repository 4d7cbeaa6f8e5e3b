// Command pagerscot runs the pagerscot slack bot with the pagerduty plugin
package main

import (
	"github.com/alexandre-normand/pagerscot"
	"github.com/alexandre-normand/pagerscot/config"
	"github.com/alexandre-normand/pagerscot/plugins"
	"github.com/alexandre-normand/pagerscot/store"
	"github.com/alexandre-normand/pagerscot/store/datastoredb"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
	"gopkg.in/alecthomas/kingpin.v2"
	"log"
	"os"
	"strings"
)

const (
	name      = "pagerscot"
	envPrefix = "PAGERSCOT"
)

var (
	configurationPath = kingpin.Flag("configuration", "path to the configuration file").Required().String()
	envFile           = kingpin.Flag("env-file", "path to a .env file with environment overrides").Default(".env").String()
	logfile           = kingpin.Flag("log", "path to the log file, logging goes to stdout if not set").String()
)

func main() {
	kingpin.Version(pagerscot.VERSION)
	kingpin.Parse()

	if err := loadEnv(*envFile); err != nil {
		log.Fatal(err)
	}

	v, err := loadConfig(*configurationPath)
	if err != nil {
		log.Fatal(err)
	}

	options := make([]pagerscot.Option, 0)
	if *logfile != "" {
		lf, err := os.OpenFile(*logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("Unable to open log file [%s]: %v", *logfile, err)
		}
		defer lf.Close()

		options = append(options, pagerscot.OptionLogfile(lf))
	}

	storer, err := newStorer(v)
	if err != nil {
		log.Fatalf("Opening [%s] db failed: %v", plugins.PagerDutyPluginName, err)
	}

	bot, err := pagerscot.NewBot(name, v, options...).
		WithConfigurablePluginErr(plugins.PagerDutyPluginName, func(c *config.PluginConfig) (*pagerscot.Plugin, error) {
			return plugins.NewPagerDuty(c, storer)
		}).
		WithCloser(storer).
		Build()
	if err != nil {
		storer.Close()
		log.Fatal(err)
	}
	defer bot.Close()

	if err = bot.Run(); err != nil {
		log.Fatal(err)
	}
}

// loadEnv loads environment variables from the .env file, if there's one
func loadEnv(path string) (err error) {
	if err = godotenv.Load(path); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return errors.Wrapf(err, "Error loading env file [%s]", path)
	}

	return nil
}

// loadConfig reads the configuration file and layers the defaults under it. Every key can be overridden
// by an environment variable (i.e. PAGERSCOT_PLUGINS_PAGERDUTY_APIKEY for plugins.pagerduty.apiKey)
func loadConfig(path string) (v *viper.Viper, err error) {
	v = config.LayerConfigWithDefaults(viper.New())
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "Error loading configuration file [%s]", path)
	}

	if v.GetString(config.TokenKey) == "" {
		return nil, errors.Errorf("Missing slack token, set [%s] in [%s] or %s_%s in the environment", config.TokenKey, path, envPrefix, strings.ToUpper(config.TokenKey))
	}

	return v, nil
}

// newStorer opens the storage backend holding the pagerduty registrations
func newStorer(v *viper.Viper) (storer store.StringStorer, err error) {
	switch backend := v.GetString(config.StorageBackendKey); backend {
	case config.LevelDBBackend:
		return store.NewLevelDB(plugins.PagerDutyPluginName, v.GetString(config.StoragePathKey))
	case config.DatastoreBackend:
		opts := make([]option.ClientOption, 0)
		if credentialsFile := v.GetString(config.GCloudCredentialsFileKey); credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}

		return datastoredb.New(plugins.PagerDutyPluginName, v.GetString(config.GCloudProjectIDKey), opts...)
	default:
		return nil, errors.Errorf("Unknown storage backend [%s], should be one of [%s, %s]", backend, config.LevelDBBackend, config.DatastoreBackend)
	}
}
