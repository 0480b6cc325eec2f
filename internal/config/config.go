package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tradeforge-xyz/marketplace-engine/common"
	marketplaceconfig "github.com/tradeforge-xyz/marketplace-engine/modules/marketplace/config"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/logger/slogx"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/middleware/requestcontext"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/middleware/requestlogger"
	"github.com/tradeforge-xyz/marketplace-engine/pkg/reportingclient"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkMainnet,
		LedgerNode: LedgerNode{
			URL: "http://localhost:8545",
		},
		HTTPServer: HTTPServer{
			Port: 8080,
		},
	}
)

type Config struct {
	Logger        logger.Config          `mapstructure:"logger"`
	Network       common.Network         `mapstructure:"network"`
	EnableModules []string               `mapstructure:"enable_modules"`
	APIOnly       bool                   `mapstructure:"api_only"`
	LedgerNode    LedgerNode             `mapstructure:"ledger_node"`
	HTTPServer    HTTPServer             `mapstructure:"http_server"`
	Reporting     reportingclient.Config `mapstructure:"reporting"`
	Modules       Modules                `mapstructure:"modules"`
}

type LedgerNode struct {
	URL string `mapstructure:"url"`
}

type HTTPServer struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

type Modules struct {
	Marketplace marketplaceconfig.Config `mapstructure:"marketplace"`
}

// BindPFlag binds a command-line flag to a configuration key.
// Must be called before Parse or Load.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", slogx.String("key", key), slogx.Error(err))
	}
}

// Parse parses the configuration from the given file (or the default
// lookup paths) and environment variables. Subsequent calls return the
// cached configuration.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
		logger.InfoContext(ctx, "loaded config successfully")
	})

	return *config
}

// Load returns the parsed configuration.
func Load() Config {
	return Parse("")
}
