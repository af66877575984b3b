package main

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"imagehost/api"
)

func ParseArgs() Args {
	// 有 .env 時先載入，找不到檔案不視為錯誤
	_ = godotenv.Load()

	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("host-server", "", "base URL used to build public image links")
	pflag.String("log-level", "info", "debug, info, warn or error")

	// upload config
	pflag.String("upload-folder", "uploads", "")
	pflag.Int64("upload-max-size", 0, "max bytes per image, 0 means unlimited")
	pflag.Bool("serve-static", true, "serve the upload folder from this server")

	// storage config
	pflag.String("storage-driver", api.StorageDriverDisk, "disk or s3")
	pflag.String("storage-root", ".", "root directory of the disk storage")

	// s3 config
	pflag.String("s3-endpoint", "", "")
	pflag.String("s3-region", "auto", "")
	pflag.String("s3-bucket", "", "")
	pflag.String("s3-access-key-id", "", "")
	pflag.String("s3-secret-access-key", "", "")
	pflag.Bool("s3-use-path-style", false, "")

	// db config
	pflag.String("db-driver", api.DBDriverPostgres, "postgres or sqlite")
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "database name, or file path for sqlite")
	pflag.String("db-schema", "", "")
	pflag.Bool("db-auto-migrate", false, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("IMAGEHOST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		LogLevel:  parseLogLevel(viper.GetString("log-level")),
		ServerConfig: api.ServerConfig{
			HostServer: viper.GetString("host-server"),
			Upload: api.UploadConfig{
				Folder:      viper.GetString("upload-folder"),
				MaxSize:     viper.GetInt64("upload-max-size"),
				ServeStatic: viper.GetBool("serve-static"),
			},
			Storage: api.StorageConfig{
				Driver: viper.GetString("storage-driver"),
				Root:   viper.GetString("storage-root"),
			},
			S3: api.S3Config{
				Endpoint:        viper.GetString("s3-endpoint"),
				Region:          viper.GetString("s3-region"),
				Bucket:          viper.GetString("s3-bucket"),
				AccessKeyID:     viper.GetString("s3-access-key-id"),
				SecretAccessKey: viper.GetString("s3-secret-access-key"),
				UsePathStyle:    viper.GetBool("s3-use-path-style"),
			},
			DB: api.DBConfig{
				Driver:      viper.GetString("db-driver"),
				User:        viper.GetString("db-user"),
				Password:    viper.GetString("db-password"),
				Host:        viper.GetString("db-host"),
				Port:        viper.GetInt("db-port"),
				Database:    viper.GetString("db-database"),
				Schema:      viper.GetString("db-schema"),
				AutoMigrate: viper.GetBool("db-auto-migrate"),
			},
		},
	}
}

type Args struct {
	ServerURL    string
	LogLevel     slog.Level
	ServerConfig api.ServerConfig
}

func (args Args) Validate() bool {
	return args.ServerURL != "" && args.ServerConfig.HostServer != "" && args.ServerConfig.Upload.Folder != ""
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
