package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	BackendCsv      = "csv"
	BackendSqlite   = "sqlite"
	BackendPostgres = "postgres"
)

var backends = []string{BackendCsv, BackendSqlite, BackendPostgres}

type Application struct {
	Server   Server   `koanf:"server"`
	Storage  Storage  `koanf:"storage"`
	Frontend Frontend `koanf:"frontend"`
	Database Database `koanf:"db"`
	Amqp     Amqp     `koanf:"amqp"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Storage struct {
	Backend    string `koanf:"backend"`
	CsvPath    string `koanf:"csvpath"`
	SqlitePath string `koanf:"sqlitepath"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Amqp publishing is disabled while Url is empty.
type Amqp struct {
	Url      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

func Defaults() Application {
	return Application{
		Server: Server{Addr: ":8080"},
		Storage: Storage{
			Backend:    BackendCsv,
			CsvPath:    "data/expenses.csv",
			SqlitePath: "data/expenses.db",
		},
		Frontend: Frontend{
			Enabled: false,
			Dir:     "static",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "finance",
			Pass:   "",
			Name:   "finance",
			Schema: "public",
		},
		Amqp: Amqp{Exchange: "finance"},
	}
}

// Load reads configuration from defaults, then the YAML file at path, then
// FINANCE_* environment variables. A .env file in the working directory is
// loaded into the environment first when present.
func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "FINANCE_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "FINANCE_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	if err := app.Validate(); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (a Application) Validate() error {
	if !slices.Contains(backends, a.Storage.Backend) {
		return fmt.Errorf("invalid storage backend %q: must be one of %v", a.Storage.Backend, backends)
	}
	switch a.Storage.Backend {
	case BackendCsv:
		if a.Storage.CsvPath == "" {
			return fmt.Errorf("storage.csvpath is required for the %s backend", BackendCsv)
		}
	case BackendSqlite:
		if a.Storage.SqlitePath == "" {
			return fmt.Errorf("storage.sqlitepath is required for the %s backend", BackendSqlite)
		}
	}
	if a.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
