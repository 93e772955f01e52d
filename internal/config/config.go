package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Telegram Telegram `koanf:"telegram"`
	OpenAI   OpenAI   `koanf:"openai"`
	Google   Google   `koanf:"google"`
	Sheets   Sheets   `koanf:"sheets"`
	Expense  Expense  `koanf:"expense"`
	Display  Display  `koanf:"display"`
}

type Server struct {
	Port int `koanf:"port"`
}

type Telegram struct {
	Token string `koanf:"token"`
}

type OpenAI struct {
	ApiKey string `koanf:"apikey"`
	Model  string `koanf:"model"`
}

type Google struct {
	CredentialsFile string `koanf:"credentialsfile"`
	CalendarId      string `koanf:"calendarid"`
}

type Sheets struct {
	SpreadsheetName string `koanf:"spreadsheetname"`
	WorksheetName   string `koanf:"worksheetname"`
}

type Expense struct {
	Categories []string `koanf:"categories"`
}

type Display struct {
	Timezone  string `koanf:"timezone"`
	MaxEvents int    `koanf:"maxevents"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Server: Server{
			Port: 8181,
		},
		OpenAI: OpenAI{
			Model: "gpt-3.5-turbo",
		},
		Google: Google{
			CredentialsFile: "credentials/google_credentials.json",
			CalendarId:      "primary",
		},
		Sheets: Sheets{
			SpreadsheetName: "Expense Tracker",
			WorksheetName:   "Expenses",
		},
		Expense: Expense{
			Categories: []string{
				"Alimentari",
				"Trasporti",
				"Casa",
				"Bollette",
				"Salute",
				"Intrattenimento",
				"Abbigliamento",
				"Regali",
				"Altro",
			},
		},
		Display: Display{
			Timezone:  "Europe/Rome",
			MaxEvents: 10,
		},
	}, "koanf"), nil)
	if err != nil {
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

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "SPENDARIO_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "SPENDARIO_")), "_", ".")
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

	return app, nil
}
