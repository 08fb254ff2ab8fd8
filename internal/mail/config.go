package mail

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
}

// LoadConfig читает настройки почты из .mail.env.
func LoadConfig() *Config {
	v := viper.New()
	v.SetConfigFile(".mail.env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .mail.env file: %v", err)
	}

	v.AutomaticEnv()

	v.SetDefault("MAIL_API_URL", "https://api.sendgrid.com/v3/mail/send")
	v.SetDefault("MAIL_FROM_NAME", "ContractDesk")

	return &Config{
		APIURL:    v.GetString("MAIL_API_URL"),
		APIKey:    v.GetString("MAIL_API_KEY"),
		FromEmail: v.GetString("MAIL_FROM_EMAIL"),
		FromName:  v.GetString("MAIL_FROM_NAME"),
	}
}
