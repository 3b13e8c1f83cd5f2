package config

import (
	"github.com/spf13/viper"
)

// The service runs in EKS with DB connection variables set as environment
// variables on the pod; AWS config and the queue URLs are handled the same.

type Config struct {
	DBHost             string `mapstructure:"DB_HOST"`
	DBPort             string `mapstructure:"DB_PORT"`
	DBUser             string `mapstructure:"DB_USER"`
	DBPassword         string `mapstructure:"DB_PASSWORD"`
	DBName             string `mapstructure:"DB_NAME"`
	ServerPort         string `mapstructure:"SERVER_PORT"`
	AWSRegion          string `mapstructure:"AWS_REGION"`
	PayslipSQSQueueURL string `mapstructure:"PAYSLIP_SQS_QUEUE_URL"`
	ExportSQSQueueURL  string `mapstructure:"EXPORT_SQS_QUEUE_URL"`
	AWSEndpoint        string `mapstructure:"AWS_ENDPOINT"`
	AccountingAPIURL   string `mapstructure:"ACCOUNTING_API_URL"`
	EmailSender        string `mapstructure:"EMAIL_SENDER"`
	EmailDomain        string `mapstructure:"EMAIL_DOMAIN"`
	IsLocalDev         bool   `mapstructure:"IS_LOCAL_DEV"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "timecard_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AWS_REGION", "us-east-1") // Default region for AWS services
	viper.SetDefault("PAYSLIP_SQS_QUEUE_URL", "http://localstack:4566/000000000000/payslip-queue")
	viper.SetDefault("EXPORT_SQS_QUEUE_URL", "http://localstack:4566/000000000000/export-queue")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("ACCOUNTING_API_URL", "http://localhost:8081/")
	viper.SetDefault("EMAIL_SENDER", "payroll@timecard-service.com")
	viper.SetDefault("EMAIL_DOMAIN", "timecard-service.com")
	viper.SetDefault("IS_LOCAL_DEV", false)

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
