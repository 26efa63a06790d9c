package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	BaseURL           string `mapstructure:"BASE_URL"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB    int    `mapstructure:"REDIS_SESSION_DB"`
	RedisCacheDB      int    `mapstructure:"REDIS_CACHE_DB"`
	RedisTaskQueueDB  int    `mapstructure:"REDIS_TASK_QUEUE_DB"`
	WorkerConcurrency int    `mapstructure:"WORKER_CONCURRENCY"`

	// Conversation policy.
	SessionStore        string        `mapstructure:"SESSION_STORE"`
	MaxRetries          int           `mapstructure:"MAX_RETRIES"`
	SessionIdleTimeout  time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	SweepSchedule       string        `mapstructure:"SWEEP_SCHEDULE"`
	CollaboratorTimeout time.Duration `mapstructure:"COLLABORATOR_TIMEOUT"`

	// Company details spoken to callers.
	CompanyName   string `mapstructure:"COMPANY_NAME"`
	CompanyPhone  string `mapstructure:"COMPANY_PHONE"`
	OfficeAddress string `mapstructure:"OFFICE_ADDRESS"`
	ManagerPhone  string `mapstructure:"MANAGER_PHONE"`
	ManagerEmail  string `mapstructure:"MANAGER_EMAIL"`

	// Pricing.
	MileageFreeRadius float64 `mapstructure:"MILEAGE_FREE_RADIUS"`
	MileageRate       float64 `mapstructure:"MILEAGE_RATE"`
	TravelTimeHours   float64 `mapstructure:"TRAVEL_TIME_HOURS"`
	PackingFee        float64 `mapstructure:"PACKING_FEE"`

	// Twilio.
	TwilioAccountSID       string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken        string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber      string `mapstructure:"TWILIO_PHONE_NUMBER"`
	VoiceName              string `mapstructure:"VOICE_NAME"`
	SpeechLanguage         string `mapstructure:"SPEECH_LANGUAGE"`
	SpeechModel            string `mapstructure:"SPEECH_MODEL"`
	SpeechHints            string `mapstructure:"SPEECH_HINTS"`
	MaxOutboundCallsPerDay int    `mapstructure:"MAX_OUTBOUND_CALLS_PER_DAY"`

	// Feature flags.
	EnableSMSNotifications   bool `mapstructure:"ENABLE_SMS_NOTIFICATIONS"`
	EnableEmailNotifications bool `mapstructure:"ENABLE_EMAIL_NOTIFICATIONS"`
	EnableCallRecording      bool `mapstructure:"ENABLE_CALL_RECORDING"`
	EnableOutboundCalls      bool `mapstructure:"ENABLE_OUTBOUND_CALLS"`

	// Persistence.
	PersistenceBackend string `mapstructure:"PERSISTENCE_BACKEND"`
	GoogleSheetsCreds  string `mapstructure:"GOOGLE_SHEETS_CREDS"`
	BookingSheetID     string `mapstructure:"BOOKING_SHEET_ID"`

	// AWS notification delivery.
	AWSRegion     string `mapstructure:"AWS_REGION"`
	EmailFromAddr string `mapstructure:"EMAIL_FROM_ADDRESS"`
	SMSSenderID   string `mapstructure:"SMS_SENDER_ID"`

	// Intent classification.
	IntentProvider    string `mapstructure:"INTENT_PROVIDER"`
	IntentLLMTransfer bool   `mapstructure:"INTENT_LLM_TRANSFER"`
	OpenAIAPIKey      string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel       string `mapstructure:"OPENAI_MODEL"`
	GeminiAPIKey      string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string `mapstructure:"GEMINI_MODEL"`

	// Google Maps API Key.
	GoogleAPIKey string `mapstructure:"GOOGLE_API_KEY"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "moveline")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_SESSION_DB", 0)
	v.SetDefault("REDIS_CACHE_DB", 1)
	v.SetDefault("REDIS_TASK_QUEUE_DB", 2)
	v.SetDefault("WORKER_CONCURRENCY", 10)

	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("SESSION_IDLE_TIMEOUT", "15m")
	v.SetDefault("SWEEP_SCHEDULE", "@every 1m")
	v.SetDefault("COLLABORATOR_TIMEOUT", "5s")

	v.SetDefault("COMPANY_NAME", "USF Moving Company")
	v.SetDefault("COMPANY_PHONE", "(281) 743-4503")
	v.SetDefault("OFFICE_ADDRESS", "2800 Rolido Dr Apt 238, Houston, TX 77063")
	v.SetDefault("MANAGER_PHONE", "+18327999276")
	v.SetDefault("MANAGER_EMAIL", "")

	v.SetDefault("MILEAGE_FREE_RADIUS", 20.0)
	v.SetDefault("MILEAGE_RATE", 1.0)
	v.SetDefault("TRAVEL_TIME_HOURS", 0.5)
	v.SetDefault("PACKING_FEE", 50.0)

	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_PHONE_NUMBER", "")
	v.SetDefault("VOICE_NAME", "Polly.Joanna")
	v.SetDefault("SPEECH_LANGUAGE", "en-US")
	v.SetDefault("SPEECH_MODEL", "phone_call")
	v.SetDefault("SPEECH_HINTS", "local,long distance,junk removal,in-home service,house,apartment,office,warehouse,yes,no,morning,afternoon,evening,flexible,zip code")
	v.SetDefault("MAX_OUTBOUND_CALLS_PER_DAY", 50)

	v.SetDefault("ENABLE_SMS_NOTIFICATIONS", true)
	v.SetDefault("ENABLE_EMAIL_NOTIFICATIONS", true)
	v.SetDefault("ENABLE_CALL_RECORDING", false)
	v.SetDefault("ENABLE_OUTBOUND_CALLS", true)

	v.SetDefault("PERSISTENCE_BACKEND", "sheets")
	v.SetDefault("GOOGLE_SHEETS_CREDS", "credentials.json")
	v.SetDefault("BOOKING_SHEET_ID", "")

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("EMAIL_FROM_ADDRESS", "")
	v.SetDefault("SMS_SENDER_ID", "")

	v.SetDefault("INTENT_PROVIDER", "keyword")
	v.SetDefault("INTENT_LLM_TRANSFER", false)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")

	v.SetDefault("GOOGLE_API_KEY", "")
}

// Load reads configuration into a fresh Config from the given viper instance.
// A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
