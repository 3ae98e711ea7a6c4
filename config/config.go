package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 애플리케이션 전역 설정
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	SMS       SMSConfig       `mapstructure:"sms"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch"`
	Report    ReportConfig    `mapstructure:"report"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Feature   FeatureConfig   `mapstructure:"feature"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 교차 출처 설정
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 설정
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 분
}

// DSN PostgreSQL 접속 문자열 생성
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 설정
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 검증 설정
// 토큰 발급은 외부 인증 시스템이 담당하고 이 서비스는 같은 비밀키로 검증만 한다
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 로그 설정
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SMSConfig 문자 게이트웨이 설정
type SMSConfig struct {
	BaseURL  string            `mapstructure:"base_url"`
	APIKey   string            `mapstructure:"api_key"`
	UserID   string            `mapstructure:"user_id"`
	Senders  map[string]string `mapstructure:"senders"` // main | sub | personal → 발신번호
	TestMode bool              `mapstructure:"test_mode"`
	Timeout  time.Duration     `mapstructure:"timeout"`
}

// DispatchConfig 일괄 발송 설정
type DispatchConfig struct {
	PacingInterval time.Duration `mapstructure:"pacing_interval"`
	ProgressTTL    time.Duration `mapstructure:"progress_ttl"`
}

// ReportConfig 리포트 이미지 및 문구 설정
type ReportConfig struct {
	AcademyName string `mapstructure:"academy_name"`
	FontPath    string `mapstructure:"font_path"`
}

// SchedulerConfig 예약 발송 및 과제 알림 스케줄러 설정
type SchedulerConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Timezone             string `mapstructure:"timezone"`
	HomeworkReminderSpec string `mapstructure:"homework_reminder_spec"`
}

// FeatureConfig 기능 스위치
type FeatureConfig struct {
	HomeworkReminderEnabled bool `mapstructure:"homework_reminder_enabled"`
	ScheduleTriggerEnabled  bool `mapstructure:"schedule_trigger_enabled"`
}

// Load 설정 파일과 환경 변수에서 설정을 읽는다
// 우선순위: 환경 변수 > 설정 파일 > 기본값
func Load(path string) (*Config, error) {
	// .env 가 없으면 무시
	_ = godotenv.Load()

	v := viper.New()

	// ── 기본값 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "academy")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Asia/Seoul")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// 비밀값은 기본값이 없지만 환경 변수로 덮어쓸 수 있도록 키를 등록한다
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "academy")
	v.SetDefault("auth.access_token_ttl", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("sms.base_url", "https://apis.aligo.in/send/")
	v.SetDefault("sms.api_key", "")
	v.SetDefault("sms.user_id", "")
	v.SetDefault("sms.senders", map[string]string{
		"main":     "025695559",
		"sub":      "01084661129",
		"personal": "01054535388",
	})
	v.SetDefault("sms.test_mode", false)
	v.SetDefault("sms.timeout", "15s")

	v.SetDefault("dispatch.pacing_interval", "300ms")
	v.SetDefault("dispatch.progress_ttl", "1h")

	v.SetDefault("report.academy_name", "오늘의 국어 연구소")
	v.SetDefault("report.font_path", "")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.timezone", "Asia/Seoul")
	v.SetDefault("scheduler.homework_reminder_spec", "0 13 * * *")

	v.SetDefault("feature.homework_reminder_enabled", true)
	v.SetDefault("feature.schedule_trigger_enabled", true)

	// ── 설정 파일 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 환경 변수 ──
	v.SetEnvPrefix("ACADEMY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("설정 파일 읽기 실패: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("설정 해석 실패: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 핵심 설정 검증
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("설정 검증 실패: auth.jwt_secret 은 비어 있을 수 없습니다")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("설정 검증 실패: auth.jwt_secret 은 16자 이상이어야 합니다")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("설정 검증 실패: server.port 는 1-65535 범위여야 합니다")
	}
	if c.Dispatch.PacingInterval <= 0 {
		return fmt.Errorf("설정 검증 실패: dispatch.pacing_interval 은 0보다 커야 합니다")
	}
	if c.SMS.BaseURL == "" {
		return fmt.Errorf("설정 검증 실패: sms.base_url 은 비어 있을 수 없습니다")
	}
	return nil
}
