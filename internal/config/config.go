package config

// Config 配置文件结构体
type Config struct {
	Version string `yaml:"version"`
	Sqlite  struct {
		Db     string `yaml:"db"`
		Prefix string `yaml:"prefix"`
	} `yaml:"sqlite"`
	Log struct {
		Level  string   `yaml:"level"`
		Writer []string `yaml:"writer"`
	} `yaml:"log"`
	Attack struct {
		Concurrency int `yaml:"concurrency"` // 攻击请求最大并发数
		TimeoutSec  int `yaml:"timeoutSec"`  // 单请求超时（秒）
	} `yaml:"attack"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	cfg := &Config{Version: "0.9.0"}
	cfg.Sqlite.Db = "raider.db"
	cfg.Sqlite.Prefix = "raider_"
	cfg.Log.Level = "debug"
	// file需要在console之前，打包后浏览器控制台日志无法写入会影响文件日志
	cfg.Log.Writer = []string{"file", "console"}
	cfg.Attack.Concurrency = 20
	cfg.Attack.TimeoutSec = 30
	return cfg
}
