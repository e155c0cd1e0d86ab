package config

// Config представляет пользовательские настройки интервью из YAML
type Config struct {
	UserName  string          `yaml:"user_name"`
	Interview InterviewConfig `yaml:"interview"`
}

// InterviewConfig содержит параметры интервью по умолчанию
type InterviewConfig struct {
	Role   string `yaml:"role"`
	Domain string `yaml:"domain"`
	Mode   string `yaml:"mode"`
}

// Default возвращает настройки, которые используются без YAML файла
func Default() *Config {
	return &Config{
		UserName: "Guest",
		Interview: InterviewConfig{
			Role:   "Software Engineer",
			Domain: "frontend",
			Mode:   "Technical",
		},
	}
}

// Методы для удобного доступа к конфигурации
func (c *Config) GetUserName() string {
	if c.UserName == "" {
		return "Guest"
	}
	return c.UserName
}
