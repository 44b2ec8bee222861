package app_setting

import (
	"io/ioutil"
	"os"

	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"gopkg.in/yaml.v2"
)

// This is the setting for the web server.
type ServerAppSetting struct {
	// Number of posts rendered per page on /posts.
	POSTS_PER_PAGE int `yaml:"POSTS_PER_PAGE"`
	// Session lifetime in second, refreshed on every write.
	SESSION_TTL_SECOND int64 `yaml:"SESSION_TTL_SECOND"`
	// Per user steady rate of chat posts.
	CHAT_POSTS_PER_SECOND float64 `yaml:"CHAT_POSTS_PER_SECOND"`
	// Burst allowed on top of CHAT_POSTS_PER_SECOND.
	CHAT_POSTS_BURST int `yaml:"CHAT_POSTS_BURST"`
	// Per client steady rate of login attempts.
	LOGIN_ATTEMPTS_PER_SECOND float64 `yaml:"LOGIN_ATTEMPTS_PER_SECOND"`
	// Burst allowed on top of LOGIN_ATTEMPTS_PER_SECOND.
	LOGIN_BURST int `yaml:"LOGIN_BURST"`
	// Address the http server listens on, e.g. ":8080".
	LISTEN_ADDR string `yaml:"LISTEN_ADDR"`
	// Largest accepted multipart upload in megabytes.
	MAX_UPLOAD_MB int64 `yaml:"MAX_UPLOAD_MB"`
}

func DefaultServerAppSetting() ServerAppSetting {
	return ServerAppSetting{
		POSTS_PER_PAGE:            10,
		SESSION_TTL_SECOND:        7 * 24 * 3600,
		CHAT_POSTS_PER_SECOND:     2,
		CHAT_POSTS_BURST:          5,
		LOGIN_ATTEMPTS_PER_SECOND: 0.2,
		LOGIN_BURST:               10,
		LISTEN_ADDR:               ":8080",
		MAX_UPLOAD_MB:             8,
	}
}

// ParseServerAppSetting reads the yaml file at path on top of the defaults.
// A missing file yields the defaults, any other read or parse error is fatal.
func ParseServerAppSetting(path string) ServerAppSetting {
	c := DefaultServerAppSetting()
	yamlFile, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		Logger.Log.Warnf("app setting %s not found, using defaults", path)
		return c
	}
	if err != nil {
		Logger.Log.Fatal("yamlFile. get err: ", err.Error())
	}
	if err = yaml.Unmarshal(yamlFile, &c); err != nil {
		Logger.Log.Fatal("Unmarshal: ", err)
	}
	c.fillZeroValues()
	return c
}

func (c *ServerAppSetting) fillZeroValues() {
	d := DefaultServerAppSetting()
	if c.POSTS_PER_PAGE <= 0 {
		c.POSTS_PER_PAGE = d.POSTS_PER_PAGE
	}
	if c.SESSION_TTL_SECOND <= 0 {
		c.SESSION_TTL_SECOND = d.SESSION_TTL_SECOND
	}
	if c.CHAT_POSTS_PER_SECOND <= 0 {
		c.CHAT_POSTS_PER_SECOND = d.CHAT_POSTS_PER_SECOND
	}
	if c.CHAT_POSTS_BURST <= 0 {
		c.CHAT_POSTS_BURST = d.CHAT_POSTS_BURST
	}
	if c.LOGIN_ATTEMPTS_PER_SECOND <= 0 {
		c.LOGIN_ATTEMPTS_PER_SECOND = d.LOGIN_ATTEMPTS_PER_SECOND
	}
	if c.LOGIN_BURST <= 0 {
		c.LOGIN_BURST = d.LOGIN_BURST
	}
	if c.LISTEN_ADDR == "" {
		c.LISTEN_ADDR = d.LISTEN_ADDR
	}
	if c.MAX_UPLOAD_MB <= 0 {
		c.MAX_UPLOAD_MB = d.MAX_UPLOAD_MB
	}
}
