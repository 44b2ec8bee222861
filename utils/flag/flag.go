/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	WebServer = "web_server"
)

var (
	IsDevelopment  *bool
	ServiceName    *string
	AppSettingPath *string
)

func init() {
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName = flag.String("service", WebServer, "name reported to logs and traces")
	AppSettingPath = flag.String("app_setting_path", "cmd/server/setting.yaml", "path to server app setting")
}

// ParseFlags must be called from main only, tests register their own flags.
func ParseFlags() {
	flag.Parse()
}
