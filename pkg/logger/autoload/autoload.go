// Package autoload initializes the global logger from LOG_* variables
// when imported for side effects.
package autoload

import (
	configx "github.com/tanpawarit/goodfoods-agent/pkg/config"
	logx "github.com/tanpawarit/goodfoods-agent/pkg/logger"
)

func init() {
	conf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*conf)
}
