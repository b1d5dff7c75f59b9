package logger

import "sync"

// Components logging through named loggers. RegisterDefaults creates one
// per entry.
var defaultComponents = []string{"problems", "migration", "editor", "registry", "server", "api"}

var named = struct {
	sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores l under name. Later Get calls for name return it.
func Register(name string, l *Logger) {
	named.Lock()
	named.loggers[name] = l
	named.Unlock()
}

// Get returns the logger registered under name. Unregistered names get the
// global logger tagged with component=name; that logger is not cached, so it
// follows a later Init.
func Get(name string) *Logger {
	named.RLock()
	l, ok := named.loggers[name]
	named.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults derives component loggers from the global logger. Call it
// after Init so they carry the configured level and format. Without names
// the pipelinekit components are registered.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = defaultComponents
	}
	global := GetGlobalLogger()
	named.Lock()
	defer named.Unlock()
	for _, name := range names {
		named.loggers[name] = global.WithComponent(name)
	}
}
