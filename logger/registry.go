package logger

import (
	"sync"
)

// named holds loggers registered under a component name.
var named = &namedLoggers{
	loggers: make(map[string]*Logger),
}

type namedLoggers struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores a named logger.
func Register(name string, l *Logger) {
	named.mu.Lock()
	defer named.mu.Unlock()
	named.loggers[name] = l
}

// Get retrieves a named logger. Unknown names resolve to the global logger
// tagged with the requested component name.
func Get(name string) *Logger {
	named.mu.RLock()
	l, ok := named.loggers[name]
	named.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}
