package logging

import (
	"log"
	"os"
	"sync/atomic"
)

var debugMode atomic.Bool

func InitLogging() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

func SetDebug(enable bool) {
	debugMode.Store(enable)
}

func DebugEnabled() bool { return debugMode.Load() }

func Debugf(format string, v ...any) {
	if debugMode.Load() {
		log.Printf("[DEBUG] "+format, v...)
	}
}
