package logging

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// writeLog formats a log entry and routes it to the right stream:
// DEBUG/INFO/WARN go to stdout, ERROR/FATAL to stderr.
// Fields are emitted in sorted key order so output is stable.
func (l *Logger) writeLog(level, msg string, fields map[string]interface{}) {
	logMsg := fmt.Sprintf("[%s] [%s] %s: %s", GetTimestamp(), level, l.name, msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
		logMsg += b.String()
	}

	if level == strError || level == levelFatal {
		fmt.Fprintf(os.Stderr, "%s\n", logMsg)
	} else {
		log.Println(logMsg)
	}
}

// logf formats the message and writes it with the logger's persistent fields.
func (l *Logger) logf(level, msg string, args ...interface{}) {
	formattedMsg := fmt.Sprintf(msg, args...)

	var fields map[string]interface{}
	if len(l.fields) > 0 {
		fields = cloneFields(l.fields)
	}

	l.writeLog(level, formattedMsg, fields)
}

// GetTimestamp returns an RFC3339 timestamp for log entries.
// Can be overridden via the LOG_TIMESTAMP env var for deterministic tests.
func GetTimestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}
