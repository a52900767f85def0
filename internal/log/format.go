package log

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	callerKey  = "caller"
	timeLayout = "2006-01-02 15:04:05"
)

// formatter renders "[time] LEVEL: message key=value ...".
type formatter struct{}

func (f *formatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(entry.Level.String())
	if level == "WARNING" {
		level = "WARN"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s: %s", entry.Time.Format(timeLayout), level, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != callerKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	if caller, ok := entry.Data[callerKey]; ok {
		fmt.Fprintf(&b, " %s=%v", callerKey, caller)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
