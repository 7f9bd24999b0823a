package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger receives a test's debug lines: the API requests and responses the likes client logs
// at debug level, and anything the test writes with Debug.
type Logger interface {
	Printf(message string, args ...interface{})
}

// CapturedMessage is one debug line and the time it was written.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

// CapturedOutput is a test's debug lines in the order they were written.
type CapturedOutput []CapturedMessage

// CapturingLogger holds a test's debug lines until the test finishes. The TestLogger then gets
// them with the result, and the console prints them only if asked to for that outcome, so a
// passing run of the likes scenarios stays quiet.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

// Output returns a copy of the lines captured so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

// Dump writes each line after the prefix and a timestamp.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}
