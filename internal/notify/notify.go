package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// DefaultTTL is how long a banner stays visible.
const DefaultTTL = 5 * time.Second

// Banner is one ephemeral in-app notification. Banners are display state
// only and never persist.
type Banner struct {
	Severity Severity
	Text     string
	At       time.Time
	TTL      time.Duration
}

func (b Banner) ExpiresAt() time.Time {
	ttl := b.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return b.At.Add(ttl)
}

// Center collects banners and trims expired ones on read. It is driven by
// the single-threaded update loop, so it carries no lock.
type Center struct {
	banners []Banner
	max     int
	ttl     time.Duration
}

func NewCenter() *Center {
	return &Center{max: 40}
}

// NewCenterTTL overrides the default banner lifetime; ttl <= 0 keeps
// DefaultTTL.
func NewCenterTTL(ttl time.Duration) *Center {
	return &Center{max: 40, ttl: ttl}
}

func (c *Center) Push(severity Severity, text string, now time.Time) {
	c.banners = append(c.banners, Banner{Severity: severity, Text: text, At: now, TTL: c.ttl})
	if len(c.banners) > c.max {
		c.banners = c.banners[len(c.banners)-c.max:]
	}
}

// Active returns banners still within their TTL, oldest first.
func (c *Center) Active(now time.Time) []Banner {
	out := make([]Banner, 0, len(c.banners))
	for _, b := range c.banners {
		if now.Before(b.ExpiresAt()) {
			out = append(out, b)
		}
	}
	return out
}

// Latest returns the most recent live banner for the status line.
func (c *Center) Latest(now time.Time) (Banner, bool) {
	live := c.Active(now)
	if len(live) == 0 {
		return Banner{}, false
	}
	return live[len(live)-1], true
}

// Desktop is the OS notification hook used for due alarms.
type Desktop interface {
	Send(title, body string) error
}

type NoopDesktop struct{}

func (NoopDesktop) Send(string, string) error { return nil }

type ExecDesktop struct{}

func (ExecDesktop) Send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
