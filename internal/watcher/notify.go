package watcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

const appName = "clauderank"

// Notify shows a as a desktop notification: osascript on macOS,
// notify-send on Linux. When neither works the alert goes to stderr.
func Notify(a Alert) error {
	name, args := notifyCommand(runtime.GOOS, a)
	if name == "" {
		return writeAlert(os.Stderr, a)
	}
	if _, err := exec.LookPath(name); err != nil {
		return writeAlert(os.Stderr, a)
	}
	if err := exec.Command(name, args...).Run(); err != nil {
		return writeAlert(os.Stderr, a)
	}
	return nil
}

// notifyCommand returns the notifier invocation for goos, or "" when the
// platform has none.
func notifyCommand(goos string, a Alert) (string, []string) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q subtitle %q", a.Message, appName, a.Title)
		return "osascript", []string{"-e", script}
	case "linux":
		urgency := "normal"
		if a.Level == "warning" {
			urgency = "critical"
		}
		return "notify-send", []string{"--app-name", appName, "--urgency", urgency, appName + ": " + a.Title, a.Message}
	default:
		return "", nil
	}
}

// writeAlert prints a as one line.
func writeAlert(w io.Writer, a Alert) error {
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", a.Level, a.Title, a.Message)
	return err
}
