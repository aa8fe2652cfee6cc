package report

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// MailtoURL renders the composed report as a mailto URL for the OS mail
// handler. Spaces must be %20, not '+', or mail clients mangle the body.
func MailtoURL(m Mail) string {
	return "mailto:" + strings.Join(m.Recipients, ",") +
		"?subject=" + escape(m.Subject) +
		"&body=" + escape(m.Body)
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Handoff opens the composed report in the platform's default mail
// client. Fire-and-forget: no delivery confirmation exists beyond the
// handler launching.
func Handoff(m Mail) error {
	return openHandler(MailtoURL(m))
}

func openHandler(u string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", u)
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return fmt.Errorf("no mail handler: install xdg-utils")
		}
		cmd = exec.Command("xdg-open", u)
	default:
		return fmt.Errorf("mail handoff not supported on %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("mail handoff: %w", err)
	}

	return nil
}
