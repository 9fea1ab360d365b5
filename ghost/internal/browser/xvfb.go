package browser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// xvfbReadyTimeout bounds the wait for the display socket.
const xvfbReadyTimeout = 5 * time.Second

// xvfbArgs builds the Xvfb command line for a screen matching the viewport.
func xvfbArgs(display string, width, height int) []string {
	screen := strconv.Itoa(width) + "x" + strconv.Itoa(height) + "x24"
	return []string{display, "-screen", "0", screen, "-ac", "-nolisten", "tcp"}
}

// displaySocket maps ":99" or ":99.0" to the X server's unix socket.
func displaySocket(display string) (string, error) {
	num, ok := strings.CutPrefix(display, ":")
	if !ok {
		return "", fmt.Errorf("display %q is not local", display)
	}
	num, _, _ = strings.Cut(num, ".")
	if _, err := strconv.Atoi(num); err != nil {
		return "", fmt.Errorf("display %q: bad number", display)
	}
	return "/tmp/.X11-unix/X" + num, nil
}

// waitFor polls until path exists or the timeout expires.
func waitFor(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		_, err := os.Stat(path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%s not ready after %s", path, timeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// startXvfb runs a virtual display sized to the viewport for headful mode and
// returns once its socket accepts clients.
func (m *Manager) startXvfb() error {
	if m.xvfb != nil {
		return nil
	}
	sock, err := displaySocket(m.cfg.XvfbDisplay)
	if err != nil {
		return err
	}

	cmd := exec.Command("Xvfb", xvfbArgs(m.cfg.XvfbDisplay, m.cfg.ViewportWidth, m.cfg.ViewportHeight)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start xvfb: %w", err)
	}
	m.xvfb = cmd
	if err := waitFor(sock, xvfbReadyTimeout); err != nil {
		m.stopXvfb()
		return fmt.Errorf("xvfb: %w", err)
	}

	m.cfg.Logger.Info("browser: xvfb started",
		"display", m.cfg.XvfbDisplay, "width", m.cfg.ViewportWidth, "height", m.cfg.ViewportHeight, "pid", cmd.Process.Pid)
	return nil
}

func (m *Manager) stopXvfb() {
	if m.xvfb == nil {
		return
	}
	if p := m.xvfb.Process; p != nil {
		_ = p.Kill()
		_ = m.xvfb.Wait()
	}
	m.cfg.Logger.Info("browser: xvfb stopped", "display", m.cfg.XvfbDisplay)
	m.xvfb = nil
}
