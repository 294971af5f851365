// Package browser opens search URLs with the platform's opener command.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"runtime"
	"time"
)

var ErrUnavailable = errors.New("no browser opener command available")

type commandSpec struct {
	name string
	args []string
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Open hands target to the desktop opener. Only http and https URLs are
// accepted.
func Open(ctx context.Context, target string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", target)
	}

	spec, err := detectCommand(runtime.GOOS)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	cmd := exec.CommandContext(openCtx, spec.name, append(spec.args, target)...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", spec.name, err)
	}
	_ = cmd.Process.Release()
	return nil
}

func detectCommand(goos string) (commandSpec, error) {
	var candidates []commandSpec
	switch goos {
	case "darwin":
		candidates = []commandSpec{{name: "open"}}
	case "windows":
		candidates = []commandSpec{{name: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}}
	default:
		candidates = []commandSpec{{name: "xdg-open"}, {name: "wslview"}, {name: "sensible-browser"}}
	}

	for _, c := range candidates {
		if _, err := lookPath(c.name); err == nil {
			return c, nil
		}
	}
	return commandSpec{}, ErrUnavailable
}
