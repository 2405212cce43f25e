//go:build !darwin

package terminal

// stripMacLauncherVars is a no-op outside macOS; the PID-keyed launcher
// variables spec.md §4.5/§6 describe are a Terminal.app/iTerm2 convention
// with no equivalent to strip elsewhere.
func stripMacLauncherVars(env []string) []string { return env }
